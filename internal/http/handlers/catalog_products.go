package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/catalog"
	"store-admin-service/pkg/response"
)

func setLocation(w http.ResponseWriter, base string, payload json.RawMessage) {
	if id, ok := backend.CreatedID(payload); ok {
		w.Header().Set("Location", fmt.Sprintf("%s/%s", base, id))
	}
}

func (h *Handler) AdminProductsList(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Backend.ListProducts(r.Context(), r.URL.Query())
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load products")
		return
	}
	items, page := backend.Items(payload)
	response.List(w, items, page)
}

func (h *Handler) AdminProductGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	payload, err := h.Backend.GetProduct(r.Context(), id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load product")
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

func (h *Handler) AdminProductCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, err)
		return
	}
	body, err := catalog.NormalizeProduct(in, nil)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	payload, err := h.Backend.CreateProduct(r.Context(), body)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to create product")
		return
	}
	setLocation(w, "/api/admin/products", payload)
	writeRaw(w, http.StatusCreated, payload)
}

func (h *Handler) AdminProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var in catalog.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, err)
		return
	}
	body, err := catalog.NormalizeProduct(in, &id)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	payload, err := h.Backend.UpdateProduct(r.Context(), id, body)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to update product")
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

func (h *Handler) AdminProductActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	if err := h.Backend.ActivateProduct(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to activate product")
		return
	}
	response.Success(w, map[string]any{"id": id, "isActive": true})
}

func (h *Handler) AdminProductDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	if err := h.Backend.DeactivateProduct(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to deactivate product")
		return
	}
	response.Success(w, map[string]any{"id": id, "isActive": false})
}

func (h *Handler) AdminProductImagesUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	files, ferr := h.readImages(r)
	if ferr != nil {
		writeFileError(w, ferr)
		return
	}
	payload, err := h.Backend.AddProductImages(r.Context(), id, files)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to upload product images")
		return
	}
	writeRaw(w, http.StatusCreated, payload)
}

func (h *Handler) AdminProductImageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	imageID, ok := pathID(w, r, "imageId")
	if !ok {
		return
	}
	if err := h.Backend.DeleteProductImage(r.Context(), id, imageID); err != nil {
		h.upstreamFailed(w, r, err, "Failed to delete product image")
		return
	}
	response.Success(w, map[string]any{"id": imageID, "deleted": true})
}
