package handlers

import (
	"context"
	"net/http"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/catalog"
	"store-admin-service/pkg/response"
)

func (h *Handler) AdminDiscountsList(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Backend.ListDiscounts(r.Context(), r.URL.Query())
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load discounts")
		return
	}
	items, page := backend.Items(payload)
	response.List(w, items, page)
}

func (h *Handler) AdminDiscountGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	payload, err := h.Backend.GetDiscount(r.Context(), id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load discount")
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

func (h *Handler) AdminDiscountCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.DiscountInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, err)
		return
	}
	body, err := catalog.NormalizeDiscount(in, nil, h.Config.DisplayLocation())
	if err != nil {
		writeInvalid(w, err)
		return
	}
	payload, err := h.Backend.CreateDiscount(r.Context(), body)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to create discount")
		return
	}
	setLocation(w, "/api/admin/discounts", payload)
	writeRaw(w, http.StatusCreated, payload)
}

func (h *Handler) AdminDiscountUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	var in catalog.DiscountInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, err)
		return
	}
	body, err := catalog.NormalizeDiscount(in, &id, h.Config.DisplayLocation())
	if err != nil {
		writeInvalid(w, err)
		return
	}
	payload, err := h.Backend.UpdateDiscount(r.Context(), id, body)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to update discount")
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

func (h *Handler) AdminDiscountDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	if err := h.Backend.DeleteDiscount(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to delete discount")
		return
	}
	response.Success(w, map[string]any{"id": id, "deleted": true})
}

func (h *Handler) AdminDiscountActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	if err := h.Backend.ActivateDiscount(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to activate discount")
		return
	}
	response.Success(w, map[string]any{"id": id, "isActive": true})
}

func (h *Handler) AdminDiscountDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	if err := h.Backend.DeactivateDiscount(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to deactivate discount")
		return
	}
	response.Success(w, map[string]any{"id": id, "isActive": false})
}

func (h *Handler) AdminDiscountProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	payload, err := h.Backend.ListDiscountProducts(r.Context(), id, r.URL.Query())
	h.writeLinkedProducts(w, r, payload, err)
}

// AdminDiscountProductsSync makes the discount apply to exactly the given
// products. Unlinking is global on the backend, keyed by product id.
func (h *Handler) AdminDiscountProductsSync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "discountId")
	if !ok {
		return
	}
	desired, err := decodeProductIDs(r)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	ctx := r.Context()
	current, err := h.Backend.DiscountProductIDs(ctx, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load discount products")
		return
	}
	change, err := applyLinkDiff(ctx, current, desired,
		func(ctx context.Context, ids []int64) error { return h.Backend.AddProductsToDiscount(ctx, id, ids) },
		func(ctx context.Context, ids []int64) error { return h.Backend.RemoveProductsFromDiscount(ctx, ids) },
	)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to update discount products")
		return
	}
	response.Success(w, change)
}
