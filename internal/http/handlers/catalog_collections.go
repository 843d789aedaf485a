package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/catalog"
	"store-admin-service/pkg/response"
)

func (h *Handler) AdminCollectionsList(w http.ResponseWriter, r *http.Request) {
	payload, err := h.Backend.ListCollections(r.Context(), r.URL.Query())
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load collections")
		return
	}
	items, page := backend.Items(payload)
	response.List(w, items, page)
}

func (h *Handler) AdminCollectionGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	payload, err := h.Backend.GetCollection(r.Context(), id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load collection")
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

func (h *Handler) AdminCollectionCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.CollectionInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, err)
		return
	}
	body, err := catalog.NormalizeCollection(in, nil)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	payload, err := h.Backend.CreateCollection(r.Context(), body)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to create collection")
		return
	}
	setLocation(w, "/api/admin/collections", payload)
	writeRaw(w, http.StatusCreated, payload)
}

func (h *Handler) AdminCollectionUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	var in catalog.CollectionInput
	if err := decodeJSON(r, &in); err != nil {
		writeInvalid(w, err)
		return
	}
	body, err := catalog.NormalizeCollection(in, &id)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	payload, err := h.Backend.UpdateCollection(r.Context(), id, body)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to update collection")
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

func (h *Handler) AdminCollectionActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	if err := h.Backend.ActivateCollection(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to activate collection")
		return
	}
	response.Success(w, map[string]any{"id": id, "isActive": true})
}

func (h *Handler) AdminCollectionDeactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	if err := h.Backend.DeactivateCollection(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to deactivate collection")
		return
	}
	response.Success(w, map[string]any{"id": id, "isActive": false})
}

func (h *Handler) AdminCollectionProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	q := r.URL.Query()
	q.Set("CollectionId", strconv.FormatInt(id, 10))
	payload, err := h.Backend.ListProducts(r.Context(), q)
	h.writeLinkedProducts(w, r, payload, err)
}

// AdminCollectionProductsSync makes the collection contain exactly the given
// products.
func (h *Handler) AdminCollectionProductsSync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	desired, err := decodeProductIDs(r)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	ctx := r.Context()
	current, err := h.Backend.CollectionProductIDs(ctx, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load collection products")
		return
	}
	change, err := applyLinkDiff(ctx, current, desired,
		func(ctx context.Context, ids []int64) error { return h.Backend.AddProductsToCollection(ctx, id, ids) },
		func(ctx context.Context, ids []int64) error {
			return h.Backend.RemoveProductsFromCollection(ctx, id, ids)
		},
	)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to update collection products")
		return
	}
	response.Success(w, change)
}

func (h *Handler) AdminCollectionImagesUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	files, ferr := h.readImages(r)
	if ferr != nil {
		writeFileError(w, ferr)
		return
	}
	payload, err := h.Backend.AddCollectionImages(r.Context(), id, files)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to upload collection images")
		return
	}
	writeRaw(w, http.StatusCreated, payload)
}

func (h *Handler) AdminCollectionImageDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	imageID, ok := pathID(w, r, "imageId")
	if !ok {
		return
	}
	if err := h.Backend.DeleteCollectionImage(r.Context(), id, imageID); err != nil {
		h.upstreamFailed(w, r, err, "Failed to delete collection image")
		return
	}
	response.Success(w, map[string]any{"id": imageID, "deleted": true})
}

func collectionImageIDs(payload json.RawMessage) []int64 {
	var body struct {
		Images json.RawMessage `json:"images"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Images) == 0 {
		return nil
	}
	return backend.IDs(body.Images)
}

// AdminCollectionDelete tears a collection down before deleting it: it is
// deactivated (best effort), emptied of products and images, then removed.
func (h *Handler) AdminCollectionDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "collectionId")
	if !ok {
		return
	}
	ctx := r.Context()

	collection, err := h.Backend.GetCollection(ctx, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load collection")
		return
	}

	if err := h.Backend.DeactivateCollection(ctx, id); err != nil {
		h.Logger.Info("collection deactivate before delete failed", zap.Int64("collectionId", id), zapError(err))
	}

	productIDs, err := h.Backend.CollectionProductIDs(ctx, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load collection products")
		return
	}
	imageIDs := collectionImageIDs(collection)

	g, gctx := errgroup.WithContext(ctx)
	if len(productIDs) > 0 {
		g.Go(func() error { return h.Backend.RemoveProductsFromCollection(gctx, id, productIDs) })
	}
	for _, imageID := range imageIDs {
		imageID := imageID
		g.Go(func() error {
			// An image already gone upstream needs no cleanup.
			if err := h.Backend.DeleteCollectionImage(gctx, id, imageID); err != nil && !backend.IsNotFound(err) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.upstreamFailed(w, r, err, "Failed to clear collection")
		return
	}

	if err := h.Backend.DeleteCollection(ctx, id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to delete collection")
		return
	}
	response.Success(w, map[string]any{
		"id":              id,
		"deleted":         true,
		"removedProducts": len(productIDs),
		"removedImages":   len(imageIDs),
	})
}
