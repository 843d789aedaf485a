package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/sync/errgroup"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/catalog"
	"store-admin-service/pkg/response"
)

type productLinksRequest struct {
	ProductIDs []int64 `json:"productIds"`
}

type linkChange struct {
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
}

// decodeProductIDs accepts either a bare id array or {"productIds": [...]}.
func decodeProductIDs(r *http.Request) ([]int64, error) {
	var raw json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err == nil {
		return ids, nil
	}
	var body productLinksRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.ProductIDs, nil
}

// applyLinkDiff moves the current product set to desired, running the add and
// remove calls concurrently.
func applyLinkDiff(
	ctx context.Context,
	current, desired []int64,
	add func(ctx context.Context, ids []int64) error,
	remove func(ctx context.Context, ids []int64) error,
) (linkChange, error) {
	toAdd, toRemove := catalog.DiffIDs(current, desired)
	g, gctx := errgroup.WithContext(ctx)
	if len(toAdd) > 0 {
		g.Go(func() error { return add(gctx, toAdd) })
	}
	if len(toRemove) > 0 {
		g.Go(func() error { return remove(gctx, toRemove) })
	}
	if err := g.Wait(); err != nil {
		return linkChange{}, err
	}
	change := linkChange{Added: toAdd, Removed: toRemove}
	if change.Added == nil {
		change.Added = []int64{}
	}
	if change.Removed == nil {
		change.Removed = []int64{}
	}
	return change, nil
}

func (h *Handler) writeLinkedProducts(w http.ResponseWriter, r *http.Request, payload json.RawMessage, err error) {
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load products")
		return
	}
	items, page := backend.Items(payload)
	response.List(w, items, page)
}
