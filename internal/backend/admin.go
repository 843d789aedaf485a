package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"store-admin-service/internal/orders"
)

const adminPrefix = "/api/admin"

func adminPath(format string, args ...any) string {
	return adminPrefix + fmt.Sprintf(format, args...)
}

// call performs a JSON request and unwraps the response envelope.
func (c *Client) call(ctx context.Context, method string, path string, query url.Values, payload any) (json.RawMessage, error) {
	body, err := c.Do(ctx, method, path, query, payload)
	if err != nil {
		return nil, err
	}
	return Unwrap(body), nil
}

var emptyObject = map[string]any{}

// Collections

func (c *Client) ListCollections(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, adminPath("/collections"), query, nil)
}

func (c *Client) GetCollection(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, adminPath("/collections/%d", id), nil, nil)
}

func (c *Client) CreateCollection(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, adminPath("/collections"), nil, payload)
}

func (c *Client) UpdateCollection(ctx context.Context, id int64, payload any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPut, adminPath("/collections/%d", id), nil, payload)
}

func (c *Client) DeleteCollection(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodDelete, adminPath("/collections/%d", id), nil, nil)
	return err
}

func (c *Client) ActivateCollection(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/collections/%d/activate", id), nil, emptyObject)
	return err
}

func (c *Client) DeactivateCollection(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/collections/%d/deactivate", id), nil, emptyObject)
	return err
}

func (c *Client) AddProductsToCollection(ctx context.Context, id int64, productIDs []int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/collections/%d/products", id), nil, productIDs)
	return err
}

func (c *Client) RemoveProductsFromCollection(ctx context.Context, id int64, productIDs []int64) error {
	query := url.Values{"collectionId": []string{strconv.FormatInt(id, 10)}}
	_, err := c.call(ctx, http.MethodDelete, adminPath("/collections/products"), query, productIDs)
	return err
}

func (c *Client) AddCollectionImages(ctx context.Context, id int64, files []File) (json.RawMessage, error) {
	body, err := c.DoMultipart(ctx, http.MethodPost, adminPath("/collections/%d/images", id), files)
	if err != nil {
		return nil, err
	}
	return Unwrap(body), nil
}

func (c *Client) DeleteCollectionImage(ctx context.Context, id int64, imageID int64) error {
	_, err := c.call(ctx, http.MethodDelete, adminPath("/collections/%d/images/%d", id, imageID), nil, nil)
	return err
}

// CollectionProductIDs lists the ids of products currently in a collection.
func (c *Client) CollectionProductIDs(ctx context.Context, id int64) ([]int64, error) {
	query := url.Values{
		"CollectionId": []string{strconv.FormatInt(id, 10)},
		"PageSize":     []string{"1000"},
	}
	payload, err := c.ListProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	return IDs(payload), nil
}

// Discounts

func (c *Client) ListDiscounts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, adminPath("/discounts"), query, nil)
}

func (c *Client) GetDiscount(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, adminPath("/discounts/%d", id), nil, nil)
}

func (c *Client) CreateDiscount(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, adminPath("/discounts"), nil, payload)
}

func (c *Client) UpdateDiscount(ctx context.Context, id int64, payload any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPut, adminPath("/discounts/%d", id), nil, payload)
}

func (c *Client) DeleteDiscount(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodDelete, adminPath("/discounts/%d", id), nil, nil)
	return err
}

func (c *Client) ActivateDiscount(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/discounts/%d/activate", id), nil, emptyObject)
	return err
}

func (c *Client) DeactivateDiscount(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/discounts/%d/deactivate", id), nil, emptyObject)
	return err
}

// ListDiscountProducts goes through the products filter; the backend has no
// working products sub-resource for discounts.
func (c *Client) ListDiscountProducts(ctx context.Context, id int64, query url.Values) (json.RawMessage, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("DiscountId", strconv.FormatInt(id, 10))
	return c.ListProducts(ctx, q)
}

func (c *Client) DiscountProductIDs(ctx context.Context, id int64) ([]int64, error) {
	payload, err := c.ListDiscountProducts(ctx, id, url.Values{"PageSize": []string{"10000"}})
	if err != nil {
		return nil, err
	}
	return IDs(payload), nil
}

func (c *Client) AddProductsToDiscount(ctx context.Context, id int64, productIDs []int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/discounts/%d/products", id), nil, productIDs)
	return err
}

func (c *Client) RemoveProductsFromDiscount(ctx context.Context, productIDs []int64) error {
	_, err := c.call(ctx, http.MethodDelete, adminPath("/discounts/products"), nil, productIDs)
	return err
}

// Products

func (c *Client) ListProducts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, adminPath("/products"), query, nil)
}

func (c *Client) GetProduct(ctx context.Context, id int64) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, adminPath("/products/%d", id), nil, nil)
}

func (c *Client) CreateProduct(ctx context.Context, payload any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPost, adminPath("/products"), nil, payload)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, payload any) (json.RawMessage, error) {
	return c.call(ctx, http.MethodPut, adminPath("/products/%d", id), nil, payload)
}

func (c *Client) ActivateProduct(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/products/%d/activate", id), nil, emptyObject)
	return err
}

func (c *Client) DeactivateProduct(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodPost, adminPath("/products/%d/deactivate", id), nil, emptyObject)
	return err
}

func (c *Client) AddProductImages(ctx context.Context, id int64, files []File) (json.RawMessage, error) {
	body, err := c.DoMultipart(ctx, http.MethodPost, adminPath("/products/%d/images", id), files)
	if err != nil {
		return nil, err
	}
	return Unwrap(body), nil
}

func (c *Client) DeleteProductImage(ctx context.Context, id int64, imageID int64) error {
	_, err := c.call(ctx, http.MethodDelete, adminPath("/products/%d/images/%d", id, imageID), nil, nil)
	return err
}

// Orders

// ListOrders returns the raw order records of one page. Entries that are not
// JSON objects are skipped.
func (c *Client) ListOrders(ctx context.Context, query url.Values) ([]orders.RawOrder, error) {
	payload, err := c.call(ctx, http.MethodGet, adminPath("/orders"), query, nil)
	if err != nil {
		return nil, err
	}
	items, _ := Items(payload)
	out := make([]orders.RawOrder, 0, len(items))
	for _, item := range items {
		if trimmed := bytes.TrimSpace(item); len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		raw, err := orders.DecodeRawOrder(item)
		if err != nil {
			continue
		}
		out = append(out, raw)
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (orders.RawOrder, error) {
	payload, err := c.call(ctx, http.MethodGet, adminPath("/orders/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	raw, err := orders.DecodeRawOrder(payload)
	if err != nil {
		return nil, fmt.Errorf("decode order %d: %w", id, err)
	}
	return raw, nil
}

// UpdateOrderStatus sends the status ordinal, which is the backend's wire
// representation.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status orders.OrderStatus) error {
	_, err := c.call(ctx, http.MethodPut, adminPath("/orders/%d/status", id), nil, map[string]int{"status": int(status)})
	return err
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	_, err := c.call(ctx, http.MethodDelete, adminPath("/orders/%d", id), nil, nil)
	return err
}
