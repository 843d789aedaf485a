package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"store-admin-service/internal/orders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, "test-key", 5*time.Second, nil)
	require.NoError(t, err)
	return c
}

func TestUnwrap(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "envelope", body: `{"data":[1,2]}`, expected: `[1,2]`},
		{name: "bare array", body: `[1,2]`, expected: `[1,2]`},
		{name: "bare object", body: `{"id":3}`, expected: `{"id":3}`},
		{name: "null data keeps body", body: `{"data":null,"message":"x"}`, expected: `{"data":null,"message":"x"}`},
		{name: "scalar data", body: `{"data":42}`, expected: `42`},
		{name: "empty", body: ``, expected: ``},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, string(Unwrap(json.RawMessage(tc.body))))
		})
	}
}

func TestItems(t *testing.T) {
	items, page := Items(json.RawMessage(`{"items":[{"id":1},{"id":2}],"totalPages":4}`))
	require.Len(t, items, 2)
	require.NotNil(t, page.TotalPages)
	assert.Equal(t, 4, *page.TotalPages)

	items, _ = Items(json.RawMessage(`[{"id":1}]`))
	assert.Len(t, items, 1)

	items, _ = Items(json.RawMessage(`{"id":1}`))
	assert.Empty(t, items)

	items, _ = Items(json.RawMessage(`"nope"`))
	assert.Empty(t, items)
}

func TestCreatedID(t *testing.T) {
	cases := map[string]string{
		`12`:           "12",
		`"abc"`:        "abc",
		`{"id":99}`:    "99",
		`{"id":"100"}`: "100",
	}
	for body, expected := range cases {
		id, ok := CreatedID(json.RawMessage(body))
		require.True(t, ok, body)
		assert.Equal(t, expected, id)
	}
	for _, body := range []string{``, `{}`, `null`, `""`, `true`} {
		_, ok := CreatedID(json.RawMessage(body))
		assert.False(t, ok, body)
	}
}

func TestIDs(t *testing.T) {
	ids := IDs(json.RawMessage(`{"items":[{"id":5},{"name":"no id"},{"id":7}]}`))
	assert.Equal(t, []int64{5, 7}, ids)
}

func TestClientSendsAPIKeyAndUnwrapsOrders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "/api/admin/orders", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("Page"))
		_, _ = io.WriteString(w, `{"data":[{"id":1,"status":"shipped"},5,{"id":2}]}`)
	})

	got, err := c.ListOrders(context.Background(), url.Values{"Page": []string{"2"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, orders.OrderShipped, orders.MapOrder(got[0]).OrderStatus)
}

func TestClientUpdateOrderStatusSendsOrdinal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/admin/orders/15/status", r.URL.Path)
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 2, body["status"])
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.UpdateOrderStatus(context.Background(), 15, orders.OrderShipped))
}

func TestClientErrorMessage(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "message field", status: http.StatusBadRequest, body: `{"message":"bad dates"}`, expected: "bad dates"},
		{name: "problem details title", status: http.StatusBadRequest, body: `{"title":"One or more validation errors occurred."}`, expected: "One or more validation errors occurred."},
		{name: "json string", status: http.StatusConflict, body: `"already exists"`, expected: "already exists"},
		{name: "plain text", status: http.StatusInternalServerError, body: "boom", expected: "boom"},
		{name: "empty", status: http.StatusNotFound, body: "", expected: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := c.GetProduct(context.Background(), 1)
			require.Error(t, err)
			be, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, be.StatusCode)
			assert.Equal(t, tc.expected, be.Message)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(base, "", time.Second, nil)
	require.NoError(t, err)
	_, err = c.GetOrder(context.Background(), 1)
	be, ok := AsError(err)
	require.True(t, ok)
	assert.True(t, be.Unreachable())
}

func TestClientRemoveProductsFromCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/admin/collections/products", r.URL.Path)
		assert.Equal(t, "8", r.URL.Query().Get("collectionId"))
		var ids []int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
		assert.Equal(t, []int64{1, 2}, ids)
	})
	require.NoError(t, c.RemoveProductsFromCollection(context.Background(), 8, []int64{1, 2}))
}

func TestClientMultipartUpload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["images"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.jpg", files[0].Filename)
		assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"data":{"uploaded":2}}`)
	})
	payload, err := c.AddProductImages(context.Background(), 3, []File{
		{Field: "images", Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte("a")},
		{Field: "images", Filename: "b.jpg", ContentType: "image/jpeg", Data: []byte("b")},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uploaded":2}`, string(payload))
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New("", "", 0, nil)
	assert.Error(t, err)
	_, err = New("not a url", "", 0, nil)
	assert.Error(t, err)
}
