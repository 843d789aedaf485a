package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-admin-service/internal/orders"
)

const summaryOrder = `{"data":{
	"id":12,
	"status":"Shipped",
	"fullName":"Hana Adel",
	"phone":"01000000000",
	"address":"12 Nile St",
	"finalPrice":450.5,
	"createdAt":"2024-04-02T09:30:00",
	"orderItems":[{"quantity":2,"unitPrice":200,"totalPrice":400,"product":{"enName":"Mug","arName":"كوب"}}],
	"payments":[{"transactionId":"T-1","amount":450.5,"currency":"EGP","method":"card","status":"Success","createdAt":"2024-04-02T09:31:00"}]
}}`

type fakeSummaryPublisher struct {
	orderID int64
	pdf     []byte
	err     error
}

func (p *fakeSummaryPublisher) Publish(_ context.Context, orderID int64, pdf []byte) (string, []string, error) {
	p.orderID = orderID
	p.pdf = pdf
	if p.err != nil {
		return "", nil, p.err
	}
	return "https://cdn.example/order-summaries/12/a.pdf", []string{"order-summaries/12/old.pdf"}, nil
}

func TestBuildSummaryData(t *testing.T) {
	raw, err := orders.DecodeRawOrder([]byte(`{
		"id":12,"status":"Shipped","fullName":"Hana","finalPrice":"450.5","createdAt":"2024-04-02T09:30:00",
		"orderItems":[{"quantity":2,"unitPrice":200,"product":{"arName":"كوب"}}],
		"payments":[{"id":3,"amount":450.5,"status":"Success"}]
	}`))
	require.NoError(t, err)
	cairo, err := time.LoadLocation("Africa/Cairo")
	require.NoError(t, err)

	data := buildSummaryData(orders.MapOrder(raw), cairo, "EGP")
	assert.Equal(t, int64(12), data.OrderID)
	assert.Equal(t, "Shipped", data.OrderStatus)
	assert.Equal(t, "450.50 EGP", data.FinalPrice)
	assert.Equal(t, "2024-04-02 11:30", data.CreatedAt)
	require.Len(t, data.Items, 1)
	assert.Equal(t, "كوب", data.Items[0].Name)
	require.Len(t, data.Payments, 1)
	assert.Equal(t, "3", data.Payments[0].Reference)
}

func TestAdminOrderSummaryPDF(t *testing.T) {
	h, fb := newTestHandler(t)
	fb.json(http.MethodGet, "/api/admin/orders/12", http.StatusOK, summaryOrder)

	rec := serve(h.AdminOrderSummaryPDF, http.MethodGet, "/orders/{orderId}/summary.pdf", "/orders/12/summary.pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "order_12_summary.pdf")
	assert.True(t, len(rec.Body.Bytes()) > 4 && string(rec.Body.Bytes()[:4]) == "%PDF")
}

func TestSummaryLinkRoundTrip(t *testing.T) {
	h, fb := newTestHandler(t)
	now := time.Now().UTC().Truncate(time.Second)
	h.Now = func() time.Time { return now }
	fb.json(http.MethodGet, "/api/admin/orders/12", http.StatusOK, summaryOrder)

	rec := serve(h.AdminOrderSummaryLink, http.MethodPost, "/orders/{orderId}/summary-link", "/orders/12/summary-link", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var link struct {
		URL       string `json:"url"`
		ExpiresAt string `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &link))
	assert.Equal(t, now.Add(15*time.Minute).Format(time.RFC3339), link.ExpiresAt)

	public := serve(h.PublicOrderSummary, http.MethodGet, "/api/public/order-summaries/{orderId}", link.URL, nil)
	require.Equal(t, http.StatusOK, public.Code, public.Body.String())
	assert.Equal(t, "application/pdf", public.Header().Get("Content-Type"))

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	q := u.Query()

	// A signature for order 12 does not open order 13.
	other := serve(h.PublicOrderSummary, http.MethodGet, "/api/public/order-summaries/{orderId}",
		"/api/public/order-summaries/13?"+q.Encode(), nil)
	assert.Equal(t, http.StatusForbidden, other.Code)
	assert.Equal(t, "INVALID_LINK", decodeEnvelope(t, other).Error)

	h.Now = func() time.Time { return now.Add(16 * time.Minute) }
	expired := serve(h.PublicOrderSummary, http.MethodGet, "/api/public/order-summaries/{orderId}", link.URL, nil)
	assert.Equal(t, http.StatusForbidden, expired.Code)
}

func TestSummaryLinkDisabledWithoutSecret(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Config.SummaryLinkSecret = ""

	rec := serve(h.AdminOrderSummaryLink, http.MethodPost, "/orders/{orderId}/summary-link", "/orders/12/summary-link", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SUMMARY_LINKS_DISABLED", decodeEnvelope(t, rec).Error)

	public := serve(h.PublicOrderSummary, http.MethodGet, "/api/public/order-summaries/{orderId}",
		"/api/public/order-summaries/12?exp=1&sig=x", nil)
	assert.Equal(t, http.StatusForbidden, public.Code)
}

func TestAdminOrderSummaryPublish(t *testing.T) {
	h, fb := newTestHandler(t)
	fb.json(http.MethodGet, "/api/admin/orders/12", http.StatusOK, summaryOrder)

	rec := serve(h.AdminOrderSummaryPublish, http.MethodPost, "/orders/{orderId}/summary/publish", "/orders/12/summary/publish", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "OBJECT_STORE_DISABLED", decodeEnvelope(t, rec).Error)

	publisher := &fakeSummaryPublisher{}
	h.Summaries = publisher
	rec = serve(h.AdminOrderSummaryPublish, http.MethodPost, "/orders/{orderId}/summary/publish", "/orders/12/summary/publish", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"url":"https://cdn.example/order-summaries/12/a.pdf"}`, string(decodeEnvelope(t, rec).Data))
	assert.Equal(t, int64(12), publisher.orderID)
	assert.Equal(t, "%PDF", string(publisher.pdf[:4]))

	h.Summaries = &fakeSummaryPublisher{err: errors.New("bucket offline")}
	rec = serve(h.AdminOrderSummaryPublish, http.MethodPost, "/orders/{orderId}/summary/publish", "/orders/12/summary/publish", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "UPLOAD_FAILED", decodeEnvelope(t, rec).Error)
}
