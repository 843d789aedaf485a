package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"store-admin-service/internal/auth"
	"store-admin-service/internal/orders"
	"store-admin-service/pkg/response"
)

const summaryTimeLayout = "2006-01-02 15:04"

type summaryItem struct {
	Name      string
	UnitPrice string
	Quantity  string
	Total     string
}

type summaryPayment struct {
	Reference string
	Amount    string
	Method    string
	Status    string
	CreatedAt string
}

type summaryTemplateData struct {
	OrderID       int64
	OrderStatus   string
	PaymentStatus string
	Customer      string
	Phone         string
	Address       string
	CreatedAt     string
	ExpiresAt     string
	Items         []summaryItem
	Payments      []summaryPayment
	FinalPrice    string
}

func formatSummaryTime(value string, loc *time.Location) string {
	t, ok := orders.ParseBackendTime(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return t.In(loc).Format(summaryTimeLayout)
}

func formatAmount(value decimal.Decimal, ok bool, currency string) string {
	if !ok {
		return "-"
	}
	out := value.StringFixed(2)
	if currency != "" {
		out += " " + currency
	}
	return out
}

func dashIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func buildSummaryData(vm orders.AdminOrderViewModel, loc *time.Location, currency string) summaryTemplateData {
	data := summaryTemplateData{
		OrderID:       vm.ID,
		OrderStatus:   vm.OrderStatus.String(),
		PaymentStatus: vm.PaymentStatus.String(),
		Phone:         dashIfEmpty(vm.Phone),
		Address:       dashIfEmpty(vm.Address),
		CreatedAt:     dashIfEmpty(formatSummaryTime(vm.CreatedAt, loc)),
		ExpiresAt:     dashIfEmpty(formatSummaryTime(vm.ExpiresAt, loc)),
		FinalPrice:    formatAmount(vm.FinalPrice.Decimal, vm.FinalPrice.Valid, currency),
		Customer:      "-",
	}
	if vm.Name != nil {
		data.Customer = dashIfEmpty(*vm.Name)
	}

	for _, item := range vm.Raw.Objects("orderItems") {
		name := orders.FieldString(item, "product", "enName")
		if name == "" {
			name = orders.FieldString(item, "product", "arName")
		}
		unit, unitOK := orders.FieldDecimal(item, "unitPrice")
		total, totalOK := orders.FieldDecimal(item, "totalPrice")
		qty := "-"
		if q, ok := orders.FieldDecimal(item, "quantity"); ok {
			qty = q.String()
		}
		data.Items = append(data.Items, summaryItem{
			Name:      dashIfEmpty(name),
			UnitPrice: formatAmount(unit, unitOK, ""),
			Quantity:  qty,
			Total:     formatAmount(total, totalOK, ""),
		})
	}

	for _, payment := range vm.Raw.Objects("payments") {
		amount, amountOK := orders.FieldDecimal(payment, "amount")
		cur := orders.FieldString(payment, "currency")
		if cur == "" {
			cur = currency
		}
		ref := orders.FieldString(payment, "transactionId")
		if ref == "" {
			ref = orders.FieldString(payment, "id")
		}
		data.Payments = append(data.Payments, summaryPayment{
			Reference: dashIfEmpty(ref),
			Amount:    formatAmount(amount, amountOK, cur),
			Method:    dashIfEmpty(orders.FieldString(payment, "method")),
			Status:    dashIfEmpty(orders.FieldString(payment, "status")),
			CreatedAt: dashIfEmpty(formatSummaryTime(orders.FieldString(payment, "createdAt"), loc)),
		})
	}
	return data
}

// renderOrderSummaryPDF uses the core fonts, so text outside cp1252 (Arabic
// names) is replaced by the translator.
func renderOrderSummaryPDF(data summaryTemplateData) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Order #%d", data.OrderID), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s  |  Payment: %s", data.OrderStatus, data.PaymentStatus), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, "Customer", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, "Name: "+tr(data.Customer), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Phone: "+tr(data.Phone), "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 5, "Address: "+tr(data.Address), "", "L", false)
	pdf.CellFormat(0, 5, "Created: "+data.CreatedAt, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Expires: "+data.ExpiresAt, "", 1, "L", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(90, 5, "Product", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 5, "Unit", "", 0, "R", false, 0, "")
	pdf.CellFormat(20, 5, "Qty", "", 0, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Total", "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if len(data.Items) == 0 {
		pdf.CellFormat(0, 5, "No items", "", 1, "L", false, 0, "")
	}
	for _, item := range data.Items {
		pdf.CellFormat(90, 5, tr(item.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.UnitPrice, "", 0, "R", false, 0, "")
		pdf.CellFormat(20, 5, item.Quantity, "", 0, "R", false, 0, "")
		pdf.CellFormat(0, 5, item.Total, "", 1, "R", false, 0, "")
	}

	if len(data.Payments) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 6, "Payments", "B", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, p := range data.Payments {
			line := fmt.Sprintf("%s  %s  %s  %s  %s", p.Reference, p.Amount, tr(p.Method), tr(p.Status), p.CreatedAt)
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 7, "Final price: "+data.FinalPrice, "T", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *Handler) renderOrderSummary(r *http.Request, id int64) (*bytes.Buffer, error) {
	raw, err := h.Backend.GetOrder(r.Context(), id)
	if err != nil {
		return nil, err
	}
	data := buildSummaryData(orders.MapOrder(raw), h.Config.DisplayLocation(), h.Config.CurrencyLabel)
	return renderOrderSummaryPDF(data)
}

func writePDF(w http.ResponseWriter, id int64, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"order_%d_summary.pdf\"", id))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) AdminOrderSummaryPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	buf, err := h.renderOrderSummary(r, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to render order summary")
		return
	}
	writePDF(w, id, buf)
}

// AdminOrderSummaryLink signs a short-lived public link to the summary.
func (h *Handler) AdminOrderSummaryLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	secret := strings.TrimSpace(h.Config.SummaryLinkSecret)
	if secret == "" {
		response.Error(w, http.StatusServiceUnavailable, "SUMMARY_LINKS_DISABLED", "Summary links are not configured")
		return
	}

	expiresAt := h.now().Add(h.Config.SummaryLinkTTL)
	exp, sig := auth.CreateSummaryToken(secret, id, expiresAt)
	query := url.Values{"exp": []string{exp}, "sig": []string{sig}}
	link := "/api/public/order-summaries/" + strconv.FormatInt(id, 10) + "?" + query.Encode()

	response.Success(w, map[string]any{
		"url":       link,
		"expiresAt": time.Unix(expiresAt.Unix(), 0).UTC().Format(time.RFC3339),
	})
}

func (h *Handler) PublicOrderSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	q := r.URL.Query()
	secret := strings.TrimSpace(h.Config.SummaryLinkSecret)
	if secret == "" || !auth.VerifySummaryToken(secret, id, q.Get("exp"), q.Get("sig"), h.now()) {
		response.Error(w, http.StatusForbidden, "INVALID_LINK", "This link is invalid or has expired")
		return
	}
	buf, err := h.renderOrderSummary(r, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to render order summary")
		return
	}
	writePDF(w, id, buf)
}

func (h *Handler) AdminOrderSummaryPublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	if h.Summaries == nil {
		response.Error(w, http.StatusServiceUnavailable, "OBJECT_STORE_DISABLED", "Object storage is not configured")
		return
	}
	buf, err := h.renderOrderSummary(r, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to render order summary")
		return
	}

	publicURL, stale, err := h.Summaries.Publish(r.Context(), id, buf.Bytes())
	if err != nil {
		h.Logger.Error("order summary upload failed", zap.Int64("orderId", id), zapError(err))
		response.Error(w, http.StatusBadGateway, "UPLOAD_FAILED", "Failed to publish order summary")
		return
	}
	if len(stale) > 0 {
		h.Logger.Warn("stale order summaries left in bucket", zap.Int64("orderId", id), zap.Strings("keys", stale))
	}
	response.Created(w, map[string]any{"url": publicURL})
}
