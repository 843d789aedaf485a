package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"store-admin-service/internal/catalog"
	"store-admin-service/internal/middleware"
	"store-admin-service/internal/orders"
	"store-admin-service/internal/queue"
	"store-admin-service/pkg/response"
)

const (
	defaultOrdersPageSize = 10
	maxOrdersPageSize     = 100
)

type ordersListMeta struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasMore  bool `json:"hasMore"`
}

type orderStatusRequest struct {
	Status *int `json:"status" validate:"required"`
}

// createdFilters are checked in order, so the first invalid one is reported.
var createdFilters = []struct {
	param    string
	upstream string
}{
	{param: "createdFrom", upstream: "CreatedFrom"},
	{param: "createdTo", upstream: "CreatedTo"},
}

var filterDateLayouts = []string{"2006-01-02T15:04", "2006-01-02"}

// parseFilterDate accepts RFC3339 or a bare date/datetime read in loc.
func parseFilterDate(value string, loc *time.Location) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", true
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format(time.RFC3339), true
	}
	for _, layout := range filterDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

func parseOrdinalParam(value string) (int, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (h *Handler) AdminOrdersList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "pageSize", defaultOrdersPageSize)
	if pageSize < 1 {
		pageSize = defaultOrdersPageSize
	}
	if pageSize > maxOrdersPageSize {
		pageSize = maxOrdersPageSize
	}

	upstream := url.Values{}
	upstream.Set("Page", strconv.Itoa(page))
	upstream.Set("PageSize", strconv.Itoa(pageSize))

	if raw, ok, err := parseOrdinalParam(q.Get("status")); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status")
		return
	} else if ok {
		status, err := orders.ParseOrderStatus(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		upstream.Set("Status", strconv.Itoa(int(status)))
	}

	var paymentFilter *orders.PaymentStatus
	if raw, ok, err := parseOrdinalParam(q.Get("paymentStatus")); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid paymentStatus")
		return
	} else if ok {
		ps, err := orders.ParsePaymentStatus(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		paymentFilter = &ps
	}

	loc := h.Config.DisplayLocation()
	for _, filter := range createdFilters {
		value, ok := parseFilterDate(q.Get(filter.param), loc)
		if !ok {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+filter.param)
			return
		}
		if value != "" {
			upstream.Set(filter.upstream, value)
		}
	}

	raws, err := h.Backend.ListOrders(r.Context(), upstream)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load orders")
		return
	}

	// hasMore is judged on the upstream page before local filtering.
	meta := ordersListMeta{Page: page, PageSize: pageSize, HasMore: len(raws) == pageSize}
	items := orders.MapOrders(raws)
	if paymentFilter != nil {
		filtered := make([]orders.AdminOrderViewModel, 0, len(items))
		for _, item := range items {
			if item.PaymentStatus == *paymentFilter {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	response.List(w, items, meta)
}

func (h *Handler) AdminOrderGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	raw, err := h.Backend.GetOrder(r.Context(), id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load order")
		return
	}
	response.Success(w, orders.MapOrder(raw))
}

// AdminOrderStatusUpdate changes the order status upstream and answers with
// the view model updated locally, without a second fetch.
func (h *Handler) AdminOrderStatusUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}

	var body orderStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeInvalid(w, err)
		return
	}
	if err := catalog.Validate(body); err != nil {
		writeInvalid(w, err)
		return
	}
	next, err := orders.ParseOrderStatus(*body.Status)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	ctx := r.Context()
	raw, err := h.Backend.GetOrder(ctx, id)
	if err != nil {
		h.upstreamFailed(w, r, err, "Failed to load order")
		return
	}
	current := orders.MapOrder(raw)

	if err := h.Backend.UpdateOrderStatus(ctx, id, next); err != nil {
		h.upstreamFailed(w, r, err, "Failed to update order status")
		return
	}

	updated := current.WithOrderStatus(next)
	h.notifyStatusChange(r, id, current.OrderStatus, next)
	response.Success(w, updated)
}

func (h *Handler) notifyStatusChange(r *http.Request, orderID int64, previous, next orders.OrderStatus) {
	event := queue.NewOrderStatusChangedEvent(orderID, previous, next, h.now())
	fields := []zap.Field{
		zap.Int64("orderId", orderID),
		zap.String("eventId", event.ID),
		zap.Stringer("from", previous),
		zap.Stringer("to", next),
	}
	if authCtx, ok := middleware.GetAuthContext(r.Context()); ok {
		fields = append(fields, zap.String("sessionId", authCtx.SessionID))
	}
	h.Logger.Info("order status changed", fields...)

	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.OrderStatusChanged(r.Context(), event); err != nil {
		h.Logger.Warn("order status event not delivered", append(fields, zapError(err))...)
	}
}

func (h *Handler) AdminOrderDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "orderId")
	if !ok {
		return
	}
	if err := h.Backend.DeleteOrder(r.Context(), id); err != nil {
		h.upstreamFailed(w, r, err, "Failed to delete order")
		return
	}
	response.Success(w, map[string]any{"id": id, "deleted": true})
}
