package orders

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AdminOrderViewModel is the shape the dashboard renders. Raw keeps the
// backend record for fields that are not promoted (items, payment history)
// and must not be modified.
type AdminOrderViewModel struct {
	ID            int64
	Name          *string
	Phone         string
	Address       string
	FinalPrice    decimal.NullDecimal
	CreatedAt     string
	ExpiresAt     string
	PaymentStatus PaymentStatus
	OrderStatus   OrderStatus
	Raw           RawOrder
}

type adminOrderJSON struct {
	ID                 int64         `json:"id"`
	Name               *string       `json:"name"`
	Phone              string        `json:"phone"`
	Address            string        `json:"address"`
	FinalPrice         *json.Number  `json:"finalPrice"`
	CreatedAt          string        `json:"createdAt"`
	ExpiresAt          string        `json:"expiresAt"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	PaymentStatusLabel string        `json:"paymentStatusLabel"`
	OrderStatus        OrderStatus   `json:"orderStatus"`
	OrderStatusLabel   string        `json:"orderStatusLabel"`
	Raw                RawOrder      `json:"raw"`
}

// priceNumber renders a price as a bare JSON number, or null when absent.
func priceNumber(price decimal.NullDecimal) *json.Number {
	if !price.Valid {
		return nil
	}
	n := json.Number(price.Decimal.String())
	return &n
}

func (vm AdminOrderViewModel) MarshalJSON() ([]byte, error) {
	return json.Marshal(adminOrderJSON{
		ID:                 vm.ID,
		Name:               vm.Name,
		Phone:              vm.Phone,
		Address:            vm.Address,
		FinalPrice:         priceNumber(vm.FinalPrice),
		CreatedAt:          vm.CreatedAt,
		ExpiresAt:          vm.ExpiresAt,
		PaymentStatus:      vm.PaymentStatus,
		PaymentStatusLabel: vm.PaymentStatus.Label(),
		OrderStatus:        vm.OrderStatus,
		OrderStatusLabel:   vm.OrderStatus.Label(),
		Raw:                vm.Raw,
	})
}

// MapOrder derives the closed-enum statuses and the display name for one
// backend order. It never fails: every decision has a default.
func MapOrder(raw RawOrder) AdminOrderViewModel {
	paymentStatus := DerivePaymentStatus(raw)
	orderStatus := OrderStatusFromBackend(raw.String("status"))

	// Paid orders still marked pending upstream are already being worked on.
	if paymentStatus == PaymentPaid && orderStatus == OrderPending {
		orderStatus = OrderProcessing
	}

	vm := AdminOrderViewModel{
		Name:          CustomerName(raw),
		Phone:         raw.String("phone"),
		Address:       raw.String("address"),
		CreatedAt:     raw.String("createdAt"),
		ExpiresAt:     raw.String("expiresAt"),
		PaymentStatus: paymentStatus,
		OrderStatus:   orderStatus,
		Raw:           raw,
	}
	if id, ok := raw.Int64("id"); ok {
		vm.ID = id
	}
	if price, ok := raw.Decimal("finalPrice"); ok {
		vm.FinalPrice = decimal.NullDecimal{Decimal: price, Valid: true}
	}
	return vm
}

func MapOrders(raws []RawOrder) []AdminOrderViewModel {
	out := make([]AdminOrderViewModel, 0, len(raws))
	for _, raw := range raws {
		out = append(out, MapOrder(raw))
	}
	return out
}

// WithOrderStatus applies a local status change after a successful update
// call. Payment status is left as derived.
func (vm AdminOrderViewModel) WithOrderStatus(status OrderStatus) AdminOrderViewModel {
	vm.OrderStatus = status
	return vm
}

var backendTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBackendTime parses backend timestamps. Values without a zone
// designator are UTC.
func ParseBackendTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, true
	}
	for _, layout := range backendTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
