package orders

import (
	"fmt"
	"strings"
)

// OrderStatus is the workflow status shown to staff. The ordinal is the value
// the backend expects on status-update calls.
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderProcessing
	OrderShipped
	OrderDelivered
	OrderCancelled
)

// PaymentStatus is derived from payment signals on the raw order and is
// display-only; it is never sent to the backend.
type PaymentStatus int

const (
	PaymentUnpaid PaymentStatus = iota
	PaymentPaid
	PaymentFailed
)

var orderStatusNames = map[OrderStatus]string{
	OrderPending:    "Pending",
	OrderProcessing: "Processing",
	OrderShipped:    "Shipped",
	OrderDelivered:  "Delivered",
	OrderCancelled:  "Cancelled",
}

var orderStatusLabels = map[OrderStatus]string{
	OrderPending:    "قيد الانتظار",
	OrderProcessing: "قيد التجهيز",
	OrderShipped:    "تم الشحن",
	OrderDelivered:  "تم التوصيل",
	OrderCancelled:  "ملغي",
}

var paymentStatusNames = map[PaymentStatus]string{
	PaymentUnpaid: "Unpaid",
	PaymentPaid:   "Paid",
	PaymentFailed: "Failed",
}

var paymentStatusLabels = map[PaymentStatus]string{
	PaymentUnpaid: "غير مدفوع",
	PaymentPaid:   "مدفوع",
	PaymentFailed: "فشل الدفع",
}

// backendOrderStatuses maps lower-cased backend status text to the closed
// enum. Anything missing from the table is Pending.
var backendOrderStatuses = map[string]OrderStatus{
	"completed":         OrderDelivered,
	"delivered":         OrderDelivered,
	"shipped":           OrderShipped,
	"processing":        OrderProcessing,
	"under preparation": OrderProcessing,
	"cancelled":         OrderCancelled,
	// expired orders are presented as cancelled
	"expired": OrderCancelled,
	"pending": OrderPending,
}

func (s OrderStatus) String() string {
	if name, ok := orderStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("OrderStatus(%d)", int(s))
}

// Label is the Arabic display text used by the dashboard.
func (s OrderStatus) Label() string {
	return orderStatusLabels[s]
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusNames[s]
	return ok
}

func (s PaymentStatus) String() string {
	if name, ok := paymentStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PaymentStatus(%d)", int(s))
}

func (s PaymentStatus) Label() string {
	return paymentStatusLabels[s]
}

func (s PaymentStatus) Valid() bool {
	_, ok := paymentStatusNames[s]
	return ok
}

// ParseOrderStatus accepts a wire ordinal and rejects anything outside the
// closed range.
func ParseOrderStatus(value int) (OrderStatus, error) {
	status := OrderStatus(value)
	if !status.Valid() {
		return OrderPending, fmt.Errorf("unknown order status %d", value)
	}
	return status, nil
}

func ParsePaymentStatus(value int) (PaymentStatus, error) {
	status := PaymentStatus(value)
	if !status.Valid() {
		return PaymentUnpaid, fmt.Errorf("unknown payment status %d", value)
	}
	return status, nil
}

// OrderStatusFromBackend resolves the backend's free-text status.
func OrderStatusFromBackend(text string) OrderStatus {
	if status, ok := backendOrderStatuses[strings.ToLower(text)]; ok {
		return status
	}
	return OrderPending
}

// AllOrderStatuses lists the statuses in ordinal order, for filter pickers.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}
}
