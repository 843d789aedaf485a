package orders

import "strings"

// paymentRule inspects one payment signal. ok is false when the signal is
// absent or inconclusive and the next rule should be tried.
type paymentRule func(raw RawOrder) (status PaymentStatus, ok bool)

// paymentRules is evaluated top to bottom; the first conclusive rule wins.
var paymentRules = []paymentRule{
	transactionPaymentRule,
	centsPaymentRule,
	paymentsArrayRule,
}

var paidPaymentStatuses = map[string]bool{
	"success":   true,
	"paid":      true,
	"completed": true,
}

// DerivePaymentStatus resolves the payment status from the transaction
// object, the cents totals and the payments history, in that order.
func DerivePaymentStatus(raw RawOrder) PaymentStatus {
	for _, rule := range paymentRules {
		if status, ok := rule(raw); ok {
			return status
		}
	}
	return PaymentUnpaid
}

func transactionPaymentRule(raw RawOrder) (PaymentStatus, bool) {
	txn, ok := raw.object("paymobTransactionObj")
	if !ok {
		return PaymentUnpaid, false
	}
	success, hasSuccess := boolValue(txn["success"])
	pending, hasPending := boolValue(txn["pending"])

	switch {
	case hasSuccess && success:
		return PaymentPaid, true
	case hasSuccess && !success && hasPending && !pending:
		return PaymentFailed, true
	case hasPending && pending:
		return PaymentUnpaid, true
	}
	return PaymentUnpaid, false
}

func centsPaymentRule(raw RawOrder) (PaymentStatus, bool) {
	if _, ok := raw.get("amount_cents"); !ok {
		return PaymentUnpaid, false
	}
	if _, ok := raw.get("paid_amount_cents"); !ok {
		return PaymentUnpaid, false
	}
	amount, ok := raw.Decimal("amount_cents")
	if !ok {
		return PaymentUnpaid, false
	}
	paid, ok := raw.Decimal("paid_amount_cents")
	if !ok {
		return PaymentUnpaid, false
	}
	if amount.IsPositive() && paid.GreaterThanOrEqual(amount) {
		return PaymentPaid, true
	}
	return PaymentUnpaid, false
}

func paymentsArrayRule(raw RawOrder) (PaymentStatus, bool) {
	payments, ok := raw.array("payments")
	if !ok || len(payments) == 0 {
		return PaymentUnpaid, false
	}

	statuses := make([]string, 0, len(payments))
	for _, p := range payments {
		var status string
		if m, ok := p.(map[string]any); ok {
			status = strings.ToLower(stringValue(m["status"]))
		}
		statuses = append(statuses, status)
	}

	for _, s := range statuses {
		if paidPaymentStatuses[s] {
			return PaymentPaid, true
		}
	}
	for _, s := range statuses {
		if s == "pending" {
			return PaymentUnpaid, true
		}
	}
	for _, s := range statuses {
		if s != "failed" {
			return PaymentUnpaid, false
		}
	}
	return PaymentFailed, true
}
