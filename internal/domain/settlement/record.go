package settlement

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Tolerance is how far paid + due may drift from the grand total.
var Tolerance = decimal.New(1, -2)

// Record is the settlement view of one persisted purchase order.
type Record struct {
	OrderID           uuid.UUID              `json:"order_id"`
	GrandTotal        decimal.Decimal        `json:"grand_total"`
	AmountPaid        decimal.Decimal        `json:"amount_paid"`
	AmountDue         decimal.Decimal        `json:"amount_due"`
	PaymentStatus     enum.PaymentStatus     `json:"payment_status"`
	FulfillmentStatus enum.FulfillmentStatus `json:"fulfillment_status"`
}

// NewRecord opens a record for a freshly created order, optionally with a deposit.
func NewRecord(orderID uuid.UUID, grandTotal, deposit decimal.Decimal) (Record, error) {
	if grandTotal.IsNegative() {
		return Record{}, apperror.NewFieldValidationError("grand_total", "grand total cannot be negative")
	}
	if deposit.IsNegative() {
		return Record{}, apperror.NewFieldValidationError("deposit", "deposit cannot be negative")
	}
	if deposit.GreaterThan(grandTotal) {
		return Record{}, apperror.NewFieldValidationError("deposit", "deposit cannot exceed the grand total")
	}
	due := grandTotal.Sub(deposit)
	return Record{
		OrderID:           orderID,
		GrandTotal:        grandTotal,
		AmountPaid:        deposit,
		AmountDue:         due,
		PaymentStatus:     DerivePaymentStatus(deposit, due),
		FulfillmentStatus: enum.FulfillmentStatusOrdered,
	}, nil
}

// DerivePaymentStatus is paid once nothing is due, partial once anything is paid.
func DerivePaymentStatus(paid, due decimal.Decimal) enum.PaymentStatus {
	switch {
	case !due.IsPositive():
		return enum.PaymentStatusPaid
	case paid.IsPositive():
		return enum.PaymentStatusPartial
	default:
		return enum.PaymentStatusPending
	}
}

// Validate checks the paid/due invariant.
func (r Record) Validate() error {
	if r.GrandTotal.IsNegative() || r.AmountPaid.IsNegative() || r.AmountDue.IsNegative() {
		return fmt.Errorf("record %s has negative amounts", r.OrderID)
	}
	drift := r.AmountPaid.Add(r.AmountDue).Sub(r.GrandTotal).Abs()
	if drift.GreaterThan(Tolerance) {
		return fmt.Errorf("record %s: paid %s + due %s does not match total %s",
			r.OrderID, r.AmountPaid.StringFixed(2), r.AmountDue.StringFixed(2), r.GrandTotal.StringFixed(2))
	}
	return nil
}

// Deletable reports whether the record has produced no side effects yet.
func (r Record) Deletable() bool {
	return r.PaymentStatus == enum.PaymentStatusPending && r.FulfillmentStatus == enum.FulfillmentStatusOrdered
}
