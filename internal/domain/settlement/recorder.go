package settlement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recorder stamps payment transactions and assembles receipt data for them.
type Recorder struct {
	now   func() time.Time
	newID func() uuid.UUID
}

// NewRecorder uses now for timestamps; nil means time.Now.
func NewRecorder(now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{now: now, newID: uuid.New}
}

// Record creates the transaction for a payment that already passed validation.
func (r *Recorder) Record(orderID uuid.UUID, amount decimal.Decimal, method, notes string) Transaction {
	return Transaction{
		ID:        r.newID(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Notes:     notes,
		CreatedAt: r.now().UTC(),
	}
}

// PaymentReceipt is what a payment receipt needs: the payment and the
// acknowledged state of the order after it.
type PaymentReceipt struct {
	Transaction Transaction     `json:"transaction"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	PaidBefore  decimal.Decimal `json:"paid_before"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	AmountDue   decimal.Decimal `json:"amount_due"`
	Status      string          `json:"payment_status"`
}

// Receipt assembles receipt data from a transaction and the record acknowledged after it.
func (r *Recorder) Receipt(tx Transaction, after Record) PaymentReceipt {
	before := after.AmountPaid.Sub(tx.Amount)
	if before.IsNegative() {
		before = decimal.Zero
	}
	return PaymentReceipt{
		Transaction: tx,
		GrandTotal:  after.GrandTotal.Round(2),
		PaidBefore:  before.Round(2),
		AmountPaid:  after.AmountPaid.Round(2),
		AmountDue:   after.AmountDue.Round(2),
		Status:      after.PaymentStatus.String(),
	}
}
