package settlement

import (
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Settler holds the settlement transition rules. It never touches storage:
// every method takes a record by value and returns the next one.
type Settler struct {
	methods  PaymentMethods
	recorder *Recorder
}

// NewSettler accepts payments only through methods.
func NewSettler(methods PaymentMethods, recorder *Recorder) *Settler {
	if recorder == nil {
		recorder = NewRecorder(nil)
	}
	return &Settler{methods: methods, recorder: recorder}
}

// Methods exposes the active payment methods.
func (s *Settler) Methods() PaymentMethods {
	return s.methods
}

// Recorder exposes the transaction recorder.
func (s *Settler) Recorder() *Recorder {
	return s.recorder
}

// ApplyPartialPayment pays amount off the record's due.
// On any error the returned record is the input unchanged.
func (s *Settler) ApplyPartialPayment(rec Record, amount decimal.Decimal, method, notes string) (Record, Transaction, error) {
	canonical, err := s.validatePayment(rec, amount, method)
	if err != nil {
		return rec, Transaction{}, err
	}

	next := rec
	next.AmountPaid = rec.AmountPaid.Add(amount)
	next.AmountDue = rec.AmountDue.Sub(amount)
	if !next.AmountDue.IsPositive() {
		next.AmountDue = decimal.Zero
		next.PaymentStatus = enum.PaymentStatusPaid
	} else {
		next.PaymentStatus = enum.PaymentStatusPartial
	}
	return next, s.recorder.Record(rec.OrderID, amount, canonical, notes), nil
}

// ClearFullDue pays whatever is due right now. Clearing a record with
// nothing due is a validation error.
func (s *Settler) ClearFullDue(rec Record, method, notes string) (Record, Transaction, error) {
	next, tx, err := s.ApplyPartialPayment(rec, rec.AmountDue, method, notes)
	if err != nil {
		return rec, Transaction{}, err
	}
	next.AmountPaid = next.GrandTotal
	return next, tx, nil
}

// CheckDelete allows deletion only of pending, not yet received records.
func (s *Settler) CheckDelete(rec Record) error {
	if !rec.Deletable() {
		return apperror.NewPolicyViolation(
			"purchase with payment status " + rec.PaymentStatus.String() +
				" and fulfillment status " + rec.FulfillmentStatus.String() + " cannot be deleted")
	}
	return nil
}

func (s *Settler) validatePayment(rec Record, amount decimal.Decimal, method string) (string, error) {
	if rec.FulfillmentStatus == enum.FulfillmentStatusCancelled {
		return "", apperror.NewPolicyViolation("cancelled purchases cannot take payments")
	}
	if !amount.IsPositive() {
		return "", apperror.NewFieldValidationError("amount", "amount must be greater than zero")
	}
	if !amount.Round(2).Equal(amount) {
		return "", apperror.NewFieldValidationError("amount", "amount cannot have more than two decimal places")
	}
	if amount.GreaterThan(rec.AmountDue) {
		return "", apperror.NewFieldValidationError("amount",
			"amount "+amount.StringFixed(2)+" exceeds amount due "+rec.AmountDue.StringFixed(2))
	}
	canonical, ok := s.methods.Resolve(method)
	if !ok {
		return "", apperror.NewFieldValidationError("method", "payment method "+method+" is not active")
	}
	return canonical, nil
}
