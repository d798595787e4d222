package settlement

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one payment applied to an order. It is never changed once created.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentMethods is the set of methods a store accepts. Lookups ignore case.
type PaymentMethods struct {
	canonical map[string]string
	ordered   []string
}

// NewPaymentMethods builds the set, skipping blanks and duplicates.
func NewPaymentMethods(names ...string) PaymentMethods {
	m := PaymentMethods{canonical: make(map[string]string, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := m.canonical[key]; ok {
			continue
		}
		m.canonical[key] = name
		m.ordered = append(m.ordered, name)
	}
	return m
}

// Resolve returns the configured spelling of method if it is active.
func (m PaymentMethods) Resolve(method string) (string, bool) {
	name, ok := m.canonical[strings.ToLower(strings.TrimSpace(method))]
	return name, ok
}

// Names lists the methods in configuration order.
func (m PaymentMethods) Names() []string {
	out := make([]string, len(m.ordered))
	copy(out, m.ordered)
	return out
}
