package pricing

import (
	"time"

	"github.com/google/uuid"
)

// Draft is the in-progress order of one session: its lines, its discount
// inputs and the store, supplier and customer it was started for.
// It is passed explicitly to whoever needs it; nothing here is global.
type Draft struct {
	ID         uuid.UUID       `json:"id"`
	SessionID  string          `json:"session_id"`
	StoreID    uuid.UUID       `json:"store_id"`
	SupplierID *uuid.UUID      `json:"supplier_id,omitempty"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Items      LineItemStore   `json:"items"`
	Discount   DiscountContext `json:"discount"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewDraft starts an empty draft.
func NewDraft(sessionID string, storeID uuid.UUID, now time.Time) *Draft {
	return &Draft{
		ID:        uuid.New(),
		SessionID: sessionID,
		StoreID:   storeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Quote prices the draft as it stands, clamping redemptions to the customer's credit.
func (d *Draft) Quote(r *Resolver) Breakdown {
	return r.ResolveTotals(d.Items.Items(), d.Discount.Clamp())
}

// Touch bumps UpdatedAt after a mutation.
func (d *Draft) Touch(now time.Time) {
	d.UpdatedAt = now
}
