package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentTransaction is one payment applied to a purchase. Rows are only ever
// inserted. Sequence numbers the payments of one purchase from 1 and orders
// replays even when two rows share a timestamp.
type PaymentTransaction struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_payment_sequence" json:"purchase_id"`
	Sequence   int             `gorm:"not null;uniqueIndex:idx_payment_sequence" json:"sequence"`
	StoreID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method     string          `gorm:"size:100;not null" json:"method"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy uuid.UUID       `gorm:"type:uuid" json:"recorded_by"`
	CreatedAt  time.Time       `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate generates a UUID when the caller did not assign one
func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentTransaction model
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
