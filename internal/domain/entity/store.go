package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a branch that owns purchases, customers, suppliers and stock.
type Store struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	Address   string         `gorm:"type:text" json:"address,omitempty"`
	Phone     string         `gorm:"size:50" json:"phone,omitempty"`
	TaxID     string         `gorm:"size:50;column:tax_id" json:"tax_id,omitempty"`
	Settings  StoreSettings  `gorm:"type:jsonb;serializer:json" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// StoreSettings holds per-store overrides of the service defaults.
type StoreSettings struct {
	// PaymentMethods replaces the configured methods when non-empty.
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

// BeforeCreate generates a UUID before creating a new store
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Store model
func (Store) TableName() string {
	return "stores"
}

// ActivePaymentMethods returns the store's methods, or fallback when it has none.
func (s *Store) ActivePaymentMethods(fallback []string) []string {
	if s == nil || len(s.Settings.PaymentMethods) == 0 {
		return fallback
	}
	return s.Settings.PaymentMethods
}
