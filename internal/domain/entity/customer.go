package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer is an account whose membership tier and credit feed the discount stack.
type Customer struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	StoreID        uuid.UUID           `gorm:"type:uuid;not null;index" json:"store_id"`
	Name           string              `gorm:"size:255;not null" json:"name"`
	Email          *string             `gorm:"size:255" json:"email,omitempty"`
	Phone          *string             `gorm:"size:50" json:"phone,omitempty"`
	Address        *string             `gorm:"type:text" json:"address,omitempty"`
	MembershipTier enum.MembershipTier `gorm:"size:20;default:'normal'" json:"membership_tier"`
	LoyaltyPoints  int64               `gorm:"default:0" json:"loyalty_points"`
	AccountBalance decimal.Decimal     `gorm:"type:decimal(15,2);default:0" json:"account_balance"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.MembershipTier == "" {
		c.MembershipTier = enum.MembershipTierNormal
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
