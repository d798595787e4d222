package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry that purchase lines of kind "existing" point at.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"store_id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Code        string          `gorm:"size:100;not null;index" json:"code"`
	Unit        string          `gorm:"size:50" json:"unit,omitempty"`
	Quantity    decimal.Decimal `gorm:"type:decimal(15,3);default:0" json:"quantity"`
	BuyingPrice decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"buying_price"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"tax_rate"`
	TaxType     enum.TaxType    `gorm:"default:0" json:"tax_type"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
