package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase is a persisted purchase order together with its settlement figures.
type Purchase struct {
	ID                uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	StoreID           uuid.UUID              `gorm:"type:uuid;not null;index" json:"store_id"`
	SupplierID        *uuid.UUID             `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	CustomerID        *uuid.UUID             `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	CreatedByID       uuid.UUID              `gorm:"type:uuid;column:created_by" json:"created_by"`
	Date              time.Time              `gorm:"not null" json:"date"`
	PurchaseNo        string                 `gorm:"size:100;unique;not null" json:"purchase_no"`
	PaymentStatus     enum.PaymentStatus     `gorm:"default:0;index" json:"payment_status"`
	FulfillmentStatus enum.FulfillmentStatus `gorm:"default:0;index" json:"fulfillment_status"`

	SubtotalExclusiveOfTax   decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"subtotal_exclusive_of_tax"`
	TotalTax                 decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"total_tax"`
	ManualDiscountPercent    decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"manual_discount_percent"`
	ManualDiscountAmount     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"manual_discount_amount"`
	MembershipDiscountAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"membership_discount_amount"`
	PointsRedeemed           int64           `gorm:"default:0" json:"points_redeemed"`
	PointsDiscountAmount     decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"points_discount_amount"`
	BalanceDiscountAmount    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"balance_discount_amount"`
	GrandTotal               decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"grand_total"`
	AmountPaid               decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	AmountDue                decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_due"`

	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Supplier     *Supplier            `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Customer     *Customer            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items        []PurchaseItem       `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
	Transactions []PaymentTransaction `gorm:"foreignKey:PurchaseID" json:"transactions,omitempty"`
}

// BeforeCreate generates a UUID before creating a new purchase
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Purchase model
func (Purchase) TableName() string {
	return "purchases"
}

// PurchaseItem is a line of a purchase order as it was priced at submission.
type PurchaseItem struct {
	ID               uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID        *uuid.UUID          `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Kind             enum.LineItemKind   `gorm:"size:20;not null" json:"kind"`
	Name             string              `gorm:"size:255;not null" json:"name"`
	Unit             string              `gorm:"size:50" json:"unit,omitempty"`
	Quantity         decimal.Decimal     `gorm:"type:decimal(15,3);not null" json:"quantity"`
	ReceivedQuantity decimal.Decimal     `gorm:"type:decimal(15,3);default:0" json:"received_quantity"`
	UnitPrice        decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	TaxRate          decimal.NullDecimal `gorm:"type:decimal(5,2)" json:"tax_rate"`
	TaxIncluded      bool                `gorm:"default:false" json:"tax_included"`
	TaxAmount        decimal.Decimal     `gorm:"type:decimal(15,2);default:0" json:"tax_amount"`
	ExclusiveAmount  decimal.Decimal     `gorm:"type:decimal(15,2);default:0" json:"exclusive_amount"`
	Total            decimal.Decimal     `gorm:"type:decimal(15,2);default:0" json:"total"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new purchase item
func (pi *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == uuid.Nil {
		pi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseItem model
func (PurchaseItem) TableName() string {
	return "purchase_items"
}

// Outstanding is what is still to be received on the line.
func (pi *PurchaseItem) Outstanding() decimal.Decimal {
	left := pi.Quantity.Sub(pi.ReceivedQuantity)
	if left.IsNegative() {
		return decimal.Zero
	}
	return left
}
