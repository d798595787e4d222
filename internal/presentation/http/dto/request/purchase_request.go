package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one line of a purchase or draft
type LineItemRequest struct {
	Kind        enum.LineItemKind `json:"kind" binding:"required,oneof=existing new"`
	ProductID   *uuid.UUID        `json:"product_id" binding:"required_if=Kind existing"`
	Name        string            `json:"name" binding:"required_if=Kind new,max=255"`
	Unit        string            `json:"unit" binding:"max=50"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   *decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal  `json:"tax_rate"`
	TaxIncluded *bool             `json:"tax_included"`
}

// DiscountRequest is the discount stack of a purchase or draft
type DiscountRequest struct {
	ManualPercent    decimal.Decimal `json:"manual_percent"`
	CustomerID       *uuid.UUID      `json:"customer_id"`
	RedeemPoints     bool            `json:"redeem_points"`
	PointsRequested  int64           `json:"points_requested" binding:"min=0"`
	RedeemBalance    bool            `json:"redeem_balance"`
	BalanceRequested decimal.Decimal `json:"balance_requested"`
}

// CreatePurchaseRequest represents a purchase creation request
type CreatePurchaseRequest struct {
	SupplierID    *uuid.UUID        `json:"supplier_id"`
	Date          *time.Time        `json:"date"`
	Items         []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount      DiscountRequest   `json:"discount"`
	Deposit       decimal.Decimal   `json:"deposit"`
	DepositMethod string            `json:"deposit_method" binding:"max=50"`
	Notes         string            `json:"notes" binding:"max=1000"`
}

// QuoteRequest prices lines without storing them
type QuoteRequest struct {
	Items    []LineItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount DiscountRequest   `json:"discount"`
}

// ReceiveLineRequest books a received quantity against a purchase item
type ReceiveLineRequest struct {
	ItemID   uuid.UUID       `json:"item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceivePurchaseRequest represents a goods received request
type ReceivePurchaseRequest struct {
	Lines []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// PaymentRequest is a partial payment against a purchase
type PaymentRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"`
	Method string           `json:"method" binding:"required,max=50"`
	Notes  string           `json:"notes" binding:"max=500"`
}

// ClearDueRequest pays whatever is due
type ClearDueRequest struct {
	Method string `json:"method" binding:"required,max=50"`
	Notes  string `json:"notes" binding:"max=500"`
}

// UpdateLineItemRequest changes quantity and/or unit price of a draft line
type UpdateLineItemRequest struct {
	Quantity  *decimal.Decimal `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// DraftDetailsRequest updates supplier and notes of a draft. A nil
// supplier_id leaves it; the zero UUID clears it.
type DraftDetailsRequest struct {
	SupplierID *uuid.UUID `json:"supplier_id"`
	Notes      *string    `json:"notes" binding:"omitempty,max=1000"`
}

// SubmitDraftRequest stores the session's draft as a purchase
type SubmitDraftRequest struct {
	Date          *time.Time      `json:"date"`
	Deposit       decimal.Decimal `json:"deposit"`
	DepositMethod string          `json:"deposit_method" binding:"max=50"`
	Notes         string          `json:"notes" binding:"max=1000"`
}
