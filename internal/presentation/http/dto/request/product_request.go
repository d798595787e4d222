package request

import (
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=2,max=255"`
	Code        string          `json:"code" binding:"omitempty,max=100"`
	Unit        string          `json:"unit" binding:"omitempty,max=50"`
	Quantity    decimal.Decimal `json:"quantity"`
	BuyingPrice decimal.Decimal `json:"buying_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxType     enum.TaxType    `json:"tax_type"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Code        *string          `json:"code" binding:"omitempty,min=1,max=100"`
	Unit        *string          `json:"unit" binding:"omitempty,max=50"`
	BuyingPrice *decimal.Decimal `json:"buying_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate"`
	TaxType     *enum.TaxType    `json:"tax_type"`
}

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name           string              `json:"name" binding:"required,min=2,max=255"`
	Email          *string             `json:"email" binding:"omitempty,email"`
	Phone          *string             `json:"phone" binding:"omitempty,max=50"`
	Address        *string             `json:"address"`
	MembershipTier enum.MembershipTier `json:"membership_tier"`
	LoyaltyPoints  int64               `json:"loyalty_points" binding:"min=0"`
	AccountBalance decimal.Decimal     `json:"account_balance"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name           *string              `json:"name" binding:"omitempty,min=2,max=255"`
	Email          *string              `json:"email" binding:"omitempty,email"`
	Phone          *string              `json:"phone" binding:"omitempty,max=50"`
	Address        *string              `json:"address"`
	MembershipTier *enum.MembershipTier `json:"membership_tier"`
	LoyaltyPoints  *int64               `json:"loyalty_points" binding:"omitempty,min=0"`
	AccountBalance *decimal.Decimal     `json:"account_balance"`
}

// CreateSupplierRequest represents a supplier creation request
type CreateSupplierRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id" binding:"omitempty,max=50"`
}

// UpdateSupplierRequest represents a supplier update request
type UpdateSupplierRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
	TaxID   *string `json:"tax_id" binding:"omitempty,max=50"`
}

// UpdatePaymentMethodsRequest replaces the methods a store accepts
type UpdatePaymentMethodsRequest struct {
	Methods []string `json:"methods" binding:"required,dive,min=1,max=50"`
}
