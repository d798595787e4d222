package pricing

import (
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CustomerCredit is what the selected customer brings to the discount stack.
type CustomerCredit struct {
	Tier             enum.MembershipTier `json:"tier"`
	AvailablePoints  int64               `json:"available_points"`
	AvailableBalance decimal.Decimal     `json:"available_balance"`
}

// DiscountContext collects every discount input of a draft order.
type DiscountContext struct {
	ManualPercent    decimal.Decimal `json:"manual_percent"`
	Customer         *CustomerCredit `json:"customer,omitempty"`
	RedeemPoints     bool            `json:"redeem_points"`
	PointsRequested  int64           `json:"points_requested"`
	RedeemBalance    bool            `json:"redeem_balance"`
	BalanceRequested decimal.Decimal `json:"balance_requested"`
}

// MembershipPercent is 0 when no customer is attached.
func (c DiscountContext) MembershipPercent() decimal.Decimal {
	if c.Customer == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(c.Customer.Tier.DiscountPercent())
}

// Validate rejects contexts the resolver must not be given.
func (c DiscountContext) Validate() error {
	var fieldErrors []apperror.FieldError
	if c.ManualPercent.IsNegative() || c.ManualPercent.GreaterThan(hundred) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "manual_percent", Message: "manual discount must be between 0 and 100"})
	}
	if c.PointsRequested < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "points_requested", Message: "points requested cannot be negative"})
	}
	if c.BalanceRequested.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "balance_requested", Message: "balance requested cannot be negative"})
	}
	if (c.RedeemPoints || c.RedeemBalance) && c.Customer == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer", Message: "redemption requires a customer"})
	}
	if c.Customer != nil {
		if !c.Customer.Tier.IsValid() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer.tier", Message: "unknown membership tier"})
		}
		if c.Customer.AvailablePoints < 0 || c.Customer.AvailableBalance.IsNegative() {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "customer", Message: "customer credit cannot be negative"})
		}
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// Clamp caps the redemption requests at what the customer actually holds.
// The resolver only caps against the order total, so callers run this first.
func (c DiscountContext) Clamp() DiscountContext {
	if c.Customer == nil {
		c.RedeemPoints, c.PointsRequested = false, 0
		c.RedeemBalance, c.BalanceRequested = false, decimal.Zero
		return c
	}
	if c.PointsRequested > c.Customer.AvailablePoints {
		c.PointsRequested = c.Customer.AvailablePoints
	}
	if c.PointsRequested < 0 {
		c.PointsRequested = 0
	}
	c.BalanceRequested = decimal.Min(c.BalanceRequested, c.Customer.AvailableBalance)
	if c.BalanceRequested.IsNegative() {
		c.BalanceRequested = decimal.Zero
	}
	return c
}
