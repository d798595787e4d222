package pricing

import "github.com/shopspring/decimal"

// DefaultPointValueRate is the currency value of one loyalty point when none is configured.
var DefaultPointValueRate = decimal.RequireFromString("0.01")

// Breakdown is the full result of pricing a set of lines under a discount context.
type Breakdown struct {
	SubtotalExclusiveOfTax   decimal.Decimal `json:"subtotal_exclusive_of_tax"`
	TotalTax                 decimal.Decimal `json:"total_tax"`
	ManualDiscountAmount     decimal.Decimal `json:"manual_discount_amount"`
	MembershipDiscountAmount decimal.Decimal `json:"membership_discount_amount"`
	PointsDiscountAmount     decimal.Decimal `json:"points_discount_amount"`
	BalanceDiscountAmount    decimal.Decimal `json:"balance_discount_amount"`
	GrandTotal               decimal.Decimal `json:"grand_total"`
}

// BaseTotal is the total before points and balance are redeemed.
func (b Breakdown) BaseTotal() decimal.Decimal {
	return b.SubtotalExclusiveOfTax.Add(b.TotalTax).Sub(b.ManualDiscountAmount).Sub(b.MembershipDiscountAmount)
}

// Reconciles reports whether GrandTotal agrees with its components within a cent.
func (b Breakdown) Reconciles() bool {
	want := decimal.Max(decimal.Zero, b.BaseTotal().Sub(b.PointsDiscountAmount).Sub(b.BalanceDiscountAmount))
	return want.Sub(b.GrandTotal).Abs().LessThanOrEqual(cent)
}

// Rounded rounds every component to cents and derives the grand total
// from the rounded parts, so the result always reconciles.
func (b Breakdown) Rounded() Breakdown {
	r := Breakdown{
		SubtotalExclusiveOfTax:   b.SubtotalExclusiveOfTax.Round(2),
		TotalTax:                 b.TotalTax.Round(2),
		ManualDiscountAmount:     b.ManualDiscountAmount.Round(2),
		MembershipDiscountAmount: b.MembershipDiscountAmount.Round(2),
		PointsDiscountAmount:     b.PointsDiscountAmount.Round(2),
		BalanceDiscountAmount:    b.BalanceDiscountAmount.Round(2),
	}
	r.GrandTotal = decimal.Max(decimal.Zero, r.BaseTotal().Sub(r.PointsDiscountAmount).Sub(r.BalanceDiscountAmount))
	return r
}

var cent = decimal.New(1, -2)

// Resolver prices line items. It holds only configuration and is safe for concurrent use.
type Resolver struct {
	pointValueRate decimal.Decimal
}

// NewResolver returns a resolver converting loyalty points at pointValueRate.
// A non-positive rate falls back to DefaultPointValueRate.
func NewResolver(pointValueRate decimal.Decimal) *Resolver {
	if !pointValueRate.IsPositive() {
		pointValueRate = DefaultPointValueRate
	}
	return &Resolver{pointValueRate: pointValueRate}
}

// PointValueRate is the configured currency value of one point.
func (r *Resolver) PointValueRate() decimal.Decimal {
	return r.pointValueRate
}

// ResolveTotals recomputes the whole breakdown from scratch.
// Manual and membership discounts are both taken off the same tax-exclusive
// subtotal; points and then balance are capped at what is left of the total.
func (r *Resolver) ResolveTotals(items []LineItem, ctx DiscountContext) Breakdown {
	var b Breakdown
	if len(items) == 0 {
		return Breakdown{
			SubtotalExclusiveOfTax:   decimal.Zero,
			TotalTax:                 decimal.Zero,
			ManualDiscountAmount:     decimal.Zero,
			MembershipDiscountAmount: decimal.Zero,
			PointsDiscountAmount:     decimal.Zero,
			BalanceDiscountAmount:    decimal.Zero,
			GrandTotal:               decimal.Zero,
		}
	}

	subtotal, totalTax := decimal.Zero, decimal.Zero
	for _, item := range items {
		tax := ResolveTax(SanitizeLineItem(item))
		subtotal = subtotal.Add(tax.ExclusiveAmount)
		totalTax = totalTax.Add(tax.TaxAmount)
	}
	b.SubtotalExclusiveOfTax = subtotal
	b.TotalTax = totalTax
	b.ManualDiscountAmount = subtotal.Mul(ctx.ManualPercent).Div(hundred)
	b.MembershipDiscountAmount = subtotal.Mul(ctx.MembershipPercent()).Div(hundred)

	base := b.BaseTotal()
	b.PointsDiscountAmount = decimal.Zero
	if ctx.RedeemPoints {
		requested := decimal.NewFromInt(ctx.PointsRequested).Mul(r.pointValueRate)
		b.PointsDiscountAmount = nonNegative(decimal.Min(requested, base))
	}
	b.BalanceDiscountAmount = decimal.Zero
	if ctx.RedeemBalance {
		b.BalanceDiscountAmount = nonNegative(decimal.Min(ctx.BalanceRequested, base.Sub(b.PointsDiscountAmount)))
	}
	b.GrandTotal = nonNegative(base.Sub(b.PointsDiscountAmount).Sub(b.BalanceDiscountAmount))
	return b
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// PointsFor converts a points discount back into the number of points it consumes.
// Partial points round up.
func (r *Resolver) PointsFor(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}
	return amount.Div(r.pointValueRate).Ceil().IntPart()
}
