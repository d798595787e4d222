package pricing

import "github.com/shopspring/decimal"

// TaxResult is the tax split of a single line.
type TaxResult struct {
	ItemTotal       decimal.Decimal `json:"item_total"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ExclusiveAmount decimal.Decimal `json:"exclusive_amount"`
}

// ResolveTax splits a line's total into tax and the tax-exclusive value.
// A tax-included price has the tax extracted from it; otherwise tax is added on top.
// The item must already be sanitized.
func ResolveTax(item LineItem) TaxResult {
	itemTotal := item.Quantity.Mul(item.UnitPrice)
	if item.TaxRate == nil || item.TaxRate.IsZero() {
		return TaxResult{ItemTotal: itemTotal, TaxAmount: decimal.Zero, ExclusiveAmount: itemTotal}
	}

	rate := item.TaxRate.Div(hundred)
	if item.TaxIncluded {
		exclusive := itemTotal.Div(one.Add(rate))
		tax := itemTotal.Sub(exclusive)
		return TaxResult{ItemTotal: itemTotal, TaxAmount: tax, ExclusiveAmount: itemTotal.Sub(tax)}
	}
	return TaxResult{ItemTotal: itemTotal, TaxAmount: itemTotal.Mul(rate), ExclusiveAmount: itemTotal}
}
