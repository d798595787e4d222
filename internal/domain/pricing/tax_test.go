package pricing

import (
	"math/rand"
	"testing"

	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rate(s string) *decimal.Decimal {
	r := dec(s)
	return &r
}

func newItem(qty, price string, taxRate *decimal.Decimal, included bool) LineItem {
	return LineItem{
		Kind:        enum.LineItemKindNew,
		Name:        "item",
		Quantity:    dec(qty),
		UnitPrice:   dec(price),
		TaxRate:     taxRate,
		TaxIncluded: included,
	}
}

func TestResolveTaxIncludedScenario(t *testing.T) {
	res := ResolveTax(newItem("2", "100", rate("15"), true))

	assert.True(t, res.ItemTotal.Equal(dec("200")))
	assert.Equal(t, "26.09", res.TaxAmount.StringFixed(2))
	assert.Equal(t, "173.91", res.ExclusiveAmount.StringFixed(2))
}

func TestResolveTaxWithoutRate(t *testing.T) {
	for _, r := range []*decimal.Decimal{nil, rate("0")} {
		res := ResolveTax(newItem("3", "12.50", r, true))
		assert.True(t, res.TaxAmount.IsZero())
		assert.True(t, res.ExclusiveAmount.Equal(dec("37.5")))
	}
}

func TestResolveTaxExcluded(t *testing.T) {
	res := ResolveTax(newItem("4", "25", rate("16"), false))

	assert.True(t, res.ExclusiveAmount.Equal(dec("100")))
	assert.True(t, res.TaxAmount.Equal(dec("16")))
}

func TestResolveTaxIncludedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		qty := decimal.NewFromInt(rng.Int63n(50))
		price := decimal.New(rng.Int63n(1_000_000), -2)
		r := decimal.NewFromInt(rng.Int63n(101))
		item := LineItem{Kind: enum.LineItemKindNew, Name: "x", Quantity: qty, UnitPrice: price, TaxRate: &r, TaxIncluded: true}

		res := ResolveTax(item)
		itemTotal := qty.Mul(price)

		assert.True(t, res.TaxAmount.Add(res.ExclusiveAmount).Equal(itemTotal), "round trip for %s at %s%%", itemTotal, r)
		if !r.IsZero() {
			want := itemTotal.Div(one.Add(r.Div(hundred)))
			assert.True(t, res.ExclusiveAmount.Equal(want), "exclusive for %s at %s%%", itemTotal, r)
		}
	}
}

func TestResolveTaxExcludedProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		qty := decimal.NewFromInt(rng.Int63n(50))
		price := decimal.New(rng.Int63n(1_000_000), -2)
		r := decimal.NewFromInt(rng.Int63n(101))
		item := LineItem{Kind: enum.LineItemKindNew, Name: "x", Quantity: qty, UnitPrice: price, TaxRate: &r}

		res := ResolveTax(item)
		itemTotal := qty.Mul(price)

		assert.True(t, res.ExclusiveAmount.Equal(itemTotal))
		assert.True(t, res.TaxAmount.Equal(itemTotal.Mul(r).Div(hundred)))
	}
}

func TestSanitizeLineItem(t *testing.T) {
	item := SanitizeLineItem(newItem("-1", "-5", rate("150"), false))

	assert.True(t, item.Quantity.IsZero())
	assert.True(t, item.UnitPrice.IsZero())
	assert.True(t, item.TaxRate.Equal(hundred))

	neg := SanitizeLineItem(newItem("1", "1", rate("-3"), false))
	assert.True(t, neg.TaxRate.IsZero())
}
