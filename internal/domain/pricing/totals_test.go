package pricing

import (
	"math/rand"
	"testing"

	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTotalsEmpty(t *testing.T) {
	b := NewResolver(DefaultPointValueRate).ResolveTotals(nil, DiscountContext{ManualPercent: dec("10")})

	for _, v := range []decimal.Decimal{
		b.SubtotalExclusiveOfTax, b.TotalTax, b.ManualDiscountAmount, b.MembershipDiscountAmount,
		b.PointsDiscountAmount, b.BalanceDiscountAmount, b.GrandTotal,
	} {
		assert.True(t, v.IsZero())
	}
}

func TestResolveTotalsManualAndMembershipShareBase(t *testing.T) {
	items := []LineItem{newItem("10", "100", rate("16"), false)}
	ctx := DiscountContext{
		ManualPercent: dec("10"),
		Customer:      &CustomerCredit{Tier: enum.MembershipTierSilver},
	}

	b := NewResolver(DefaultPointValueRate).ResolveTotals(items, ctx)

	assert.True(t, b.SubtotalExclusiveOfTax.Equal(dec("1000")))
	assert.True(t, b.TotalTax.Equal(dec("160")))
	assert.True(t, b.ManualDiscountAmount.Equal(dec("100")))
	assert.True(t, b.MembershipDiscountAmount.Equal(dec("50")))
	assert.True(t, b.BaseTotal().Equal(dec("1010")))
	assert.True(t, b.GrandTotal.Equal(dec("1010")))
	assert.True(t, b.Reconciles())
}

func TestResolveTotalsPointsThenBalance(t *testing.T) {
	items := []LineItem{newItem("1", "100", nil, false)}
	ctx := DiscountContext{
		Customer:         &CustomerCredit{Tier: enum.MembershipTierNormal, AvailablePoints: 5000, AvailableBalance: dec("500")},
		RedeemPoints:     true,
		PointsRequested:  3000,
		RedeemBalance:    true,
		BalanceRequested: dec("500"),
	}

	b := NewResolver(dec("0.01")).ResolveTotals(items, ctx)

	assert.True(t, b.PointsDiscountAmount.Equal(dec("30")))
	assert.True(t, b.BalanceDiscountAmount.Equal(dec("70")))
	assert.True(t, b.GrandTotal.IsZero())
}

func TestResolveTotalsPointsCappedAtBase(t *testing.T) {
	items := []LineItem{newItem("1", "20", nil, false)}
	ctx := DiscountContext{
		Customer:        &CustomerCredit{Tier: enum.MembershipTierGold, AvailablePoints: 1_000_000},
		RedeemPoints:    true,
		PointsRequested: 1_000_000,
	}

	b := NewResolver(dec("0.01")).ResolveTotals(items, ctx)

	assert.True(t, b.MembershipDiscountAmount.Equal(dec("1.4")))
	assert.True(t, b.PointsDiscountAmount.Equal(dec("18.6")))
	assert.True(t, b.GrandTotal.IsZero())
}

func TestResolveTotalsInactiveRedemptionIgnored(t *testing.T) {
	items := []LineItem{newItem("2", "50", nil, false)}
	ctx := DiscountContext{
		Customer:         &CustomerCredit{AvailablePoints: 100, AvailableBalance: dec("10")},
		PointsRequested:  100,
		BalanceRequested: dec("10"),
	}

	b := NewResolver(DefaultPointValueRate).ResolveTotals(items, ctx)

	assert.True(t, b.PointsDiscountAmount.IsZero())
	assert.True(t, b.BalanceDiscountAmount.IsZero())
	assert.True(t, b.GrandTotal.Equal(dec("100")))
}

func TestResolveTotalsNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	tiers := []enum.MembershipTier{enum.MembershipTierNormal, enum.MembershipTierSilver, enum.MembershipTierGold, enum.MembershipTierPlatinum}
	resolver := NewResolver(dec("0.05"))

	for i := 0; i < 1000; i++ {
		var items []LineItem
		for n := rng.Intn(5); n > 0; n-- {
			r := decimal.NewFromInt(rng.Int63n(101))
			items = append(items, LineItem{
				Kind:        enum.LineItemKindNew,
				Name:        "x",
				Quantity:    decimal.NewFromInt(rng.Int63n(20)),
				UnitPrice:   decimal.New(rng.Int63n(100_000), -2),
				TaxRate:     &r,
				TaxIncluded: rng.Intn(2) == 0,
			})
		}
		ctx := DiscountContext{
			ManualPercent:    decimal.NewFromInt(rng.Int63n(101)),
			Customer:         &CustomerCredit{Tier: tiers[rng.Intn(len(tiers))]},
			RedeemPoints:     rng.Intn(2) == 0,
			PointsRequested:  rng.Int63n(100_000),
			RedeemBalance:    rng.Intn(2) == 0,
			BalanceRequested: decimal.New(rng.Int63n(1_000_000), -2),
		}

		b := resolver.ResolveTotals(items, ctx)

		require.False(t, b.GrandTotal.IsNegative(), "grand total %s", b.GrandTotal)
		require.False(t, b.PointsDiscountAmount.IsNegative())
		require.False(t, b.BalanceDiscountAmount.IsNegative())
		require.True(t, b.Reconciles())
		require.True(t, b.Rounded().Reconciles())
	}
}

func TestResolveTotalsIsIdempotent(t *testing.T) {
	items := []LineItem{
		newItem("3", "19.99", rate("16"), true),
		newItem("1.5", "7", rate("8"), false),
	}
	ctx := DiscountContext{
		ManualPercent:    dec("12.5"),
		Customer:         &CustomerCredit{Tier: enum.MembershipTierPlatinum, AvailablePoints: 400, AvailableBalance: dec("3")},
		RedeemPoints:     true,
		PointsRequested:  400,
		RedeemBalance:    true,
		BalanceRequested: dec("3"),
	}
	resolver := NewResolver(DefaultPointValueRate)

	first := resolver.ResolveTotals(items, ctx)
	second := resolver.ResolveTotals(items, ctx)

	assert.Equal(t, first, second)
}

func TestNewResolverFallsBackToDefaultRate(t *testing.T) {
	assert.True(t, NewResolver(decimal.Zero).PointValueRate().Equal(DefaultPointValueRate))
	assert.True(t, NewResolver(dec("0.5")).PointValueRate().Equal(dec("0.5")))
}

func TestPointsFor(t *testing.T) {
	r := NewResolver(dec("0.01"))
	assert.Equal(t, int64(3000), r.PointsFor(dec("30")))
	assert.Equal(t, int64(2), r.PointsFor(dec("0.015")))
	assert.Equal(t, int64(0), r.PointsFor(decimal.Zero))
}

func TestBreakdownRoundedReconciles(t *testing.T) {
	b := NewResolver(DefaultPointValueRate).ResolveTotals(
		[]LineItem{newItem("2", "100", rate("15"), true)},
		DiscountContext{ManualPercent: dec("3.3")},
	)

	rounded := b.Rounded()

	assert.Equal(t, "173.91", rounded.SubtotalExclusiveOfTax.StringFixed(2))
	assert.Equal(t, "26.09", rounded.TotalTax.StringFixed(2))
	assert.Equal(t, "5.74", rounded.ManualDiscountAmount.StringFixed(2))
	assert.Equal(t, "194.26", rounded.GrandTotal.StringFixed(2))
	assert.True(t, rounded.Reconciles())
}
