package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipTierDiscountPercent(t *testing.T) {
	cases := map[MembershipTier]int64{
		MembershipTierNormal:   0,
		MembershipTierSilver:   5,
		MembershipTierGold:     7,
		MembershipTierPlatinum: 10,
		MembershipTier("vip"):  0,
	}
	for tier, want := range cases {
		assert.Equal(t, want, tier.DiscountPercent(), tier.String())
	}
}

func TestMembershipTierUnmarshalRejectsUnknown(t *testing.T) {
	var tier MembershipTier
	require.NoError(t, json.Unmarshal([]byte(`"Gold"`), &tier))
	assert.Equal(t, MembershipTierGold, tier)

	require.Error(t, json.Unmarshal([]byte(`"diamond"`), &tier))
}

func TestPaymentStatusJSON(t *testing.T) {
	data, err := json.Marshal(PaymentStatusPartial)
	require.NoError(t, err)
	assert.JSONEq(t, `"partial"`, string(data))

	var status PaymentStatus
	require.NoError(t, json.Unmarshal([]byte(`"paid"`), &status))
	assert.Equal(t, PaymentStatusPaid, status)

	require.NoError(t, json.Unmarshal([]byte(`1`), &status))
	assert.Equal(t, PaymentStatusPartial, status)
}

func TestFulfillmentStatusParse(t *testing.T) {
	status, ok := ParseFulfillmentStatus("partially_received")
	require.True(t, ok)
	assert.Equal(t, FulfillmentStatusPartiallyReceived, status)
	assert.False(t, status.IsTerminal())
	assert.True(t, FulfillmentStatusCancelled.IsTerminal())

	_, ok = ParseFulfillmentStatus("shipped")
	assert.False(t, ok)
}

func TestTaxTypeIncluded(t *testing.T) {
	assert.True(t, TaxTypeFromIncluded(true).Included())
	assert.False(t, TaxTypeFromIncluded(false).Included())

	var tt TaxType
	require.NoError(t, json.Unmarshal([]byte(`"inclusive"`), &tt))
	assert.Equal(t, TaxTypeInclusive, tt)
}
