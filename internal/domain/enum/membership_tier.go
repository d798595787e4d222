package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// MembershipTier classifies a customer for the membership discount.
type MembershipTier string

const (
	MembershipTierNormal   MembershipTier = "normal"
	MembershipTierSilver   MembershipTier = "silver"
	MembershipTierGold     MembershipTier = "gold"
	MembershipTierPlatinum MembershipTier = "platinum"
)

var membershipPercents = map[MembershipTier]int64{
	MembershipTierNormal:   0,
	MembershipTierSilver:   5,
	MembershipTierGold:     7,
	MembershipTierPlatinum: 10,
}

func (t MembershipTier) String() string {
	if t == "" {
		return string(MembershipTierNormal)
	}
	return string(t)
}

// IsValid reports whether t is one of the known tiers.
func (t MembershipTier) IsValid() bool {
	_, ok := membershipPercents[t]
	return ok
}

// DiscountPercent is the fixed percentage the tier takes off the subtotal.
// Unknown tiers get no discount.
func (t MembershipTier) DiscountPercent() int64 {
	return membershipPercents[t]
}

func (t MembershipTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MembershipTier) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	tier := MembershipTier(strings.ToLower(strings.TrimSpace(str)))
	if tier == "" {
		tier = MembershipTierNormal
	}
	if !tier.IsValid() {
		return fmt.Errorf("unknown membership tier %q", str)
	}
	*t = tier
	return nil
}

func (t MembershipTier) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *MembershipTier) Scan(value interface{}) error {
	if value == nil {
		*t = MembershipTierNormal
		return nil
	}
	switch v := value.(type) {
	case string:
		*t = MembershipTier(v)
	case []byte:
		*t = MembershipTier(v)
	}
	return nil
}
