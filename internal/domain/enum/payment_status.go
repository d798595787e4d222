package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// PaymentStatus tracks how far a purchase's grand total has been paid down.
// It only ever moves forward: pending, partial, paid.
type PaymentStatus int

const (
	PaymentStatusPending PaymentStatus = 0
	PaymentStatusPartial PaymentStatus = 1
	PaymentStatusPaid    PaymentStatus = 2
)

func (s PaymentStatus) String() string {
	names := [...]string{"pending", "partial", "paid"}
	if int(s) < 0 || int(s) >= len(names) {
		return "pending"
	}
	return names[s]
}

// ParsePaymentStatus maps a label to a PaymentStatus.
func ParsePaymentStatus(str string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "pending":
		return PaymentStatusPending, true
	case "partial":
		return PaymentStatusPartial, true
	case "paid":
		return PaymentStatusPaid, true
	}
	return PaymentStatusPending, false
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	if parsed, ok := ParsePaymentStatus(str); ok {
		*s = parsed
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}
