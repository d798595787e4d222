package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// FulfillmentStatus is the receiving lifecycle of a purchase order:
// ordered -> partially_received -> received, or ordered -> cancelled.
type FulfillmentStatus int

const (
	FulfillmentStatusOrdered           FulfillmentStatus = 0
	FulfillmentStatusPartiallyReceived FulfillmentStatus = 1
	FulfillmentStatusReceived          FulfillmentStatus = 2
	FulfillmentStatusCancelled         FulfillmentStatus = 3
)

func (s FulfillmentStatus) String() string {
	names := [...]string{"ordered", "partially_received", "received", "cancelled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "ordered"
	}
	return names[s]
}

// IsTerminal reports whether no further receiving can happen.
func (s FulfillmentStatus) IsTerminal() bool {
	return s == FulfillmentStatusReceived || s == FulfillmentStatusCancelled
}

// ParseFulfillmentStatus maps a label to a FulfillmentStatus.
func ParseFulfillmentStatus(str string) (FulfillmentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "ordered":
		return FulfillmentStatusOrdered, true
	case "partially_received":
		return FulfillmentStatusPartiallyReceived, true
	case "received":
		return FulfillmentStatusReceived, true
	case "cancelled":
		return FulfillmentStatusCancelled, true
	}
	return FulfillmentStatusOrdered, false
}

func (s FulfillmentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *FulfillmentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = FulfillmentStatus(i)
		return nil
	}
	if parsed, ok := ParseFulfillmentStatus(str); ok {
		*s = parsed
	}
	return nil
}

func (s FulfillmentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *FulfillmentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = FulfillmentStatusOrdered
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = FulfillmentStatus(v)
	case int:
		*s = FulfillmentStatus(v)
	}
	return nil
}
