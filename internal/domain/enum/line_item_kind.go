package enum

import (
	"encoding/json"
	"fmt"
)

// LineItemKind tells whether a line item references a catalog product
// or was typed in ad hoc for this order.
type LineItemKind string

const (
	LineItemKindExisting LineItemKind = "existing"
	LineItemKindNew      LineItemKind = "new"
)

func (k LineItemKind) String() string {
	return string(k)
}

func (k LineItemKind) IsValid() bool {
	return k == LineItemKindExisting || k == LineItemKindNew
}

func (k *LineItemKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	kind := LineItemKind(str)
	if !kind.IsValid() {
		return fmt.Errorf("unknown line item kind %q", str)
	}
	*k = kind
	return nil
}
