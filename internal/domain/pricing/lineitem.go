package pricing

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// LineItem is one product, quantity and price entry of an order being drafted.
// ID and Kind are fixed at creation; Quantity and UnitPrice may change.
type LineItem struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   *uuid.UUID        `json:"product_id,omitempty"`
	Kind        enum.LineItemKind `json:"kind"`
	Name        string            `json:"name"`
	Quantity    decimal.Decimal   `json:"quantity"`
	UnitPrice   decimal.Decimal   `json:"unit_price"`
	Unit        string            `json:"unit,omitempty"`
	TaxRate     *decimal.Decimal  `json:"tax_rate,omitempty"`
	TaxIncluded bool              `json:"tax_included"`
}

// SanitizeLineItem coerces negative numbers to zero and caps the tax rate at 100.
// Resolvers assume their input went through here or through Validate.
func SanitizeLineItem(item LineItem) LineItem {
	if item.Quantity.IsNegative() {
		item.Quantity = decimal.Zero
	}
	if item.UnitPrice.IsNegative() {
		item.UnitPrice = decimal.Zero
	}
	if item.TaxRate != nil {
		rate := *item.TaxRate
		switch {
		case rate.IsNegative():
			rate = decimal.Zero
		case rate.GreaterThan(hundred):
			rate = hundred
		}
		item.TaxRate = &rate
	}
	return item
}

// Validate rejects values a resolver must never see.
func (li LineItem) Validate() error {
	var fieldErrors []apperror.FieldError
	if !li.Kind.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "kind", Message: "kind must be existing or new"})
	}
	if li.Kind == enum.LineItemKindExisting && li.ProductID == nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "product_id", Message: "existing items must reference a product"})
	}
	if li.Kind == enum.LineItemKindNew && li.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "new items need a name"})
	}
	if li.Quantity.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "quantity cannot be negative"})
	}
	if li.UnitPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "unit_price", Message: "unit price cannot be negative"})
	}
	if li.TaxRate != nil && (li.TaxRate.IsNegative() || li.TaxRate.GreaterThan(hundred)) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "tax_rate", Message: "tax rate must be between 0 and 100"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// LineItemStore holds the mutable line items of one draft order.
// It is owned by a single session and is not safe for concurrent use.
type LineItemStore struct {
	items []LineItem
}

// NewLineItemStore seeds a store with already validated items.
func NewLineItemStore(items ...LineItem) *LineItemStore {
	s := &LineItemStore{}
	s.items = append(s.items, items...)
	return s
}

// Add validates item, assigns it a fresh id and appends it. Adding a catalog
// product that is already present bumps that line's quantity instead.
func (s *LineItemStore) Add(item LineItem) (LineItem, error) {
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	if item.Kind == enum.LineItemKindExisting {
		for i := range s.items {
			existing := &s.items[i]
			if existing.ProductID != nil && *existing.ProductID == *item.ProductID {
				existing.Quantity = existing.Quantity.Add(item.Quantity)
				return *existing, nil
			}
		}
	}
	item.ID = uuid.New()
	s.items = append(s.items, item)
	return item, nil
}

// UpdateQuantity replaces the quantity of the given line.
func (s *LineItemStore) UpdateQuantity(id uuid.UUID, quantity decimal.Decimal) (LineItem, error) {
	if quantity.IsNegative() {
		return LineItem{}, apperror.NewFieldValidationError("quantity", "quantity cannot be negative")
	}
	item, err := s.find(id)
	if err != nil {
		return LineItem{}, err
	}
	item.Quantity = quantity
	return *item, nil
}

// UpdateUnitPrice replaces the unit price of the given line.
func (s *LineItemStore) UpdateUnitPrice(id uuid.UUID, price decimal.Decimal) (LineItem, error) {
	if price.IsNegative() {
		return LineItem{}, apperror.NewFieldValidationError("unit_price", "unit price cannot be negative")
	}
	item, err := s.find(id)
	if err != nil {
		return LineItem{}, err
	}
	item.UnitPrice = price
	return *item, nil
}

// Remove drops the given line.
func (s *LineItemStore) Remove(id uuid.UUID) error {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFoundError("Line item")
}

// Clear drops every line.
func (s *LineItemStore) Clear() {
	s.items = nil
}

// Items returns a copy of the current lines in insertion order.
func (s *LineItemStore) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *LineItemStore) Len() int {
	return len(s.items)
}

func (s *LineItemStore) find(id uuid.UUID) (*LineItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, apperror.NewNotFoundError("Line item")
}

func (s LineItemStore) MarshalJSON() ([]byte, error) {
	if s.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.items)
}

func (s *LineItemStore) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	s.items = items
	return nil
}
