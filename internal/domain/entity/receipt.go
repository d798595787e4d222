package entity

import "github.com/shopspring/decimal"

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
}

// ReceiptItem is a single line on a receipt.
type ReceiptItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// ReceiptLine is a labelled amount in the totals block.
type ReceiptLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Receipt is a printable document composed from a purchase at print time.
// It is not persisted.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	Title         string          `json:"title"`
	Reference     string          `json:"reference"`
	Date          string          `json:"date"`
	Operator      string          `json:"operator,omitempty"`
	Counterparty  string          `json:"counterparty,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Items         []ReceiptItem   `json:"items,omitempty"`
	Totals        []ReceiptLine   `json:"totals"`
	Paid          decimal.Decimal `json:"paid"`
	Due           decimal.Decimal `json:"due"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
}
