package pricing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrSnapshotUnreconciled means a breakdown's grand total disagrees with its parts.
var ErrSnapshotUnreconciled = errors.New("grand total does not reconcile with its components")

// Party is the store, customer or supplier metadata printed on exports.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// SnapshotLine is a line item with its resolved tax split.
type SnapshotLine struct {
	LineItem
	ItemTotal       decimal.Decimal `json:"item_total"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ExclusiveAmount decimal.Decimal `json:"exclusive_amount"`
}

// Snapshot is the read-only view handed to export collaborators.
type Snapshot struct {
	Reference   string         `json:"reference,omitempty"`
	Store       Party          `json:"store"`
	Customer    *Party         `json:"customer,omitempty"`
	Supplier    *Party         `json:"supplier,omitempty"`
	Lines       []SnapshotLine `json:"lines"`
	Breakdown   Breakdown      `json:"breakdown"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// SnapshotMeta carries the non-numeric parts of a snapshot.
type SnapshotMeta struct {
	Reference string
	Store     Party
	Customer  *Party
	Supplier  *Party
}

// NewSnapshot rounds everything to cents and refuses to hand out a
// breakdown that does not reconcile.
func NewSnapshot(meta SnapshotMeta, items []LineItem, breakdown Breakdown, now time.Time) (Snapshot, error) {
	rounded := breakdown.Rounded()
	if !breakdown.Reconciles() || !rounded.Reconciles() {
		return Snapshot{}, ErrSnapshotUnreconciled
	}
	lines := make([]SnapshotLine, 0, len(items))
	for _, item := range items {
		tax := ResolveTax(SanitizeLineItem(item))
		lines = append(lines, SnapshotLine{
			LineItem:        item,
			ItemTotal:       tax.ItemTotal.Round(2),
			TaxAmount:       tax.TaxAmount.Round(2),
			ExclusiveAmount: tax.ExclusiveAmount.Round(2),
		})
	}
	return Snapshot{
		Reference:   meta.Reference,
		Store:       meta.Store,
		Customer:    meta.Customer,
		Supplier:    meta.Supplier,
		Lines:       lines,
		Breakdown:   rounded,
		GeneratedAt: now.UTC(),
	}, nil
}
