package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// PurchaseRepository defines the interface for purchase data operations.
// It is the authoritative side of settlement: payment and delete re-check
// their rules under a row lock before writing.
type PurchaseRepository interface {
	// Create stores the purchase with its items and any opening deposit
	// transaction, debiting redemption from the customer in the same transaction.
	Create(ctx context.Context, purchase *entity.Purchase, redemption *Redemption) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
	List(ctx context.Context, params *PurchaseFilterParams) ([]entity.Purchase, int64, error)
	ListTransactions(ctx context.Context, purchaseID uuid.UUID) ([]entity.PaymentTransaction, error)
	// ApplyPayment appends tx and returns the purchase as it stands afterwards.
	ApplyPayment(ctx context.Context, tx *entity.PaymentTransaction) (*entity.Purchase, error)
	// Delete removes a purchase that is still pending and not yet received.
	Delete(ctx context.Context, id uuid.UUID) error
	// Receive books received quantities per purchase item and adds them to stock.
	Receive(ctx context.Context, id uuid.UUID, quantities map[uuid.UUID]decimal.Decimal) (*entity.Purchase, error)
	// Cancel closes an unpaid purchase that has not been received.
	Cancel(ctx context.Context, id uuid.UUID) (*entity.Purchase, error)
}

// Redemption is the customer credit consumed by a purchase.
type Redemption struct {
	CustomerID uuid.UUID
	Points     int64
	Balance    decimal.Decimal
}

// IsZero reports whether nothing is redeemed.
func (r *Redemption) IsZero() bool {
	return r == nil || (r.Points == 0 && r.Balance.IsZero())
}

// PurchaseFilterParams contains filtering parameters for purchase queries
type PurchaseFilterParams struct {
	Pagination        *pagination.PaginationParams
	Search            string
	PaymentStatus     *enum.PaymentStatus
	FulfillmentStatus *enum.FulfillmentStatus
	SupplierID        *uuid.UUID
	CustomerID        *uuid.UUID
	StartDate         *time.Time
	EndDate           *time.Time
	// DueOnly keeps purchases that still have an amount due.
	DueOnly   bool
	SortBy    string
	SortOrder string
}
