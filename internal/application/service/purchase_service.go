package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/sangkips/stockroom-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// PurchaseService handles purchase-related operations
type PurchaseService struct {
	purchaseRepo repository.PurchaseRepository
	supplierRepo repository.SupplierRepository
	pricing      *PricingService
	stores       *StoreService
	recorder     *settlement.Recorder
}

// NewPurchaseService creates a new purchase service
func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	supplierRepo repository.SupplierRepository,
	pricingService *PricingService,
	stores *StoreService,
	recorder *settlement.Recorder,
) *PurchaseService {
	if recorder == nil {
		recorder = settlement.NewRecorder(nil)
	}
	return &PurchaseService{
		purchaseRepo: purchaseRepo,
		supplierRepo: supplierRepo,
		pricing:      pricingService,
		stores:       stores,
		recorder:     recorder,
	}
}

// CreatePurchaseInput represents the create purchase input
type CreatePurchaseInput struct {
	OperatorID    uuid.UUID
	SupplierID    *uuid.UUID
	Date          *time.Time
	Items         []LineItemInput
	Discount      DiscountInput
	Deposit       decimal.Decimal
	DepositMethod string
	Notes         string
}

// SubmitInput carries what a draft does not hold when it is submitted.
type SubmitInput struct {
	OperatorID    uuid.UUID
	Date          *time.Time
	Deposit       decimal.Decimal
	DepositMethod string
	Notes         string
}

type purchaseOrder struct {
	submit     SubmitInput
	supplierID *uuid.UUID
	items      []pricing.LineItem
	discount   pricing.DiscountContext
	customer   *entity.Customer
}

// CreatePurchase prices and stores a purchase order in one step.
func (s *PurchaseService) CreatePurchase(ctx context.Context, input *CreatePurchaseInput) (*entity.Purchase, error) {
	items, err := s.pricing.BuildLineItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}
	dc, customer, err := s.pricing.BuildDiscount(ctx, input.Discount)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, purchaseOrder{
		submit: SubmitInput{
			OperatorID:    input.OperatorID,
			Date:          input.Date,
			Deposit:       input.Deposit,
			DepositMethod: input.DepositMethod,
			Notes:         input.Notes,
		},
		supplierID: input.SupplierID,
		items:      items,
		discount:   dc,
		customer:   customer,
	})
}

// CreateFromDraft stores a draft as a purchase order. The customer's credit
// is read again so redemption is checked against current balances.
func (s *PurchaseService) CreateFromDraft(ctx context.Context, draft *pricing.Draft, input *SubmitInput) (*entity.Purchase, error) {
	dc, customer, err := s.pricing.BuildDiscount(ctx, DiscountInput{
		ManualPercent:    draft.Discount.ManualPercent,
		CustomerID:       draft.CustomerID,
		RedeemPoints:     draft.Discount.RedeemPoints,
		PointsRequested:  draft.Discount.PointsRequested,
		RedeemBalance:    draft.Discount.RedeemBalance,
		BalanceRequested: draft.Discount.BalanceRequested,
	})
	if err != nil {
		return nil, err
	}
	submit := *input
	if submit.Notes == "" {
		submit.Notes = draft.Notes
	}
	return s.create(ctx, purchaseOrder{
		submit:     submit,
		supplierID: draft.SupplierID,
		items:      draft.Items.Items(),
		discount:   dc,
		customer:   customer,
	})
}

func (s *PurchaseService) create(ctx context.Context, order purchaseOrder) (*entity.Purchase, error) {
	storeID, ok := infraRepo.GetStoreID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Store context required")
	}
	if len(order.items) == 0 {
		return nil, apperror.NewFieldValidationError("items", "purchase needs at least one item")
	}

	if order.supplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, *order.supplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apperror.NewNotFoundError("Supplier")
		}
	}

	quote := s.pricing.Price(order.items, order.discount, order.customer)
	totals := quote.Breakdown.Rounded()

	purchaseID := uuid.New()
	deposit := order.submit.Deposit
	record, err := settlement.NewRecord(purchaseID, totals.GrandTotal, deposit)
	if err != nil {
		return nil, err
	}

	var opening []entity.PaymentTransaction
	if deposit.IsPositive() {
		if !deposit.Round(2).Equal(deposit) {
			return nil, apperror.NewFieldValidationError("deposit", "deposit cannot have more than two decimal places")
		}
		methods, err := s.stores.PaymentMethods(ctx)
		if err != nil {
			return nil, err
		}
		method, ok := methods.Resolve(order.submit.DepositMethod)
		if !ok {
			return nil, apperror.NewFieldValidationError("deposit_method", "payment method "+order.submit.DepositMethod+" is not active")
		}
		tx := s.recorder.Record(purchaseID, deposit, method, "Deposit")
		opening = append(opening, TransactionToEntity(tx, storeID, order.submit.OperatorID))
	}

	date := time.Now().UTC()
	if order.submit.Date != nil {
		date = order.submit.Date.UTC()
	}

	purchase := &entity.Purchase{
		ID:                       purchaseID,
		StoreID:                  storeID,
		SupplierID:               order.supplierID,
		CreatedByID:              order.submit.OperatorID,
		Date:                     date,
		PurchaseNo:               utils.GenerateReferenceNo("PO", date),
		PaymentStatus:            record.PaymentStatus,
		FulfillmentStatus:        record.FulfillmentStatus,
		SubtotalExclusiveOfTax:   totals.SubtotalExclusiveOfTax,
		TotalTax:                 totals.TotalTax,
		ManualDiscountPercent:    quote.Discount.ManualPercent,
		ManualDiscountAmount:     totals.ManualDiscountAmount,
		MembershipDiscountAmount: totals.MembershipDiscountAmount,
		PointsDiscountAmount:     totals.PointsDiscountAmount,
		BalanceDiscountAmount:    totals.BalanceDiscountAmount,
		GrandTotal:               record.GrandTotal,
		AmountPaid:               record.AmountPaid,
		AmountDue:                record.AmountDue,
		Notes:                    order.submit.Notes,
		Items:                    purchaseItems(purchaseID, order.items),
		Transactions:             opening,
	}

	var redemption *repository.Redemption
	if order.customer != nil {
		purchase.CustomerID = &order.customer.ID
		if totals.PointsDiscountAmount.IsPositive() {
			purchase.PointsRedeemed = s.pricing.Resolver().PointsFor(quote.Breakdown.PointsDiscountAmount)
		}
		redemption = &repository.Redemption{
			CustomerID: order.customer.ID,
			Points:     purchase.PointsRedeemed,
			Balance:    totals.BalanceDiscountAmount,
		}
	}

	if err := s.purchaseRepo.Create(ctx, purchase, redemption); err != nil {
		return nil, err
	}
	return purchase, nil
}

func purchaseItems(purchaseID uuid.UUID, items []pricing.LineItem) []entity.PurchaseItem {
	out := make([]entity.PurchaseItem, 0, len(items))
	for _, item := range items {
		clean := pricing.SanitizeLineItem(item)
		tax := pricing.ResolveTax(clean)
		row := entity.PurchaseItem{
			ID:              uuid.New(),
			PurchaseID:      purchaseID,
			ProductID:       item.ProductID,
			Kind:            item.Kind,
			Name:            item.Name,
			Unit:            item.Unit,
			Quantity:        clean.Quantity,
			UnitPrice:       clean.UnitPrice,
			TaxIncluded:     clean.TaxIncluded,
			TaxAmount:       tax.TaxAmount.Round(2),
			ExclusiveAmount: tax.ExclusiveAmount.Round(2),
			Total:           tax.ItemTotal.Round(2),
		}
		if clean.TaxRate != nil {
			row.TaxRate = decimal.NewNullDecimal(*clean.TaxRate)
		}
		out = append(out, row)
	}
	return out
}

// LineItemsFromPurchase rebuilds pricing line items from stored rows.
func LineItemsFromPurchase(p *entity.Purchase) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(p.Items))
	for _, row := range p.Items {
		item := pricing.LineItem{
			ID:          row.ID,
			ProductID:   row.ProductID,
			Kind:        row.Kind,
			Name:        row.Name,
			Unit:        row.Unit,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			TaxIncluded: row.TaxIncluded,
		}
		if row.TaxRate.Valid {
			rate := row.TaxRate.Decimal
			item.TaxRate = &rate
		}
		items = append(items, item)
	}
	return items
}

// BreakdownFromPurchase returns the totals stored on a purchase.
func BreakdownFromPurchase(p *entity.Purchase) pricing.Breakdown {
	return pricing.Breakdown{
		SubtotalExclusiveOfTax:   p.SubtotalExclusiveOfTax,
		TotalTax:                 p.TotalTax,
		ManualDiscountAmount:     p.ManualDiscountAmount,
		MembershipDiscountAmount: p.MembershipDiscountAmount,
		PointsDiscountAmount:     p.PointsDiscountAmount,
		BalanceDiscountAmount:    p.BalanceDiscountAmount,
		GrandTotal:               p.GrandTotal,
	}
}

// GetPurchase retrieves a purchase by ID
func (s *PurchaseService) GetPurchase(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	return purchase, nil
}

// ListPurchases lists purchases of the current store
func (s *PurchaseService) ListPurchases(ctx context.Context, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(purchases, p), nil
}

// ReceivePurchase books received quantities keyed by purchase item ID.
func (s *PurchaseService) ReceivePurchase(ctx context.Context, id uuid.UUID, quantities map[uuid.UUID]decimal.Decimal) (*entity.Purchase, error) {
	if len(quantities) == 0 {
		return nil, apperror.NewFieldValidationError("lines", "at least one received line is required")
	}
	if _, err := s.purchaseRepo.Receive(ctx, id, quantities); err != nil {
		return nil, err
	}
	return s.GetPurchase(ctx, id)
}

// CancelPurchase cancels a purchase that has neither payments nor receipts.
func (s *PurchaseService) CancelPurchase(ctx context.Context, id uuid.UUID) (*entity.Purchase, error) {
	if _, err := s.purchaseRepo.Cancel(ctx, id); err != nil {
		return nil, err
	}
	return s.GetPurchase(ctx, id)
}

// Snapshot builds the read-only export view of a stored purchase.
func (s *PurchaseService) Snapshot(ctx context.Context, id uuid.UUID) (*pricing.Snapshot, error) {
	purchase, err := s.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := s.stores.CurrentStore(ctx)
	if err != nil {
		return nil, err
	}
	meta := pricing.SnapshotMeta{
		Reference: purchase.PurchaseNo,
		Store:     StoreParty(store),
	}
	if purchase.Customer != nil {
		meta.Customer = &pricing.Party{
			Name:    purchase.Customer.Name,
			Address: deref(purchase.Customer.Address),
			Phone:   deref(purchase.Customer.Phone),
		}
	}
	if purchase.Supplier != nil {
		meta.Supplier = &pricing.Party{
			Name:    purchase.Supplier.Name,
			Address: deref(purchase.Supplier.Address),
			Phone:   deref(purchase.Supplier.Phone),
			TaxID:   deref(purchase.Supplier.TaxID),
		}
	}
	snapshot, err := pricing.NewSnapshot(meta, LineItemsFromPurchase(purchase), BreakdownFromPurchase(purchase), time.Now())
	if err != nil {
		return nil, apperror.NewAppError(http.StatusInternalServerError, err.Error())
	}
	return &snapshot, nil
}

// DraftSnapshot builds the export view of a draft that has not been submitted.
func (s *PurchaseService) DraftSnapshot(ctx context.Context, draft *pricing.Draft) (*pricing.Snapshot, error) {
	store, err := s.stores.CurrentStore(ctx)
	if err != nil {
		return nil, err
	}
	items := draft.Items.Items()
	snapshot, err := pricing.NewSnapshot(
		pricing.SnapshotMeta{Reference: "DRAFT-" + strings.ToUpper(draft.ID.String()[:8]), Store: StoreParty(store)},
		items,
		draft.Quote(s.pricing.Resolver()),
		time.Now(),
	)
	if err != nil {
		return nil, apperror.NewAppError(http.StatusInternalServerError, err.Error())
	}
	return &snapshot, nil
}

// StoreParty is the store header used on exports and receipts.
func StoreParty(store *entity.Store) pricing.Party {
	return pricing.Party{Name: store.Name, Address: store.Address, Phone: store.Phone, TaxID: store.TaxID}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
