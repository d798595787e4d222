package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// SettlementService runs due settlement (payments and deletes) for stored purchases.
type SettlementService struct {
	purchaseRepo repository.PurchaseRepository
	stores       *StoreService
	recorder     *settlement.Recorder
	guard        settlement.Guard
	notifier     settlement.Notifier
}

// NewSettlementService creates a new settlement service. guard and notifier may be nil.
func NewSettlementService(
	purchaseRepo repository.PurchaseRepository,
	stores *StoreService,
	recorder *settlement.Recorder,
	guard settlement.Guard,
	notifier settlement.Notifier,
) *SettlementService {
	if recorder == nil {
		recorder = settlement.NewRecorder(nil)
	}
	return &SettlementService{
		purchaseRepo: purchaseRepo,
		stores:       stores,
		recorder:     recorder,
		guard:        guard,
		notifier:     notifier,
	}
}

// PaymentInput represents a payment against a purchase
type PaymentInput struct {
	SessionID  string
	OperatorID uuid.UUID
	PurchaseID uuid.UUID
	Amount     decimal.Decimal
	Method     string
	Notes      string
}

// PaymentResult is the acknowledged outcome of a payment.
type PaymentResult struct {
	Transaction settlement.Transaction    `json:"transaction"`
	Record      settlement.Record         `json:"record"`
	Receipt     settlement.PaymentReceipt `json:"receipt"`
}

// ApplyPartialPayment pays part or all of the amount due.
func (s *SettlementService) ApplyPartialPayment(ctx context.Context, input *PaymentInput) (*PaymentResult, error) {
	machine, projection, err := s.prepare(ctx, input.OperatorID, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	tx, err := machine.ApplyPartialPayment(ctx, input.SessionID, projection, input.Amount, input.Method, input.Notes)
	if err != nil {
		return nil, err
	}
	return s.result(tx, projection), nil
}

// ClearFullDue pays whatever is due. input.Amount is ignored.
func (s *SettlementService) ClearFullDue(ctx context.Context, input *PaymentInput) (*PaymentResult, error) {
	machine, projection, err := s.prepare(ctx, input.OperatorID, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	tx, err := machine.ClearFullDue(ctx, input.SessionID, projection, input.Method, input.Notes)
	if err != nil {
		return nil, err
	}
	return s.result(tx, projection), nil
}

// DeletePurchase removes a purchase that is still pending and not yet received.
func (s *SettlementService) DeletePurchase(ctx context.Context, sessionID string, operatorID, purchaseID uuid.UUID) error {
	machine, projection, err := s.prepare(ctx, operatorID, purchaseID)
	if err != nil {
		return err
	}
	return machine.Delete(ctx, sessionID, projection)
}

// ListDue lists purchases that still have an amount due.
func (s *SettlementService) ListDue(ctx context.Context, params *repository.PurchaseFilterParams) (*pagination.PaginatedResult[entity.Purchase], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.DueOnly = true
	purchases, total, err := s.purchaseRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	p := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(purchases, p), nil
}

// ListTransactions returns the payments of a purchase, oldest first.
func (s *SettlementService) ListTransactions(ctx context.Context, purchaseID uuid.UUID) ([]settlement.Transaction, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, apperror.NewNotFoundError("Purchase")
	}
	rows, err := s.purchaseRepo.ListTransactions(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	out := make([]settlement.Transaction, len(rows))
	for i := range rows {
		out[i] = TransactionFromEntity(&rows[i])
	}
	return out, nil
}

// Receipt assembles receipt data for one stored transaction.
func (s *SettlementService) Receipt(ctx context.Context, purchaseID, transactionID uuid.UUID) (*entity.Purchase, settlement.PaymentReceipt, error) {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, settlement.PaymentReceipt{}, err
	}
	if purchase == nil {
		return nil, settlement.PaymentReceipt{}, apperror.NewNotFoundError("Purchase")
	}

	// Rebuild the record as it stood right after the transaction.
	paid := decimal.Zero
	for i := range purchase.Transactions {
		row := &purchase.Transactions[i]
		paid = paid.Add(row.Amount)
		if row.ID != transactionID {
			continue
		}
		after := RecordFromPurchase(purchase)
		after.AmountPaid = paid
		after.AmountDue = decimal.Max(purchase.GrandTotal.Sub(paid), decimal.Zero)
		after.PaymentStatus = settlement.DerivePaymentStatus(after.AmountPaid, after.AmountDue)
		return purchase, s.recorder.Receipt(TransactionFromEntity(row), after), nil
	}
	return nil, settlement.PaymentReceipt{}, apperror.NewNotFoundError("Transaction")
}

// PaymentMethods lists the methods the current store accepts.
func (s *SettlementService) PaymentMethods(ctx context.Context) ([]string, error) {
	methods, err := s.stores.PaymentMethods(ctx)
	if err != nil {
		return nil, err
	}
	return methods.Names(), nil
}

func (s *SettlementService) prepare(ctx context.Context, operatorID, purchaseID uuid.UUID) (*settlement.Machine, *settlement.Projection, error) {
	methods, err := s.stores.PaymentMethods(ctx)
	if err != nil {
		return nil, nil, err
	}
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, nil, err
	}
	if purchase == nil {
		return nil, nil, apperror.NewNotFoundError("Purchase")
	}

	history := make([]settlement.Transaction, len(purchase.Transactions))
	for i := range purchase.Transactions {
		history[i] = TransactionFromEntity(&purchase.Transactions[i])
	}
	projection := settlement.NewProjection(RecordFromPurchase(purchase), history...)

	gateway := &purchaseGateway{repo: s.purchaseRepo, operatorID: operatorID}
	settler := settlement.NewSettler(methods, s.recorder)
	return settlement.NewMachine(settler, gateway, s.guard, s.notifier), projection, nil
}

func (s *SettlementService) result(tx settlement.Transaction, projection *settlement.Projection) *PaymentResult {
	rec := projection.Record()
	return &PaymentResult{
		Transaction: tx,
		Record:      rec,
		Receipt:     s.recorder.Receipt(tx, rec),
	}
}

// purchaseGateway is the settlement machine's view of the purchase repository.
type purchaseGateway struct {
	repo       repository.PurchaseRepository
	operatorID uuid.UUID
}

func (g *purchaseGateway) ApplyPayment(ctx context.Context, tx settlement.Transaction) (settlement.Record, error) {
	row := TransactionToEntity(tx, uuid.Nil, g.operatorID)
	purchase, err := g.repo.ApplyPayment(ctx, &row)
	if err != nil {
		return settlement.Record{}, err
	}
	return RecordFromPurchase(purchase), nil
}

func (g *purchaseGateway) DeleteRecord(ctx context.Context, orderID uuid.UUID) error {
	return g.repo.Delete(ctx, orderID)
}

// RecordFromPurchase is the settlement view of a stored purchase.
func RecordFromPurchase(p *entity.Purchase) settlement.Record {
	return settlement.Record{
		OrderID:           p.ID,
		GrandTotal:        p.GrandTotal,
		AmountPaid:        p.AmountPaid,
		AmountDue:         p.AmountDue,
		PaymentStatus:     p.PaymentStatus,
		FulfillmentStatus: p.FulfillmentStatus,
	}
}

// TransactionToEntity maps a recorded transaction onto its table row.
func TransactionToEntity(tx settlement.Transaction, storeID, operatorID uuid.UUID) entity.PaymentTransaction {
	return entity.PaymentTransaction{
		ID:         tx.ID,
		PurchaseID: tx.OrderID,
		StoreID:    storeID,
		Amount:     tx.Amount,
		Method:     tx.Method,
		Notes:      tx.Notes,
		RecordedBy: operatorID,
		CreatedAt:  tx.CreatedAt,
	}
}

// TransactionFromEntity maps a stored row back to a transaction.
func TransactionFromEntity(row *entity.PaymentTransaction) settlement.Transaction {
	return settlement.Transaction{
		ID:        row.ID,
		OrderID:   row.PurchaseID,
		Amount:    row.Amount,
		Method:    row.Method,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt,
	}
}
