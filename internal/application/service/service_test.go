package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/enum"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/internal/infrastructure/cache"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type eventLog struct {
	mu     sync.Mutex
	events []settlement.Event
}

func (l *eventLog) Notify(_ context.Context, e settlement.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

type recordingPrinter struct {
	jobs [][]byte
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.jobs = append(p.jobs, data)
	return nil
}
func (p *recordingPrinter) Close() error { return nil }
func (p *recordingPrinter) IsConnected() bool { return true }

type testEnv struct {
	ctx         context.Context
	db          *gorm.DB
	store       *entity.Store
	customer    *entity.Customer
	supplier    *entity.Supplier
	product     *entity.Product
	operatorID  uuid.UUID
	events      *eventLog
	pricing     *PricingService
	stores      *StoreService
	purchases   *PurchaseService
	settlements *SettlementService
	drafts      *DraftService
	printer     *PrinterService
	paper       *recordingPrinter
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := "file:svc_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&entity.Store{}, &entity.Customer{}, &entity.Supplier{}, &entity.Product{},
		&entity.Purchase{}, &entity.PurchaseItem{}, &entity.PaymentTransaction{},
	))

	storeRepo := infraRepo.NewStoreRepository(db)
	store := &entity.Store{Name: "Main Store", Slug: "main-store", Address: "Moi Avenue", Phone: "0700000000"}
	require.NoError(t, storeRepo.Create(context.Background(), store))
	ctx := infraRepo.WithStore(context.Background(), store.ID)

	customerRepo := infraRepo.NewCustomerRepository(db)
	supplierRepo := infraRepo.NewSupplierRepository(db)
	productRepo := infraRepo.NewProductRepository(db)
	purchaseRepo := infraRepo.NewPurchaseRepository(db)

	customer := &entity.Customer{StoreID: store.ID, Name: "Amina", MembershipTier: enum.MembershipTierGold, LoyaltyPoints: 500, AccountBalance: dec("20")}
	require.NoError(t, customerRepo.Create(ctx, customer))
	supplier := &entity.Supplier{StoreID: store.ID, Name: "Unga Ltd"}
	require.NoError(t, supplierRepo.Create(ctx, supplier))
	product := &entity.Product{StoreID: store.ID, Name: "Maize flour", Code: "MF-1", Unit: "bag", BuyingPrice: dec("100"), TaxRate: dec("16")}
	require.NoError(t, productRepo.Create(ctx, product))

	events := &eventLog{}
	recorder := settlement.NewRecorder(nil)
	pricingSvc := NewPricingService(pricing.NewResolver(dec("0.01")), productRepo, customerRepo)
	stores := NewStoreService(storeRepo, []string{"Cash", "M-Pesa"})
	purchases := NewPurchaseService(purchaseRepo, supplierRepo, pricingSvc, stores, recorder)
	settlements := NewSettlementService(purchaseRepo, stores, recorder, cache.NewMemoryGuard(time.Minute), events)
	paper := &recordingPrinter{}

	return &testEnv{
		ctx:         ctx,
		db:          db,
		store:       store,
		customer:    customer,
		supplier:    supplier,
		product:     product,
		operatorID:  uuid.New(),
		events:      events,
		pricing:     pricingSvc,
		stores:      stores,
		purchases:   purchases,
		settlements: settlements,
		drafts:      NewDraftService(cache.NewMemoryDraftStore(time.Hour), pricingSvc, purchases),
		printer:     NewPrinterService(paper, purchases, settlements, stores, "usb", 32, nil),
		paper:       paper,
	}
}

func (e *testEnv) flourLine(qty string) LineItemInput {
	id := e.product.ID
	return LineItemInput{Kind: enum.LineItemKindExisting, ProductID: &id, Quantity: dec(qty)}
}

// 10 bags at 100 + 16% tax, gold membership, 500 points and the full 20 balance:
// 1000 + 160 - 70 - 5 - 20 = 1065.
func (e *testEnv) createRedeemingPurchase(t *testing.T, deposit string) *entity.Purchase {
	t.Helper()
	purchase, err := e.purchases.CreatePurchase(e.ctx, &CreatePurchaseInput{
		OperatorID: e.operatorID,
		SupplierID: &e.supplier.ID,
		Items:      []LineItemInput{e.flourLine("10")},
		Discount: DiscountInput{
			CustomerID:       &e.customer.ID,
			RedeemPoints:     true,
			PointsRequested:  500,
			RedeemBalance:    true,
			BalanceRequested: dec("50"),
		},
		Deposit:       dec(deposit),
		DepositMethod: "cash",
	})
	require.NoError(t, err)
	return purchase
}

func TestCreatePurchasePricesAndDebitsCustomer(t *testing.T) {
	env := newTestEnv(t)

	purchase := env.createRedeemingPurchase(t, "65")

	assert.True(t, dec("1000").Equal(purchase.SubtotalExclusiveOfTax))
	assert.True(t, dec("160").Equal(purchase.TotalTax))
	assert.True(t, dec("70").Equal(purchase.MembershipDiscountAmount))
	assert.True(t, dec("5").Equal(purchase.PointsDiscountAmount))
	assert.True(t, dec("20").Equal(purchase.BalanceDiscountAmount))
	assert.True(t, dec("1065").Equal(purchase.GrandTotal))
	assert.Equal(t, int64(500), purchase.PointsRedeemed)
	assert.True(t, dec("65").Equal(purchase.AmountPaid))
	assert.True(t, dec("1000").Equal(purchase.AmountDue))
	assert.Equal(t, enum.PaymentStatusPartial, purchase.PaymentStatus)
	require.Len(t, purchase.Transactions, 1)
	assert.Equal(t, "Cash", purchase.Transactions[0].Method)
	assert.Regexp(t, `^PO-\d{8}-[0-9A-F]{6}$`, purchase.PurchaseNo)

	customer, err := infraRepo.NewCustomerRepository(env.db).GetByID(env.ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), customer.LoyaltyPoints)
	assert.True(t, customer.AccountBalance.IsZero())
}

func TestCreatePurchaseValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{OperatorID: env.operatorID})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{
		Items:         []LineItemInput{e2eNewLine("Sacks", "2", "5")},
		Deposit:       dec("5"),
		DepositMethod: "Cheque",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{
		Items:   []LineItemInput{e2eNewLine("Sacks", "2", "5")},
		Deposit: dec("11"),
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	missing := uuid.New()
	_, err = env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{
		SupplierID: &missing,
		Items:      []LineItemInput{e2eNewLine("Sacks", "2", "5")},
	})
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	_, err = env.purchases.CreatePurchase(context.Background(), &CreatePurchaseInput{
		Items: []LineItemInput{e2eNewLine("Sacks", "2", "5")},
	})
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
}

func e2eNewLine(name, qty, price string) LineItemInput {
	p := dec(price)
	return LineItemInput{Kind: enum.LineItemKindNew, Name: name, Quantity: dec(qty), UnitPrice: &p}
}

func TestBuildLineItemsPrefixesFieldErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pricing.BuildLineItems(env.ctx, []LineItemInput{
		e2eNewLine("Sacks", "1", "5"),
		{Kind: enum.LineItemKindNew, Quantity: dec("1")},
	})
	require.Error(t, err)
	appErr := apperror.GetAppError(err)
	require.NotEmpty(t, appErr.Errors)
	assert.Equal(t, "items[1].name", appErr.Errors[0].Field)
}

func TestZeroTotalPurchaseStartsPaid(t *testing.T) {
	env := newTestEnv(t)

	purchase, err := env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{
		Items: []LineItemInput{e2eNewLine("Samples", "3", "0")},
	})
	require.NoError(t, err)
	assert.Equal(t, enum.PaymentStatusPaid, purchase.PaymentStatus)
	assert.True(t, purchase.AmountDue.IsZero())
}

func TestSettlementFlow(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.createRedeemingPurchase(t, "65")

	result, err := env.settlements.ApplyPartialPayment(env.ctx, &PaymentInput{
		SessionID:  "sess-1",
		OperatorID: env.operatorID,
		PurchaseID: purchase.ID,
		Amount:     dec("400"),
		Method:     "m-pesa",
	})
	require.NoError(t, err)
	assert.Equal(t, "M-Pesa", result.Transaction.Method)
	assert.True(t, dec("465").Equal(result.Record.AmountPaid))
	assert.True(t, dec("600").Equal(result.Record.AmountDue))
	assert.True(t, dec("65").Equal(result.Receipt.PaidBefore))
	assert.Equal(t, "partial", result.Receipt.Status)

	_, err = env.settlements.ApplyPartialPayment(env.ctx, &PaymentInput{
		SessionID: "sess-1", PurchaseID: purchase.ID, Amount: dec("600.01"), Method: "Cash",
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	cleared, err := env.settlements.ClearFullDue(env.ctx, &PaymentInput{
		SessionID: "sess-1", OperatorID: env.operatorID, PurchaseID: purchase.ID, Method: "Cash",
	})
	require.NoError(t, err)
	assert.True(t, dec("600").Equal(cleared.Transaction.Amount))
	assert.Equal(t, enum.PaymentStatusPaid, cleared.Record.PaymentStatus)
	assert.True(t, cleared.Record.AmountDue.IsZero())

	_, err = env.settlements.ClearFullDue(env.ctx, &PaymentInput{SessionID: "sess-1", PurchaseID: purchase.ID, Method: "Cash"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	err = env.settlements.DeletePurchase(env.ctx, "sess-1", env.operatorID, purchase.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindPolicy))

	txs, err := env.settlements.ListTransactions(env.ctx, purchase.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, dec("65").Equal(txs[0].Amount))

	outcomes := make([]apperror.Outcome, 0, len(env.events.events))
	for _, e := range env.events.events {
		outcomes = append(outcomes, e.Outcome)
	}
	assert.Equal(t, []apperror.Outcome{
		apperror.OutcomeSuccess,
		apperror.OutcomeValidationError,
		apperror.OutcomeSuccess,
		apperror.OutcomeValidationError,
		apperror.OutcomePolicyViolation,
	}, outcomes)
}

func TestSettlementDeleteRefundsRedemption(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.createRedeemingPurchase(t, "0")

	require.NoError(t, env.settlements.DeletePurchase(env.ctx, "sess-1", env.operatorID, purchase.ID))

	_, err := env.purchases.GetPurchase(env.ctx, purchase.ID)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	customer, err := infraRepo.NewCustomerRepository(env.db).GetByID(env.ctx, env.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), customer.LoyaltyPoints)
	assert.True(t, dec("20").Equal(customer.AccountBalance))
}

func TestListDueSkipsSettled(t *testing.T) {
	env := newTestEnv(t)
	open := env.createRedeemingPurchase(t, "0")
	_, err := env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{
		Items:         []LineItemInput{e2eNewLine("Sacks", "2", "5")},
		Deposit:       dec("10"),
		DepositMethod: "Cash",
	})
	require.NoError(t, err)

	result, err := env.settlements.ListDue(env.ctx, &repository.PurchaseFilterParams{})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, open.ID, result.Items[0].ID)
}

func TestPaymentMethodsPerStore(t *testing.T) {
	env := newTestEnv(t)

	methods, err := env.settlements.PaymentMethods(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cash", "M-Pesa"}, methods)

	_, err = env.stores.UpdatePaymentMethods(env.ctx, []string{"Card", "card", " "})
	require.NoError(t, err)
	methods, err = env.settlements.PaymentMethods(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Card"}, methods)

	purchase := env.createRedeemingPurchaseWithMethod(t, "Card")
	_, err = env.settlements.ApplyPartialPayment(env.ctx, &PaymentInput{SessionID: "s", PurchaseID: purchase.ID, Amount: dec("1"), Method: "Cash"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func (e *testEnv) createRedeemingPurchaseWithMethod(t *testing.T, method string) *entity.Purchase {
	t.Helper()
	purchase, err := e.purchases.CreatePurchase(e.ctx, &CreatePurchaseInput{
		Items:         []LineItemInput{e2eNewLine("Sacks", "2", "5")},
		Deposit:       dec("1"),
		DepositMethod: method,
	})
	require.NoError(t, err)
	return purchase
}

func TestDraftLifecycle(t *testing.T) {
	env := newTestEnv(t)
	const session = "sess-draft"

	_, err := env.drafts.Get(env.ctx, session)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	view, err := env.drafts.AddItem(env.ctx, session, env.flourLine("2"))
	require.NoError(t, err)
	view, err = env.drafts.AddItem(env.ctx, session, env.flourLine("3"))
	require.NoError(t, err)
	items := view.Items.Items()
	require.Len(t, items, 1)
	assert.True(t, dec("5").Equal(items[0].Quantity))

	view, err = env.drafts.SetDiscount(env.ctx, session, DiscountInput{ManualPercent: dec("10")})
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(view.Breakdown.SubtotalExclusiveOfTax))
	assert.True(t, dec("80").Equal(view.Breakdown.TotalTax))
	assert.True(t, dec("50").Equal(view.Breakdown.ManualDiscountAmount))
	assert.True(t, dec("530").Equal(view.Breakdown.GrandTotal))

	view, err = env.drafts.UpdateUnitPrice(env.ctx, session, items[0].ID, dec("-1"))
	assert.Nil(t, view)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	supplierID := env.supplier.ID
	_, err = env.drafts.SetDetails(env.ctx, session, DraftDetailsInput{SupplierID: &supplierID})
	require.NoError(t, err)

	snapshot, err := env.drafts.Snapshot(env.ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "Main Store", snapshot.Store.Name)
	assert.True(t, strings.HasPrefix(snapshot.Reference, "DRAFT-"))

	purchase, err := env.drafts.Submit(env.ctx, session, &SubmitInput{OperatorID: env.operatorID})
	require.NoError(t, err)
	assert.True(t, dec("530").Equal(purchase.GrandTotal))
	assert.Equal(t, &supplierID, purchase.SupplierID)

	_, err = env.drafts.Get(env.ctx, session)
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestDraftSubmitRequiresItems(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.drafts.Start(env.ctx, "s")
	require.NoError(t, err)
	_, err = env.drafts.Submit(env.ctx, "s", &SubmitInput{})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	require.NoError(t, env.drafts.Cancel(env.ctx, "s"))
	assert.Error(t, env.drafts.Cancel(env.ctx, "s"))
}

func TestReceiveAndCancel(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.createRedeemingPurchase(t, "0")

	item := purchase.Items[0]
	received, err := env.purchases.ReceivePurchase(env.ctx, purchase.ID, map[uuid.UUID]decimal.Decimal{item.ID: dec("4")})
	require.NoError(t, err)
	assert.Equal(t, enum.FulfillmentStatusPartiallyReceived, received.FulfillmentStatus)

	_, err = env.purchases.CancelPurchase(env.ctx, purchase.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindPolicy))

	other, err := env.purchases.CreatePurchase(env.ctx, &CreatePurchaseInput{Items: []LineItemInput{e2eNewLine("Sacks", "2", "5")}})
	require.NoError(t, err)
	cancelled, err := env.purchases.CancelPurchase(env.ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.FulfillmentStatusCancelled, cancelled.FulfillmentStatus)

	_, err = env.settlements.ApplyPartialPayment(env.ctx, &PaymentInput{SessionID: "s", PurchaseID: other.ID, Amount: dec("1"), Method: "Cash"})
	assert.True(t, apperror.IsKind(err, apperror.KindPolicy))
}

func TestPurchaseSnapshotReconciles(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.createRedeemingPurchase(t, "0")

	snapshot, err := env.purchases.Snapshot(env.ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, purchase.PurchaseNo, snapshot.Reference)
	require.NotNil(t, snapshot.Supplier)
	assert.Equal(t, "Unga Ltd", snapshot.Supplier.Name)
	require.Len(t, snapshot.Lines, 1)
	assert.True(t, dec("160").Equal(snapshot.Lines[0].TaxAmount))
	assert.True(t, dec("1065").Equal(snapshot.Breakdown.GrandTotal))
}

func TestPrinterReceipts(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.createRedeemingPurchase(t, "65")

	receipt, err := env.printer.PrintPurchaseReceipt(env.ctx, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unga Ltd", receipt.Counterparty)
	assert.Equal(t, "TOTAL", receipt.Totals[len(receipt.Totals)-1].Label)
	require.Len(t, env.paper.jobs, 1)
	assert.Contains(t, string(env.paper.jobs[0]), "1065.00")

	txID := purchase.Transactions[0].ID
	payment, err := env.printer.PrintPaymentReceipt(env.ctx, purchase.ID, txID)
	require.NoError(t, err)
	assert.Equal(t, "Cash", payment.PaymentMethod)
	assert.True(t, dec("65").Equal(payment.Paid))
	assert.True(t, dec("1000").Equal(payment.Due))
	assert.Equal(t, "partial", payment.Status)

	_, err = env.printer.PrintPaymentReceipt(env.ctx, purchase.ID, uuid.New())
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	status := NewPrinterService(printer.NewNullPrinter(), nil, nil, nil, "none", 0, nil).GetStatus()
	assert.False(t, status.Configured)
}

func TestCustomerService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCustomerService(infraRepo.NewCustomerRepository(env.db))

	created, err := svc.CreateCustomer(env.ctx, &CreateCustomerInput{Name: "Baraka", AccountBalance: dec("12.345")})
	require.NoError(t, err)
	assert.Equal(t, enum.MembershipTierNormal, created.MembershipTier)
	assert.True(t, dec("12.35").Equal(created.AccountBalance))

	bad := enum.MembershipTier("diamond")
	_, err = svc.UpdateCustomer(env.ctx, &UpdateCustomerInput{ID: created.ID, MembershipTier: &bad})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	silver := enum.MembershipTierSilver
	updated, err := svc.UpdateCustomer(env.ctx, &UpdateCustomerInput{ID: created.ID, MembershipTier: &silver})
	require.NoError(t, err)
	assert.Equal(t, enum.MembershipTierSilver, updated.MembershipTier)
}

func TestProductServiceRejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(infraRepo.NewProductRepository(env.db))

	_, err := svc.CreateProduct(env.ctx, &CreateProductInput{Name: "Dup", Code: "MF-1"})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	_, err = svc.CreateProduct(env.ctx, &CreateProductInput{Name: "Bad", TaxRate: dec("101")})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	created, err := svc.CreateProduct(env.ctx, &CreateProductInput{Name: "Sugar", BuyingPrice: dec("150")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Code, "PROD-"))
}

func TestUpdateProductFeedsLineDefaults(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProductService(infraRepo.NewProductRepository(env.db))

	other, err := svc.CreateProduct(env.ctx, &CreateProductInput{Name: "Sugar", Code: "SG-1", BuyingPrice: dec("150")})
	require.NoError(t, err)

	taken := "SG-1"
	_, err = svc.UpdateProduct(env.ctx, &UpdateProductInput{ID: env.product.ID, Code: &taken})
	assert.Equal(t, 409, apperror.GetAppError(err).Code)

	negative := dec("-1")
	_, err = svc.UpdateProduct(env.ctx, &UpdateProductInput{ID: env.product.ID, BuyingPrice: &negative})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.UpdateProduct(env.ctx, &UpdateProductInput{ID: uuid.New()})
	assert.Equal(t, 404, apperror.GetAppError(err).Code)

	price, rate, code := dec("120.004"), dec("0"), "MF-2"
	updated, err := svc.UpdateProduct(env.ctx, &UpdateProductInput{ID: env.product.ID, Code: &code, BuyingPrice: &price, TaxRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, "MF-2", updated.Code)
	assert.True(t, dec("120").Equal(updated.BuyingPrice))
	assert.Equal(t, "SG-1", other.Code)

	quote, err := env.pricing.Quote(env.ctx, []LineItemInput{env.flourLine("10")}, DiscountInput{})
	require.NoError(t, err)
	assert.True(t, quote.Breakdown.GrandTotal.Equal(dec("1200")), quote.Breakdown.GrandTotal.String())
}

func TestUpdateSupplier(t *testing.T) {
	env := newTestEnv(t)
	svc := NewSupplierService(infraRepo.NewSupplierRepository(env.db))

	name, pin := "Unga Holdings", "P051234567X"
	updated, err := svc.UpdateSupplier(env.ctx, &UpdateSupplierInput{ID: env.supplier.ID, Name: &name, TaxID: &pin})
	require.NoError(t, err)
	assert.Equal(t, "Unga Holdings", updated.Name)

	stored, err := svc.GetSupplier(env.ctx, env.supplier.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TaxID)
	assert.Equal(t, pin, *stored.TaxID)

	otherStore := infraRepo.WithStore(context.Background(), uuid.New())
	_, err = svc.UpdateSupplier(otherStore, &UpdateSupplierInput{ID: env.supplier.ID, Name: &name})
	assert.Equal(t, 404, apperror.GetAppError(err).Code)
}

func TestQuoteClampsRedemptionAndStoresNothing(t *testing.T) {
	env := newTestEnv(t)
	customerID := env.customer.ID
	price := dec("50")

	quote, err := env.pricing.Quote(env.ctx, []LineItemInput{
		env.flourLine("10"),
		{Kind: enum.LineItemKindNew, Name: "Sacks", Unit: "pc", Quantity: dec("2"), UnitPrice: &price},
	}, DiscountInput{
		CustomerID:       &customerID,
		RedeemPoints:     true,
		PointsRequested:  500,
		RedeemBalance:    true,
		BalanceRequested: dec("100"),
	})
	require.NoError(t, err)

	// 1100 + 160 tax - 77 gold - 5 points - 20 balance (clamped from 100)
	assert.Len(t, quote.Items, 2)
	assert.True(t, quote.Breakdown.MembershipDiscountAmount.Equal(dec("77")))
	assert.True(t, quote.Breakdown.BalanceDiscountAmount.Equal(dec("20")))
	assert.True(t, quote.Breakdown.GrandTotal.Equal(dec("1158")), quote.Breakdown.GrandTotal.String())
	assert.True(t, quote.Breakdown.Reconciles())

	var purchases int64
	require.NoError(t, env.db.Model(&entity.Purchase{}).Count(&purchases).Error)
	assert.Zero(t, purchases)

	customer, err := infraRepo.NewCustomerRepository(env.db).GetByID(env.ctx, customerID)
	require.NoError(t, err)
	assert.True(t, customer.AccountBalance.Equal(dec("20")))
}

func TestReceiptReplaysPaymentsWithSameTimestamp(t *testing.T) {
	env := newTestEnv(t)
	purchase := env.createRedeemingPurchase(t, "65")

	var paymentIDs []uuid.UUID
	for _, amount := range []string{"100", "200"} {
		result, err := env.settlements.ApplyPartialPayment(env.ctx, &PaymentInput{
			SessionID: "sess-1", OperatorID: env.operatorID, PurchaseID: purchase.ID, Amount: dec(amount), Method: "Cash",
		})
		require.NoError(t, err)
		paymentIDs = append(paymentIDs, result.Transaction.ID)
	}

	same := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, env.db.Model(&entity.PaymentTransaction{}).
		Where("purchase_id = ?", purchase.ID).
		Update("created_at", same).Error)

	_, receipt, err := env.settlements.Receipt(env.ctx, purchase.ID, paymentIDs[1])
	require.NoError(t, err)
	assert.True(t, dec("165").Equal(receipt.PaidBefore), receipt.PaidBefore.String())
	assert.True(t, dec("365").Equal(receipt.AmountPaid))
	assert.True(t, dec("700").Equal(receipt.AmountDue))
}
