package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/config"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/internal/infrastructure/cache"
	"github.com/sangkips/stockroom-api/internal/infrastructure/database"
	"github.com/sangkips/stockroom-api/internal/infrastructure/notification"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/internal/presentation/http/handler"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/metrics"
	"github.com/sangkips/stockroom-api/pkg/printer"
	"github.com/sangkips/stockroom-api/pkg/utils"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type apiEnvelope struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    json.RawMessage       `json:"data"`
	Errors  []apperror.FieldError `json:"errors"`
}

type testAPI struct {
	router   *gin.Engine
	jwt      *utils.JWTManager
	store    *entity.Store
	supplier *entity.Supplier
	product  *entity.Product
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := "file:routes_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	cfg := config.LoadFrom(viper.New())
	log := logger.Nop()

	store, err := database.SeedDefaultStore(context.Background(), db, cfg.Store, log)
	require.NoError(t, err)
	ctx := infraRepo.WithStore(context.Background(), store.ID)

	storeRepo := infraRepo.NewStoreRepository(db)
	productRepo := infraRepo.NewProductRepository(db)
	customerRepo := infraRepo.NewCustomerRepository(db)
	supplierRepo := infraRepo.NewSupplierRepository(db)
	purchaseRepo := infraRepo.NewPurchaseRepository(db)

	supplier := &entity.Supplier{StoreID: store.ID, Name: "Unga Ltd"}
	require.NoError(t, supplierRepo.Create(ctx, supplier))
	product := &entity.Product{StoreID: store.ID, Name: "Maize flour", Code: "MF-1", Unit: "bag", BuyingPrice: decimal.NewFromInt(100), TaxRate: decimal.NewFromInt(16)}
	require.NoError(t, productRepo.Create(ctx, product))

	registry := prometheus.NewRegistry()
	recorder := settlement.NewRecorder(nil)
	stores := service.NewStoreService(storeRepo, cfg.Payments.Methods)
	pricingService := service.NewPricingService(pricing.NewResolver(cfg.Pricing.PointValueRate), productRepo, customerRepo)
	purchases := service.NewPurchaseService(purchaseRepo, supplierRepo, pricingService, stores, recorder)
	notifier := notification.NewSettlementNotifier(log, metrics.NewSettlementMetrics(registry))
	settlements := service.NewSettlementService(purchaseRepo, stores, recorder, cache.NewMemoryGuard(time.Minute), notifier)
	drafts := service.NewDraftService(cache.NewMemoryDraftStore(time.Hour), pricingService, purchases)

	router := Setup(&Handlers{
		Purchase:   handler.NewPurchaseHandler(purchases, pricingService),
		Settlement: handler.NewSettlementHandler(settlements),
		Draft:      handler.NewDraftHandler(drafts),
		Product:    handler.NewProductHandler(service.NewProductService(productRepo)),
		Customer:   handler.NewCustomerHandler(service.NewCustomerService(customerRepo)),
		Supplier:   handler.NewSupplierHandler(service.NewSupplierService(supplierRepo)),
		Store:      handler.NewStoreHandler(stores),
		Printer:    handler.NewPrinterHandler(service.NewPrinterService(printer.NewNullPrinter(), purchases, settlements, stores, "none", 48, log)),
	}, &Deps{
		JWTManager:      utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer),
		Cfg:             cfg,
		IdempotencyRepo: infraRepo.NewIdempotencyRepository(db),
		StoreRepo:       storeRepo,
		Logger:          log,
		HTTPMetrics:     metrics.NewHTTPMetrics(registry),
		Gatherer:        registry,
	})

	return &testAPI{
		router:   router,
		jwt:      utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer),
		store:    store,
		supplier: supplier,
		product:  product,
	}
}

func (a *testAPI) token(t *testing.T, session string, roles ...string) string {
	t.Helper()
	token, err := a.jwt.GenerateAccessToken(uuid.New(), session, []uuid.UUID{a.store.ID}, time.Hour, roles...)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res := httptest.NewRecorder()
	a.router.ServeHTTP(res, req)
	return res
}

func decode(t *testing.T, res *httptest.ResponseRecorder, data any) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env), res.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (a *testAPI) createPurchase(t *testing.T, token string) entity.Purchase {
	t.Helper()
	res := a.do(t, http.MethodPost, "/api/v1/purchases", token, map[string]any{
		"supplier_id":    a.supplier.ID,
		"items":          []map[string]any{{"kind": "existing", "product_id": a.product.ID, "quantity": "10"}},
		"deposit":        "160",
		"deposit_method": "Cash",
	}, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	var purchase entity.Purchase
	decode(t, res, &purchase)
	return purchase
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(t, http.MethodGet, "/health", "", nil, nil)
	assert.Equal(t, http.StatusOK, res.Code)

	res = api.do(t, http.MethodGet, "/metrics", "", nil, nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "http_requests_total")
}

func TestRequiresOperatorToken(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(t, http.MethodGet, "/api/v1/purchases", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/purchases", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRejectsForeignStore(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "till-1")

	res := api.do(t, http.MethodGet, "/api/v1/purchases", token, nil, map[string]string{"X-Store-ID": uuid.NewString()})
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/purchases", token, nil, map[string]string{"X-Store-ID": "nope"})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreatePurchaseValidation(t *testing.T) {
	api := newTestAPI(t)

	res := api.do(t, http.MethodPost, "/api/v1/purchases", api.token(t, "till-1"), map[string]any{"items": []any{}}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	env := decode(t, res, nil)
	require.NotEmpty(t, env.Errors)
	assert.Equal(t, "items", env.Errors[0].Field)
}

func TestPurchasePaymentFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "till-1")

	purchase := api.createPurchase(t, token)
	assert.True(t, decimal.NewFromInt(1160).Equal(purchase.GrandTotal))
	assert.True(t, decimal.NewFromInt(1000).Equal(purchase.AmountDue))

	path := "/api/v1/purchases/" + purchase.ID.String()

	res := api.do(t, http.MethodPost, path+"/payments", token, map[string]any{"amount": "5000", "method": "Cash"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = api.do(t, http.MethodPost, path+"/payments", token, map[string]any{"amount": "400", "method": "m-pesa"}, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var result service.PaymentResult
	decode(t, res, &result)
	assert.True(t, decimal.NewFromInt(600).Equal(result.Record.AmountDue))
	assert.Equal(t, "partial", result.Record.PaymentStatus.String())

	res = api.do(t, http.MethodDelete, path, token, nil, nil)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = api.do(t, http.MethodPost, path+"/clear-due", token, map[string]any{"method": "Cash"}, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	decode(t, res, &result)
	assert.True(t, result.Record.AmountDue.IsZero())
	assert.Equal(t, "paid", result.Record.PaymentStatus.String())

	res = api.do(t, http.MethodGet, path+"/payments", token, nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var txs []settlement.Transaction
	decode(t, res, &txs)
	require.Len(t, txs, 3)

	res = api.do(t, http.MethodGet, path+"/payments/"+txs[1].ID.String()+"/receipt", token, nil, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var receipt settlement.PaymentReceipt
	decode(t, res, &receipt)
	assert.True(t, decimal.NewFromInt(400).Equal(receipt.Transaction.Amount))
	assert.True(t, decimal.NewFromInt(160).Equal(receipt.PaidBefore))
	assert.True(t, decimal.NewFromInt(560).Equal(receipt.AmountPaid))
	assert.Equal(t, "partial", receipt.Status)
}

func TestPaymentIdempotencyKey(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "till-1")
	purchase := api.createPurchase(t, token)
	path := "/api/v1/purchases/" + purchase.ID.String()
	headers := map[string]string{"Idempotency-Key": "pay-1"}
	body := map[string]any{"amount": "250", "method": "Cash"}

	first := api.do(t, http.MethodPost, path+"/payments", token, body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	replay := api.do(t, http.MethodPost, path+"/payments", token, body, headers)
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), replay.Body.String())

	conflict := api.do(t, http.MethodPost, path+"/payments", token, map[string]any{"amount": "10", "method": "Cash"}, headers)
	assert.Equal(t, http.StatusConflict, conflict.Code)

	res := api.do(t, http.MethodGet, path, token, nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var stored entity.Purchase
	decode(t, res, &stored)
	assert.True(t, decimal.NewFromInt(750).Equal(stored.AmountDue))
}

func TestIdempotencyKeyIsScopedToPurchase(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "till-1")
	first := api.createPurchase(t, token)
	second := api.createPurchase(t, token)
	headers := map[string]string{"Idempotency-Key": "k-1"}
	body := map[string]any{"amount": "10.00", "method": "Cash"}

	res := api.do(t, http.MethodPost, "/api/v1/purchases/"+first.ID.String()+"/payments", token, body, headers)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = api.do(t, http.MethodPost, "/api/v1/purchases/"+second.ID.String()+"/payments", token, body, headers)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	assert.Empty(t, res.Header().Get("X-Idempotency-Replayed"))

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		res = api.do(t, http.MethodGet, "/api/v1/purchases/"+id.String(), token, nil, nil)
		require.Equal(t, http.StatusOK, res.Code)
		var stored entity.Purchase
		decode(t, res, &stored)
		assert.Equal(t, "170.00", stored.AmountPaid.StringFixed(2), id.String())
	}
}

func TestUpdateCatalogEntries(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "s1")

	res := api.do(t, http.MethodPut, "/api/v1/products/"+api.product.ID.String(), token, map[string]any{
		"buying_price": "90",
		"tax_rate":     "0",
	}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var product entity.Product
	decode(t, res, &product)
	assert.Equal(t, "90.00", product.BuyingPrice.StringFixed(2))
	assert.Equal(t, "MF-1", product.Code)

	purchase := api.createPurchase(t, token)
	assert.Equal(t, "900.00", purchase.GrandTotal.StringFixed(2))

	res = api.do(t, http.MethodPut, "/api/v1/products/"+uuid.NewString(), token, map[string]any{"name": "Ghost"}, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = api.do(t, http.MethodPut, "/api/v1/suppliers/"+api.supplier.ID.String(), token, map[string]any{
		"name":  "Unga Holdings",
		"email": "orders@unga.example",
	}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var supplier entity.Supplier
	decode(t, res, &supplier)
	assert.Equal(t, "Unga Holdings", supplier.Name)
	require.NotNil(t, supplier.Email)
	assert.Equal(t, "orders@unga.example", *supplier.Email)

	res = api.do(t, http.MethodPut, "/api/v1/suppliers/"+api.supplier.ID.String(), token, map[string]any{"email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}

func TestDraftSubmitFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "till-7")
	line := map[string]any{"kind": "existing", "product_id": api.product.ID, "quantity": "2"}

	res := api.do(t, http.MethodPost, "/api/v1/draft/items", token, line, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	line["quantity"] = "3"
	res = api.do(t, http.MethodPost, "/api/v1/draft/items", token, line, nil)
	require.Equal(t, http.StatusCreated, res.Code)

	res = api.do(t, http.MethodGet, "/api/v1/draft", token, nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var view struct {
		Items     []pricing.LineItem `json:"items"`
		Breakdown pricing.Breakdown  `json:"breakdown"`
	}
	decode(t, res, &view)
	require.Len(t, view.Items, 1)
	assert.True(t, decimal.NewFromInt(5).Equal(view.Items[0].Quantity))
	assert.True(t, decimal.NewFromInt(580).Equal(view.Breakdown.GrandTotal))

	// another session has its own draft
	res = api.do(t, http.MethodGet, "/api/v1/draft", api.token(t, "till-8"), nil, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = api.do(t, http.MethodPost, "/api/v1/draft/submit", token, nil, nil)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var purchase entity.Purchase
	decode(t, res, &purchase)
	assert.True(t, decimal.NewFromInt(580).Equal(purchase.GrandTotal))
	assert.Equal(t, "pending", purchase.PaymentStatus.String())

	res = api.do(t, http.MethodGet, "/api/v1/draft", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestStorePaymentMethodsRequireManager(t *testing.T) {
	api := newTestAPI(t)
	body := map[string]any{"methods": []string{"Cash", "Cheque"}}

	res := api.do(t, http.MethodPut, "/api/v1/store/payment-methods", api.token(t, "till-1"), body, nil)
	assert.Equal(t, http.StatusForbidden, res.Code)

	manager := api.token(t, "office", ManagerRole)
	res = api.do(t, http.MethodPut, "/api/v1/store/payment-methods", manager, body, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = api.do(t, http.MethodGet, "/api/v1/payment-methods", manager, nil, nil)
	require.Equal(t, http.StatusOK, res.Code)
	var methods []string
	decode(t, res, &methods)
	assert.Equal(t, []string{"Cash", "Cheque"}, methods)
}

func TestPrintPurchaseReceiptWithoutPrinter(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(t, "till-1")
	purchase := api.createPurchase(t, token)

	res := api.do(t, http.MethodPost, "/api/v1/printer/print", token, map[string]any{"type": "purchase", "id": purchase.ID.String()}, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())

	res = api.do(t, http.MethodPost, "/api/v1/printer/print", token, map[string]any{"type": "payment", "id": purchase.ID.String()}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
}
