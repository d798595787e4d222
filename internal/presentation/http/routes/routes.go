package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/stockroom-api/internal/config"
	domainRepo "github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/presentation/http/handler"
	"github.com/sangkips/stockroom-api/internal/presentation/http/middleware"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/metrics"
	"github.com/sangkips/stockroom-api/pkg/utils"
)

// ManagerRole may change store-wide settings.
const ManagerRole = "manager"

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Purchase   *handler.PurchaseHandler
	Settlement *handler.SettlementHandler
	Draft      *handler.DraftHandler
	Product    *handler.ProductHandler
	Customer   *handler.CustomerHandler
	Supplier   *handler.SupplierHandler
	Store      *handler.StoreHandler
	Printer    *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	StoreRepo       domainRepo.StoreRepository
	Logger          *logger.Logger
	HTTPMetrics     *metrics.HTTPMetrics
	Gatherer        prometheus.Gatherer
	RateLimiter     *middleware.StoreRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	handler.RegisterValidation()

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(log, deps.HTTPMetrics))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager, log))
		protected.Use(middleware.StoreMiddleware(deps.StoreRepo, log))

		rateLimiter := deps.RateLimiter
		if rateLimiter == nil {
			rateLimiter = middleware.NewStoreRateLimiter(middleware.RateLimiterConfigFrom(deps.Cfg.RateLimit))
		}
		protected.Use(rateLimiter.Middleware())

		if deps.IdempotencyRepo != nil {
			protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
				Repo:   deps.IdempotencyRepo,
				Logger: log,
			}))
		}

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	registerStoreRoutes(protected, h)
	registerPurchaseRoutes(protected, h)
	registerDraftRoutes(protected, h)
	registerProductRoutes(protected, h)
	registerCustomerRoutes(protected, h)
	registerSupplierRoutes(protected, h)
	registerPrinterRoutes(protected, h)
}

func registerStoreRoutes(protected *gin.RouterGroup, h *Handlers) {
	protected.GET("/store", h.Store.Current)
	protected.PUT("/store/payment-methods", middleware.RequireRole(ManagerRole), h.Store.UpdatePaymentMethods)
	protected.GET("/payment-methods", h.Settlement.PaymentMethods)
}

func registerPurchaseRoutes(protected *gin.RouterGroup, h *Handlers) {
	purchases := protected.Group("/purchases")
	{
		purchases.GET("", h.Purchase.List)
		purchases.POST("", h.Purchase.Create)
		purchases.POST("/quote", h.Purchase.Quote)
		purchases.GET("/due", h.Settlement.ListDue)
		purchases.GET("/:id", h.Purchase.Get)
		purchases.DELETE("/:id", h.Settlement.Delete)
		purchases.GET("/:id/snapshot", h.Purchase.Snapshot)
		purchases.POST("/:id/receive", h.Purchase.Receive)
		purchases.POST("/:id/cancel", h.Purchase.Cancel)
		purchases.GET("/:id/payments", h.Settlement.ListTransactions)
		purchases.POST("/:id/payments", h.Settlement.Pay)
		purchases.GET("/:id/payments/:tx_id/receipt", h.Settlement.Receipt)
		purchases.POST("/:id/clear-due", h.Settlement.ClearDue)
	}
}

func registerDraftRoutes(protected *gin.RouterGroup, h *Handlers) {
	draft := protected.Group("/draft")
	{
		draft.POST("", h.Draft.Start)
		draft.GET("", h.Draft.Get)
		draft.DELETE("", h.Draft.Cancel)
		draft.PATCH("", h.Draft.SetDetails)
		draft.POST("/items", h.Draft.AddItem)
		draft.DELETE("/items", h.Draft.ClearItems)
		draft.PATCH("/items/:item_id", h.Draft.UpdateItem)
		draft.DELETE("/items/:item_id", h.Draft.RemoveItem)
		draft.PUT("/discount", h.Draft.SetDiscount)
		draft.GET("/snapshot", h.Draft.Snapshot)
		draft.POST("/submit", h.Draft.Submit)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
	}
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
	}
}

func registerSupplierRoutes(protected *gin.RouterGroup, h *Handlers) {
	suppliers := protected.Group("/suppliers")
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/print", h.Printer.PrintReceipt)
	}
}
