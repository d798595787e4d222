package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/config"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	domainRepo "github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/internal/infrastructure/cache"
	"github.com/sangkips/stockroom-api/internal/infrastructure/database"
	"github.com/sangkips/stockroom-api/internal/infrastructure/notification"
	"github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/internal/presentation/http/handler"
	"github.com/sangkips/stockroom-api/internal/presentation/http/middleware"
	"github.com/sangkips/stockroom-api/internal/presentation/http/routes"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/metrics"
	"github.com/sangkips/stockroom-api/pkg/printer"
	"github.com/sangkips/stockroom-api/pkg/utils"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		ServiceName: cfg.App.Name,
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatal(ctx, "failed to connect to database", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(ctx, "failed to run migrations", err)
	}

	store, err := database.SeedDefaultStore(ctx, db, cfg.Store, log)
	if err != nil {
		log.Fatal(ctx, "failed to seed default store", err)
	}
	log.Event(ctx, zerolog.InfoLevel).Str("store_id", store.ID.String()).Msg("default store ready")

	// Drafts and in-flight locks live in redis when it is configured so that
	// several API instances share them.
	var (
		drafts domainRepo.DraftRepository
		guard  settlement.Guard
	)
	redisClient, err := cache.NewClient(ctx, cfg.Redis)
	switch {
	case err == nil:
		defer redisClient.Close()
		drafts = cache.NewRedisDraftStore(redisClient, cfg.Drafts.TTL)
		guard = cache.NewRedisGuard(redisClient, cfg.Settlement.InFlightTTL)
	default:
		if cfg.Redis.Enabled() {
			log.Error(ctx, "redis unavailable, keeping drafts in memory", err)
		}
		drafts = cache.NewMemoryDraftStore(cfg.Drafts.TTL)
		guard = cache.NewMemoryGuard(cfg.Settlement.InFlightTTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Initialize repositories
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	recorder := settlement.NewRecorder(nil)
	notifier := notification.NewSettlementNotifier(log, settlementMetrics)
	storeService := service.NewStoreService(storeRepo, cfg.Payments.Methods)
	pricingService := service.NewPricingService(pricing.NewResolver(cfg.Pricing.PointValueRate), productRepo, customerRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, supplierRepo, pricingService, storeService, recorder)
	settlementService := service.NewSettlementService(purchaseRepo, storeService, recorder, guard, notifier)
	draftService := service.NewDraftService(drafts, pricingService, purchaseService)
	productService := service.NewProductService(productRepo)
	customerService := service.NewCustomerService(customerRepo)
	supplierService := service.NewSupplierService(supplierRepo)

	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Error(ctx, "failed to initialize printer, printing disabled", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()
	printerService := service.NewPrinterService(thermalPrinter, purchaseService, settlementService, storeService, cfg.Printer.Type, cfg.Printer.Width, log)

	handlers := &routes.Handlers{
		Purchase:   handler.NewPurchaseHandler(purchaseService, pricingService),
		Settlement: handler.NewSettlementHandler(settlementService),
		Draft:      handler.NewDraftHandler(draftService),
		Product:    handler.NewProductHandler(productService),
		Customer:   handler.NewCustomerHandler(customerService),
		Supplier:   handler.NewSupplierHandler(supplierService),
		Store:      handler.NewStoreHandler(storeService),
		Printer:    handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewStoreRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))

	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		StoreRepo:       storeRepo,
		Logger:          log,
		HTTPMetrics:     httpMetrics,
		Gatherer:        registry,
		RateLimiter:     rateLimiter,
	})

	done := make(chan struct{})
	go rateLimiter.Run(done, 5*time.Minute)
	go purgeIdempotencyKeys(done, idempotencyRepo, log, time.Hour)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Event(ctx, zerolog.InfoLevel).Str("port", port).Str("env", cfg.App.Env).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(ctx, "failed to start server", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	close(done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "graceful shutdown failed", err)
	}
	log.Info(ctx, "server stopped")
}

func purgeIdempotencyKeys(done <-chan struct{}, repo domainRepo.IdempotencyRepository, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := repo.DeleteExpired(ctx, now)
			cancel()
			if err != nil {
				log.Error(ctx, "failed to purge idempotency keys", err)
				continue
			}
			if removed > 0 {
				log.Event(ctx, zerolog.DebugLevel).Int64("removed", removed).Msg("purged idempotency keys")
			}
		}
	}
}
