package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sangkips/stockroom-api/internal/config"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	applog "github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Store{},

		&entity.Product{},
		&entity.Customer{},
		&entity.Supplier{},

		&entity.Purchase{},
		&entity.PurchaseItem{},
		&entity.PaymentTransaction{},

		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SeedDefaultStore creates the configured store when no store with its slug
// exists yet, and returns the stored row either way.
func SeedDefaultStore(ctx context.Context, db *gorm.DB, cfg config.StoreConfig, log *applog.Logger) (*entity.Store, error) {
	slug := utils.Slugify(cfg.Name)
	if slug == "" {
		return nil, errors.New("store name is required")
	}

	var store entity.Store
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&store).Error
	if err == nil {
		return &store, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up default store: %w", err)
	}

	store = entity.Store{
		Name:    cfg.Name,
		Slug:    slug,
		Address: cfg.Address,
		Phone:   cfg.Phone,
		TaxID:   cfg.TaxID,
	}
	if err := db.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, fmt.Errorf("failed to create default store: %w", err)
	}

	if log != nil {
		log.Event(ctx, zerolog.InfoLevel).
			Str("store_id", store.ID.String()).
			Str("slug", store.Slug).
			Msg("seeded default store")
	}
	return &store, nil
}
