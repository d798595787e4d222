package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	domainRepo "github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Scopes(StoreScope(ctx)).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Scopes(StoreScope(ctx)).
		Where("id IN ?", ids).
		Find(&products).Error
	return products, err
}

func (r *productRepository) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	var product entity.Product
	err := r.db.WithContext(ctx).Scopes(StoreScope(ctx)).First(&product, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &product, err
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Product{}).
		Scopes(StoreScope(ctx), searchScope(search, "name", "code"))
	return findPage[entity.Product](query, params, "name ASC")
}

// incrementStock adds received quantities to product stock inside tx.
func incrementStock(tx *gorm.DB, increments map[uuid.UUID]decimal.Decimal) error {
	for id, amount := range increments {
		if err := tx.Model(&entity.Product{}).
			Where("id = ?", id).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", amount)).Error; err != nil {
			return err
		}
	}
	return nil
}
