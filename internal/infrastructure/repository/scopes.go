package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/pkg/pagination"
	"gorm.io/gorm"
)

type ctxKey string

// StoreIDKey is the context key for store ID
const StoreIDKey ctxKey = "store_id"

// StoreScope returns a GORM scope that filters by store.
// It should be applied to all queries for store-scoped entities.
func StoreScope(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		storeID, ok := GetStoreID(ctx)
		if !ok {
			// Fail-safe: no store in context means no rows
			return db.Where("1 = 0")
		}
		return db.Where("store_id = ?", storeID)
	}
}

// WithStore adds store ID to context
func WithStore(ctx context.Context, storeID uuid.UUID) context.Context {
	return context.WithValue(ctx, StoreIDKey, storeID)
}

// GetStoreID extracts store ID from context
func GetStoreID(ctx context.Context) (uuid.UUID, bool) {
	storeID, ok := ctx.Value(StoreIDKey).(uuid.UUID)
	return storeID, ok && storeID != uuid.Nil
}

// searchScope matches term case-insensitively against any of columns.
func searchScope(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + strings.ToLower(term) + "%"
		conds := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		return db.Where(strings.Join(conds, " OR "), args...)
	}
}

// paginate clamps params and limits the query to the requested page.
func paginate(params *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		params.Validate()
		return db.Offset(params.Offset()).Limit(params.PerPage)
	}
}

// findPage counts the rows matched by query, then loads one page of them.
func findPage[T any](query *gorm.DB, params *pagination.PaginationParams, order string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []T
	err := query.Scopes(paginate(params)).Order(order).Find(&rows).Error
	return rows, total, err
}
