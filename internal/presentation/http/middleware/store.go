package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	infraRepo "github.com/sangkips/stockroom-api/internal/infrastructure/repository"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockroom-api/pkg/logger"
)

// StoreHeader selects the store a request acts on.
const StoreHeader = "X-Store-ID"

// StoreMiddleware resolves the store from the X-Store-ID header, or from the
// token when it grants exactly one store, and scopes the request to it.
// It must run after AuthMiddleware.
func StoreMiddleware(storeRepo repository.StoreRepository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		var storeID uuid.UUID
		if header := c.GetHeader(StoreHeader); header != "" {
			id, err := uuid.Parse(header)
			if err != nil {
				response.BadRequest(c, "Invalid store ID format")
				c.Abort()
				return
			}
			storeID = id
		} else if len(claims.Stores) == 1 {
			storeID = claims.Stores[0]
		} else {
			response.BadRequest(c, "X-Store-ID header is required")
			c.Abort()
			return
		}

		if !claims.CanAccessStore(storeID) {
			response.Forbidden(c, "Access denied to this store")
			c.Abort()
			return
		}

		store, err := storeRepo.GetByID(c.Request.Context(), storeID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if store == nil {
			response.NotFound(c, "Store not found")
			c.Abort()
			return
		}

		c.Set("store_id", store.ID)

		ctx := infraRepo.WithStore(c.Request.Context(), store.ID)
		if log != nil {
			ctx = log.WithStoreID(ctx, store.ID.String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetStoreID retrieves the store ID from gin context
func GetStoreID(c *gin.Context) uuid.UUID {
	storeID, exists := c.Get("store_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := storeID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
