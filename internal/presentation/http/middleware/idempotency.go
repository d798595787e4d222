package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sangkips/stockroom-api/internal/domain/entity"
	"github.com/sangkips/stockroom-api/internal/domain/repository"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockroom-api/pkg/logger"
)

const (
	// IdempotencyKeyHeader is the HTTP header for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL is how long keys are valid
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	Logger *logger.Logger
	Now    func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a mutation retried with the same
// Idempotency-Key. Keys are scoped to the store and the request path; reusing
// a key for a different request body on the same path is a conflict. Only 2xx responses are stored, so a
// rejected payment can be retried after it is fixed.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		storeID := GetStoreID(c)
		if storeID == uuid.Nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.BadRequest(c, "Unable to read request body")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		// the concrete path, so one key reused on another purchase is a new request
		endpoint := c.Request.Method + " " + c.Request.URL.Path
		hash := requestHash(endpoint, body)

		ctx := c.Request.Context()
		existing, err := config.Repo.GetByKey(ctx, key, storeID, endpoint)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		if existing != nil && existing.IsExpired(config.Now()) {
			// the unique index still holds the stale row
			if _, err := config.Repo.DeleteExpired(ctx, config.Now()); err != nil {
				response.Error(c, err)
				c.Abort()
				return
			}
			existing = nil
		}

		if existing != nil {
			if existing.RequestHash != hash {
				response.ErrorWithCode(c, http.StatusConflict, "Idempotency-Key was already used for a different request")
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		var operatorID uuid.UUID
		if id := operatorFromContext(c); id != nil {
			operatorID = *id
		}

		ikey := &entity.IdempotencyKey{
			Key:          key,
			StoreID:      storeID,
			OperatorID:   operatorID,
			Endpoint:     endpoint,
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    config.Now().Add(IdempotencyKeyTTL),
		}
		if err := config.Repo.Create(ctx, ikey); err != nil {
			config.Logger.Event(ctx, zerolog.WarnLevel).Err(err).Str("key", key).Msg("failed to store idempotency key")
		}
	}
}

func requestHash(endpoint string, body []byte) string {
	sum := sha256.New()
	sum.Write([]byte(endpoint))
	sum.Write([]byte{0})
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

func operatorFromContext(c *gin.Context) *uuid.UUID {
	value, exists := c.Get("operator_id")
	if !exists {
		return nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
