package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/config"
	"github.com/sangkips/stockroom-api/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func TestStoreRateLimiterIsPerStore(t *testing.T) {
	rl := NewStoreRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2, EntryTTL: time.Minute})
	busy, quiet := uuid.New(), uuid.New()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.Query("store") == "quiet" {
			c.Set("store_id", quiet)
		} else {
			c.Set("store_id", busy)
		}
	}, rl.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)

	limited := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "2", limited.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x?store=quiet", nil).Code)
	assert.Equal(t, 2, rl.Stats()["active_stores"])
}

func TestStoreRateLimiterEvictsIdleStores(t *testing.T) {
	rl := NewStoreRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, EntryTTL: time.Minute})
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter(uuid.New())

	now = now.Add(2 * time.Minute)
	rl.cleanup()

	assert.Equal(t, 0, rl.Stats()["active_stores"])
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := RateLimiterConfigFrom(config.RateLimitConfig{Requests: 120, Duration: 60})
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 120, cfg.BurstSize)

	cfg = RateLimiterConfigFrom(config.RateLimitConfig{})
	assert.Equal(t, 100, cfg.BurstSize)
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if roles := c.Query("roles"); roles != "" {
			c.Set("operator_roles", []string{roles})
		}
	}, RequireRole("manager"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/x?roles=cashier", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x?roles=manager", nil).Code)
}

func TestAuthMiddlewareSetsOperatorSession(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", "stockroom")
	operatorID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(operatorID, "till-3", []uuid.UUID{uuid.New()}, time.Hour)
	assert.NoError(t, err)

	var gotOperator uuid.UUID
	var gotSession string
	r := gin.New()
	r.GET("/x", AuthMiddleware(jwtManager, nil), func(c *gin.Context) {
		gotOperator, _ = c.MustGet("operator_id").(uuid.UUID)
		gotSession = c.GetString("session_id")
		c.Status(http.StatusOK)
	})

	res := serve(r, http.MethodGet, "/x", http.Header{"Authorization": {"Bearer " + token}})
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, operatorID, gotOperator)
	assert.Equal(t, "till-3", gotSession)

	res = serve(r, http.MethodGet, "/x", http.Header{"Authorization": {"Token " + token}})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCORSAlwaysAllowsStoreHeader(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"http://till.local"}, AllowedHeaders: []string{"X-Custom"}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	res := serve(r, http.MethodOptions, "/x", http.Header{
		"Origin":                         {"http://till.local"},
		"Access-Control-Request-Method":  {"POST"},
		"Access-Control-Request-Headers": {"X-Store-ID,Idempotency-Key"},
	})

	assert.Equal(t, http.StatusNoContent, res.Code)
	allowed := strings.ToLower(res.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allowed, "x-store-id")
	assert.Contains(t, allowed, "idempotency-key")
}
