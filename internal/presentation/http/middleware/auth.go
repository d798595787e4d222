package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/utils"
)

// AuthMiddleware verifies the operator token and exposes its claims.
// Sign-in happens elsewhere; this service only checks tokens.
func AuthMiddleware(jwtManager *utils.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("operator_id", claims.OperatorID)
		c.Set("session_id", claims.SessionID)
		c.Set("operator_roles", claims.Roles)
		c.Set("claims", claims)

		if log != nil {
			ctx := log.WithOperatorID(c.Request.Context(), claims.OperatorID.String())
			ctx = log.WithSessionID(ctx, claims.SessionID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// GetClaims returns the verified token claims, if any.
func GetClaims(c *gin.Context) *utils.JWTClaims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, _ := value.(*utils.JWTClaims)
	return claims
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoles, exists := c.Get("operator_roles")
		if !exists {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		operatorRoles, ok := userRoles.([]string)
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, have := range operatorRoles {
			for _, want := range roles {
				if have == want {
					c.Next()
					return
				}
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}
