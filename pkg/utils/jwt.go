package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims represents the claims in an operator token
type JWTClaims struct {
	OperatorID uuid.UUID   `json:"operator_id"`
	SessionID  string      `json:"session_id"`
	Stores     []uuid.UUID `json:"stores"`
	Roles      []string    `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessStore reports whether the token was issued for storeID.
func (c *JWTClaims) CanAccessStore(storeID uuid.UUID) bool {
	for _, id := range c.Stores {
		if id == storeID {
			return true
		}
	}
	return false
}

// JWTManager validates operator tokens. Tokens are issued by the sign-in
// service; GenerateAccessToken exists for tooling and tests.
type JWTManager struct {
	secretKey []byte
	issuer    string
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{secretKey: []byte(secret), issuer: issuer}
}

// GenerateAccessToken signs a token for an operator session.
func (m *JWTManager) GenerateAccessToken(operatorID uuid.UUID, sessionID string, stores []uuid.UUID, expiry time.Duration, roles ...string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		OperatorID: operatorID,
		SessionID:  sessionID,
		Stores:     stores,
		Roles:      roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   operatorID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.OperatorID == uuid.Nil || claims.SessionID == "" {
		return nil, errors.New("token has no operator session")
	}

	return claims, nil
}
