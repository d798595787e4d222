package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "stockroom")
	operator, store := uuid.New(), uuid.New()

	token, err := m.GenerateAccessToken(operator, "sess-1", []uuid.UUID{store}, time.Minute)
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, operator, claims.OperatorID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.True(t, claims.CanAccessStore(store))
	assert.False(t, claims.CanAccessStore(uuid.New()))
}

func TestJWTRejectsForeignTokens(t *testing.T) {
	token, err := NewJWTManager("other", "stockroom").GenerateAccessToken(uuid.New(), "s", nil, time.Minute)
	require.NoError(t, err)
	_, err = NewJWTManager("secret", "stockroom").ValidateAccessToken(token)
	assert.Error(t, err)

	expired, err := NewJWTManager("secret", "stockroom").GenerateAccessToken(uuid.New(), "s", nil, -time.Minute)
	require.NoError(t, err)
	_, err = NewJWTManager("secret", "stockroom").ValidateAccessToken(expired)
	assert.Error(t, err)

	wrongIssuer, err := NewJWTManager("secret", "someone-else").GenerateAccessToken(uuid.New(), "s", nil, time.Minute)
	require.NoError(t, err)
	_, err = NewJWTManager("secret", "stockroom").ValidateAccessToken(wrongIssuer)
	assert.Error(t, err)
}

func TestJWTRequiresSession(t *testing.T) {
	m := NewJWTManager("secret", "stockroom")
	token, err := m.GenerateAccessToken(uuid.New(), "", nil, time.Minute)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "main-store", Slugify("  Main   Store! "))
	assert.Equal(t, "duka-la-mama-2", Slugify("Duka la Mama #2"))
}

func TestGenerateReferenceNo(t *testing.T) {
	ref := GenerateReferenceNo("PO", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^PO-20240131-[0-9A-F]{6}$`, ref)
}
