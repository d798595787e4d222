package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil", nil, OutcomeSuccess},
		{"validation", NewFieldValidationError("amount", "must be positive"), OutcomeValidationError},
		{"policy", NewPolicyViolation("record cannot be deleted"), OutcomePolicyViolation},
		{"remote", NewRemoteError(errors.New("connection refused")), OutcomeServerError},
		{"not found", NewNotFoundError("Purchase"), OutcomeValidationError},
		{"plain error", errors.New("boom"), OutcomeServerError},
		{"wrapped policy", fmt.Errorf("pay: %w", ErrInFlight), OutcomePolicyViolation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestNewRemoteErrorKeepsCollaboratorDetail(t *testing.T) {
	cause := NewFieldValidationError("amount", "amount exceeds amount due")
	remote := NewRemoteError(cause)

	require.NotNil(t, remote)
	assert.Equal(t, KindRemote, remote.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, remote.Code)
	assert.Equal(t, "amount exceeds amount due", remote.Message)
	assert.Len(t, remote.Errors, 1)
	assert.True(t, errors.Is(remote, cause))
}

func TestNewRemoteErrorDefaultsToBadGateway(t *testing.T) {
	remote := NewRemoteError(errors.New("dial tcp: timeout"))
	assert.Equal(t, http.StatusBadGateway, remote.Code)
	assert.Nil(t, NewRemoteError(nil))
}

func TestGetAppErrorWrapsPlainErrors(t *testing.T) {
	appErr := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.True(t, IsKind(NewPolicyViolation("x"), KindPolicy))
	assert.False(t, IsKind(errors.New("x"), KindPolicy))
}
