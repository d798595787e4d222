package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementNotifierLogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: &buf})
	reg := prometheus.NewRegistry()
	m := metrics.NewSettlementMetrics(reg)
	n := NewSettlementNotifier(log, m)

	n.Notify(context.Background(), settlement.Event{
		Action:    settlement.ActionPartialPayment,
		OrderID:   uuid.New(),
		SessionID: "s1",
		Amount:    decimal.RequireFromString("400"),
		Method:    "Cash",
		Outcome:   apperror.OutcomeSuccess,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "partial_payment", entry["action"])
	assert.Equal(t, "400.00", entry["amount"])
	assert.Equal(t, "Cash", entry["method"])

	expected := `
# HELP settlement_actions_total Settlement actions by action and outcome.
# TYPE settlement_actions_total counter
settlement_actions_total{action="partial_payment",outcome="success"} 1
# HELP settlement_paid_amount_total Sum of acknowledged payment amounts by method.
# TYPE settlement_paid_amount_total counter
settlement_paid_amount_total{method="Cash"} 400
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"settlement_actions_total", "settlement_paid_amount_total"))
}

func TestSettlementNotifierWarnsOnPolicy(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: zerolog.DebugLevel, Output: &buf})
	n := NewSettlementNotifier(log, nil)

	err := apperror.NewPolicyViolation("cannot delete")
	n.Notify(context.Background(), settlement.Event{
		Action:  settlement.ActionDelete,
		Outcome: apperror.Classify(err),
		Err:     err,
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "cannot delete", entry["error"])
	assert.Equal(t, "policy_violation", entry["outcome"])
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, zerolog.ErrorLevel, levelFor(apperror.Classify(errors.New("boom"))))
	assert.Equal(t, zerolog.WarnLevel, levelFor(apperror.OutcomeValidationError))
}

func TestSettlementNotifierLogsFailedRelease(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: zerolog.DebugLevel, Output: &buf})
	n := NewSettlementNotifier(log, nil)

	n.Notify(context.Background(), settlement.Event{
		Action:     settlement.ActionClearDue,
		OrderID:    uuid.New(),
		SessionID:  "s1",
		Outcome:    apperror.OutcomeSuccess,
		ReleaseErr: errors.New("redis down"),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "redis down", entry["error"])
	assert.Equal(t, "s1", entry["session_id"])
}
