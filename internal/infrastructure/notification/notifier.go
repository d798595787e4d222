package notification

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/sangkips/stockroom-api/internal/domain/settlement"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/logger"
	"github.com/sangkips/stockroom-api/pkg/metrics"
)

// SettlementNotifier turns classified settlement outcomes into log entries
// and counters. Message wording for operators is left to the client.
type SettlementNotifier struct {
	log     *logger.Logger
	metrics *metrics.SettlementMetrics
}

// NewSettlementNotifier creates a notifier; m may be nil.
func NewSettlementNotifier(log *logger.Logger, m *metrics.SettlementMetrics) *SettlementNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &SettlementNotifier{log: log, metrics: m}
}

var _ settlement.Notifier = (*SettlementNotifier)(nil)

func (n *SettlementNotifier) Notify(ctx context.Context, event settlement.Event) {
	n.metrics.IncAction(string(event.Action), string(event.Outcome))
	if event.Outcome == apperror.OutcomeSuccess && event.Amount.IsPositive() {
		n.metrics.AddPaid(event.Method, event.Amount.InexactFloat64())
	}

	entry := n.log.Event(ctx, levelFor(event.Outcome)).
		Str("action", string(event.Action)).
		Str("order_id", event.OrderID.String()).
		Str("session_id", event.SessionID).
		Str("outcome", string(event.Outcome))
	if !event.Amount.IsZero() {
		entry = entry.Str("amount", event.Amount.StringFixed(2))
	}
	if event.Method != "" {
		entry = entry.Str("method", event.Method)
	}
	if event.Err != nil {
		entry = entry.Err(event.Err)
	}
	entry.Msg("settlement action")

	if event.ReleaseErr != nil {
		n.log.Event(ctx, zerolog.ErrorLevel).
			Err(event.ReleaseErr).
			Str("order_id", event.OrderID.String()).
			Str("session_id", event.SessionID).
			Msg("in-flight lock not released; record blocked until it expires")
	}
}

func levelFor(outcome apperror.Outcome) zerolog.Level {
	switch outcome {
	case apperror.OutcomeSuccess:
		return zerolog.InfoLevel
	case apperror.OutcomeServerError:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
