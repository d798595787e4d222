package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SettlementMetrics counts settlement actions by outcome.
type SettlementMetrics struct {
	actions *prometheus.CounterVec
	amount  *prometheus.CounterVec
}

// NewSettlementMetrics registers the settlement metrics on the provided registerer.
func NewSettlementMetrics(reg prometheus.Registerer) *SettlementMetrics {
	if reg == nil {
		return &SettlementMetrics{}
	}
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_actions_total",
		Help: "Settlement actions by action and outcome.",
	}, []string{"action", "outcome"})
	amount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_paid_amount_total",
		Help: "Sum of acknowledged payment amounts by method.",
	}, []string{"method"})
	reg.MustRegister(actions, amount)
	return &SettlementMetrics{actions: actions, amount: amount}
}

// IncAction counts one settlement action.
func (m *SettlementMetrics) IncAction(action, outcome string) {
	if m == nil || m.actions == nil {
		return
	}
	m.actions.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// AddPaid adds an acknowledged payment amount.
func (m *SettlementMetrics) AddPaid(method string, amount float64) {
	if m == nil || m.amount == nil || amount <= 0 {
		return
	}
	m.amount.WithLabelValues(normalizeLabel(method)).Add(amount)
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
