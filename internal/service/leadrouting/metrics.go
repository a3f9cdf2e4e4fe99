package leadrouting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records routing outcomes on a Prometheus registry
type PrometheusMetrics struct {
	evaluations    *prometheus.CounterVec
	decisions      *prometheus.CounterVec
	latency        prometheus.Histogram
	selectedAgents prometheus.Histogram
}

// NewPrometheusMetrics registers routing collectors on reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_routing",
			Name:      "rule_evaluations_total",
			Help:      "Rule condition evaluations by outcome.",
		}, []string{"matched"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lead_routing",
			Name:      "decisions_total",
			Help:      "Routing decisions by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lead_routing",
			Name:      "decision_duration_seconds",
			Help:      "Time spent scoring and selecting agents.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		selectedAgents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lead_routing",
			Name:      "selected_agents_per_decision",
			Help:      "Number of agents selected per routing decision.",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		}),
	}
	reg.MustRegister(m.evaluations, m.decisions, m.latency, m.selectedAgents)
	return m
}

func (m *PrometheusMetrics) RecordEvaluation(_ context.Context, _ uuid.UUID, matched bool) {
	label := "false"
	if matched {
		label = "true"
	}
	m.evaluations.WithLabelValues(label).Inc()
}

func (m *PrometheusMetrics) RecordDecision(_ context.Context, decision *RoutingDecision, latency time.Duration) {
	outcome := "selected"
	switch {
	case len(decision.SelectedAgents) == 0:
		outcome = "no_agents"
	case decision.UsedFallback:
		outcome = "fallback"
	}
	m.decisions.WithLabelValues(outcome).Inc()
	m.latency.Observe(latency.Seconds())
	m.selectedAgents.Observe(float64(len(decision.SelectedAgents)))
}

// metricsNoop is a no-op MetricsCollector for tests and callers that
// do not run a registry
type metricsNoop struct{}

// NewNoopMetrics creates a no-op metrics implementation
func NewNoopMetrics() MetricsCollector {
	return &metricsNoop{}
}

func (m *metricsNoop) RecordEvaluation(context.Context, uuid.UUID, bool) {}

func (m *metricsNoop) RecordDecision(context.Context, *RoutingDecision, time.Duration) {}
