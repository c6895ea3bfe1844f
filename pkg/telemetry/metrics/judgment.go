package metrics

import (
	"time"

	"mercator-hq/minerva/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JudgmentMetrics tracks metrics for AI judgment service calls.
//
// Metrics:
//   - minerva_engine_judgment_requests_total: Judgment calls by status
//   - minerva_engine_judgment_latency_seconds: Judgment call latency
type JudgmentMetrics struct {
	// Judgment calls by status (ok, unparsed, error)
	requestsTotal *prometheus.CounterVec

	// Judgment call latency histogram
	latency prometheus.Histogram
}

// NewJudgmentMetrics creates and registers judgment metrics with the
// provided registry.
func NewJudgmentMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JudgmentMetrics {
	jm := &JudgmentMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "judgment_requests_total",
				Help:      "Total number of AI judgment service calls",
			},
			[]string{"status"},
		),

		latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "judgment_latency_seconds",
				Help:      "Round-trip latency of AI judgment service calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
			},
		),
	}

	registry.MustRegister(
		jm.requestsTotal,
		jm.latency,
	)

	return jm
}

// RecordCall records a judgment service call.
//
// Status is one of:
//   - "ok": the assessment text normalized to a valid outcome
//   - "unparsed": the service responded but no outcome could be read
//   - "error": the call failed
func (jm *JudgmentMetrics) RecordCall(status string, latency time.Duration) {
	jm.requestsTotal.WithLabelValues(status).Inc()
	jm.latency.Observe(latency.Seconds())
}
