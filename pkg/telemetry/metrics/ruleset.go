package metrics

import (
	"mercator-hq/minerva/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RuleSetMetrics tracks metrics for rule set sources.
//
// Metrics:
//   - minerva_engine_ruleset_reloads_total: Reload attempts by source and status
//   - minerva_engine_rulesets_active: Rule sets currently loaded per source
type RuleSetMetrics struct {
	reloadsTotal *prometheus.CounterVec
	active       *prometheus.GaugeVec
}

// NewRuleSetMetrics creates and registers rule set metrics with the
// provided registry.
func NewRuleSetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RuleSetMetrics {
	rm := &RuleSetMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ruleset_reloads_total",
				Help:      "Total number of rule set source reload attempts",
			},
			[]string{"source", "status"},
		),

		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rulesets_active",
				Help:      "Number of rule sets currently loaded per source",
			},
			[]string{"source"},
		),
	}

	registry.MustRegister(
		rm.reloadsTotal,
		rm.active,
	)

	return rm
}

// RecordReload records a reload attempt for the given source kind.
func (rm *RuleSetMetrics) RecordReload(source, status string) {
	rm.reloadsTotal.WithLabelValues(source, status).Inc()
}

// UpdateActive updates the active rule set gauge for the given source kind.
func (rm *RuleSetMetrics) UpdateActive(source string, count int) {
	rm.active.WithLabelValues(source).Set(float64(count))
}
