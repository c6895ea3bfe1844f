package metrics

import (
	"time"

	"mercator-hq/minerva/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks metrics for the evaluation pipeline.
//
// Metrics:
//   - minerva_engine_evaluations_total: Completed evaluations by rule set and outcome
//   - minerva_engine_evaluation_duration_seconds: End-to-end pipeline duration
//   - minerva_engine_evaluation_errors_total: Evaluations failed before a decision
//   - minerva_engine_requirements_evaluated_total: Requirement results by status
//   - minerva_engine_conflicts_total: Rule/AI outcome disagreements
type EvaluationMetrics struct {
	// Completed evaluations
	evaluationsTotal *prometheus.CounterVec

	// End-to-end evaluation duration histogram
	evaluationDuration *prometheus.HistogramVec

	// Evaluations that failed before producing a decision
	errorsTotal *prometheus.CounterVec

	// Requirement results by status (passed, failed, missing, error)
	requirementsTotal *prometheus.CounterVec

	// Disagreements between rule outcome and AI judgment
	conflictsTotal *prometheus.CounterVec
}

// NewEvaluationMetrics creates and registers evaluation metrics with the
// provided registry.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of completed eligibility evaluations",
			},
			[]string{"ruleset_id", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "End-to-end duration of the evaluation pipeline in seconds",
				// Rule aggregation is sub-millisecond; the AI judgment call
				// dominates the upper buckets.
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"ruleset_id"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_errors_total",
				Help:      "Total number of evaluations that failed before producing a decision",
			},
			[]string{"ruleset_id", "stage"},
		),

		requirementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requirements_evaluated_total",
				Help:      "Total number of requirement evaluations by result status",
			},
			[]string{"status"},
		),

		conflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "conflicts_total",
				Help:      "Total number of disagreements between rule outcome and AI judgment",
			},
			[]string{"ruleset_id"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.errorsTotal,
		em.requirementsTotal,
		em.conflictsTotal,
	)

	return em
}

// RecordEvaluation records a completed evaluation.
func (em *EvaluationMetrics) RecordEvaluation(rulesetID, outcome string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(rulesetID, outcome).Inc()
	em.evaluationDuration.WithLabelValues(rulesetID).Observe(duration.Seconds())
}

// RecordError records an evaluation that failed at the given pipeline stage.
func (em *EvaluationMetrics) RecordError(rulesetID, stage string) {
	em.errorsTotal.WithLabelValues(rulesetID, stage).Inc()
}

// RecordRequirements adds count requirement results with the given status.
func (em *EvaluationMetrics) RecordRequirements(status string, count int) {
	em.requirementsTotal.WithLabelValues(status).Add(float64(count))
}

// RecordConflict records a rule/AI outcome disagreement.
func (em *EvaluationMetrics) RecordConflict(rulesetID string) {
	em.conflictsTotal.WithLabelValues(rulesetID).Inc()
}
