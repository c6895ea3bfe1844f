package metrics

import (
	"mercator-hq/minerva/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ReviewMetrics tracks metrics for human review escalation.
//
// Metrics:
//   - minerva_engine_reviews_requested_total: Escalations accepted onto the queue
//   - minerva_engine_review_failures_total: Escalations that failed at the review service
//   - minerva_engine_reviews_dropped_total: Escalations dropped because the queue was full
//   - minerva_engine_review_queue_depth: Current escalation queue depth
type ReviewMetrics struct {
	requestedTotal prometheus.Counter
	failuresTotal  *prometheus.CounterVec
	droppedTotal   prometheus.Counter
	queueDepth     prometheus.Gauge
}

// NewReviewMetrics creates and registers review metrics with the
// provided registry.
func NewReviewMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ReviewMetrics {
	rm := &ReviewMetrics{
		requestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reviews_requested_total",
				Help:      "Total number of review escalations accepted onto the queue",
			},
		),

		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "review_failures_total",
				Help:      "Total number of review escalations that failed",
			},
			[]string{"reason"},
		),

		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reviews_dropped_total",
				Help:      "Total number of review escalations dropped because the queue was full",
			},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "review_queue_depth",
				Help:      "Current number of review escalations waiting on the queue",
			},
		),
	}

	registry.MustRegister(
		rm.requestedTotal,
		rm.failuresTotal,
		rm.droppedTotal,
		rm.queueDepth,
	)

	return rm
}

// RecordRequested records an escalation accepted onto the queue.
func (rm *ReviewMetrics) RecordRequested() {
	rm.requestedTotal.Inc()
}

// RecordFailed records an escalation that failed at the review service.
func (rm *ReviewMetrics) RecordFailed(reason string) {
	rm.failuresTotal.WithLabelValues(reason).Inc()
}

// RecordDropped records an escalation dropped because the queue was full.
func (rm *ReviewMetrics) RecordDropped() {
	rm.droppedTotal.Inc()
}

// UpdateQueueDepth updates the queue depth gauge.
func (rm *ReviewMetrics) UpdateQueueDepth(depth int) {
	rm.queueDepth.Set(float64(depth))
}
