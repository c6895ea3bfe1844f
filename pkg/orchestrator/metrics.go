package orchestrator

import (
	"time"

	"mercator-hq/minerva/pkg/eligibility"
	"mercator-hq/minerva/pkg/telemetry/metrics"
)

// MetricsObserver adapts the telemetry collector to the orchestrator's
// Observer interface and to review.Observer, so neither the orchestrator
// nor the escalator imports prometheus.
type MetricsObserver struct {
	collector *metrics.Collector
}

// NewMetricsObserver wraps a collector. A nil collector yields an observer
// that drops every event.
func NewMetricsObserver(collector *metrics.Collector) *MetricsObserver {
	return &MetricsObserver{collector: collector}
}

func (m *MetricsObserver) EvaluationCompleted(rulesetID string, outcome eligibility.Outcome, duration time.Duration) {
	if m.collector == nil {
		return
	}
	m.collector.RecordEvaluation(rulesetID, string(outcome), duration)
}

func (m *MetricsObserver) EvaluationFailed(rulesetID, stage string) {
	if m.collector == nil {
		return
	}
	m.collector.RecordEvaluationError(rulesetID, stage)
}

func (m *MetricsObserver) RequirementsTallied(passed, failed, blocked, errored int) {
	if m.collector == nil {
		return
	}
	m.collector.RecordRequirements("passed", passed)
	m.collector.RecordRequirements("failed", failed)
	m.collector.RecordRequirements("blocked", blocked)
	m.collector.RecordRequirements("errored", errored)
}

func (m *MetricsObserver) ConflictDetected(rulesetID string) {
	if m.collector == nil {
		return
	}
	m.collector.RecordConflict(rulesetID)
}

func (m *MetricsObserver) JudgmentCall(status string, latency time.Duration) {
	if m.collector == nil {
		return
	}
	m.collector.RecordJudgment(status, latency)
}

// review.Observer implementation, so one adapter serves both pipelines.

func (m *MetricsObserver) ReviewRequested() {
	if m.collector == nil {
		return
	}
	m.collector.RecordReviewRequested()
}

func (m *MetricsObserver) ReviewDropped() {
	if m.collector == nil {
		return
	}
	m.collector.RecordReviewDropped()
}

func (m *MetricsObserver) ReviewFailed(reason string) {
	if m.collector == nil {
		return
	}
	m.collector.RecordReviewFailed(reason)
}

func (m *MetricsObserver) QueueDepth(depth int) {
	if m.collector == nil {
		return
	}
	m.collector.UpdateReviewQueueDepth(depth)
}
