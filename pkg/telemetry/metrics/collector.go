package metrics

import (
	"sync"
	"time"

	"mercator-hq/minerva/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the main orchestrator for all Prometheus metrics in Minerva.
// It manages metric registration and provides a unified interface for
// recording metrics across all components.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Evaluation pipeline metrics
	evaluationMetrics *EvaluationMetrics

	// AI judgment metrics
	judgmentMetrics *JudgmentMetrics

	// Human review escalation metrics
	reviewMetrics *ReviewMetrics

	// Rule set source metrics
	rulesetMetrics *RuleSetMetrics

	// Cardinality tracking for rule set labels
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "minerva",
//		Subsystem: "engine",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "minerva"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "engine"
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: NewCardinalityLimiter(1000),
	}

	c.evaluationMetrics = NewEvaluationMetrics(cfg, registry)
	c.judgmentMetrics = NewJudgmentMetrics(cfg, registry)
	c.reviewMetrics = NewReviewMetrics(cfg, registry)
	c.rulesetMetrics = NewRuleSetMetrics(cfg, registry)

	return c
}

// RecordEvaluation records metrics for a completed evaluation pipeline run.
//
// Parameters:
//   - rulesetID: Rule set identifier (e.g., "uk-skilled-worker")
//   - outcome: Final decision outcome ("likely", "possible", "unlikely")
//   - duration: Total pipeline duration
func (c *Collector) RecordEvaluation(rulesetID, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	rulesetID = c.boundRuleSetID(rulesetID)
	c.evaluationMetrics.RecordEvaluation(rulesetID, outcome, duration)
}

// RecordEvaluationError records an evaluation that failed before producing
// a decision.
//
// Parameters:
//   - rulesetID: Rule set identifier
//   - stage: Pipeline stage that failed ("resolve", "facts", "aggregate", "persist")
func (c *Collector) RecordEvaluationError(rulesetID, stage string) {
	if !c.config.Enabled {
		return
	}

	rulesetID = c.boundRuleSetID(rulesetID)
	c.evaluationMetrics.RecordError(rulesetID, stage)
}

// RecordRequirements adds to the per-status requirement tally.
//
// Parameters:
//   - status: Requirement result status ("passed", "failed", "missing", "error")
//   - count: Number of requirements with that status in this evaluation
func (c *Collector) RecordRequirements(status string, count int) {
	if !c.config.Enabled || count <= 0 {
		return
	}

	c.evaluationMetrics.RecordRequirements(status, count)
}

// RecordConflict records a disagreement between the rule outcome and the
// AI judgment.
//
// Parameters:
//   - rulesetID: Rule set identifier
func (c *Collector) RecordConflict(rulesetID string) {
	if !c.config.Enabled {
		return
	}

	rulesetID = c.boundRuleSetID(rulesetID)
	c.evaluationMetrics.RecordConflict(rulesetID)
}

// RecordJudgment records an AI judgment call.
//
// Parameters:
//   - status: Call status ("ok", "unparsed", "error")
//   - latency: Round-trip latency of the judgment service call
func (c *Collector) RecordJudgment(status string, latency time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.judgmentMetrics.RecordCall(status, latency)
}

// RecordReviewRequested records a review escalation accepted onto the queue.
func (c *Collector) RecordReviewRequested() {
	if !c.config.Enabled {
		return
	}

	c.reviewMetrics.RecordRequested()
}

// RecordReviewFailed records a review escalation that failed at the
// review service.
//
// Parameters:
//   - reason: Failure class ("auth", "rate_limit", "service", "parse", "attach")
func (c *Collector) RecordReviewFailed(reason string) {
	if !c.config.Enabled {
		return
	}

	c.reviewMetrics.RecordFailed(reason)
}

// RecordReviewDropped records a review escalation dropped because the
// queue was full.
func (c *Collector) RecordReviewDropped() {
	if !c.config.Enabled {
		return
	}

	c.reviewMetrics.RecordDropped()
}

// UpdateReviewQueueDepth updates the review escalation queue depth gauge.
func (c *Collector) UpdateReviewQueueDepth(depth int) {
	if !c.config.Enabled {
		return
	}

	c.reviewMetrics.UpdateQueueDepth(depth)
}

// RecordRuleSetReload records a rule set source reload attempt.
//
// Parameters:
//   - source: Source kind ("file", "git", "memory")
//   - status: Reload status ("success", "error")
func (c *Collector) RecordRuleSetReload(source, status string) {
	if !c.config.Enabled {
		return
	}

	c.rulesetMetrics.RecordReload(source, status)
}

// UpdateActiveRuleSets updates the gauge of rule sets currently loaded.
//
// Parameters:
//   - source: Source kind ("file", "git", "memory")
//   - count: Number of rule sets held by that source
func (c *Collector) UpdateActiveRuleSets(source string, count int) {
	if !c.config.Enabled {
		return
	}

	c.rulesetMetrics.UpdateActive(source, count)
}

// Registry returns the Prometheus registry used by this collector.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// boundRuleSetID aggregates rule set IDs into "other" once the label
// cardinality limit is reached.
func (c *Collector) boundRuleSetID(rulesetID string) string {
	if !c.cardinalityLimiter.Allow(rulesetID) {
		return "other"
	}
	return rulesetID
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the
// specified maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label set is allowed. Returns true if the label set
// already exists or if the cardinality limit has not been reached yet.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
