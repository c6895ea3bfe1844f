// Package metrics provides Prometheus metrics collection for Minerva.
//
// # Overview
//
// The metrics package implements Prometheus metrics for monitoring the
// evaluation pipeline, AI judgment calls, human review escalation, and
// rule set sources.
//
// # Metrics Categories
//
//   - Evaluation Metrics: Evaluation count, duration, requirement tallies,
//     and rule/AI conflicts
//   - Judgment Metrics: AI judgment call count by status and latency
//   - Review Metrics: Escalations requested, failed, dropped, and queue depth
//   - Rule Set Metrics: Source reloads and active rule set counts
//
// # Usage
//
//	// Create collector
//	collector := metrics.NewCollector(config, registry)
//
//	// Record a completed evaluation
//	collector.RecordEvaluation(
//		"uk-skilled-worker", // rule set
//		"likely",            // outcome
//		120*time.Millisecond,
//	)
//
//	// Record requirement tallies
//	collector.RecordRequirements("passed", 9)
//	collector.RecordRequirements("missing", 2)
//
//	// Record an AI judgment call
//	collector.RecordJudgment("ok", 800*time.Millisecond)
//
// # Prometheus Endpoint
//
// All metrics are exposed on the /metrics endpoint in standard Prometheus format:
//
//	# HELP minerva_engine_evaluations_total Total number of completed eligibility evaluations
//	# TYPE minerva_engine_evaluations_total counter
//	minerva_engine_evaluations_total{ruleset_id="uk-skilled-worker",outcome="likely"} 1234
//
// # Cardinality Management
//
// The collector bounds rule set label cardinality: once 1,000 unique rule
// set IDs have been seen, further IDs are aggregated into "other".
package metrics
