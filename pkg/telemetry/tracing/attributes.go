package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names used across the evaluation pipeline. The root span covers
// the whole pipeline; the rest are its children in execution order.
const (
	SpanEvaluation     = "evaluation"
	SpanRuleSetResolve = "ruleset.resolve"
	SpanFactsFetch     = "facts.fetch"
	SpanAggregate      = "eligibility.aggregate"
	SpanJudgment       = "judgment.assess"
	SpanReconcile      = "reconcile"
	SpanPersist        = "decision.persist"
)

// Span Attribute Helpers
//
// These functions provide a convenient way to set common attributes on
// spans, with consistent naming across the codebase. Custom attribute
// keys use the "minerva.*" namespace.

// Common attribute keys used throughout the system
const (
	// Case attributes
	AttrCaseID = "minerva.case_id"

	// Rule set attributes
	AttrRuleSetID      = "minerva.ruleset.id"
	AttrRuleSetVersion = "minerva.ruleset.version"

	// Outcome attributes
	AttrRuleOutcome  = "minerva.outcome.rule"
	AttrAIOutcome    = "minerva.outcome.ai"
	AttrFinalOutcome = "minerva.outcome.final"

	// Requirement attributes
	AttrRequirementsTotal  = "minerva.requirements.total"
	AttrRequirementsPassed = "minerva.requirements.passed"
	AttrMissingFacts       = "minerva.missing_facts.count"

	// Reconciliation attributes
	AttrConfidence     = "minerva.confidence"
	AttrConflict       = "minerva.conflict"
	AttrRequiresReview = "minerva.requires_review"

	// Decision attributes
	AttrDecisionID = "minerva.decision.id"

	// Judgment attributes
	AttrJudgmentModel = "minerva.judgment.model"

	// Error attributes
	AttrErrorType    = "minerva.error.type"
	AttrErrorMessage = "error.message"
)

// SetCaseAttributes sets case and rule set identifiers on a span.
//
// Example:
//
//	SetCaseAttributes(span, "case-7731", "uk-skilled-worker", "2025-04-01")
func SetCaseAttributes(span trace.Span, caseID, rulesetID, rulesetVersion string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCaseID, caseID),
		attribute.String(AttrRuleSetID, rulesetID),
	}
	if rulesetVersion != "" {
		attrs = append(attrs, attribute.String(AttrRuleSetVersion, rulesetVersion))
	}
	span.SetAttributes(attrs...)
}

// SetAggregationAttributes sets rule aggregation results on a span.
//
// Example:
//
//	SetAggregationAttributes(span, "possible", 9, 12, 2)
func SetAggregationAttributes(span trace.Span, outcome string, passed, total, missing int) {
	span.SetAttributes(
		attribute.String(AttrRuleOutcome, outcome),
		attribute.Int(AttrRequirementsPassed, passed),
		attribute.Int(AttrRequirementsTotal, total),
		attribute.Int(AttrMissingFacts, missing),
	)
}

// SetJudgmentAttributes sets AI judgment results on a span.
//
// Example:
//
//	SetJudgmentAttributes(span, "likely", "reason-v2")
func SetJudgmentAttributes(span trace.Span, outcome, model string) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAIOutcome, outcome),
	}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrJudgmentModel, model))
	}
	span.SetAttributes(attrs...)
}

// SetDecisionAttributes sets the reconciled decision on a span.
//
// Example:
//
//	SetDecisionAttributes(span, "possible", 0.62, true, true)
func SetDecisionAttributes(span trace.Span, finalOutcome string, confidence float64, conflict, requiresReview bool) {
	span.SetAttributes(
		attribute.String(AttrFinalOutcome, finalOutcome),
		attribute.Float64(AttrConfidence, confidence),
		attribute.Bool(AttrConflict, conflict),
		attribute.Bool(AttrRequiresReview, requiresReview),
	)
}

// SetErrorAttributes sets error-related attributes on a span.
// This also records the error using span.RecordError() and sets the span status.
//
// Example:
//
//	SetErrorAttributes(span, err, "facts_fetch")
func SetErrorAttributes(span trace.Span, err error, errorType string) {
	if err == nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("error", true),
		attribute.String(AttrErrorType, errorType),
		attribute.String(AttrErrorMessage, err.Error()),
	)

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
