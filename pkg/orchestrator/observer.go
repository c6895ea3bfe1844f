package orchestrator

import (
	"time"

	"mercator-hq/minerva/pkg/eligibility"
)

// Observer receives evaluation lifecycle events, typically to drive
// metrics. Callbacks run on the evaluation path and must not block.
type Observer interface {
	// EvaluationCompleted is called once per successful evaluation with
	// the reconciled outcome and the total pipeline duration.
	EvaluationCompleted(rulesetID string, outcome eligibility.Outcome, duration time.Duration)

	// EvaluationFailed is called when an evaluation aborts. Stage is one
	// of "ruleset", "facts", "aggregate", "persist".
	EvaluationFailed(rulesetID, stage string)

	// RequirementsTallied reports the per-requirement classification
	// counts of one evaluation, errored requirements included.
	RequirementsTallied(passed, failed, blocked, errored int)

	// ConflictDetected is called when reconciliation flags a disagreement
	// between the rule outcome and the AI judgment.
	ConflictDetected(rulesetID string)

	// JudgmentCall reports one assessor round trip. Status is one of
	// "ok", "no_verdict", "error".
	JudgmentCall(status string, latency time.Duration)
}

// NopObserver is an Observer that ignores every event.
type NopObserver struct{}

func (NopObserver) EvaluationCompleted(string, eligibility.Outcome, time.Duration) {}
func (NopObserver) EvaluationFailed(string, string)                                {}
func (NopObserver) RequirementsTallied(int, int, int, int)                         {}
func (NopObserver) ConflictDetected(string)                                        {}
func (NopObserver) JudgmentCall(string, time.Duration)                             {}
