// Package reconcile merges the deterministic rule verdict with an optional
// AI judgment into the final decision for a case.
//
// The rule engine always wins on confidence: the reconciled confidence is
// the rule confidence, untouched by the judgment. A disagreement between
// the two verdicts never resolves silently; it forces the "possible" tier
// and mandatory human review regardless of how confident the rules were.
package reconcile

import (
	"fmt"
	"log/slog"
	"strings"

	"mercator-hq/minerva/pkg/eligibility"
)

// AIJudgment is an independent verdict produced by the AI reasoning
// subsystem, already normalized to an outcome tier. A nil *AIJudgment means
// no judgment is available, which is distinct from any outcome value.
type AIJudgment struct {
	// Outcome is the normalized verdict tier.
	Outcome eligibility.Outcome `json:"outcome"`

	// Narrative is the free-form reasoning the outcome was extracted from.
	Narrative string `json:"narrative,omitempty"`

	// Model identifies what produced the narrative, for audit.
	Model string `json:"model,omitempty"`
}

// Decision is the reconciled, final verdict for a case.
type Decision struct {
	// FinalOutcome is the decided tier after reconciliation.
	FinalOutcome eligibility.Outcome `json:"final_outcome"`

	// Confidence is always the rule evaluation's confidence.
	Confidence float64 `json:"confidence"`

	// ConflictDetected reports a disagreement between the rule outcome and
	// the AI judgment.
	ConflictDetected bool `json:"conflict_detected"`

	// RequiresHumanReview marks the case for mandatory human review, due to
	// a conflict or low confidence.
	RequiresHumanReview bool `json:"requires_human_review"`

	// ReasoningSummary is a human-readable account of how the decision was
	// reached. Never empty.
	ReasoningSummary string `json:"reasoning_summary"`
}

// Policy reconciles rule verdicts with AI judgments.
type Policy struct {
	config *Config
	logger *slog.Logger
}

// NewPolicy creates a reconciliation policy. A nil config uses defaults.
func NewPolicy(config *Config, logger *slog.Logger) (*Policy, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{config: config, logger: logger}, nil
}

// Reconcile merges a rule evaluation with an optional AI judgment. rule
// must be non-nil. The rules, in order:
//
//  1. judgment absent: the rule outcome stands; review when confidence is
//     strictly below the low-confidence threshold.
//  2. judgment disagrees: the outcome is "possible", the conflict is
//     flagged, and review is required unconditionally.
//  3. judgment agrees: the rule outcome stands; review on low confidence
//     as in rule 1.
func (p *Policy) Reconcile(rule *eligibility.RuleEvaluationResult, judgment *AIJudgment) *Decision {
	if judgment != nil && !judgment.Outcome.Valid() {
		// An unrecognized judgment is no judgment; guessing here could
		// mask a conflict.
		p.logger.Warn("ignoring AI judgment with invalid outcome", "outcome", judgment.Outcome)
		judgment = nil
	}

	conflict := judgment != nil && judgment.Outcome != rule.Outcome
	lowConfidence := rule.Confidence < p.config.LowConfidenceThreshold

	outcome := rule.Outcome
	if conflict {
		outcome = eligibility.OutcomePossible
	}

	decision := &Decision{
		FinalOutcome:        outcome,
		Confidence:          rule.Confidence,
		ConflictDetected:    conflict,
		RequiresHumanReview: conflict || lowConfidence,
		ReasoningSummary:    buildSummary(rule, judgment, conflict),
	}

	p.logger.Debug("reconciled decision",
		"rule_outcome", rule.Outcome,
		"final_outcome", decision.FinalOutcome,
		"conflict", decision.ConflictDetected,
		"requires_review", decision.RequiresHumanReview,
		"confidence", decision.Confidence,
	)
	return decision
}

func buildSummary(rule *eligibility.RuleEvaluationResult, judgment *AIJudgment, conflict bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rule evaluation: %s with %d of %d mandatory requirements passed (confidence %.2f).",
		rule.Outcome, rule.RequirementsPassed, rule.RequirementsTotal, rule.Confidence)

	if len(rule.MissingFacts) > 0 {
		fmt.Fprintf(&sb, " Missing facts: %s.", strings.Join(rule.MissingFacts, ", "))
	}
	if errored := rule.ErroredRequirements(); len(errored) > 0 {
		codes := make([]string, len(errored))
		for i, detail := range errored {
			codes[i] = detail.Code
		}
		fmt.Fprintf(&sb, " Requirements excluded due to evaluation errors: %s.", strings.Join(codes, ", "))
	}

	switch {
	case judgment == nil:
		sb.WriteString(" No AI judgment available; the rule outcome stands.")
	case conflict:
		fmt.Fprintf(&sb, " AI judgment disagreed (%s vs %s); escalated as %s for human review.",
			judgment.Outcome, rule.Outcome, eligibility.OutcomePossible)
	default:
		fmt.Fprintf(&sb, " AI judgment concurred (%s).", judgment.Outcome)
	}
	return sb.String()
}
