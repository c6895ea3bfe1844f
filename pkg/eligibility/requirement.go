package eligibility

import (
	"mercator-hq/minerva/pkg/rulelogic"
)

// Requirement is one published eligibility condition: a boolean expression
// over case facts plus the metadata needed to report on it.
type Requirement struct {
	// Code uniquely identifies the requirement within its rule set,
	// e.g. "MIN_SALARY".
	Code string `json:"code"`

	// Description is the human-readable statement of the condition.
	Description string `json:"description,omitempty"`

	// Expression is the parsed rule logic. It must evaluate truthy for the
	// requirement to pass.
	Expression rulelogic.Expression `json:"expression"`

	// Mandatory requirements drive the verdict tier; optional ones are
	// evaluated and reported but never counted.
	Mandatory bool `json:"mandatory"`
}

// RequirementResult is the outcome of evaluating a single requirement
// against a fact set. Exactly one of three shapes occurs: passed or failed
// (MissingFacts empty, Error empty), blocked on missing facts (Passed
// false, MissingFacts non-empty), or errored (Passed false, Error set).
type RequirementResult struct {
	Code string `json:"code"`

	// Passed reports whether the expression evaluated truthy.
	Passed bool `json:"passed"`

	// MissingFacts lists the fact keys the expression needs that are null
	// or absent. Never nil; empty when the requirement was evaluable.
	MissingFacts []string `json:"missing_facts"`

	// Error carries the evaluation failure, when one occurred. Errors are
	// contained to the requirement they arose in.
	Error string `json:"error,omitempty"`
}

// Errored reports whether evaluation failed rather than completing.
func (r RequirementResult) Errored() bool { return r.Error != "" }

// Blocked reports whether the requirement could not be determined because
// facts are missing.
func (r RequirementResult) Blocked() bool { return len(r.MissingFacts) > 0 }

// EvaluateRequirement applies one requirement to a fact set.
//
// Missing facts are checked first: a requirement that references null or
// absent fact keys is classified as blocked, not failed, so an incomplete
// case reads as "facts needed" rather than "requirement failed". Evaluator
// errors are contained here as the result's Error.
func EvaluateRequirement(req Requirement, facts rulelogic.FactSet) RequirementResult {
	result := RequirementResult{Code: req.Code, MissingFacts: []string{}}

	if req.Expression == nil {
		result.Error = "requirement has no expression"
		return result
	}

	if missing := rulelogic.MissingFacts(req.Expression, facts); len(missing) > 0 {
		result.MissingFacts = missing
		return result
	}

	value, err := rulelogic.Evaluate(req.Expression, facts)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Passed = rulelogic.Truthy(value)
	return result
}
