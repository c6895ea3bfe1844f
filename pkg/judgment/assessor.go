package judgment

import (
	"context"

	"mercator-hq/minerva/pkg/eligibility/reconcile"
	"mercator-hq/minerva/pkg/rulelogic"
	"mercator-hq/minerva/pkg/ruleset"
)

// Assessor obtains an independent judgment for a case from the AI reasoning
// service.
type Assessor interface {
	// Assess submits a case summary and returns the service's normalized
	// judgment.
	//
	// A nil judgment with a nil error reports that the service replied but
	// no verdict tier could be extracted from its narrative; callers
	// proceed as if no judgment were available. Errors report transport or
	// service failures and degrade the same way, but are worth logging and
	// counting separately.
	Assess(ctx context.Context, caseID string, facts rulelogic.FactSet, rs *ruleset.RuleSet) (*reconcile.AIJudgment, error)
}
