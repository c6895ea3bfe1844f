package ruleset

import (
	"fmt"

	"mercator-hq/minerva/pkg/rulelogic"
)

// Problem is one publication-rule violation found in a rule set.
type Problem struct {
	// RequirementCode is the offending requirement, empty for set-level
	// problems.
	RequirementCode string

	// Message describes the violation.
	Message string
}

func (p Problem) String() string {
	if p.RequirementCode == "" {
		return p.Message
	}
	return fmt.Sprintf("%s: %s", p.RequirementCode, p.Message)
}

// Lint checks the publication rules and returns every violation. An empty
// result means the rule set is publishable.
func Lint(rs *RuleSet) []Problem {
	var problems []Problem

	setProblem := func(format string, args ...any) {
		problems = append(problems, Problem{Message: fmt.Sprintf(format, args...)})
	}
	reqProblem := func(code, format string, args ...any) {
		problems = append(problems, Problem{RequirementCode: code, Message: fmt.Sprintf(format, args...)})
	}

	if rs.ID == "" {
		setProblem("rule set id is empty")
	}
	if rs.Version == "" {
		setProblem("rule set version is empty")
	}
	if len(rs.Requirements) == 0 {
		setProblem("rule set has no requirements; an empty set can never be evaluated")
	}

	seen := map[string]bool{}
	for i, req := range rs.Requirements {
		code := req.Code
		if code == "" {
			reqProblem(fmt.Sprintf("#%d", i), "requirement code is empty")
			continue
		}
		if seen[code] {
			reqProblem(code, "duplicate requirement code")
		}
		seen[code] = true

		if req.Expression == nil {
			reqProblem(code, "requirement has no expression")
			continue
		}
		for _, op := range rulelogic.Operators(req.Expression) {
			if !rulelogic.Known(op) {
				reqProblem(code, "unknown operator %q", op)
			}
		}
	}

	return problems
}

// Validate applies Lint and wraps any problems as a ValidationError.
func (rs *RuleSet) Validate() error {
	if problems := Lint(rs); len(problems) > 0 {
		return &ValidationError{RuleSetID: rs.ID, Problems: problems}
	}
	return nil
}
