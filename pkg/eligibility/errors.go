package eligibility

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates an invalid aggregator configuration.
	ErrInvalidConfig = errors.New("invalid eligibility config")

	// ErrNoRequirements indicates aggregation was requested for an empty
	// requirement set.
	ErrNoRequirements = errors.New("no requirements to evaluate")
)

// NoRequirementsError reports an aggregation attempt over an empty
// requirement set. The whole evaluation aborts: an empty set must surface
// as "not yet evaluable", not as any verdict tier.
type NoRequirementsError struct {
	// RuleSetID identifies the rule set that resolved empty, when known.
	RuleSetID string
}

func (e *NoRequirementsError) Error() string {
	if e.RuleSetID == "" {
		return "no requirements to evaluate"
	}
	return fmt.Sprintf("no requirements to evaluate for rule set %q", e.RuleSetID)
}

// Unwrap lets errors.Is match ErrNoRequirements.
func (e *NoRequirementsError) Unwrap() error { return ErrNoRequirements }
