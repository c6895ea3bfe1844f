package ruleset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRuleSet indicates a rule set that cannot be parsed or fails
	// publication validation.
	ErrInvalidRuleSet = errors.New("invalid rule set")

	// ErrNotFound indicates no published rule set exists for the requested
	// identifier.
	ErrNotFound = errors.New("rule set not found")
)

// ValidationError aggregates every problem found in a rule set so authors
// can fix them in one pass.
type ValidationError struct {
	RuleSetID string
	Problems  []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.String()
	}
	return fmt.Sprintf("rule set %q: %d problem(s): %s", e.RuleSetID, len(e.Problems), strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is match ErrInvalidRuleSet.
func (e *ValidationError) Unwrap() error { return ErrInvalidRuleSet }

// NotFoundError reports an unresolved rule set identifier. Version is set
// when a specific publication was requested.
type NotFoundError struct {
	ID      string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("rule set %q version %q not found", e.ID, e.Version)
	}
	return fmt.Sprintf("rule set %q not found", e.ID)
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
