package facts

import (
	"context"
	"errors"

	"mercator-hq/minerva/pkg/rulelogic"
)

// ErrCaseNotFound is returned when a case has no recorded facts.
var ErrCaseNotFound = errors.New("case not found")

// Store provides the facts recorded for a case.
//
// Implementations must be safe for concurrent use. The returned fact set
// is owned by the caller; implementations must not retain or mutate it
// after returning.
type Store interface {
	// GetFacts returns all facts recorded for the case. It returns an
	// error wrapping ErrCaseNotFound when the case has no recorded facts.
	GetFacts(ctx context.Context, caseID string) (rulelogic.FactSet, error)
}
