package ruleset

import "context"

// Resolver resolves rule-set identifiers to published rule sets.
//
// Resolve returns the current version of a rule set; ResolveVersion returns
// one exact publication. Versions are compared lexicographically, so
// publication versions should use sortable strings such as "2026-04".
//
// Implementations must be safe for concurrent use. Callers must treat the
// returned rule set as immutable; sources hand out shared pointers.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*RuleSet, error)
	ResolveVersion(ctx context.Context, id, version string) (*RuleSet, error)
}
