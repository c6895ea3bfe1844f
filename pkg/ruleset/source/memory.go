// Package source provides rule-set resolvers backed by different storage
// mechanisms: an in-memory registry, YAML files on disk with hot reload, and
// a git checkout polled for upstream changes.
package source

import (
	"context"

	"mercator-hq/minerva/pkg/ruleset"
)

// MemorySource is an in-memory rule-set registry. It is intended for tests
// and for embedding rule sets directly in a binary.
type MemorySource struct {
	registry *registry
}

var _ ruleset.Resolver = (*MemorySource)(nil)

// NewMemorySource creates a registry holding the given rule sets. Every rule
// set must pass publication validation.
func NewMemorySource(sets ...*ruleset.RuleSet) (*MemorySource, error) {
	s := &MemorySource{registry: newRegistry()}
	for _, rs := range sets {
		if err := s.Upsert(rs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Upsert validates and publishes a rule-set version, replacing any previous
// publication with the same identifier and version.
func (s *MemorySource) Upsert(rs *ruleset.RuleSet) error {
	if err := rs.Validate(); err != nil {
		return err
	}
	s.registry.upsert(rs)
	return nil
}

// Remove withdraws every version of a rule set. Removing an unknown
// identifier is a no-op.
func (s *MemorySource) Remove(id string) {
	s.registry.remove(id)
}

// Resolve returns the current version of the rule set with the given id.
func (s *MemorySource) Resolve(ctx context.Context, id string) (*ruleset.RuleSet, error) {
	return s.registry.resolve(id)
}

// ResolveVersion returns one exact publication of a rule set.
func (s *MemorySource) ResolveVersion(ctx context.Context, id, version string) (*ruleset.RuleSet, error) {
	return s.registry.resolveVersion(id, version)
}

// IDs returns the identifiers of all published rule sets in sorted order.
func (s *MemorySource) IDs() []string {
	return s.registry.ids()
}

// Len returns the number of distinct published rule sets.
func (s *MemorySource) Len() int {
	return s.registry.size()
}
