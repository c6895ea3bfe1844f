package facts

import (
	"context"
	"fmt"
	"sync"

	"mercator-hq/minerva/pkg/rulelogic"
)

// MemoryStore implements Store using in-memory storage. All data is lost
// when the process exits.
//
// MemoryStore is thread-safe and supports concurrent access using
// sync.RWMutex.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[string]rulelogic.FactSet
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory fact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases: make(map[string]rulelogic.FactSet),
	}
}

// GetFacts returns a copy of the case's fact set.
func (s *MemoryStore) GetFacts(ctx context.Context, caseID string) (rulelogic.FactSet, error) {
	if caseID == "" {
		return nil, fmt.Errorf("case id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("case %q: %w", caseID, ErrCaseNotFound)
	}

	facts := make(rulelogic.FactSet, len(stored))
	for key, value := range stored {
		facts[key] = value
	}
	return facts, nil
}

// PutFacts replaces the case's fact set. An empty set removes the case.
// The map is copied at the top level; nested values must not be mutated
// by the caller after storing.
func (s *MemoryStore) PutFacts(ctx context.Context, caseID string, facts rulelogic.FactSet) error {
	if caseID == "" {
		return fmt.Errorf("case id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(facts) == 0 {
		delete(s.cases, caseID)
		return nil
	}

	stored := make(rulelogic.FactSet, len(facts))
	for key, value := range facts {
		stored[key] = value
	}
	s.cases[caseID] = stored
	return nil
}

// SetFact records or overwrites a single fact for the case.
func (s *MemoryStore) SetFact(ctx context.Context, caseID, key string, value any) error {
	if caseID == "" {
		return fmt.Errorf("case id cannot be empty")
	}
	if key == "" {
		return fmt.Errorf("fact key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.cases[caseID]
	if !ok {
		stored = make(rulelogic.FactSet)
		s.cases[caseID] = stored
	}
	stored[key] = value
	return nil
}

// DeleteCase removes all facts for the case. Deleting an unknown case is
// not an error.
func (s *MemoryStore) DeleteCase(ctx context.Context, caseID string) error {
	if caseID == "" {
		return fmt.Errorf("case id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cases, caseID)
	return nil
}

// Len returns the number of cases with recorded facts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}
