package decision

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Intended for tests and ephemeral deployments; nothing survives a restart.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*Record),
	}
}

// Persist writes a decision record to memory.
func (s *MemoryStorage) Persist(ctx context.Context, record *Record) error {
	if record.ID == "" {
		return NewStorageError("memory", "persist", fmt.Errorf("record has no id"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return NewStorageError("memory", "persist", fmt.Errorf("duplicate record id %q", record.ID))
	}

	s.records[record.ID] = copyRecord(record)
	return nil
}

// GetByID retrieves a single decision record.
func (s *MemoryStorage) GetByID(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("decision %q: %w", id, ErrNotFound)
	}
	return copyRecord(record), nil
}

// ListByCase retrieves the most recent decision records for a case, newest
// first.
func (s *MemoryStorage) ListByCase(ctx context.Context, caseID string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	s.mu.RLock()
	results := []*Record{}
	for _, record := range s.records {
		if record.CaseID == caseID {
			results = append(results, copyRecord(record))
		}
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// AttachReviewID links an accepted human-review identifier to a persisted
// record.
func (s *MemoryStorage) AttachReviewID(ctx context.Context, id, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("decision %q: %w", id, ErrNotFound)
	}
	record.ReviewID = reviewID
	return nil
}

// DeleteOlderThan removes all records created before the cutoff. The batch
// size only matters for backends that hold write locks; memory deletes in a
// single pass.
func (s *MemoryStorage) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Count returns the total number of stored decision records.
func (s *MemoryStorage) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*Record)
	return nil
}

// Len returns the number of stored records, for tests.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// copyRecord clones a record so callers and storage never share mutable
// state.
func copyRecord(record *Record) *Record {
	clone := *record
	if record.MissingFacts != nil {
		clone.MissingFacts = make([]string, len(record.MissingFacts))
		copy(clone.MissingFacts, record.MissingFacts)
	}
	return &clone
}
