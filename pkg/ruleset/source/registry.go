package source

import (
	"sort"
	"sync"

	"mercator-hq/minerva/pkg/ruleset"
)

// registry is the versioned rule-set index shared by the sources. For each
// identifier it keeps every published version plus a pointer to the current
// one. Versions compare lexicographically, so publications should use
// sortable version strings such as "2026-04".
type registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	current  *ruleset.RuleSet
	versions map[string]*ruleset.RuleSet
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]*registryEntry)}
}

// replaceAll atomically swaps the whole index for the given publications.
func (r *registry) replaceAll(sets []*ruleset.RuleSet) {
	entries := make(map[string]*registryEntry)
	for _, rs := range sets {
		upsertEntry(entries, rs)
	}

	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// upsert publishes one rule-set version, replacing any previous publication
// with the same identifier and version.
func (r *registry) upsert(rs *ruleset.RuleSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upsertEntry(r.entries, rs)
}

func upsertEntry(entries map[string]*registryEntry, rs *ruleset.RuleSet) {
	e, ok := entries[rs.ID]
	if !ok {
		e = &registryEntry{versions: make(map[string]*ruleset.RuleSet)}
		entries[rs.ID] = e
	}
	e.versions[rs.Version] = rs
	if e.current == nil || rs.Version >= e.current.Version {
		e.current = rs
	}
}

// remove withdraws every version of a rule set.
func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

func (r *registry) resolve(id string) (*ruleset.RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, &ruleset.NotFoundError{ID: id}
	}
	return e.current, nil
}

func (r *registry) resolveVersion(id, version string) (*ruleset.RuleSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, &ruleset.NotFoundError{ID: id, Version: version}
	}
	rs, ok := e.versions[version]
	if !ok {
		return nil, &ruleset.NotFoundError{ID: id, Version: version}
	}
	return rs, nil
}

// ids returns the distinct rule-set identifiers in sorted order.
func (r *registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// size returns the number of distinct rule-set identifiers.
func (r *registry) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
