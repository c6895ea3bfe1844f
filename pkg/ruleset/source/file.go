package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mercator-hq/minerva/pkg/ruleset"
)

// FileSource loads rule sets from YAML documents on disk. The path can be a
// single file or a directory; directories are walked recursively and every
// .yaml or .yml file is treated as one rule-set document. Two documents may
// publish the same rule-set identifier as long as their versions differ.
//
// Loading is all-or-nothing: if any document fails to parse or validate, the
// load is rejected and the previously published registry keeps serving. A
// half-published registry would silently change eligibility outcomes, so a
// broken document must never displace a good one.
type FileSource struct {
	path   string
	logger *slog.Logger

	registry *registry

	mu       sync.RWMutex
	loadedAt time.Time
}

var _ ruleset.Resolver = (*FileSource)(nil)

// NewFileSource creates a file-based rule-set source. Call Load before the
// first Resolve.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:     path,
		logger:   logger,
		registry: newRegistry(),
	}
}

// Load reads every rule-set document under the configured path and, if all
// of them parse and validate, publishes them as the new registry. On error
// the previous registry is left untouched.
func (s *FileSource) Load() error {
	info, err := os.Stat(s.path)
	if err != nil {
		return fmt.Errorf("stat rule-set path %q: %w", s.path, err)
	}

	var sets []*ruleset.RuleSet
	if info.IsDir() {
		sets, err = s.loadDirectory()
	} else {
		var rs *ruleset.RuleSet
		rs, err = s.loadFile(s.path)
		sets = []*ruleset.RuleSet{rs}
	}
	if err != nil {
		return err
	}

	s.registry.replaceAll(sets)

	s.mu.Lock()
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("rule sets loaded",
		"path", s.path,
		"document_count", len(sets),
		"ruleset_count", s.registry.size(),
	)
	return nil
}

func (s *FileSource) loadDirectory() ([]*ruleset.RuleSet, error) {
	var sets []*ruleset.RuleSet
	files := make(map[[2]string]string) // (ID, version) -> file it came from

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Editor lock files show up as hidden yaml files; skip anything
		// hidden rather than fail the whole load on them.
		if strings.HasPrefix(filepath.Base(path), ".") && path != s.path {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		rs, err := s.loadFile(path)
		if err != nil {
			return err
		}

		key := [2]string{rs.ID, rs.Version}
		if prev, ok := files[key]; ok {
			return fmt.Errorf("%w: rule set %q version %q defined in both %q and %q",
				ruleset.ErrInvalidRuleSet, rs.ID, rs.Version, prev, path)
		}
		files[key] = path
		sets = append(sets, rs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load rule sets from %q: %w", s.path, err)
	}

	return sets, nil
}

func (s *FileSource) loadFile(path string) (*ruleset.RuleSet, error) {
	rs, err := ruleset.ParseFile(path)
	if err != nil {
		return nil, err
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("rule set %q: %w", path, err)
	}

	s.logger.Debug("rule set file loaded",
		"path", path,
		"ruleset_id", rs.ID,
		"version", rs.Version,
		"requirement_count", len(rs.Requirements),
	)
	return rs, nil
}

// Resolve returns the current version of the rule set with the given id.
func (s *FileSource) Resolve(ctx context.Context, id string) (*ruleset.RuleSet, error) {
	return s.registry.resolve(id)
}

// ResolveVersion returns one exact publication of a rule set.
func (s *FileSource) ResolveVersion(ctx context.Context, id, version string) (*ruleset.RuleSet, error) {
	return s.registry.resolveVersion(id, version)
}

// IDs returns the identifiers of all published rule sets in sorted order.
func (s *FileSource) IDs() []string {
	return s.registry.ids()
}

// Len returns the number of distinct published rule sets.
func (s *FileSource) Len() int {
	return s.registry.size()
}

// LoadedAt returns the time of the last successful load, or the zero time if
// no load has succeeded yet.
func (s *FileSource) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Watch blocks watching the source path for changes and reloads the registry
// whenever rule-set documents are written. Reload failures are logged and the
// previous registry keeps serving. Watch returns when ctx is cancelled.
func (s *FileSource) Watch(ctx context.Context, config *WatcherConfig) error {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if config.Path == "" {
		config.Path = s.path
	}

	watcher, err := NewWatcher(config, s.logger)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	return watcher.Watch(ctx, s.Load)
}
