package git

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"mercator-hq/minerva/pkg/config"
	"mercator-hq/minerva/pkg/ruleset"
	"mercator-hq/minerva/pkg/ruleset/source"
)

// Source resolves rule sets from a git repository. It clones the
// repository once, serves rule sets from the checkout through a file
// source, and optionally polls origin for new commits.
//
// When a poll finds a commit that touches rule-set documents, the
// checkout is reloaded atomically. A commit that fails validation keeps
// the previous registry serving.
type Source struct {
	cfg    *config.GitConfig
	repo   *Repository
	files  *source.FileSource
	logger *slog.Logger

	// OnReload, when set before Start, is called after every checkout
	// reload attempt with the reload's result. It must not block.
	OnReload func(err error)

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var _ ruleset.Resolver = (*Source)(nil)

// NewSource creates a git-backed rule-set source. It does not touch the
// network; call Start to clone and load.
func NewSource(cfg *config.GitConfig, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err
	}

	return &Source{
		cfg:    cfg,
		repo:   repo,
		files:  source.NewFileSource(repo.GetRuleSetPath(), logger),
		logger: logger,
	}, nil
}

// Start clones (or opens) the repository, loads all rule sets from the
// checkout, and, when PollInterval is positive, begins polling origin in
// the background. Polling stops when ctx is cancelled or Stop is called.
func (s *Source) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("git rule-set source already started")
	}
	s.mu.Unlock()

	if err := s.repo.Clone(ctx); err != nil {
		return fmt.Errorf("clone rule-set repository: %w", err)
	}

	if err := s.files.Load(); err != nil {
		return fmt.Errorf("load rule sets from checkout: %w", err)
	}

	commit, err := s.repo.GetCurrentCommit()
	if err != nil {
		return fmt.Errorf("read checkout HEAD: %w", err)
	}

	s.logger.Info("git rule-set source started",
		"repository", s.cfg.Repository,
		"branch", s.cfg.Branch,
		"commit", shortSHA(commit.SHA),
		"ruleset_count", s.files.Len())

	if s.cfg.PollInterval <= 0 {
		return nil
	}

	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.pollLoop(ctx)

	return nil
}

// Stop halts background polling and waits for the poll loop to exit.
// It is safe to call more than once and when polling never started.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	close(s.stopCh)
	<-s.doneCh
}

// Sync pulls origin once and reloads the registry if the pull brought in
// changes to rule-set documents. Exposed for CLI-driven forced syncs.
func (s *Source) Sync(ctx context.Context) error {
	result, err := s.repo.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull rule-set repository: %w", err)
	}

	if !result.HadChanges {
		return nil
	}

	s.logger.Info("rule-set repository changed",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
		"changed_files", len(result.ChangedFiles))

	if !hasRuleSetChanges(result.ChangedFiles, s.cfg.Path) {
		s.logger.Debug("no rule-set documents changed, skipping reload",
			"changed_files", result.ChangedFiles)
		return nil
	}

	err = s.files.Load()
	if s.OnReload != nil {
		s.OnReload(err)
	}
	if err != nil {
		return fmt.Errorf("reload rule sets after pull: %w", err)
	}

	s.logger.Info("rule sets reloaded from git",
		"commit", shortSHA(result.ToSHA),
		"ruleset_count", s.files.Len())

	return nil
}

// Resolve returns the current version of the rule set with the given id.
func (s *Source) Resolve(ctx context.Context, id string) (*ruleset.RuleSet, error) {
	return s.files.Resolve(ctx, id)
}

// ResolveVersion returns a specific version of the rule set with the
// given id.
func (s *Source) ResolveVersion(ctx context.Context, id, version string) (*ruleset.RuleSet, error) {
	return s.files.ResolveVersion(ctx, id, version)
}

// IDs returns the ids of all loaded rule sets, sorted.
func (s *Source) IDs() []string {
	return s.files.IDs()
}

// Len returns the number of distinct rule-set ids loaded.
func (s *Source) Len() int {
	return s.files.Len()
}

// LoadedAt returns when the registry last loaded successfully.
func (s *Source) LoadedAt() time.Time {
	return s.files.LoadedAt()
}

func (s *Source) pollLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("git rule-set source stopped", "reason", "context cancelled")
			return
		case <-s.stopCh:
			s.logger.Info("git rule-set source stopped")
			return
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				// Keep polling; the next good commit heals the source.
				s.logger.Error("rule-set sync failed, keeping previous registry",
					"error", err)
			}
		}
	}
}

// hasRuleSetChanges reports whether any changed file is a YAML document
// under the configured rule-set directory. Paths from the tree diff are
// repository-relative and slash-separated.
func hasRuleSetChanges(files []string, dir string) bool {
	prefix := strings.Trim(path.Clean("/"+dir), "/")

	for _, file := range files {
		switch path.Ext(file) {
		case ".yaml", ".yml":
		default:
			continue
		}

		if prefix == "" || strings.HasPrefix(file, prefix+"/") {
			return true
		}
	}

	return false
}

func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
