package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/minerva/pkg/config"
)

const skilledWorkerDoc = `
ruleset:
  id: skilled_worker
  version: "2026-04"
  jurisdiction: UK
  title: Skilled Worker visa
requirements:
  - code: MIN_SALARY
    description: Salary meets the general threshold
    logic:
      ">=": [{"var": "salary"}, 38700]
`

const studentDoc = `
ruleset:
  id: student
  version: "2026-04"
  jurisdiction: UK
  title: Student visa
requirements:
  - code: CAS
    description: Confirmation of acceptance for studies issued
    logic:
      "!!": {"var": "cas_reference"}
`

// initUpstream creates a git repository holding one rule-set document
// under rulesets/, with a single commit.
func initUpstream(t *testing.T, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	commitFile(t, repo, dir, "rulesets/skilled_worker.yaml", skilledWorkerDoc)

	return repo
}

// commitFile writes a file into the worktree and commits it, returning
// the commit SHA.
func commitFile(t *testing.T, repo *gogit.Repository, dir, name, content string) string {
	t.Helper()

	full := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}

	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}

	sha, err := worktree.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Rules Team",
			Email: "rules@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	return sha.String()
}

// testGitConfig returns a config pointing at a local upstream repository.
func testGitConfig(upstream, local string) *config.GitConfig {
	return &config.GitConfig{
		Repository: upstream,
		// go-git's PlainInit creates "master" by default.
		Branch:      "master",
		Path:        "rulesets",
		LocalPath:   local,
		PollTimeout: 10 * time.Second,
		Auth:        config.GitAuthConfig{Type: "none"},
	}
}

func TestNewRepository(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.GitConfig
		wantErr bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: true,
		},
		{
			name: "empty repository URL",
			cfg: &config.GitConfig{
				Branch: "main",
			},
			wantErr: true,
		},
		{
			name: "empty branch",
			cfg: &config.GitConfig{
				Repository: "https://github.com/homeoffice/rulesets.git",
			},
			wantErr: true,
		},
		{
			name: "unknown auth type",
			cfg: &config.GitConfig{
				Repository: "https://github.com/homeoffice/rulesets.git",
				Branch:     "main",
				Auth:       config.GitAuthConfig{Type: "kerberos"},
			},
			wantErr: true,
		},
		{
			name: "valid config",
			cfg: &config.GitConfig{
				Repository: "https://github.com/homeoffice/rulesets.git",
				Branch:     "main",
				Path:       "rulesets",
				LocalPath:  "/tmp/minerva-test-checkout",
				Auth:       config.GitAuthConfig{Type: "none"},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewRepository(tt.cfg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRepository() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if repo.auth == nil {
				t.Error("NewRepository() auth not initialized")
			}
			if repo.metrics == nil {
				t.Error("NewRepository() metrics not initialized")
			}
		})
	}
}

func TestNewRepository_DefaultLocalPath(t *testing.T) {
	repo, err := NewRepository(&config.GitConfig{
		Repository: "https://github.com/homeoffice/rulesets.git",
		Branch:     "main",
	})
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if got := repo.GetLocalPath(); !strings.Contains(got, "minerva-rulesets") {
		t.Errorf("GetLocalPath() = %q, want a minerva-rulesets directory", got)
	}
}

func TestRepository_Clone(t *testing.T) {
	upstreamDir := t.TempDir()
	initUpstream(t, upstreamDir)

	tests := []struct {
		name    string
		cfg     *config.GitConfig
		wantErr bool
	}{
		{
			name:    "clone local repository",
			cfg:     testGitConfig(upstreamDir, t.TempDir()),
			wantErr: false,
		},
		{
			name:    "clone nonexistent repository",
			cfg:     testGitConfig(filepath.Join(t.TempDir(), "nope"), t.TempDir()),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := NewRepository(tt.cfg)
			if err != nil {
				t.Fatalf("NewRepository() error = %v", err)
			}

			err = repo.Clone(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Clone() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if metrics := repo.GetMetrics(); metrics.CloneDuration == 0 {
				t.Error("Clone() did not record duration")
			}

			if _, err := os.Stat(repo.GetRuleSetPath()); err != nil {
				t.Errorf("rule-set path missing after clone: %v", err)
			}
		})
	}
}

func TestRepository_CloneReusesExistingCheckout(t *testing.T) {
	upstreamDir := t.TempDir()
	initUpstream(t, upstreamDir)

	localDir := t.TempDir()
	cfg := testGitConfig(upstreamDir, localDir)

	first, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := first.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	second, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := second.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() on existing checkout error = %v", err)
	}

	if _, err := second.GetCurrentCommit(); err != nil {
		t.Errorf("GetCurrentCommit() after reopen error = %v", err)
	}
}

func TestRepository_CloneCleanOnStart(t *testing.T) {
	upstreamDir := t.TempDir()
	initUpstream(t, upstreamDir)

	localDir := t.TempDir()
	cfg := testGitConfig(upstreamDir, localDir)

	first, err := NewRepository(cfg)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := first.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	stray := filepath.Join(localDir, "stray.txt")
	if err := os.WriteFile(stray, []byte("leftover"), 0o644); err != nil {
		t.Fatal(err)
	}

	cleanCfg := testGitConfig(upstreamDir, localDir)
	cleanCfg.CleanOnStart = true

	second, err := NewRepository(cleanCfg)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := second.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() with CleanOnStart error = %v", err)
	}

	if _, err := os.Stat(stray); !os.IsNotExist(err) {
		t.Errorf("stray file survived CleanOnStart clone, stat error = %v", err)
	}

	if _, err := second.GetCurrentCommit(); err != nil {
		t.Errorf("GetCurrentCommit() after clean clone error = %v", err)
	}
}

func TestRepository_Pull(t *testing.T) {
	upstreamDir := t.TempDir()
	upstream := initUpstream(t, upstreamDir)

	repo, err := NewRepository(testGitConfig(upstreamDir, t.TempDir()))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	result, err := repo.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if result.HadChanges {
		t.Errorf("Pull() on up-to-date checkout HadChanges = true, want false")
	}

	wantSHA := commitFile(t, upstream, upstreamDir, "rulesets/student.yaml", studentDoc)

	result, err = repo.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() after upstream commit error = %v", err)
	}
	if !result.HadChanges {
		t.Fatal("Pull() HadChanges = false, want true")
	}
	if result.ToSHA != wantSHA {
		t.Errorf("Pull() ToSHA = %v, want %v", result.ToSHA, wantSHA)
	}
	if result.FromSHA == result.ToSHA {
		t.Error("Pull() FromSHA equals ToSHA despite changes")
	}

	found := false
	for _, file := range result.ChangedFiles {
		if file == "rulesets/student.yaml" {
			found = true
		}
	}
	if !found {
		t.Errorf("Pull() ChangedFiles = %v, want to contain rulesets/student.yaml", result.ChangedFiles)
	}

	metrics := repo.GetMetrics()
	if metrics.LastCommitSHA != wantSHA {
		t.Errorf("LastCommitSHA = %v, want %v", metrics.LastCommitSHA, wantSHA)
	}
	if metrics.SuccessfulPulls != 2 {
		t.Errorf("SuccessfulPulls = %v, want 2", metrics.SuccessfulPulls)
	}

	result, err = repo.Pull(context.Background())
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if result.HadChanges {
		t.Error("Pull() HadChanges = true after everything was pulled")
	}
}

func TestRepository_PullBeforeClone(t *testing.T) {
	repo, err := NewRepository(testGitConfig(t.TempDir(), t.TempDir()))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if _, err := repo.Pull(context.Background()); err == nil {
		t.Error("Pull() before Clone() succeeded, want error")
	}
}

func TestRepository_GetCurrentCommit(t *testing.T) {
	upstreamDir := t.TempDir()
	initUpstream(t, upstreamDir)

	repo, err := NewRepository(testGitConfig(upstreamDir, t.TempDir()))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}

	if _, err := repo.GetCurrentCommit(); err == nil {
		t.Error("GetCurrentCommit() before Clone() succeeded, want error")
	}

	if err := repo.Clone(context.Background()); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	commit, err := repo.GetCurrentCommit()
	if err != nil {
		t.Fatalf("GetCurrentCommit() error = %v", err)
	}

	if len(commit.SHA) != 40 {
		t.Errorf("SHA = %q, want 40 hex characters", commit.SHA)
	}
	if commit.Author != "Rules Team" {
		t.Errorf("Author = %q, want %q", commit.Author, "Rules Team")
	}
	if commit.Branch != "master" {
		t.Errorf("Branch = %q, want %q", commit.Branch, "master")
	}
	if commit.Repository != upstreamDir {
		t.Errorf("Repository = %q, want %q", commit.Repository, upstreamDir)
	}
}
