package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"mercator-hq/minerva/pkg/ruleset"
)

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource_LoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "skilled-worker.yaml", skilledWorkerDoc)
	writeDoc(t, dir, "student.yml", studentDoc)
	writeDoc(t, dir, "README.txt", "not a rule set")
	writeDoc(t, dir, ".draft.yaml", "{{ broken on purpose")

	src := NewFileSource(dir, nil)
	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := src.IDs(), []string{"skilled_worker", "student"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if src.LoadedAt().IsZero() {
		t.Error("LoadedAt() is zero after successful Load")
	}

	rs, err := src.Resolve(context.Background(), "skilled_worker")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rs.Title != "Skilled Worker visa" {
		t.Errorf("Resolve() title = %q, want %q", rs.Title, "Skilled Worker visa")
	}
}

func TestFileSource_LoadSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "student.yaml", studentDoc)

	src := NewFileSource(path, nil)
	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if src.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", src.Len())
	}

	if _, err := src.Resolve(context.Background(), "student"); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
}

func TestFileSource_ResolveBeforeLoad(t *testing.T) {
	src := NewFileSource(t.TempDir(), nil)

	if _, err := src.Resolve(context.Background(), "skilled_worker"); !errors.Is(err, ruleset.ErrNotFound) {
		t.Errorf("Resolve() error = %v, want ErrNotFound", err)
	}
}

func TestFileSource_BrokenDocumentRejectsLoad(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "skilled-worker.yaml", skilledWorkerDoc)

	src := NewFileSource(dir, nil)
	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// A document that fails validation must reject the whole load and keep
	// the previous registry serving.
	writeDoc(t, dir, "broken.yaml", "ruleset:\n  id: broken\n  version: \"1\"\nrequirements: []\n")

	if err := src.Load(); !errors.Is(err, ruleset.ErrInvalidRuleSet) {
		t.Fatalf("Load() error = %v, want ErrInvalidRuleSet", err)
	}

	if src.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after rejected reload", src.Len())
	}
	if _, err := src.Resolve(context.Background(), "skilled_worker"); err != nil {
		t.Errorf("Resolve() after rejected reload error = %v", err)
	}
}

func TestFileSource_DuplicateIDRejectsLoad(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.yaml", skilledWorkerDoc)
	writeDoc(t, dir, "b.yaml", skilledWorkerDoc)

	src := NewFileSource(dir, nil)
	err := src.Load()
	if !errors.Is(err, ruleset.ErrInvalidRuleSet) {
		t.Fatalf("Load() error = %v, want ErrInvalidRuleSet", err)
	}
	if !strings.Contains(err.Error(), "defined in both") {
		t.Errorf("Load() error = %q, want duplicate-file detail", err)
	}
}

func TestFileSource_MultipleVersions(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "skilled-worker-2026-04.yaml", skilledWorkerDoc)
	updated := strings.Replace(skilledWorkerDoc, `version: "2026-04"`, `version: "2026-05"`, 1)
	writeDoc(t, dir, "skilled-worker-2026-05.yaml", updated)

	src := NewFileSource(dir, nil)
	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if src.Len() != 1 {
		t.Errorf("Len() = %d, want 1 distinct rule set", src.Len())
	}

	rs, err := src.Resolve(context.Background(), "skilled_worker")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if rs.Version != "2026-05" {
		t.Errorf("Resolve() version = %q, want %q", rs.Version, "2026-05")
	}

	rs, err = src.ResolveVersion(context.Background(), "skilled_worker", "2026-04")
	if err != nil {
		t.Fatalf("ResolveVersion() error = %v", err)
	}
	if rs.Version != "2026-04" {
		t.Errorf("ResolveVersion() version = %q, want %q", rs.Version, "2026-04")
	}
}

func TestFileSource_MissingPath(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope"), nil)
	if err := src.Load(); err == nil {
		t.Fatal("Load() error = nil, want error for missing path")
	}
}

func TestFileSource_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "skilled-worker.yaml", skilledWorkerDoc)

	src := NewFileSource(dir, nil)
	if err := src.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		config := DefaultWatcherConfig()
		config.DebounceInterval = 25 * time.Millisecond
		watchDone <- src.Watch(ctx, config)
	}()

	// Give the watcher time to register the directory.
	time.Sleep(150 * time.Millisecond)

	updated := strings.Replace(skilledWorkerDoc, `version: "2026-04"`, `version: "2026-05"`, 1)
	writeDoc(t, dir, "skilled-worker.yaml", updated)

	deadline := time.Now().Add(3 * time.Second)
	for {
		rs, err := src.Resolve(context.Background(), "skilled_worker")
		if err == nil && rs.Version == "2026-05" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("rule set not reloaded after file change")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-watchDone:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch() did not return after context cancellation")
	}
}
