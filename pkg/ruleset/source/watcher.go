package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches rule-set documents for changes and triggers reloads. It
// debounces event bursts so an editor save that produces several writes
// causes a single reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *WatcherConfig
	debounce *debouncer

	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
}

// WatcherConfig contains configuration for the rule-set watcher.
type WatcherConfig struct {
	// Path is the file or directory to watch.
	Path string

	// DebounceInterval is the quiet period required after the last file
	// event before a reload fires.
	// Default: 100ms.
	DebounceInterval time.Duration

	// Extensions is the list of file extensions that trigger reloads.
	// Default: .yaml, .yml.
	Extensions []string

	// SkipHidden controls whether hidden files and directories are ignored.
	// Default: true.
	SkipHidden bool

	// OnReload, when set, is called after every reload attempt with the
	// reload's result. It must not block.
	OnReload func(err error)
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() *WatcherConfig {
	return &WatcherConfig{
		DebounceInterval: 100 * time.Millisecond,
		Extensions:       []string{".yaml", ".yml"},
		SkipHidden:       true,
	}
}

// NewWatcher creates a rule-set watcher for the path in config.
func NewWatcher(config *WatcherConfig, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultWatcherConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsWatcher,
		logger:   logger,
		config:   config,
		debounce: newDebouncer(config.DebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching for file changes and calls onReload after each
// debounced burst of events. It blocks until the context is cancelled or
// Stop is called. Reload errors are logged, not returned; the watcher keeps
// running so a later fix to the file still triggers a reload.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addPath(w.config.Path); err != nil {
		return fmt.Errorf("watch path %q: %w", w.config.Path, err)
	}

	w.logger.Info("rule-set watcher started",
		"path", w.config.Path,
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("rule-set watcher stopped", "reason", "context cancelled")
			return nil

		case <-w.stopCh:
			w.logger.Info("rule-set watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("rule-set file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				w.logger.Info("reloading rule sets",
					"path", event.Name,
					"op", event.Op.String(),
				)
				err := onReload()
				if err != nil {
					w.logger.Error("rule-set reload failed, keeping previous registry",
						"error", err,
					)
				}
				if w.config.OnReload != nil {
					w.config.OnReload(err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			// Keep watching despite errors.
			w.logger.Error("rule-set watcher error", "error", err)
		}
	}
}

// Stop stops the watcher, cancels pending debounced reloads and releases the
// underlying fsnotify handle. It is safe to call more than once and whether
// or not Watch is running.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() { close(w.stopCh) })

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		<-w.doneCh
	}

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close fsnotify watcher: %w", err)
	}
	return nil
}

// addPath registers a file, or a directory tree, with the fsnotify watcher.
func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(path)
	}

	// fsnotify does not watch recursively, so register every subdirectory.
	return filepath.Walk(path, func(sub string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if w.config.SkipHidden && sub != path && strings.HasPrefix(filepath.Base(sub), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if err := w.watcher.Add(sub); err != nil {
				return fmt.Errorf("watch directory %q: %w", sub, err)
			}
			w.logger.Debug("watching directory", "path", sub)
		}
		return nil
	})
}

// shouldProcessEvent reports whether an fsnotify event concerns a rule-set
// document.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}

	if !w.hasWatchedExtension(strings.ToLower(filepath.Ext(event.Name))) {
		return false
	}

	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}

	return true
}

func (w *Watcher) hasWatchedExtension(ext string) bool {
	for _, watched := range w.config.Extensions {
		if ext == strings.ToLower(watched) {
			return true
		}
	}
	return false
}

// debouncer collapses bursts of events into a single callback after a quiet
// period.
type debouncer struct {
	interval time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// trigger arms the debounce timer with a new event. The callback runs after
// the quiet interval unless another event arrives first.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
		}

		d.mu.Lock()
		cb := d.callback
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// stop cancels any pending callback. Safe to call more than once.
func (d *debouncer) stop() {
	d.stopOnce.Do(func() { close(d.stopCh) })

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
