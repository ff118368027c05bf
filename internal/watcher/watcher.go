// Package watcher sorts files as they appear in the source directories:
// fsnotify events are filtered, debounced and checked for a stable size
// before the handler runs.
package watcher

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Config contains watcher settings.
type Config struct {
	Debounce time.Duration // quiet period after the last event for a path
	Stable   time.Duration // how long the size must stay unchanged
	Ignore   []string      // glob patterns matched against base names
}

// DefaultConfig returns a Config with the usual download-friendly timings.
func DefaultConfig() Config {
	return Config{
		Debounce: 2 * time.Second,
		Stable:   time.Second,
		Ignore:   DefaultIgnorePatterns(),
	}
}

// Outcome is what a handler did with a settled file.
type Outcome int

const (
	// Sorted means the file was placed into its month folder.
	Sorted Outcome = iota
	// Unmatched means the name did not resolve to a date in the year.
	Unmatched
)

// Result is returned by a Handler.
type Result struct {
	Outcome  Outcome
	Produced []string // paths the handler created; their events are not handled again
}

// Handler processes one settled file. Calls are serialized.
type Handler func(ctx context.Context, path string) (Result, error)

// Summary contains stats from the watch session.
type Summary struct {
	Sorted    int
	Unmatched int
	Skipped   int // vanished or never settled
	Failed    int
	Duration  time.Duration
}

// Watcher monitors directories and feeds settled files to a Handler.
type Watcher struct {
	config    Config
	handler   Handler
	log       *log.Logger
	filter    *FileFilter
	stability *StabilityChecker

	handleMu sync.Mutex // one handler call at a time
	inflight sync.WaitGroup

	mu       sync.Mutex
	summary  Summary
	closing  bool
	produced map[string]struct{}
}

// New creates a Watcher. A nil logger discards log output.
func New(config Config, handler Handler, logger *log.Logger) *Watcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Watcher{
		config:    config,
		handler:   handler,
		log:       logger,
		filter:    NewFileFilter(config.Ignore),
		stability: NewStabilityChecker(afero.NewOsFs(), config.Stable),
		produced:  make(map[string]struct{}),
	}
}

// Run watches dirs and their subdirectories until ctx is cancelled, then
// waits for in-flight files and returns the session summary.
func (w *Watcher) Run(ctx context.Context, dirs []string) (*Summary, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	defer fsw.Close()

	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		if err := addDirsRecursive(fsw, abs); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	debouncer := NewDebouncer(w.config.Debounce, func(path string) {
		w.mu.Lock()
		if w.closing {
			w.mu.Unlock()
			return
		}
		w.inflight.Add(1)
		w.mu.Unlock()

		go func() {
			defer w.inflight.Done()
			w.settle(ctx, path)
		}()
	})

	w.log.Info("watching for new files", "dirs", len(dirs))
	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.closing = true
			w.mu.Unlock()
			debouncer.Stop()
			w.inflight.Wait()

			summary := w.Stats()
			summary.Duration = time.Since(start)
			w.log.Info("watcher stopped", "sorted", summary.Sorted)
			return &summary, nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil, errors.New("watcher event channel closed")
			}
			w.dispatch(fsw, debouncer, ev)

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil, errors.New("watcher error channel closed")
			}
			w.log.Error("watch error", "err", watchErr)
		}
	}
}

// dispatch routes one fsnotify event. New directories join the watch list
// and their files are queued; file creates and writes restart the path's
// debounce; removals cancel it.
func (w *Watcher) dispatch(fsw *fsnotify.Watcher, debouncer *Debouncer, ev fsnotify.Event) {
	path := ev.Name

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if ev.Op&fsnotify.Create == 0 {
				return
			}
			if err := addDirsRecursive(fsw, path); err != nil {
				w.log.Warn("cannot watch new directory", "file", path, "err", err)
				return
			}
			w.queueExisting(debouncer, path)
			return
		}
		if w.skip(path) {
			return
		}
		debouncer.Add(path)

	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		debouncer.Cancel(path)
	}
}

// queueExisting queues files already present in a directory that appeared
// while watching, e.g. one moved in as a whole.
func (w *Watcher) queueExisting(debouncer *Debouncer, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if !w.skip(path) {
			debouncer.Add(path)
		}
		return nil
	})
}

// skip filters out ignored names and the sorter's own output.
func (w *Watcher) skip(path string) bool {
	if w.filter.ShouldIgnore(path) || AlreadySorted(path) {
		w.log.Debug("ignoring", "file", path)
		return true
	}
	return false
}

// settle waits for path to stop changing, then runs the handler.
func (w *Watcher) settle(ctx context.Context, path string) {
	if w.consumeProduced(path) {
		return
	}
	if err := w.stability.WaitForStable(ctx, path); err != nil {
		if ctx.Err() == nil {
			w.log.Debug("file not settled", "file", path, "err", err)
			w.count(func(s *Summary) { s.Skipped++ })
		}
		return
	}
	if w.handler == nil {
		return
	}

	w.handleMu.Lock()
	defer w.handleMu.Unlock()
	if ctx.Err() != nil || w.consumeProduced(path) {
		return
	}

	result, err := w.handler(ctx, path)
	w.mu.Lock()
	for _, p := range result.Produced {
		w.produced[p] = struct{}{}
	}
	w.mu.Unlock()

	switch {
	case err != nil:
		w.log.Error("failed to sort file", "file", path, "err", err)
		w.count(func(s *Summary) { s.Failed++ })
	case result.Outcome == Unmatched:
		w.log.Debug("no date in name", "file", path)
		w.count(func(s *Summary) { s.Unmatched++ })
	default:
		w.count(func(s *Summary) { s.Sorted++ })
	}
}

// consumeProduced reports whether path was created by an earlier handler
// call, forgetting it so a later file at the same path is handled.
func (w *Watcher) consumeProduced(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.produced[path]; ok {
		delete(w.produced, path)
		return true
	}
	return false
}

func (w *Watcher) count(update func(s *Summary)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	update(&w.summary)
}

// Stats returns the counters so far.
func (w *Watcher) Stats() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
