// Package watcher emits settled file changes from the data directory.
//
// Raw fsnotify events arrive in bursts: editors write, truncate, rename,
// and chmod on every save. Changes are debounced per batch and classified
// by the file's state once the burst goes quiet, so a save storm becomes
// a single event reflecting the final content.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/logger"
)

// DefaultDebounce is the quiet period before pending changes are emitted.
const DefaultDebounce = 500 * time.Millisecond

// ErrClosed is returned when Watch is called on a closed watcher.
var ErrClosed = errors.New("watcher is closed")

// Op classifies a settled change.
type Op int

// Ops.
const (
	// OpUpdate means the file exists and its content may have changed.
	OpUpdate Op = iota

	// OpRemove means the file is gone.
	OpRemove
)

// String returns the op name for display.
func (o Op) String() string {
	if o == OpRemove {
		return "removed"
	}
	return "updated"
}

// Event is one settled change inside the watched directory.
type Event struct {
	// Path is the absolute path of the changed file.
	Path string

	// Op says whether the file is present or gone.
	Op Op
}

// Watcher observes a single directory for document changes. It filters
// hidden files and unsupported extensions, then debounces what remains.
// A Watcher is single-use: Watch may be called once.
type Watcher struct {
	dataDir  string
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	closed  bool
	started bool
}

// New creates a watcher over dataDir with the default debounce.
func New(dataDir string) *Watcher {
	return NewWithDebounce(dataDir, DefaultDebounce)
}

// NewWithDebounce creates a watcher with an explicit quiet period.
// Non-positive values fall back to DefaultDebounce.
func NewWithDebounce(dataDir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{dataDir: dataDir, debounce: debounce}
}

// Watch starts observing the data directory and returns the event
// channel. The channel closes when ctx is cancelled or the watcher is
// closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	info, err := os.Stat(w.dataDir)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", w.dataDir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrClosed
	}
	if w.started {
		return nil, errors.New("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dataDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dataDir, err)
	}
	w.fsw = fsw
	w.started = true

	out := make(chan Event)
	go w.loop(ctx, out)

	logger.Info("Watching %s", w.dataDir)
	return out, nil
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, out chan<- Event) {
	defer close(out)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("Change detected: %s (%s)", ev.Name, ev.Op)
			pending[ev.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watch error: %v", err)

		case <-timer.C:
			for _, path := range slices.Sorted(maps.Keys(pending)) {
				e := Event{Path: path, Op: classify(path)}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
			clear(pending)
		}
	}
}

// relevant filters raw events down to document changes worth tracking.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if isHidden(ev.Name) {
		return false
	}
	if !domain.ExtensionAllowed(filepath.Ext(ev.Name)) {
		return false
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		return false
	}
	return true
}

// classify resolves the settled state of a path. The file's presence
// after the quiet period decides, not the raw event sequence.
func classify(path string) Op {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return OpUpdate
	}
	return OpRemove
}

// isHidden reports whether any path component starts with a dot.
// "." and ".." themselves are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
