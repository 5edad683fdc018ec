// Package watch reports changes to the source files of a program.
//
// Files are registered one at a time with Add, typically from the system
// host's source-file observer, so the watch set follows the program's roots.
// Events inside the debounce window are coalesced into one callback.
package watch

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 200 * time.Millisecond

// defaultIgnores are never watched, whatever the caller registers.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

// Watcher monitors registered files and fires a debounced callback when
// they change. Run must be called at most once.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	ignores  []string
	logger   *log.Logger
	started  atomic.Bool

	mu    sync.Mutex
	dirs  map[string]int
	files map[string]bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore adds doublestar patterns to the built-in ignores.
func WithIgnore(patterns ...string) Option {
	return func(w *Watcher) {
		w.ignores = append(w.ignores, patterns...)
	}
}

// WithLogger sets the logger for watcher errors.
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New creates a Watcher with nothing registered.
func New(opts ...Option) (*Watcher, error) {
	w := &Watcher{
		debounce: DefaultDebounce,
		ignores:  slices.Clone(defaultIgnores),
		logger:   log.Default(),
		dirs:     make(map[string]int),
		files:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	for _, pat := range w.ignores {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w.fsw = fsw
	return w, nil
}

// Add registers path. Registering a path twice, or an ignored path, is a
// no-op. The file's directory is what fsnotify watches, so a file that is
// replaced by rename keeps being reported.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch: resolve %q: %w", path, err)
	}
	if w.isIgnored(abs) {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Watched returns the registered files, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.files))
}

// Close releases the underlying fsnotify watcher. Run closes it on return.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run blocks until ctx is cancelled, calling onChange with the sorted set of
// registered files that changed in each debounce window. Callbacks never
// overlap; changes that arrive while one runs are delivered afterwards.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			timer.Reset(w.debounce)
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Debug("files changed", "count", len(changed))
		if err := onChange(ctx, changed); err != nil {
			w.logger.Error("watch callback failed", "err", err)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("close fsnotify", "err", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if !w.relevant(evt) {
				continue
			}
			mu.Lock()
			pending[filepath.Clean(evt.Name)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// relevant reports whether evt touches a registered file. Attribute-only
// changes are dropped.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[filepath.Clean(evt.Name)]
}

// isIgnored matches abs against the ignore patterns. Patterns are matched
// against the slash form of the path without its leading separator.
func (w *Watcher) isIgnored(abs string) bool {
	normalized := strings.TrimPrefix(filepath.ToSlash(abs), "/")
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}
