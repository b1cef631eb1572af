package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	uierrors "github.com/go-drift/uikit/pkg/errors"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Change is delivered to watcher callbacks after a watched file changes.
type Change struct {
	// Paths lists every watched file that changed during the debounce
	// window, in the order they first changed.
	Paths []string
	// Path is the last file in Paths.
	Path string
	// Config is the freshly resolved configuration, nil when Err is set.
	Config *Resolved
	Err    error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for events to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// WithWatchLogger sets the watcher's logger.
func WithWatchLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = logger }
}

// Watcher reloads the configuration when uikit.yaml or one of the extra
// trait files is written. Callers use it to invalidate measured sizes when
// anything that affects layout changes.
//
// Directories are watched rather than files so that editors replacing a
// file by rename are still observed.
type Watcher struct {
	dir      string
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	files     map[string]bool
	dirs      map[string]bool
	callbacks []func(Change)
}

// NewWatcher watches dir's uikit.yaml.
func NewWatcher(dir string, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, uierrors.New("config.NewWatcher", uierrors.KindConfig,
			fmt.Errorf("create fsnotify watcher: %w", err))
	}
	w := &Watcher{
		dir:      dir,
		fs:       fsw,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := w.Add(filepath.Join(dir, FileName)); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Add watches an extra file, such as a font-scale trait file. The file
// does not need to exist yet.
func (w *Watcher) Add(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return uierrors.New("config.Watcher.Add", uierrors.KindConfig, err)
	}
	parent := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = true
	if w.dirs[parent] {
		return nil
	}
	if err := w.fs.Add(parent); err != nil {
		delete(w.files, path)
		return uierrors.New("config.Watcher.Add", uierrors.KindConfig,
			fmt.Errorf("watch %s: %w", parent, err))
	}
	w.dirs[parent] = true
	return nil
}

// OnChange registers a callback. Callbacks run on the Run goroutine in
// registration order; a panicking callback is reported and skipped.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Run delivers changes until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed []string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.watching(event.Name) {
				continue
			}
			w.logger.Debug("config file changed", "path", event.Name, "op", event.Op.String())
			if !slices.Contains(changed, event.Name) {
				changed = append(changed, event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(changed)
			changed = nil

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "err", err)
		}
	}
}

// Close stops watching. A running Run returns.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) watching(name string) bool {
	path, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[path]
}

func (w *Watcher) reload(paths []string) {
	cfg, err := Resolve(w.dir)
	if err != nil {
		w.logger.Warn("config reload failed", "paths", paths, "err", err)
	}
	change := Change{Paths: paths, Config: cfg, Err: err}
	if len(paths) > 0 {
		change.Path = paths[len(paths)-1]
	}

	w.mu.Lock()
	callbacks := append([](func(Change))(nil), w.callbacks...)
	w.mu.Unlock()

	for _, fn := range callbacks {
		uierrors.Guard("config.Watcher.OnChange", func() { fn(change) })
	}
}
