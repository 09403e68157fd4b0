// SPDX-License-Identifier: MPL-2.0

// Package watch rebuilds a module when its inputs change.
//
// A Watcher monitors directory trees (the compiled classes) and individual
// files (the dependency manifest) and calls OnChange once the inputs have
// been quiet for the debounce period. Events arriving while OnChange runs
// are collected for the next call.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is not positive.
const DefaultDebounce = 300 * time.Millisecond

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watcher is already running")

// defaultIgnores are editor and OS artifacts that never trigger a rebuild.
var defaultIgnores = []string{
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/*.tmp",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are directories watched recursively.
		Roots []string
		// Files are watched individually through their parent directory.
		// A file that does not exist yet is picked up when it is created.
		Files []string
		// Ignore adds doublestar patterns, matched against paths relative to
		// their root, to the built-in ignores.
		Ignore []string
		// Debounce is the quiet period before OnChange runs.
		Debounce time.Duration
		// OnChange receives the sorted absolute paths that changed. Its error
		// is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
		// Logger receives progress messages. Nil discards them.
		Logger *log.Logger
	}

	// Watcher rebuilds on input changes. Run may be called once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		files    map[string]struct{}
		ignores  []string
		debounce time.Duration
		logger   *log.Logger
		started  atomic.Bool
	}
)

// New validates cfg and registers every root directory and the parent of
// every watched file.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 && len(cfg.Files) == 0 {
		return nil, errors.New("watch: nothing to watch")
	}
	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("watch: invalid ignore pattern %q", pat)
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w := &Watcher{
		cfg:      cfg,
		files:    make(map[string]struct{}, len(cfg.Files)),
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: cfg.Debounce,
		logger:   logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}

	for _, root := range cfg.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", root, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("watch: %s is not a directory", abs)
		}
		w.roots = append(w.roots, abs)
	}
	for _, file := range cfg.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %s: %w", file, err)
		}
		w.files[abs] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Warn("closing watcher failed", "err", closeErr)
		}
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is canceled, which is a clean stop and
// returns nil. Fatal watcher errors, such as exhausted inotify watches, end
// the loop with an error.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing watcher failed", "err", err)
		}
	}()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	w.logger.Info("Watching for changes", "roots", len(w.roots), "files", len(w.files))

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			if !w.relevant(evt) {
				continue
			}
			if evt.Has(fsnotify.Create) {
				w.addIfDir(evt.Name)
			}
			w.logger.Debug("change detected", "path", evt.Name, "op", evt.Op.String())
			pending[evt.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatal(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watch error", "err", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Info("Rebuilding", "changed", len(changed))
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Warn("rebuild failed; waiting for further changes", "err", err)
			}
		}
	}
}

// register adds each root tree and each watched file's directory.
func (w *Watcher) register() error {
	for _, root := range w.roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				w.logger.Warn("skipping unreadable path", "path", path, "err", walkErr)
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && w.ignored(root, path) {
				return filepath.SkipDir
			}
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watch: add %s: %w", path, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	for file := range w.files {
		dir := filepath.Dir(file)
		if slices.Contains(w.fsw.WatchList(), dir) {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add %s: %w", dir, err)
		}
	}
	return nil
}

// relevant reports whether evt concerns a watched file or a non-ignored
// path under a root. Chmod-only events are dropped.
func (w *Watcher) relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	if _, ok := w.files[evt.Name]; ok {
		return true
	}
	root, ok := w.rootOf(evt.Name)
	return ok && !w.ignored(root, evt.Name)
}

// rootOf returns the watched root containing path.
func (w *Watcher) rootOf(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !filepath.IsAbs(rel) && !hasParentPrefix(rel) {
			return root, true
		}
	}
	return "", false
}

// ignored matches path, relative to root, against the ignore patterns.
func (w *Watcher) ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
	}
	return false
}

// addIfDir extends the watch to a directory created under a root.
func (w *Watcher) addIfDir(path string) {
	root, ok := w.rootOf(path)
	if !ok || w.ignored(root, path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("cannot watch new directory", "path", path, "err", err)
	}
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
