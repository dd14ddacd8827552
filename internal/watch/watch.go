// Package watch reloads the custom shader catalog when user shader
// directories change on disk.
//
// A root that does not exist yet is tracked through its nearest existing
// ancestor and watched from the moment it is created.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Reloader is implemented by *shader.Catalog.
type Reloader interface {
	Reload() int
}

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait after the last event before reloading.
	Debounce time.Duration
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Watcher triggers a catalog reload after changes under the user roots.
type Watcher struct {
	catalog  Reloader
	roots    []string
	debounce time.Duration
	logger   *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a Watcher for the given user roots.
func New(catalog Reloader, roots []string, opts Options) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	cleaned := make([]string, len(roots))
	for i, root := range roots {
		cleaned[i] = filepath.Clean(root)
	}

	return &Watcher{
		catalog:  catalog,
		roots:    cleaned,
		debounce: debounce,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the initial watches are registered.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is cancelled. It returns nil on cancellation and an
// error only if the underlying watcher cannot be created.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Roots that do not exist yet, watched through an ancestor
	pending := make(map[string]struct{})
	for _, root := range w.roots {
		ok, err := track(watcher, root)
		if err != nil {
			w.logger.Warn("not watching shader root", "root", root, "error", err)
			continue
		}
		if !ok {
			pending[root] = struct{}{}
			w.logger.Info("shader root missing, waiting for it", "root", root)
			continue
		}
		w.logger.Debug("watching shader root", "root", root)
	}
	w.readyOnce.Do(func() { close(w.ready) })

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	reload := func(trigger string) {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(w.debounce, func() {
			if ctx.Err() != nil {
				return
			}
			n := w.catalog.Reload()
			w.logger.Info("custom shaders changed", "trigger", trigger, "custom_shaders", n)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}

			appeared := false
			for root := range pending {
				if !within(root, event.Name) {
					continue
				}
				ok, err := track(watcher, root)
				if err != nil {
					w.logger.Debug("failed to follow missing shader root", "root", root, "error", err)
					continue
				}
				if ok {
					delete(pending, root)
					appeared = true
					w.logger.Info("watching shader root", "root", root)
				}
			}

			if !appeared && !w.underRoot(event.Name, pending) {
				continue
			}

			if event.Has(fsnotify.Create) && w.isBundleDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					w.logger.Debug("failed to watch new bundle", "path", event.Name, "error", err)
				}
			}

			reload(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// underRoot reports whether path lies inside a root that is being watched.
func (w *Watcher) underRoot(path string, pending map[string]struct{}) bool {
	for _, root := range w.roots {
		if _, missing := pending[root]; missing {
			continue
		}
		if within(path, root) {
			return true
		}
	}
	return false
}

// isBundleDir reports whether path is a directory directly under a watched root.
func (w *Watcher) isBundleDir(path string) bool {
	parent := filepath.Clean(filepath.Dir(path))
	found := false
	for _, root := range w.roots {
		if filepath.Clean(root) == parent {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// watchBundles adds root and its immediate subdirectories to the watcher.
func watchBundles(watcher *fsnotify.Watcher, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	if err := watcher.Add(root); err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := watcher.Add(filepath.Join(root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// track watches root if it exists. Otherwise it watches the nearest existing
// ancestor and reports false.
func track(watcher *fsnotify.Watcher, root string) (bool, error) {
	for {
		dir, err := nearestExisting(root)
		if err != nil {
			return false, err
		}
		if dir == root {
			return true, watchBundles(watcher, root)
		}
		if err := watcher.Add(dir); err != nil {
			return false, err
		}

		// The next level may have been created before the watch was added
		again, err := nearestExisting(root)
		if err != nil {
			return false, err
		}
		if again == dir {
			return false, nil
		}
	}
}

// nearestExisting returns path or its closest ancestor that exists.
func nearestExisting(path string) (string, error) {
	dir := path
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return "", fmt.Errorf("%s is not a directory", dir)
			}
			return dir, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", err
		}
		dir = parent
	}
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
