package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 500 * time.Millisecond

// ignoredDirs are never watched. The state directory is written by every
// run and would otherwise retrigger itself.
var ignoredDirs = map[string]bool{
	domain.StateDir: true,
	".git":          true,
	"node_modules":  true,
	"_archive":      true,
	".shopify":      true,
}

var watchedExts = []string{".liquid", ".json", ".css", ".scss"}

// ThemeWatcher watches a theme tree and delivers batches of changed files,
// relative to the root and sorted, once edits settle.
type ThemeWatcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func([]string)
	logger   *slog.Logger
}

// New creates a watcher for root. A zero debounce uses DefaultDebounce.
func New(root string, debounce time.Duration, onChange func([]string), logger *slog.Logger) (*ThemeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	tw := &ThemeWatcher{
		root:     root,
		watcher:  w,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}
	if err := tw.addTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	return tw, nil
}

// addTree adds dir and every subdirectory that is not ignored.
func (w *ThemeWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *ThemeWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	batcher := NewBatcher(w.debounce, w.deliver)
	defer batcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			// New directories are watched as they appear
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !ignoredDirs[info.Name()] {
						_ = w.addTree(event.Name)
					}
					continue
				}
			}

			rel, ok := Relevant(w.root, event.Name)
			if !ok {
				continue
			}
			batcher.Add(rel)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *ThemeWatcher) deliver(changed []string) {
	if w.onChange == nil {
		return
	}
	w.logger.Debug("theme files changed", "files", changed)
	w.onChange(changed)
}

// Relevant reports whether path is a lintable theme file outside the
// ignored directories, and returns it relative to root with slashes.
func Relevant(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if ignoredDirs[part] {
			return "", false
		}
	}
	for _, ext := range watchedExts {
		if strings.HasSuffix(rel, ext) {
			return rel, true
		}
	}
	return "", false
}
