// Package watch turns file system changes under a set of directories into
// debounced rebuild requests.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// RebuildFunc is called once per quiet period with the paths that changed
// during it, sorted and deduplicated.
type RebuildFunc func(changed []string)

// Options configures Watch.
type Options struct {
	// Dirs are watched recursively. Directories that do not exist are
	// skipped.
	Dirs     []string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch starts an fsnotify watcher over opts.Dirs and calls rebuild after
// each burst of changes until ctx is cancelled. rebuild runs on the
// watcher goroutine, so changes that arrive while it runs are collected
// into the next burst.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, opts Options, rebuild RebuildFunc) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range opts.Dirs {
		if dir == "" {
			continue
		}
		if err := addDirsRecursive(w, dir); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Debug("watcher: skipping missing dir", slog.String("path", dir))
				continue
			}
			return err
		}
		logger.Info("watcher: started", slog.String("root", dir))
	}

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
		pending = map[string]struct{}{}
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			logger.Debug("watcher: rebuild", slog.Int("changes", len(changed)))
			rebuild(changed)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
				}
			}

			pending[ev.Name] = struct{}{}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// ignored filters events that cannot change the build output: attribute
// changes, temporary files from atomic writes and editor swap files.
func ignored(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(ev.Name)
	return strings.HasPrefix(base, ".quire-tmp-") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp")
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
