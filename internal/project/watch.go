package project

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mcncl/jsonbean/internal/errors"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Root         string
	LibDir       string
	GeneratedDir string
	Debounce     time.Duration
	Logger       *slog.Logger
	// OnPubspec runs when the manifest changes, before the next batch.
	OnPubspec func()
}

// Watch blocks until ctx is done, calling onChange with the sorted set of
// entity source paths that changed during each debounce window. Writes under
// GeneratedDir are ignored so regeneration does not retrigger itself.
// An error from onChange is logged and watching continues.
func Watch(ctx context.Context, opts WatchOptions, onChange func(context.Context, []string) error) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewProjectError("failed to start file watcher", err)
	}
	defer w.Close()

	if err := addTree(w, opts.LibDir, opts.GeneratedDir); err != nil {
		return err
	}
	pubspec := filepath.Join(opts.Root, PubspecFile)
	if err := w.Add(opts.Root); err != nil {
		return errors.NewProjectError("failed to watch "+opts.Root, err)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(ev.Name)

			if path == pubspec {
				logger.Debug("manifest changed", "path", path)
				if opts.OnPubspec != nil {
					opts.OnPubspec()
				}
				continue
			}
			if !within(path, opts.LibDir) || within(path, opts.GeneratedDir) {
				continue
			}

			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if err := addTree(w, path, opts.GeneratedDir); err != nil {
						logger.Warn("failed to watch new directory", "path", path, "error", err)
					}
					continue
				}
			}
			if !watchedFile(path) || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}

			pending[path] = true
			timer.Reset(opts.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			logger.Debug("sources changed", "count", len(changed))
			if err := onChange(ctx, changed); err != nil {
				logger.Warn("regeneration failed", "error", err)
			}
		}
	}
}

func addTree(w *fsnotify.Watcher, dir, generatedDir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (strings.HasPrefix(d.Name(), ".") || skippedDirNames[d.Name()]) {
			return filepath.SkipDir
		}
		if generatedDir != "" && within(path, generatedDir) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return errors.NewProjectError("failed to watch "+path, err)
		}
		return nil
	})
}

func watchedFile(path string) bool {
	return strings.HasSuffix(path, ".dart") && !strings.HasSuffix(path, ".g.dart")
}

// within reports whether path is dir or lies beneath it.
func within(path, dir string) bool {
	if dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
