// Package watch re-runs a callback when any comparison root changes on disk.
package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thiagokokada/diffy-go/internal/debounce"
)

const notifyDebounceDelay = 350 * time.Millisecond

// Watcher wraps fsnotify with recursive directory registration and a
// trailing-edge debounce, so bursts of filesystem events collapse into a
// single notification.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce *debounce.Debouncer
}

// Start watches every root (directories recursively) and calls notify after
// changes settle. fsnotify watches are not recursive, so each directory is
// registered individually and new directories are added as they appear.
func Start(roots []string, notify func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	for _, root := range roots {
		if err := addTree(watcher, root); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	w := &Watcher{
		watcher:  watcher,
		debounce: debounce.New(notifyDebounceDelay, notify),
	}
	go w.loop()
	return w, nil
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		// File roots watch the containing directory.
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("watch skip", slog.String("path", p), slog.Any("error", err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" {
			return fs.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			slog.Debug("watch add failed", slog.String("path", p), slog.Any("error", err))
		}
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignoredPath(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(ev.Name); err != nil {
						slog.Debug("watch add failed", slog.String("path", ev.Name), slog.Any("error", err))
					}
				}
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			w.debounce.Trigger()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) Close() {
	if w == nil {
		return
	}
	w.debounce.Stop()
	if err := w.watcher.Close(); err != nil {
		slog.Error("watcher close", slog.Any("error", err))
	}
}

// ignoredPath filters editor temp files and git internals that would
// otherwise cause spurious reloads.
func ignoredPath(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".#") {
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".swp", ".tmp":
		return true
	}
	return strings.Contains(filepath.ToSlash(name), "/.git/")
}
