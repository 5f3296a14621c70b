// Package watch reloads the dashboard dataset when its source file changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 500 * time.Millisecond

var ErrNotWatchable = errors.New("source is not a local file")

// ReloadFunc is called once per burst of changes.
type ReloadFunc func(ctx context.Context) error

// Watcher observes the directory holding a single file so that editors which
// replace the file through a rename are still noticed.
type Watcher struct {
	target   string
	debounce time.Duration
	reload   ReloadFunc
	logger   *slog.Logger
	fs       *fsnotify.Watcher
}

// Watchable reports whether location names an existing local file.
func Watchable(location string) bool {
	if strings.Contains(location, "://") {
		return false
	}
	info, err := os.Stat(location)
	return err == nil && !info.IsDir()
}

// New starts watching path. Events are already being collected when New
// returns; Run delivers them.
func New(path string, debounce time.Duration, reload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	if !Watchable(path) {
		return nil, fmt.Errorf("%w: %q", ErrNotWatchable, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		target:   abs,
		debounce: debounce,
		reload:   reload,
		logger:   logger,
		fs:       fsw,
	}, nil
}

// Run blocks until ctx is cancelled, calling the reload function after each
// quiet period following a change to the target file. Reload errors are
// logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-timer.C:
			start := time.Now()
			if err := w.reload(ctx); err != nil {
				w.logger.Error("reload failed", "path", w.target, "error", err)
				continue
			}
			w.logger.Info("source reloaded", "path", w.target, "duration", time.Since(start))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
