package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// stubDebounce collapses the burst of events editors produce on save.
const stubDebounce = 100 * time.Millisecond

// StubWatcher reloads the stub file when it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors that save by rename keep triggering reloads.
type StubWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *slog.Logger
}

// NewStubWatcher starts watching the directory containing path.
func NewStubWatcher(path string, log *slog.Logger) (*StubWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving stub path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &StubWatcher{path: abs, watcher: w, log: log}, nil
}

// Watch calls onChange after the stub file is written or recreated. It
// blocks until ctx is cancelled or Close is called.
func (sw *StubWatcher) Watch(ctx context.Context, onChange func(*StubTable)) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != sw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(stubDebounce)
			} else {
				timer.Reset(stubDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			table, err := LoadStubs(sw.path)
			if err != nil {
				sw.log.Warn("stub reload failed, keeping previous stubs", "path", sw.path, "error", err)
				continue
			}
			sw.log.Info("stubs reloaded", "path", sw.path, "count", table.Len())
			onChange(table)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn("stub watcher error", "error", err)
		}
	}
}

// Close stops the underlying watcher.
func (sw *StubWatcher) Close() error {
	return sw.watcher.Close()
}
