package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree via fsnotify and emits debounced batches
// of file events.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	errs      chan error
	opts      Options

	mu      sync.Mutex
	stopped bool
	stopCh  chan struct{}
}

// New creates a Watcher with the given options.
func New(opts Options) (*Watcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		errs:      make(chan error, 8),
		opts:      opts,
		stopCh:    make(chan struct{}),
	}, nil
}

// Start begins watching root recursively and blocks until the context is
// cancelled or Stop is called. Directories created while watching are added
// to the watch set.
func (w *Watcher) Start(ctx context.Context, root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}

	if err := w.addRecursive(absRoot); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// Events returns the channel of debounced event batches.
// The channel is closed when the watcher stops.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns the channel of non-fatal watcher errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Stop stops the watcher and releases resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true

	close(w.stopCh)
	err := w.fsw.Close()
	w.debouncer.Stop()
	return err
}

// addRecursive adds root and every directory below it to the watch set.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't access
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			slog.Warn("failed to watch directory",
				slog.String("path", path),
				slog.String("error", addErr.Error()))
		}
		return nil
	})
}

// handleEvent maps one fsnotify event into the debouncer.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var op Operation
	switch {
	case event.Op.Has(fsnotify.Create):
		op = OpCreate
		// New directories must join the watch set for events below them.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.emitError(err)
			}
			return
		}
	case event.Op.Has(fsnotify.Write):
		op = OpModify
	case event.Op.Has(fsnotify.Remove):
		op = OpDelete
	case event.Op.Has(fsnotify.Rename):
		op = OpRename
	default:
		// Chmod-only events don't change search results.
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      event.Name,
		Operation: op,
		Timestamp: time.Now(),
	})
}

// emitError sends a non-fatal error without blocking the event loop.
func (w *Watcher) emitError(err error) {
	select {
	case w.errs <- err:
	default:
		slog.Warn("watcher error channel full",
			slog.String("error", err.Error()))
	}
}
