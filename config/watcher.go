package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReloadCallback is invoked with freshly loaded settings after the watched
// file changes. It runs on the watcher goroutine.
type ReloadCallback func(settings Settings)

// Logger is the subset of the host logger the watcher reports through.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Watcher reloads settings when the backing file changes on disk.
// It watches the containing directory rather than the file itself so that
// editor-style replace-by-rename updates are seen.
type Watcher struct {
	path     string
	callback ReloadCallback
	logger   Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	watching bool
}

// NewWatcher creates a watcher for the config file at path. A nil logger
// discards reload diagnostics.
func NewWatcher(path string, callback ReloadCallback, logger Logger) *Watcher {
	if logger == nil {
		logger = noopLogger{}
	}

	return &Watcher{
		path:     path,
		callback: callback,
		logger:   logger,
	}
}

// Start begins watching for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.fsw = fsw
	w.watching = true

	go w.run(fsw)
	return nil
}

// Stop halts watching. It is idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.watching {
		return nil
	}
	w.watching = false

	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("failed to close fsnotify watcher: %w", err)
	}
	return nil
}

func (w *Watcher) run(fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			settings, err := Load(w.path)
			if err != nil {
				// Keep the previous settings on a broken edit.
				w.logger.Error("Config reload rejected", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("Config reloaded", "path", w.path)
			w.callback(settings)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watch error", "path", w.path, "error", err)
		}
	}
}
