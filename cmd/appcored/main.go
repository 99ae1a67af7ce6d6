// Command appcored is a minimal host for the appcore lifecycle runtime.
// It establishes an owning-sequence run loop, drives the application from
// Preloading to Started, and maps SIGINT/SIGTERM to an orderly
// Suspend/Teardown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appcoreio/appcore"
	"github.com/appcoreio/appcore/config"
)

// slogLogger adapts log/slog to the appcore Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runLoop executes submitted operations one at a time on a single
// goroutine carrying the owning-sequence context. It stands in for the
// host's task runner.
type runLoop struct {
	ops  chan func(context.Context)
	done chan struct{}
}

func newRunLoop(ctx context.Context) *runLoop {
	rl := &runLoop{
		ops:  make(chan func(context.Context), 16),
		done: make(chan struct{}),
	}

	go func() {
		defer close(rl.done)
		for op := range rl.ops {
			op(ctx)
		}
	}()

	return rl
}

// Post submits an operation and waits for it to complete.
func (rl *runLoop) Post(op func(context.Context)) {
	completed := make(chan struct{})
	rl.ops <- func(ctx context.Context) {
		defer close(completed)
		op(ctx)
	}
	<-completed
}

func (rl *runLoop) Shutdown() {
	close(rl.ops)
	<-rl.done
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "appcored:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML or TOML settings file")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	logger := &slogLogger{logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(settings.LogLevel),
	}))}

	seq := appcore.NewSequence()
	app := appcore.NewApplication(seq,
		appcore.WithLogger(logger),
		appcore.WithTransitionAudit(settings.TransitionAudit),
		appcore.WithObserverQueueSize(settings.ObserverQueueSize),
	)

	loop := newRunLoop(seq.Context(context.Background()))
	defer loop.Shutdown()

	// Log every state and focus change.
	loop.Post(func(ctx context.Context) {
		app.AddObserver(ctx, &appcore.ObserverFuncs{
			StateFunc: func(state appcore.ApplicationState) {
				logger.Info("State changed", "state", state.String())
			},
			FocusFunc: func(hasFocus bool) {
				logger.Info("Focus changed", "hasFocus", hasFocus)
			},
		})
	})

	if settings.AdminEnabled {
		admin := appcore.NewAdminServer(app, settings.AdminAddr, logger)
		if err := admin.Start(); err != nil {
			return fmt.Errorf("failed to start admin server: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := admin.Stop(stopCtx); err != nil {
				logger.Error("Failed to stop admin server", "error", err)
			}
		}()
	}

	if settings.SnapshotEnabled {
		reporter, err := appcore.NewSnapshotReporter(app, settings.SnapshotSpec, logger)
		if err != nil {
			return fmt.Errorf("failed to create snapshot reporter: %w", err)
		}
		if err := reporter.Start(); err != nil {
			return fmt.Errorf("failed to start snapshot reporter: %w", err)
		}
		defer func() {
			if err := reporter.Stop(); err != nil {
				logger.Error("Failed to stop snapshot reporter", "error", err)
			}
		}()
	}

	if *configPath != "" {
		watcher := config.NewWatcher(*configPath, func(updated config.Settings) {
			logger.Info("Settings file changed", "logLevel", updated.LogLevel)
		}, logger)
		if err := watcher.Start(); err != nil {
			logger.Warn("Config watch unavailable", "error", err)
		} else {
			defer func() {
				if err := watcher.Stop(); err != nil {
					logger.Error("Failed to stop config watcher", "error", err)
				}
			}()
		}
	}

	// Drive Preloading -> Started on the owning sequence.
	loop.Post(func(ctx context.Context) {
		app.Initialize(ctx)
		app.Start(ctx)
		app.SignalOnLoad(ctx)
	})

	// Demonstrate the cross-goroutine load gate.
	if app.WaitForLoad(settings.LoadWaitTimeout()) {
		logger.Info("Content loaded")
	} else {
		logger.Warn("Load wait timed out", "timeout", settings.LoadWaitTimeout())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())

	loop.Post(func(ctx context.Context) {
		app.Suspend(ctx)
		app.Teardown(ctx)
		app.Close(ctx)
	})

	return nil
}
