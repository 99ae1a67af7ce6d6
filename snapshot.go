package appcore

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// SnapshotReporter periodically samples the application state from off the
// owning sequence and publishes it as a com.appcore.state.snapshot
// CloudEvent. Because State is a plain any-goroutine read, a snapshot may
// lag an in-flight transition; consumers get eventual consistency by
// design of the read surface.
type SnapshotReporter struct {
	app     *Application
	logger  Logger
	spec    string
	cronSch *cron.Cron
	entryID cron.EntryID
	mu      sync.Mutex
	started bool
}

// NewSnapshotReporter creates a reporter firing on the given cron spec
// (standard five-field syntax, e.g. "* * * * *").
func NewSnapshotReporter(app *Application, spec string, logger Logger) (*SnapshotReporter, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot cron spec %q: %w", spec, err)
	}

	return &SnapshotReporter{
		app:    app,
		logger: logger,
		spec:   spec,
	}, nil
}

// Start begins periodic snapshot emission.
func (r *SnapshotReporter) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrReporterAlreadyStarted
	}

	r.cronSch = cron.New()
	entryID, err := r.cronSch.AddFunc(r.spec, r.snapshot)
	if err != nil {
		return fmt.Errorf("failed to schedule snapshot job: %w", err)
	}
	r.entryID = entryID
	r.cronSch.Start()
	r.started = true

	r.logger.Info("Snapshot reporter started", "spec", r.spec)
	return nil
}

// Stop halts snapshot emission. The call waits for a running snapshot job
// to finish.
func (r *SnapshotReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrReporterNotStarted
	}
	r.started = false

	stopCtx := r.cronSch.Stop()
	<-stopCtx.Done()

	r.logger.Info("Snapshot reporter stopped")
	return nil
}

func (r *SnapshotReporter) snapshot() {
	state := r.app.State()
	r.logger.Debug("State snapshot", "state", state.String(), "hasFocus", HasFocus(state))

	r.app.emitEvent(context.Background(), EventTypeStateSnapshot, stateChangePayload{
		State:    state.name(),
		HasFocus: HasFocus(state),
	}, nil)
}
