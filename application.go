package appcore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// cloudRegistration holds information about a registered CloudEvents
// observer.
type cloudRegistration struct {
	observer     Observer
	eventTypes   map[string]bool // set of event types this observer is interested in
	registeredAt time.Time
}

// LifecycleDelegate supplies concrete pause/resume semantics. The base
// Application treats Pause and Resume as unsupported: without a delegate
// both are fatal. A delegate is expected to eventually drive the
// application into StatePaused (for Pause) or StateStarted (for Resume)
// through SetState.
type LifecycleDelegate interface {
	Pause(ctx context.Context, app *Application)
	Resume(ctx context.Context, app *Application)
}

// Application is the lifecycle state machine. It owns the current
// ApplicationState, enforces the restricted transition graph, derives the
// focus signal, and fans out both to registered observers.
//
// All state-mutating operations (Start, Pause, Resume, Suspend, Teardown,
// SignalOnLoad, observer add/remove, SetState, Close) must execute on the
// owning sequence established at construction; the context passed to them
// must carry the owner token. WaitForLoad and State are the two surfaces
// designed for use from arbitrary goroutines.
type Application struct {
	seq      *Sequence
	logger   Logger
	state    atomic.Int32 // ApplicationState; written only on the owning sequence
	gate     *Gate
	notifier *notifier
	delegate LifecycleDelegate
	audit    bool
	closed   bool

	// notifierBuffer is only consulted between option application and
	// notifier construction.
	notifierBuffer int

	cloudObservers map[string]*cloudRegistration // key is observer ID
	observerMutex  sync.RWMutex
}

// ApplicationOption configures an Application at construction.
type ApplicationOption func(*Application)

// WithLogger sets the structured logger used for lifecycle diagnostics.
func WithLogger(logger Logger) ApplicationOption {
	return func(app *Application) {
		if logger != nil {
			app.logger = logger
		}
	}
}

// WithDelegate injects the pause/resume strategy. Without a delegate the
// base Pause and Resume behavior is fatal.
func WithDelegate(delegate LifecycleDelegate) ApplicationOption {
	return func(app *Application) {
		app.delegate = delegate
	}
}

// WithTransitionAudit toggles transition and confinement auditing. Auditing
// is on by default: invalid transitions and off-sequence mutations panic
// with both states named. With auditing off, transitions are applied
// without validation and confinement is not checked — the release-build
// contract that trusts callers.
func WithTransitionAudit(enabled bool) ApplicationOption {
	return func(app *Application) {
		app.audit = enabled
	}
}

// WithObserverQueueSize sets the initial per-observer notification queue
// capacity. Queues grow past this as needed; enqueueing never blocks a
// transition.
func WithObserverQueueSize(size int) ApplicationOption {
	return func(app *Application) {
		if size > 0 {
			app.notifierBuffer = size
		}
	}
}

const defaultObserverQueueSize = 64

// NewApplication creates an Application confined to the given owning
// sequence, in StatePreloading. It panics when seq is nil: construction
// requires an active owning-sequence context established by the host.
func NewApplication(seq *Sequence, opts ...ApplicationOption) *Application {
	if seq == nil {
		panic(ErrSequenceNil)
	}

	app := &Application{
		seq:            seq,
		logger:         noopLogger{},
		gate:           NewGate(),
		audit:          true,
		notifierBuffer: defaultObserverQueueSize,
		cloudObservers: make(map[string]*cloudRegistration),
	}

	for _, opt := range opts {
		opt(app)
	}

	app.notifier = newNotifier(app.logger, app.notifierBuffer)
	app.state.Store(int32(StatePreloading))

	return app
}

// State returns the current application state. It is a plain read safe
// from any goroutine; off the owning sequence the value may lag a
// concurrent transition. The StateUnknown sentinel is never returned by a
// constructed Application.
func (app *Application) State() ApplicationState {
	return ApplicationState(app.state.Load())
}

// HasFocus reports whether the application currently holds focus. Focus is
// derived purely from state.
func (app *Application) HasFocus() bool {
	return HasFocus(app.State())
}

// Sequence returns the owning sequence token captured at construction.
func (app *Application) Sequence() *Sequence {
	return app.seq
}

// Initialize is the pre-start extension point. It performs no state
// mutation itself; it must be called on the owning sequence while the
// application is still in StatePreloading, before Start.
func (app *Application) Initialize(ctx context.Context) {
	app.logger.Debug("Application.Initialize")
	app.checkSequence(ctx)

	if app.audit && app.State() != StatePreloading {
		panic(fmt.Errorf("%w: Initialize requires %s, have %s",
			ErrInvalidState, StatePreloading, app.State()))
	}
}

// Start transitions the application from StatePreloading to StateStarted.
func (app *Application) Start(ctx context.Context) {
	app.logger.Debug("Application.Start")
	app.checkSequence(ctx)

	// resources must be loaded before the application starts
	if app.audit && app.State() != StatePreloading {
		panic(fmt.Errorf("%w: Start requires %s, have %s",
			ErrInvalidState, StatePreloading, app.State()))
	}

	app.SetState(ctx, StateStarted)
}

// Pause delegates to the injected LifecycleDelegate. The base behavior is
// always fatal: pausing requires a delegate supplying real semantics.
func (app *Application) Pause(ctx context.Context) {
	app.logger.Debug("Application.Pause")
	app.checkSequence(ctx)

	if app.delegate == nil {
		panic(ErrPauseUnsupported)
	}
	app.delegate.Pause(ctx, app)
}

// Resume delegates to the injected LifecycleDelegate. The base behavior is
// always fatal: resuming requires a delegate supplying real semantics.
func (app *Application) Resume(ctx context.Context) {
	app.logger.Debug("Application.Resume")
	app.checkSequence(ctx)

	if app.delegate == nil {
		panic(ErrResumeUnsupported)
	}
	app.delegate.Resume(ctx, app)
}

// Suspend moves the application to StateSuspended, routing through
// StatePaused when not already paused, then resets the load gate so that a
// subsequent WaitForLoad blocks until the next SignalOnLoad.
func (app *Application) Suspend(ctx context.Context) {
	app.logger.Debug("Application.Suspend")
	app.checkSequence(ctx)

	// must pause before resource unloading
	if app.State() != StatePaused {
		app.SetState(ctx, StatePaused)
	}

	app.SetState(ctx, StateSuspended)

	app.gate.Reset()
	app.emitEvent(ctx, EventTypeLoadReset, nil, nil)
}

// Teardown requests the StateStopped transition. The request goes through
// the table-checked path: under audit only the listed edges into
// StateStopped are permitted.
func (app *Application) Teardown(ctx context.Context) {
	app.logger.Debug("Application.Teardown")
	app.checkSequence(ctx)

	app.SetState(ctx, StateStopped)
}

// SetState validates and applies a transition, then notifies observers.
//
// Requesting the state already held is a no-op: it is logged at Warn and
// produces no notification. An invalid (current, target) pair is fatal
// under audit and applied unvalidated otherwise. After the state is
// applied every observer receives a state notification; a focus
// notification follows only when the derived focus signal flipped.
func (app *Application) SetState(ctx context.Context, target ApplicationState) {
	app.checkSequence(ctx)

	current := app.State()
	app.logger.Debug("SetApplicationState", "state", target.String())

	if current == target {
		app.logger.Warn("Attempt to re-enter state", "state", current.String())
		return
	}

	// Audit that the transition is correct.
	if app.audit {
		if current == StateUnknown || target == StateUnknown || !ValidTransition(current, target) {
			panic(fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, target))
		}
	}

	oldFocus := HasFocus(current)

	app.logger.Debug("Applying transition", "from", current.String(), "to", target.String())
	app.state.Store(int32(target))

	app.notifyStateChange(target)
	app.emitEvent(ctx, EventTypeStateChanged, stateChangePayload{
		State:    target.name(),
		Previous: current.name(),
		HasFocus: HasFocus(target),
	}, nil)

	newFocus := HasFocus(target)
	if newFocus != oldFocus {
		app.notifyFocusChange(newFocus)
		app.emitEvent(ctx, EventTypeFocusChanged, focusChangePayload{
			HasFocus: newFocus,
			State:    target.name(),
		}, nil)
	}
}

// AddObserver registers an observer capability for state and focus
// notifications. The handle must be non-nil and comparable (typically a
// pointer); it identifies the registration for RemoveObserver. A nil
// observer is fatal, as is registering after Close.
func (app *Application) AddObserver(ctx context.Context, observer ApplicationObserver) {
	app.logger.Debug("Application.AddObserver")
	app.checkSequence(ctx)

	if observer == nil {
		panic(ErrObserverNil)
	}

	if err := app.notifier.Add(observer); err != nil {
		panic(err)
	}
}

// RemoveObserver unregisters an observer capability. The handle must be
// non-nil; a nil observer is fatal.
func (app *Application) RemoveObserver(ctx context.Context, observer ApplicationObserver) {
	app.logger.Debug("Application.RemoveObserver")
	app.checkSequence(ctx)

	if observer == nil {
		panic(ErrObserverNil)
	}

	app.notifier.Remove(observer)
}

// WaitForLoad blocks the calling goroutine until the load gate is signaled
// or the timeout elapses, and reports whether it was signaled. It is
// designed to be called off the owning sequence and blocks only the
// caller. Waiting is always bounded by the caller-supplied timeout.
func (app *Application) WaitForLoad(timeout time.Duration) bool {
	app.logger.Debug("Application.WaitForLoad", "timeout", timeout)

	return app.gate.Wait(timeout)
}

// SignalOnLoad marks content as loaded, releasing every goroutine blocked
// in WaitForLoad. The gate stays set until the next Suspend resets it.
func (app *Application) SignalOnLoad(ctx context.Context) {
	app.logger.Debug("Application.SignalOnLoad")
	app.checkSequence(ctx)

	app.gate.Signal()
	app.emitEvent(ctx, EventTypeLoadSignaled, nil, nil)
}

// Close releases the notifier dispatch goroutines. The application must
// have been driven to StateStopped first; closing in any other state is
// fatal. Close is idempotent.
func (app *Application) Close(ctx context.Context) {
	app.logger.Debug("Application.Close")
	app.checkSequence(ctx)

	if app.closed {
		return
	}
	if app.State() != StateStopped {
		panic(fmt.Errorf("%w: state %s", ErrNotStopped, app.State()))
	}

	app.closed = true
	app.notifier.Close()
}

// checkSequence enforces sequence confinement for mutating operations.
// Under audit a violation is fatal; with audit off the check is skipped
// and callers are trusted.
func (app *Application) checkSequence(ctx context.Context) {
	if !app.audit {
		return
	}
	if err := app.seq.Check(ctx); err != nil {
		panic(err)
	}
}

// notifyStateChange fans a state notification out to every registered
// observer. Runs on the owning sequence; delivery happens on the
// per-observer dispatch goroutines.
func (app *Application) notifyStateChange(state ApplicationState) {
	app.notifier.NotifyState(state)
}

// notifyFocusChange fans a focus notification out to every registered
// observer.
func (app *Application) notifyFocusChange(hasFocus bool) {
	app.notifier.NotifyFocus(hasFocus)
}
