package appcore

import (
	"errors"
)

// Lifecycle errors. Faults in the lifecycle contract are fail-fast: the
// Application panics with an error wrapping one of these sentinels so that
// hosts can classify the fault with errors.Is inside a recover handler.
var (
	// State machine errors
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
	ErrInvalidState      = errors.New("invalid application state")
	ErrNotStopped        = errors.New("application is not stopped")

	// Extension point errors
	ErrPauseUnsupported  = errors.New("application does not support pause")
	ErrResumeUnsupported = errors.New("application does not support resume")

	// Confinement errors
	ErrOffOwningSequence = errors.New("operation invoked off the owning sequence")
	ErrSequenceNil       = errors.New("sequence is nil")

	// Observer errors
	ErrObserverNil = errors.New("observer is nil")
	ErrClosed      = errors.New("application is closed")

	// Introspection errors
	ErrAdminAlreadyStarted = errors.New("admin server already started")
	ErrAdminNotStarted     = errors.New("admin server not started")

	// Snapshot reporter errors
	ErrReporterAlreadyStarted = errors.New("snapshot reporter already started")
	ErrReporterNotStarted     = errors.New("snapshot reporter not started")
)
