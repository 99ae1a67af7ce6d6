// Package appcore provides an application-lifecycle state machine with
// thread-safe observer fan-out and a cross-goroutine load gate.
//
// The Application owns a single ApplicationState, enforces a restricted
// transition graph between lifecycle phases, derives a focus signal from the
// state, and broadcasts both to registered observers. All state mutation is
// confined to one owning Sequence; reads and the load gate are usable from
// any goroutine.
package appcore

import "fmt"

// ApplicationState is the lifecycle phase of an Application.
//
// The zero value StateUnknown is a sentinel that flags uninitialized or
// invalid reads. It is never the current state of a constructed Application
// and must never be requested as a transition target.
type ApplicationState int

const (
	// StateUnknown is the invalid/uninitialized sentinel.
	StateUnknown ApplicationState = iota

	// StatePreloading is the initial phase: resources are being loaded and
	// the application is not yet visible.
	StatePreloading

	// StateStarted is the running, focused phase.
	StateStarted

	// StatePaused is running but unfocused.
	StatePaused

	// StateSuspended is paused with resources unloaded.
	StateSuspended

	// StateStopped is the terminal phase; the Application may be closed.
	StateStopped
)

// String returns the state name with its numeric value, matching the
// format used in transition diagnostics.
func (s ApplicationState) String() string {
	return fmt.Sprintf("%s (%d)", s.name(), int(s))
}

func (s ApplicationState) name() string {
	switch s {
	case StatePreloading:
		return "Preloading"
	case StateStarted:
		return "Started"
	case StatePaused:
		return "Paused"
	case StateSuspended:
		return "Suspended"
	case StateStopped:
		return "Stopped"
	case StateUnknown:
		return "Unknown"
	default:
		return "Invalid"
	}
}

// allowedTransitions is the closed transition graph. Any (source, target)
// pair not listed here is a programming error.
var allowedTransitions = map[ApplicationState][]ApplicationState{
	StatePreloading: {StateStarted, StateSuspended},
	StateStarted:    {StatePaused},
	StatePaused:     {StateStarted, StateSuspended},
	StateSuspended:  {StatePaused, StateStopped},
	StateStopped:    {StatePreloading, StateStarted},
}

// ValidTransition reports whether the lifecycle graph permits moving from
// one state to another. Same-state pairs are not transitions and return
// false.
func ValidTransition(from, to ApplicationState) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// HasFocus reports whether an application in the given state holds focus.
// Focus is a pure function of state: only StateStarted has focus.
func HasFocus(state ApplicationState) bool {
	return state == StateStarted
}
