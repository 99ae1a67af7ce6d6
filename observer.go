package appcore

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// ApplicationObserver is the capability implemented by consumers of state
// and focus changes.
//
// Both callbacks are side-effect-only from the Application's perspective.
// Implementations must not assume which goroutine invokes them: delivery
// happens on a per-observer dispatch goroutine. For a single observer the
// state notification of a transition is always delivered before the focus
// notification when both fire; no ordering is guaranteed across distinct
// observers.
type ApplicationObserver interface {
	// OnStateChange is called after every applied transition with the new
	// state.
	OnStateChange(state ApplicationState)

	// OnFocusChange is called only when the derived focus signal flipped
	// as part of a transition.
	OnFocusChange(hasFocus bool)
}

// ObserverFuncs adapts plain functions to the ApplicationObserver
// interface. Nil fields are skipped. Register the pointer: the observer
// handle identifies the registration for removal.
type ObserverFuncs struct {
	StateFunc func(state ApplicationState)
	FocusFunc func(hasFocus bool)
}

// OnStateChange implements ApplicationObserver.
func (o *ObserverFuncs) OnStateChange(state ApplicationState) {
	if o.StateFunc != nil {
		o.StateFunc(state)
	}
}

// OnFocusChange implements ApplicationObserver.
func (o *ObserverFuncs) OnFocusChange(hasFocus bool) {
	if o.FocusFunc != nil {
		o.FocusFunc(hasFocus)
	}
}

// Observer defines the interface for objects that want to be notified of
// lifecycle CloudEvents. This is the event-plane counterpart of
// ApplicationObserver: every applied transition is also published as a
// CloudEvent to registered Observers.
type Observer interface {
	// OnEvent is called when an event occurs that the observer is
	// interested in. Observers should handle events quickly to avoid
	// delaying their own delivery queue; other observers are unaffected.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer, used for
	// registration tracking and debugging.
	ObserverID() string
}

// Subject defines the interface for objects that publish lifecycle
// CloudEvents to registered Observers. Application implements Subject.
type Subject interface {
	// RegisterObserver adds an observer to receive notifications.
	// Observers can optionally filter events by type using the eventTypes
	// parameter. If eventTypes is empty, the observer receives all events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer from receiving notifications.
	// It is idempotent and does not error if the observer wasn't
	// registered.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all registered observers without
	// blocking the caller.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered
	// observers, useful for debugging and monitoring.
	GetObservers() []ObserverInfo
}

// ObserverInfo provides information about a registered observer.
type ObserverInfo struct {
	// ID is the unique identifier of the observer
	ID string `json:"id"`

	// EventTypes are the event types this observer is subscribed to.
	// Empty slice means all events.
	EventTypes []string `json:"eventTypes"`

	// RegisteredAt indicates when the observer was registered
	RegisteredAt time.Time `json:"registeredAt"`
}

// EventType constants for lifecycle CloudEvents. Following the CloudEvents
// specification these use reverse domain notation.
const (
	// State machine events
	EventTypeStateChanged  = "com.appcore.state.changed"
	EventTypeFocusChanged  = "com.appcore.focus.changed"
	EventTypeStateSnapshot = "com.appcore.state.snapshot"

	// Load gate events
	EventTypeLoadSignaled = "com.appcore.load.signaled"
	EventTypeLoadReset    = "com.appcore.load.reset"

	// Observer registry events
	EventTypeObserverRegistered   = "com.appcore.observer.registered"
	EventTypeObserverUnregistered = "com.appcore.observer.unregistered"

	// Configuration events
	EventTypeConfigLoaded  = "com.appcore.config.loaded"
	EventTypeConfigChanged = "com.appcore.config.changed"
)

// FunctionalObserver provides a simple way to create CloudEvents observers
// using functions, without defining full structs.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates a new observer that uses the provided
// function to handle events.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements the Observer interface by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements the Observer interface by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
