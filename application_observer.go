package appcore

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Application implements Subject: every applied transition, focus flip and
// load-gate change is also published as a CloudEvent to observers
// registered here. Unlike the typed ApplicationObserver plane, the
// CloudEvents registry is safe to mutate from any goroutine.

// RegisterObserver adds a CloudEvents observer. Observers can optionally
// filter events by type using the eventTypes parameter; if eventTypes is
// empty, the observer receives all events.
func (app *Application) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}

	app.observerMutex.Lock()
	defer app.observerMutex.Unlock()

	// Convert event types slice to map for O(1) lookups
	eventTypeMap := make(map[string]bool)
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}

	app.cloudObservers[observer.ObserverID()] = &cloudRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}

	app.logger.Info("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	app.emitEvent(context.Background(), EventTypeObserverRegistered, map[string]interface{}{
		"observerID": observer.ObserverID(),
	}, nil)
	return nil
}

// UnregisterObserver removes a CloudEvents observer. It is idempotent and
// won't error if the observer wasn't registered.
func (app *Application) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrObserverNil
	}

	app.observerMutex.Lock()
	defer app.observerMutex.Unlock()

	if _, exists := app.cloudObservers[observer.ObserverID()]; exists {
		delete(app.cloudObservers, observer.ObserverID())
		app.logger.Info("Observer unregistered", "observerID", observer.ObserverID())
		app.emitEvent(context.Background(), EventTypeObserverUnregistered, map[string]interface{}{
			"observerID": observer.ObserverID(),
		}, nil)
	}

	return nil
}

// NotifyObservers sends a CloudEvent to all registered CloudEvents
// observers. The notification process is non-blocking for the caller and
// handles observer errors gracefully.
func (app *Application) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	app.observerMutex.RLock()
	defer app.observerMutex.RUnlock()

	// Ensure timestamp is set
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}

	if err := ValidateCloudEvent(event); err != nil {
		app.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	// Notify observers in goroutines to avoid blocking
	for _, registration := range app.cloudObservers {
		registration := registration // capture for goroutine

		// Check if observer is interested in this event type
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue // observer not interested in this event type
		}

		go func() {
			defer func() {
				if r := recover(); r != nil {
					app.logger.Error("Observer panicked", "observerID", registration.observer.ObserverID(), "event", event.Type(), "panic", r)
				}
			}()

			if err := registration.observer.OnEvent(ctx, event); err != nil {
				app.logger.Error("Observer error", "observerID", registration.observer.ObserverID(), "event", event.Type(), "error", err)
			}
		}()
	}

	return nil
}

// GetObservers returns information about currently registered CloudEvents
// observers.
func (app *Application) GetObservers() []ObserverInfo {
	app.observerMutex.RLock()
	defer app.observerMutex.RUnlock()

	info := make([]ObserverInfo, 0, len(app.cloudObservers))
	for _, registration := range app.cloudObservers {
		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}

		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}

	return info
}

// emitEvent publishes a lifecycle CloudEvent with proper source
// information. Emission happens on a separate goroutine so lifecycle
// operations never wait on the event plane.
func (app *Application) emitEvent(ctx context.Context, eventType string, data interface{}, metadata map[string]interface{}) {
	event := NewCloudEvent(eventType, "application", data, metadata)

	go func() {
		if err := app.NotifyObservers(ctx, event); err != nil {
			app.logger.Error("Failed to notify observers", "event", eventType, "error", err)
		}
	}()
}
