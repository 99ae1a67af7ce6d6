package appcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
)

// Static error variables for BDD tests to comply with err113 linting rule
var (
	errAppNotCreated        = errors.New("application was not created in background")
	errUnknownStateName     = errors.New("unknown state name")
	errWrongState           = errors.New("application is in the wrong state")
	errUnexpectedFocus      = errors.New("application focus does not match expectation")
	errNoFaultToCheck       = errors.New("no fault was captured")
	errWrongFault           = errors.New("captured fault has the wrong kind")
	errUnexpectedFault      = errors.New("operation faulted unexpectedly")
	errLoadWaitFailed       = errors.New("waiting for load did not succeed")
	errLoadWaitDidNotExpire = errors.New("waiting for load should have timed out")
	errWrongNotifications   = errors.New("observer notifications do not match expectation")
)

// lifecycleBDDContext holds the test context for BDD scenarios
type lifecycleBDDContext struct {
	app      *Application
	ctx      context.Context
	observer *recordingObserver
	fault    error
}

func (c *lifecycleBDDContext) reset() {
	c.app = nil
	c.ctx = nil
	c.observer = nil
	c.fault = nil
}

// capture runs fn and records a recovered fault instead of letting the
// panic unwind the scenario.
func (c *lifecycleBDDContext) capture(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				c.fault = err
				return
			}
			c.fault = fmt.Errorf("%v", r) //nolint:err113
		}
	}()
	fn()
}

func stateByName(name string) (ApplicationState, error) {
	for _, s := range []ApplicationState{
		StatePreloading, StateStarted, StatePaused, StateSuspended, StateStopped,
	} {
		if s.name() == name {
			return s, nil
		}
	}
	return StateUnknown, fmt.Errorf("%w: %s", errUnknownStateName, name)
}

func (c *lifecycleBDDContext) aNewApplicationOnItsOwningSequence() error {
	seq := NewSequence()
	c.ctx = seq.Context(context.Background())
	c.app = NewApplication(seq)
	c.observer = &recordingObserver{}
	c.app.AddObserver(c.ctx, c.observer)
	return nil
}

func (c *lifecycleBDDContext) iStartTheApplication() error {
	if c.app == nil {
		return errAppNotCreated
	}
	c.capture(func() { c.app.Start(c.ctx) })
	return nil
}

func (c *lifecycleBDDContext) iSuspendTheApplication() error {
	c.capture(func() { c.app.Suspend(c.ctx) })
	return nil
}

func (c *lifecycleBDDContext) iTearDownTheApplication() error {
	c.capture(func() { c.app.Teardown(c.ctx) })
	return nil
}

func (c *lifecycleBDDContext) iRequestATransitionTo(name string) error {
	target, err := stateByName(name)
	if err != nil {
		return err
	}
	c.capture(func() { c.app.SetState(c.ctx, target) })
	return nil
}

func (c *lifecycleBDDContext) iStartTheApplicationFromAForeignSequence() error {
	foreign := NewSequence().Context(context.Background())
	c.capture(func() { c.app.Start(foreign) })
	return nil
}

func (c *lifecycleBDDContext) iRequestAPause() error {
	c.capture(func() { c.app.Pause(c.ctx) })
	return nil
}

func (c *lifecycleBDDContext) iSignalTheLoadGate() error {
	c.app.SignalOnLoad(c.ctx)
	return nil
}

func (c *lifecycleBDDContext) theApplicationStateShouldBe(name string) error {
	want, err := stateByName(name)
	if err != nil {
		return err
	}
	if got := c.app.State(); got != want {
		return fmt.Errorf("%w: got %s, want %s", errWrongState, got, want)
	}
	return nil
}

func (c *lifecycleBDDContext) theApplicationShouldHaveFocus() error {
	if !c.app.HasFocus() {
		return fmt.Errorf("%w: expected focus", errUnexpectedFocus)
	}
	return nil
}

func (c *lifecycleBDDContext) theApplicationShouldNotHaveFocus() error {
	if c.app.HasFocus() {
		return fmt.Errorf("%w: expected no focus", errUnexpectedFocus)
	}
	return nil
}

func (c *lifecycleBDDContext) observersShouldHaveSeen(expected string) error {
	want := strings.Split(expected, ",")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got := c.observer.snapshot()
		if len(got) >= len(want) {
			if strings.Join(got, ",") == expected {
				return nil
			}
			return fmt.Errorf("%w: got %v, want %v", errWrongNotifications, got, want)
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("%w: got %v, want %v", errWrongNotifications, c.observer.snapshot(), want)
}

func (c *lifecycleBDDContext) faultShouldBe(sentinel error) error {
	if c.fault == nil {
		return errNoFaultToCheck
	}
	if !errors.Is(c.fault, sentinel) {
		return fmt.Errorf("%w: got %v", errWrongFault, c.fault)
	}
	c.fault = nil
	return nil
}

func (c *lifecycleBDDContext) theTransitionShouldFailAsInvalid() error {
	return c.faultShouldBe(ErrInvalidTransition)
}

func (c *lifecycleBDDContext) theOperationShouldFailAsOffSequence() error {
	return c.faultShouldBe(ErrOffOwningSequence)
}

func (c *lifecycleBDDContext) theOperationShouldFailAsPauseUnsupported() error {
	return c.faultShouldBe(ErrPauseUnsupported)
}

func (c *lifecycleBDDContext) waitingForLoadShouldSucceedImmediately() error {
	if !c.app.WaitForLoad(50 * time.Millisecond) {
		return errLoadWaitFailed
	}
	return nil
}

func (c *lifecycleBDDContext) waitingForLoadShouldTimeOut() error {
	if c.app.WaitForLoad(50 * time.Millisecond) {
		return errLoadWaitDidNotExpire
	}
	return nil
}

// InitializeLifecycleScenario initializes the BDD test scenario
func InitializeLifecycleScenario(ctx *godog.ScenarioContext) {
	testCtx := &lifecycleBDDContext{}

	// Reset context before each scenario
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		testCtx.reset()
		return ctx, nil
	})

	// Fail the scenario if a fault went unchecked
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if err == nil && testCtx.fault != nil {
			return ctx, fmt.Errorf("%w: %v", errUnexpectedFault, testCtx.fault)
		}
		return ctx, err
	})

	// Background steps
	ctx.Step(`^a new application on its owning sequence$`, testCtx.aNewApplicationOnItsOwningSequence)

	// Lifecycle operation steps
	ctx.Step(`^I start the application$`, testCtx.iStartTheApplication)
	ctx.Step(`^I suspend the application$`, testCtx.iSuspendTheApplication)
	ctx.Step(`^I tear down the application$`, testCtx.iTearDownTheApplication)
	ctx.Step(`^I request a transition to "([^"]*)"$`, testCtx.iRequestATransitionTo)
	ctx.Step(`^I start the application from a foreign sequence$`, testCtx.iStartTheApplicationFromAForeignSequence)
	ctx.Step(`^I request a pause$`, testCtx.iRequestAPause)
	ctx.Step(`^I signal the load gate$`, testCtx.iSignalTheLoadGate)

	// State and focus assertion steps
	ctx.Step(`^the application state should be "([^"]*)"$`, testCtx.theApplicationStateShouldBe)
	ctx.Step(`^the application should have focus$`, testCtx.theApplicationShouldHaveFocus)
	ctx.Step(`^the application should not have focus$`, testCtx.theApplicationShouldNotHaveFocus)
	ctx.Step(`^observers should have seen "([^"]*)"$`, testCtx.observersShouldHaveSeen)

	// Fault assertion steps
	ctx.Step(`^the transition should fail as invalid$`, testCtx.theTransitionShouldFailAsInvalid)
	ctx.Step(`^the operation should fail as off-sequence$`, testCtx.theOperationShouldFailAsOffSequence)
	ctx.Step(`^the operation should fail as pause unsupported$`, testCtx.theOperationShouldFailAsPauseUnsupported)

	// Load gate steps
	ctx.Step(`^waiting for load should succeed immediately$`, testCtx.waitingForLoadShouldSucceedImmediately)
	ctx.Step(`^waiting for load should time out$`, testCtx.waitingForLoadShouldTimeOut)
}

// TestLifecycleScenarios runs the BDD tests for the lifecycle state machine
func TestLifecycleScenarios(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeLifecycleScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/lifecycle.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
