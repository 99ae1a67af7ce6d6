package appcore

import (
	"sync"
	"time"
)

// Gate is a manual-reset, thread-safe wait/signal primitive. Once signaled
// it stays set until explicitly reset, like a binary semaphore with manual
// reset semantics. It is safe to call from any goroutine and is entirely
// decoupled from sequence confinement.
type Gate struct {
	mu  sync.Mutex
	set bool
	ch  chan struct{} // closed while the gate is set
}

// NewGate creates a Gate in the unset state.
func NewGate() *Gate {
	return &Gate{ch: make(chan struct{})}
}

// Signal marks the gate as set, releasing all current and future waiters.
// Signaling an already-set gate is a no-op.
func (g *Gate) Signal() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.set {
		g.set = true
		close(g.ch)
	}
}

// Reset returns the gate to the unset state so that subsequent Wait calls
// block again. Resetting an unset gate is a no-op.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.set {
		g.set = false
		g.ch = make(chan struct{})
	}
}

// IsSet reports whether the gate is currently set.
func (g *Gate) IsSet() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.set
}

// Wait blocks the calling goroutine until the gate is signaled or the
// timeout elapses, and reports whether the gate was signaled. A timeout on
// an unset gate leaves the gate state untouched. Waiting is always bounded:
// a non-positive timeout polls the current state without blocking.
func (g *Gate) Wait(timeout time.Duration) bool {
	g.mu.Lock()
	set, ch := g.set, g.ch
	g.mu.Unlock()

	if set {
		return true
	}
	if timeout <= 0 {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
