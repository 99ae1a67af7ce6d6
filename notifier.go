package appcore

import (
	"sync"
)

// notification is one queued delivery for a single observer.
type notification struct {
	focus    bool // focus notification when true, state notification otherwise
	state    ApplicationState
	hasFocus bool
}

// notifier is the thread-safe fan-out registry behind AddObserver /
// RemoveObserver. Each registered observer gets its own dispatch goroutine
// and FIFO queue, so delivery to one observer is independent of delivery to
// every other while notifications to a single observer keep their order.
// In particular the state notification of a transition always reaches an
// observer before the focus notification of the same transition.
//
// Queues are unbounded: enqueueing never blocks the caller, so a stalled
// observer backs up only its own queue and the owning sequence keeps
// making progress.
type notifier struct {
	mu      sync.RWMutex
	logger  Logger
	buffer  int
	workers map[ApplicationObserver]*observerWorker
	closed  bool
}

func newNotifier(logger Logger, buffer int) *notifier {
	return &notifier{
		logger:  logger,
		buffer:  buffer,
		workers: make(map[ApplicationObserver]*observerWorker),
	}
}

// Add registers an observer and starts its dispatch goroutine. Adding an
// already-registered observer is a no-op. Adding to a closed notifier
// returns ErrClosed.
func (n *notifier) Add(observer ApplicationObserver) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	if _, exists := n.workers[observer]; exists {
		return nil
	}

	w := newObserverWorker(observer, n.logger, n.buffer)
	n.workers[observer] = w
	go w.run()
	return nil
}

// Remove unregisters an observer. Pending notifications already queued for
// it are still delivered before its dispatch goroutine exits. Removing an
// unknown observer is a no-op.
func (n *notifier) Remove(observer ApplicationObserver) {
	n.mu.Lock()
	defer n.mu.Unlock()

	w, exists := n.workers[observer]
	if !exists {
		return
	}
	delete(n.workers, observer)
	w.stop()
}

// Len returns the number of registered observers.
func (n *notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.workers)
}

// NotifyState enqueues a state notification for every registered observer.
func (n *notifier) NotifyState(state ApplicationState) {
	n.broadcast(notification{state: state})
}

// NotifyFocus enqueues a focus notification for every registered observer.
func (n *notifier) NotifyFocus(hasFocus bool) {
	n.broadcast(notification{focus: true, hasFocus: hasFocus})
}

func (n *notifier) broadcast(msg notification) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	// A validated transition always notifies, never drops, and never
	// waits on an observer.
	for _, w := range n.workers {
		w.enqueue(msg)
	}
}

// Close unregisters every observer and waits for their queues to drain.
func (n *notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	workers := make([]*observerWorker, 0, len(n.workers))
	for _, w := range n.workers {
		workers = append(workers, w)
	}
	n.workers = make(map[ApplicationObserver]*observerWorker)
	n.mu.Unlock()

	for _, w := range workers {
		w.stop()
		<-w.done
	}
}

// observerWorker delivers queued notifications to one observer in FIFO
// order on a dedicated goroutine. The pending queue grows as needed;
// enqueue never blocks.
type observerWorker struct {
	observer ApplicationObserver
	logger   Logger
	done     chan struct{}

	mu      sync.Mutex
	cond    *sync.Cond
	pending []notification
	stopped bool
}

func newObserverWorker(observer ApplicationObserver, logger Logger, capacity int) *observerWorker {
	w := &observerWorker{
		observer: observer,
		logger:   logger,
		done:     make(chan struct{}),
		pending:  make([]notification, 0, capacity),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// enqueue appends a notification and wakes the dispatch goroutine. After
// stop it is a no-op.
func (w *observerWorker) enqueue(msg notification) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.pending = append(w.pending, msg)
	w.mu.Unlock()
	w.cond.Signal()
}

// stop marks the worker for shutdown. Pending notifications are still
// delivered before the dispatch goroutine exits.
func (w *observerWorker) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cond.Signal()
}

func (w *observerWorker) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.pending) == 0 && !w.stopped {
			w.cond.Wait()
		}
		if len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		batch := w.pending
		w.pending = nil
		w.mu.Unlock()

		for _, msg := range batch {
			w.deliver(msg)
		}
	}
}

func (w *observerWorker) deliver(msg notification) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Observer panicked", "focus", msg.focus, "panic", r)
		}
	}()

	if msg.focus {
		w.observer.OnFocusChange(msg.hasFocus)
	} else {
		w.observer.OnStateChange(msg.state)
	}
}
