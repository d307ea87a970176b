// Package async tracks the lifecycle of one asynchronous operation at a time.
//
// A Controller moves through Idle, Pending, Resolved and Rejected. Every Run
// is tagged with a sequence number; a result that arrives after a newer Run
// or a Reset is discarded, so consumers always see the outcome of the most
// recently issued operation. Dispose ends the controller's life: from then
// on no transition is applied.
package async

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Operation is the asynchronous work a Controller runs
type Operation[T any] func(ctx context.Context) (T, error)

// Discard reasons reported to an Observer
const (
	DiscardStale    = "stale"
	DiscardDisposed = "disposed"
)

// Observer receives lifecycle measurements; metrics.Recorder implements it
type Observer interface {
	OperationSettled(status Status, elapsed time.Duration)
	OperationDiscarded(reason string)
}

// Option configures a Controller
type Option[T any] func(*Controller[T])

// WithListener registers a function called with every applied state, in order
func WithListener[T any](fn func(State[T])) Option[T] {
	return func(c *Controller[T]) {
		if fn != nil {
			c.listeners = append(c.listeners, fn)
		}
	}
}

// WithLogger sets the logger; the default is log.Default()
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(c *Controller[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver reports settle latency and discarded results
func WithObserver[T any](o Observer) Option[T] {
	return func(c *Controller[T]) {
		c.observer = o
	}
}

// Controller holds the state of one logical operation for one consumer
type Controller[T any] struct {
	mu       sync.Mutex
	state    State[T]
	seq      uint64 // sequence of the current operation
	live     bool
	queue    []State[T]
	draining bool

	listeners []func(State[T])
	logger    *log.Logger
	observer  Observer
}

// New creates a live controller in the Idle state
func New[T any](opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		state:  State[T]{Status: StatusIdle},
		live:   true,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Sequence returns the sequence number of the current operation
func (c *Controller[T]) Sequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Disposed reports whether Dispose has been called
func (c *Controller[T]) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.live
}

// Dispose marks the consumer as gone. Later transitions are dropped.
// Operations still in flight keep running and may still call their callbacks.
func (c *Controller[T]) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.live = false
}

// Run moves to Pending and starts op on its own goroutine. It returns the
// run's sequence number, or 0 when the controller is disposed (op is not started).
//
// On success the state becomes Resolved and onSuccess is called. On failure
// onFailure is called with the error message and the state becomes Rejected.
// Both callbacks are optional and are skipped when the run has been superseded.
func (c *Controller[T]) Run(ctx context.Context, op Operation[T], onSuccess func(T), onFailure func(string)) uint64 {
	var seq uint64
	applied := c.transition(pendingAction[T]{}, func() bool {
		if !c.live {
			return false
		}
		c.seq++
		seq = c.seq
		return true
	})
	if !applied {
		c.logger.Printf("Async: run ignored, controller disposed")
		return 0
	}

	go c.execute(ctx, seq, op, onSuccess, onFailure)
	return seq
}

// Reset moves to Idle from any state. An operation still in flight is not
// cancelled; its result is discarded when it arrives.
func (c *Controller[T]) Reset() {
	c.transition(idleAction[T]{}, func() bool {
		if !c.live {
			return false
		}
		c.seq++
		return true
	})
}

func (c *Controller[T]) execute(ctx context.Context, seq uint64, op Operation[T], onSuccess func(T), onFailure func(string)) {
	start := time.Now()
	data, err := invoke(ctx, op)
	elapsed := time.Since(start)

	if err == nil {
		if c.settle(seq, resolvedAction[T]{data: data}, elapsed) && onSuccess != nil {
			onSuccess(data)
		}
		return
	}

	// onFailure runs before the Rejected transition, so the run must still
	// be current when the callback is chosen
	msg := err.Error()
	if c.discardReason(seq) == DiscardStale {
		c.drop(seq, StatusRejected, DiscardStale)
		return
	}
	if onFailure != nil {
		onFailure(msg)
	}
	c.settle(seq, rejectedAction[T]{err: msg}, elapsed)
}

// invoke runs op and turns a panic into an error
func invoke[T any](ctx context.Context, op Operation[T]) (data T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return op(ctx)
}

// discardReason reports why a settle of seq would be dropped, or "" when it applies
func (c *Controller[T]) discardReason(seq uint64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reasonLocked(seq)
}

func (c *Controller[T]) reasonLocked(seq uint64) string {
	switch {
	case c.seq != seq:
		return DiscardStale
	case !c.live:
		return DiscardDisposed
	}
	return ""
}

// settle applies a for run seq. It reports whether the run's callbacks
// should fire: true when the state moved, or when the run was current but
// the controller had been disposed.
func (c *Controller[T]) settle(seq uint64, a action[T], elapsed time.Duration) bool {
	reason := ""
	applied := c.transition(a, func() bool {
		reason = c.reasonLocked(seq)
		return reason == ""
	})
	if applied {
		if c.observer != nil {
			c.observer.OperationSettled(a.target(), elapsed)
		}
		return true
	}
	if reason == "" {
		// rejected by the transition table, already logged
		return false
	}
	c.drop(seq, a.target(), reason)
	return reason == DiscardDisposed
}

func (c *Controller[T]) drop(seq uint64, target Status, reason string) {
	c.logger.Printf("Async: dropping %s result of run %d (%s)", target, seq, reason)
	c.discarded(reason)
}

func (c *Controller[T]) discarded(reason string) {
	if c.observer != nil {
		c.observer.OperationDiscarded(reason)
	}
}

// transition applies a under the lock when guard allows it, then delivers the
// new state to listeners outside the lock. A listener that triggers another
// transition has that state queued and delivered after its own call returns.
func (c *Controller[T]) transition(a action[T], guard func() bool) bool {
	c.mu.Lock()
	if guard != nil && !guard() {
		c.mu.Unlock()
		return false
	}
	next, ok := reduce(c.state, a)
	if !ok {
		from := c.state.Status
		c.mu.Unlock()
		c.logger.Printf("Async: %v", ValidateTransition(from, a.target()))
		return false
	}
	c.state = next
	if len(c.listeners) == 0 {
		c.mu.Unlock()
		return true
	}

	c.queue = append(c.queue, next)
	if c.draining {
		c.mu.Unlock()
		return true
	}
	c.draining = true
	for len(c.queue) > 0 {
		batch := c.queue
		c.queue = nil
		c.mu.Unlock()
		for _, s := range batch {
			for _, fn := range c.listeners {
				fn(s)
			}
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
	return true
}
