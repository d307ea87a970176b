// Package debounce delays a function until calls to it have stopped for a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Fire reasons passed to the WithOnFire hook
const (
	FiredQuiet   = "quiet"
	FiredMaxWait = "max_wait"
	FiredFlush   = "flush"
)

// Timer is the part of *time.Timer the debouncer needs
type Timer interface {
	Stop() bool
}

// Clock abstracts time so tests can drive the debouncer
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Debouncer
type Option func(*Debouncer)

// WithMaxWait bounds how long a burst of calls can postpone the function
func WithMaxWait(d time.Duration) Option {
	return func(db *Debouncer) { db.maxWait = d }
}

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(db *Debouncer) {
		if c != nil {
			db.clock = c
		}
	}
}

// WithOnFire is called, outside the lock, just before the pending function runs
func WithOnFire(fn func(reason string)) Option {
	return func(db *Debouncer) { db.onFire = fn }
}

// Debouncer runs the most recently supplied function once calls go quiet
type Debouncer struct {
	mu      sync.Mutex
	wait    time.Duration
	maxWait time.Duration
	clock   Clock
	onFire  func(reason string)

	fn       func()
	timer    Timer
	maxTimer Timer
	gen      uint64 // bumped on every Call; stale quiet timers compare against it
	burst    uint64 // bumped when a burst ends; stale maxWait timers compare against it
	stopped  bool
}

// New creates a debouncer with the given quiet period
func New(wait time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		wait:  wait,
		clock: realClock{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Call schedules fn, replacing any function still waiting, and restarts the quiet period
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || fn == nil {
		return
	}

	d.fn = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen, 0, FiredQuiet) })

	if d.maxWait > 0 && d.maxTimer == nil {
		burst := d.burst
		d.maxTimer = d.clock.AfterFunc(d.maxWait, func() { d.fire(0, burst, FiredMaxWait) })
	}
}

// Pending reports whether a function is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}

// Flush runs the pending function now, if there is one
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.fn == nil {
		d.mu.Unlock()
		return
	}
	d.run(FiredFlush)
}

// Cancel drops the pending function
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clear()
}

// Stop cancels the pending function and ignores every later Call
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clear()
	d.stopped = true
}

func (d *Debouncer) fire(gen, burst uint64, reason string) {
	d.mu.Lock()
	if d.fn == nil {
		d.mu.Unlock()
		return
	}
	switch reason {
	case FiredQuiet:
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
	case FiredMaxWait:
		if burst != d.burst {
			d.mu.Unlock()
			return
		}
	}
	d.run(reason)
}

// run must be called with d.mu held; it releases it
func (d *Debouncer) run(reason string) {
	fn := d.fn
	d.clear()
	onFire := d.onFire
	d.mu.Unlock()

	if onFire != nil {
		onFire(reason)
	}
	fn()
}

// clear must be called with d.mu held
func (d *Debouncer) clear() {
	d.fn = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.maxTimer != nil {
		d.maxTimer.Stop()
		d.maxTimer = nil
	}
	d.gen++
	d.burst++
}
