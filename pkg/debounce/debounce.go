// Package debounce is the cancellable timer abstraction behind the search
// input: per-keystroke work is delayed until typing pauses. Timers come
// from an injectable factory so tests drive time deterministically instead
// of sleeping.
package debounce

import (
	"sync"
	"time"
)

// Timer is the minimal handle a debouncer needs.
type Timer interface {
	// Stop prevents the timer from firing. Reports whether it was pending.
	Stop() bool
}

// TimerFactory schedules fn after d and returns its handle.
type TimerFactory func(d time.Duration, fn func()) Timer

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}

// Debouncer runs only the most recent triggered function, after a quiet
// period. Not re-entrant from the fired callback.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	factory TimerFactory
	pending Timer
	fn      func()
}

// New creates a debouncer backed by time.AfterFunc.
func New(delay time.Duration) *Debouncer {
	return NewWithFactory(delay, func(d time.Duration, fn func()) Timer {
		return realTimer{t: time.AfterFunc(d, fn)}
	})
}

// NewWithFactory creates a debouncer with a custom timer source.
func NewWithFactory(delay time.Duration, factory TimerFactory) *Debouncer {
	return &Debouncer{delay: delay, factory: factory}
}

// Trigger schedules fn, replacing any still-pending earlier call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
	}
	d.fn = fn
	d.pending = d.factory(d.delay, func() {
		d.mu.Lock()
		run := d.fn
		d.fn = nil
		d.pending = nil
		d.mu.Unlock()
		if run != nil {
			run()
		}
	})
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.fn = nil
}

// Flush runs a pending call immediately instead of waiting out the delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	run := d.fn
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.fn = nil
	d.mu.Unlock()

	if run != nil {
		run()
	}
}
