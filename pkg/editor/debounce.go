package editor

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once the trigger has
// been quiet for the configured wait.
type Debouncer struct {
	wait  time.Duration
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger cancels any pending call and schedules fn
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() {
		d.mu.Lock()
		current := d.gen == gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		// A Stop that lost the race with the timer firing still invalidates the call
		if current {
			fn()
		}
	})
}

// Stop cancels the pending call, if any
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a call is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
