package session

import (
	"sync"
	"time"
)

// Debouncer runs the most recently submitted task once input has been quiet for delay.
// Submitting again before the delay elapses replaces the pending task.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
}

// NewDebouncer creates a debouncer with the given quiet period
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Submit schedules fn, superseding any task still waiting
func (d *Debouncer) Submit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending task. It reports whether one was waiting.
func (d *Debouncer) Cancel() bool {
	_, had := d.take()
	return had
}

// Flush runs the pending task immediately on the caller's goroutine
func (d *Debouncer) Flush() bool {
	fn, had := d.take()
	if had {
		fn()
	}
	return had
}

// Pending reports whether a task is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) take() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
	return fn, fn != nil
}
