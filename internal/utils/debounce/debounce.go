// Package debounce runs cancellable deferred tasks keyed by id. Scheduling a
// key again replaces its pending task, so only the latest one ever runs.
package debounce

import (
	"sync"
	"time"
)

type task struct {
	timer Timer
	fn    func()
	gen   uint64
}

// Debouncer holds at most one pending task per key.
type Debouncer struct {
	mu      sync.Mutex
	clock   Clock
	delay   time.Duration
	tasks   map[string]*task
	gen     uint64
	stopped bool
}

// New creates a Debouncer that delays every task by delay on clock.
// A nil clock means RealClock.
func New(delay time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{
		clock: clock,
		delay: delay,
		tasks: make(map[string]*task),
	}
}

// Delay returns the quiet period applied to every task.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule (re)arms key so fn runs after the quiet period, cancelling any
// task already pending for key.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if prev, ok := d.tasks[key]; ok {
		prev.timer.Stop()
	}

	d.gen++
	t := &task{fn: fn, gen: d.gen}
	gen := d.gen
	t.timer = d.clock.AfterFunc(d.delay, func() { d.fire(key, gen) })
	d.tasks[key] = t
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	t, ok := d.tasks[key]
	// a timer that lost the race with Stop or a newer Schedule must not run
	if !ok || t.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.tasks, key)
	d.mu.Unlock()

	t.fn()
}

// Cancel drops the pending task for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(d.tasks, key)
	return true
}

// Pending reports whether key has a task waiting to run.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tasks[key]
	return ok
}

// Flush runs the pending task for key now, on the caller's goroutine.
func (d *Debouncer) Flush(key string) bool {
	d.mu.Lock()
	t, ok := d.tasks[key]
	if ok {
		t.timer.Stop()
		delete(d.tasks, key)
	}
	d.mu.Unlock()

	if ok {
		t.fn()
	}
	return ok
}

// Stop cancels every pending task and rejects further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, t := range d.tasks {
		t.timer.Stop()
		delete(d.tasks, key)
	}
	d.stopped = true
}
