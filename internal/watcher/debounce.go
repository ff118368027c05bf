package watcher

import (
	"sync"
	"time"
)

// Debouncer delays a callback per path until events for that path stop
// arriving for the configured delay.
type Debouncer struct {
	delay    time.Duration
	callback func(path string)

	mu      sync.Mutex
	pending map[string]*pendingTimer
	gen     uint64
	stopped bool
}

// pendingTimer pairs a timer with a generation so a timer that fires after
// being replaced does not run the callback.
type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// NewDebouncer creates a Debouncer calling callback once per settled path.
func NewDebouncer(delay time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]*pendingTimer),
	}
}

// Add schedules path, restarting its delay when it is already pending.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	p := &pendingTimer{gen: gen}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(path, gen) })
	d.pending[path] = p
}

func (d *Debouncer) fire(path string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[path]
	if !ok || p.gen != gen || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, path)
	d.mu.Unlock()

	if d.callback != nil {
		d.callback(path)
	}
}

// Cancel drops a pending path. It is a no-op for unknown paths.
func (d *Debouncer) Cancel(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

// Stop cancels everything pending and ignores later Adds.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

// PendingCount returns the number of paths waiting for their delay.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending reports whether path is waiting for its delay.
func (d *Debouncer) IsPending(path string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[path]
	return ok
}
