package customize

import "sync"

// Deferred is a one-shot readiness signal. Callbacks registered before Resolve
// are queued and flushed in registration order; afterwards they run immediately.
// A callback registered while the queue is flushing joins the end of the queue.
type Deferred struct {
	mu       sync.Mutex
	flushing bool
	resolved bool
	queue    []func()
}

// NewDeferred creates an unresolved signal
func NewDeferred() *Deferred {
	return &Deferred{}
}

// Done runs fn now if the signal already fired, otherwise queues it
func (d *Deferred) Done(fn func()) {
	d.mu.Lock()
	if !d.resolved {
		d.queue = append(d.queue, fn)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	fn()
}

// Resolve fires the signal. Only the first call has an effect.
// Resolved stays false until the queue is empty.
func (d *Deferred) Resolve() {
	d.mu.Lock()
	if d.resolved || d.flushing {
		d.mu.Unlock()
		return
	}
	d.flushing = true
	for len(d.queue) > 0 {
		fn := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()
		fn()
		d.mu.Lock()
	}
	d.queue = nil
	d.flushing = false
	d.resolved = true
	d.mu.Unlock()
}

// Resolved reports whether the signal fired
func (d *Deferred) Resolved() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resolved
}

// Pending returns the number of queued callbacks
func (d *Deferred) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}
