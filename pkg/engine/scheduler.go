package engine

import (
	"sync"
	"time"
)

// DefaultRebuildInterval approximates one animation frame. Mutations landing
// inside the same window collapse into a single rebuild.
const DefaultRebuildInterval = 16 * time.Millisecond

// Scheduler defers rebuild work to a frame-equivalent boundary. A newly
// scheduled run supersedes any pending one, so staggered requests never
// observe interleaved state.
type Scheduler interface {
	Schedule(run func())
	Stop()
}

// Immediate runs scheduled work synchronously. Used by tests and one-shot
// callers (CLI rendering) where batching has no value.
type Immediate struct{}

// Schedule runs the work inline.
func (Immediate) Schedule(run func()) {
	if run != nil {
		run()
	}
}

// Stop is a no-op.
func (Immediate) Stop() {}

// Coalescing batches scheduled work: the first request arms a timer and every
// request before it fires replaces the pending work.
type Coalescing struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	pending  func()
	stopped  bool
}

// NewCoalescing constructs a Coalescing scheduler. A non-positive interval
// falls back to DefaultRebuildInterval.
func NewCoalescing(interval time.Duration) *Coalescing {
	if interval <= 0 {
		interval = DefaultRebuildInterval
	}
	return &Coalescing{interval: interval}
}

// Schedule queues work for the next frame boundary, superseding any pending
// run.
func (c *Coalescing) Schedule(run func()) {
	if run == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending = run
	if c.timer == nil {
		c.timer = time.AfterFunc(c.interval, c.fire)
	}
}

// Stop cancels any pending run and rejects future requests.
func (c *Coalescing) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Flush runs any pending work immediately. Useful when a caller needs the
// rebuilt state before the frame boundary (e.g. synchronous reads in tests).
func (c *Coalescing) Flush() {
	c.mu.Lock()
	run := c.pending
	c.pending = nil
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	if run != nil {
		run()
	}
}

func (c *Coalescing) fire() {
	c.mu.Lock()
	run := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()
	if run != nil {
		run()
	}
}
