package async

import (
	"sync"
	"time"
)

// Clock puts a monotonically increasing counter, starting at 1, onto its
// channel every d while running.
type Clock struct {
	c *Channel[int]
	d time.Duration

	mu      sync.Mutex
	running bool
	n       int
	timer   *time.Timer
}

// NewClock constructs a stopped Clock ticking every d once Start is called.
func NewClock(d time.Duration, opts ...Option) *Clock {
	cl := &Clock{c: NewChannel[int](opts...), d: d}
	cl.c.td.chain(cl.Stop)
	return cl
}

// Chan returns the clock's output channel.
func (cl *Clock) Chan() *Channel[int] { return cl.c }

// Start begins ticking; a no-op if already running.
func (cl *Clock) Start() {
	cl.mu.Lock()
	if cl.running {
		cl.mu.Unlock()
		return
	}
	cl.running = true
	cl.n = 1
	cl.mu.Unlock()
	cl.scheduleNext()
}

func (cl *Clock) scheduleNext() {
	cl.mu.Lock()
	if !cl.running {
		cl.mu.Unlock()
		return
	}
	d := cl.d
	cl.mu.Unlock()

	cl.timer = time.AfterFunc(d, func() {
		cl.mu.Lock()
		if !cl.running {
			cl.mu.Unlock()
			return
		}
		n := cl.n
		cl.n++
		cl.mu.Unlock()

		cl.c.sched.Defer(func() { cl.c.Put(n, func(Envelope[int]) {}) })
		cl.scheduleNext()
	})
}

// Stop halts ticking; the underlying channel is left open.
func (cl *Clock) Stop() {
	cl.mu.Lock()
	cl.running = false
	if cl.timer != nil {
		cl.timer.Stop()
	}
	cl.mu.Unlock()
}
