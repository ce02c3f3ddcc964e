package async

import (
	"sync"

	"github.com/ygrebnov/async/metrics"
)

// readyItem is a value parked in a Channel's ready queue awaiting a taker.
type readyItem[V any] struct {
	val V
	ack AckFunc[V]
}

// channelMetrics lazily-created instruments recording Channel activity.
// Adapted from the teacher's on-demand, name-keyed instrument creation in
// metrics.BasicProvider.
type channelMetrics struct {
	puts    metrics.Counter
	takes   metrics.Counter
	drops   metrics.Counter
	backlog metrics.UpDownCounter
}

func newChannelMetrics(p metrics.Provider) channelMetrics {
	return channelMetrics{
		puts:    p.Counter("async_channel_puts_total"),
		takes:   p.Counter("async_channel_takes_total"),
		drops:   p.Counter("async_channel_drops_total"),
		backlog: p.UpDownCounter("async_channel_backlog"),
	}
}

// Channel is a bounded-by-nothing rendezvous queue: a pair of ordered
// queues (ready values awaiting a taker, and takers awaiting a value) with
// the invariant that at most one of the two is ever non-empty at a point
// where neither Take nor Put is executing.
//
// Transforms and shapers do not subclass Channel (Go has no inheritance);
// instead they construct a fresh *Channel[V] (or *Channel[W]) whose
// takeOverride/putOverride fields redirect to wrapper-specific logic while
// keeping the base ready/waiters bookkeeping available to delegate to. This
// is the explicit, first-class-struct analogue of the source library's
// per-instance method replacement (see design notes in SPEC_FULL.md §4.2).
type Channel[V any] struct {
	mu      sync.Mutex
	ready   []readyItem[V]
	waiters []TakeFunc[V]
	ended   bool

	filled      bool
	filledValue V
	filledErr   error

	sched *Scheduler
	m     channelMetrics
	td    teardownCoordinator

	// takeOverride/putOverride redirect Take/Put to wrapper-specific
	// behavior. Nil means "use the base rendezvous logic". Guarded by mu
	// since Tap mutates a source channel's putOverride after construction.
	takeOverride func(TakeFunc[V])
	putOverride  func(V, AckFunc[V])

	// taps holds subscriber channels once Tap has been called on this
	// channel; tapOriginalPut is the put behavior Tap saved so it can be
	// restored once the source ends.
	taps           []*Channel[V]
	tapOriginalPut func(V, AckFunc[V])
	tapActive      bool
}

// NewChannel constructs an empty Channel.
func NewChannel[V any](opts ...Option) *Channel[V] {
	cfg := buildConfig(opts)
	c := &Channel[V]{
		sched: cfg.scheduler,
		m:     newChannelMetrics(cfg.metrics),
	}
	c.td.chain(c.baseEnd)
	return c
}

// Take retrieves the next value, invoking cb exactly once: with the value
// when one is available now or arrives later, or with the end envelope if
// the channel ends before a value arrives. A nil cb is allowed: it removes
// and discards a parked value (whose ack still fires), and registers nothing
// when no value is parked.
func (c *Channel[V]) Take(cb TakeFunc[V]) {
	c.mu.Lock()
	ov := c.takeOverride
	c.mu.Unlock()

	if ov != nil {
		ov(cb)
		return
	}
	c.baseTake(cb)
}

func (c *Channel[V]) baseTake(cb TakeFunc[V]) {
	c.mu.Lock()

	if c.filled {
		c.mu.Unlock()
		env := value(c.filledValue)
		if c.filledErr != nil {
			env = errEnvelope[V](c.filledErr)
		}
		if cb != nil {
			c.sched.Defer(func() { cb(env) })
		}
		return
	}

	if len(c.ready) > 0 {
		item := c.ready[0]
		c.ready = c.ready[1:]
		c.mu.Unlock()

		c.m.takes.Add(1)
		c.m.backlog.Add(-1)

		env := value(item.val)
		if item.ack != nil {
			c.sched.Defer(func() { item.ack(env) })
		}
		if cb != nil {
			c.sched.Defer(func() { cb(env) })
		}
		return
	}

	// A Take arriving after End has already drained the waiters list finds
	// nothing parked to satisfy it; it must still observe the end sentinel
	// rather than park forever.
	if c.ended {
		c.mu.Unlock()
		if cb != nil {
			c.sched.Defer(func() { cb(end[V]()) })
		}
		return
	}

	if cb != nil {
		c.waiters = append(c.waiters, cb)
		c.m.backlog.Add(-1)
	}
	c.mu.Unlock()
}

// Put enqueues v, invoking ack exactly once: with the value when a taker
// consumes it (right away if a taker is already waiting, otherwise once the
// parked value is taken), or with an error if the channel refuses the value
// (only a Filled channel does this).
func (c *Channel[V]) Put(v V, ack AckFunc[V]) {
	c.mu.Lock()
	ov := c.putOverride
	c.mu.Unlock()

	if ov != nil {
		ov(v, ack)
		return
	}
	c.basePut(v, ack)
}

func (c *Channel[V]) basePut(v V, ack AckFunc[V]) {
	c.mu.Lock()

	if c.filled {
		c.mu.Unlock()
		if ack != nil {
			c.sched.Defer(func() { ack(errEnvelope[V](ErrFilled)) })
		}
		return
	}

	if len(c.waiters) > 0 {
		w := c.waiters[0]
		c.waiters = c.waiters[1:]
		c.mu.Unlock()

		c.m.puts.Add(1)
		c.m.backlog.Add(1)

		env := value(v)
		if ack != nil {
			c.sched.Defer(func() { ack(env) })
		}
		c.sched.Defer(func() { w(env) })
		return
	}

	c.ready = append(c.ready, readyItem[V]{val: v, ack: ack})
	c.m.puts.Add(1)
	c.m.backlog.Add(1)
	c.mu.Unlock()
}

// End idempotently tears the channel down: any parked waiters observe the
// end sentinel, and any wrapper-registered cleanup (timers, tap
// subscriptions) chained via the teardown coordinator runs exactly once.
func (c *Channel[V]) End() { c.td.run() }

// baseEnd is always the first step registered in a Channel's teardown
// coordinator; wrapper constructors chain additional steps after it.
func (c *Channel[V]) baseEnd() {
	c.mu.Lock()
	c.ended = true
	ws := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, w := range ws {
		w := w
		c.sched.Defer(func() { w(end[V]()) })
	}
}

// Backlog is |ready| - |waiters|.
func (c *Channel[V]) Backlog() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ready) - len(c.waiters)
}

// CanRead reports whether a Take would be satisfied without parking.
func (c *Channel[V]) CanRead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ready) > 0 && len(c.waiters) == 0
}

// CanWrite reports whether a Put would be satisfied without parking.
func (c *Channel[V]) CanWrite() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters) > 0 || len(c.ready) == 0
}

// Fill converts the channel to a constant source: every future Take yields
// v; every future Put fails with ErrFilled. Idempotent after the first
// call. Any takers already parked are satisfied with v immediately.
func (c *Channel[V]) Fill(v V) {
	c.mu.Lock()
	if c.filled {
		c.mu.Unlock()
		return
	}
	ws := c.waiters
	c.waiters = nil
	c.filled = true
	c.filledValue = v
	c.mu.Unlock()

	for _, w := range ws {
		w := w
		c.sched.Defer(func() { w(value(v)) })
	}
}

// fillError is Fill's error-carrying counterpart, used by Resolver/Receive
// to bridge a failed callback-style completion into the channel world.
func (c *Channel[V]) fillError(err error) {
	c.mu.Lock()
	if c.filled {
		c.mu.Unlock()
		return
	}
	ws := c.waiters
	c.waiters = nil
	c.filled = true
	c.filledErr = err
	c.mu.Unlock()

	for _, w := range ws {
		w := w
		c.sched.Defer(func() { w(errEnvelope[V](err)) })
	}
}
