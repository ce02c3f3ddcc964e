package async

import "time"

// ScheduleTimeout arranges a one-shot Put(v) on c after d elapses. The
// underlying timer is cancelled if c.End() runs first.
func (c *Channel[V]) ScheduleTimeout(d time.Duration, v V) {
	timer := time.AfterFunc(d, func() {
		c.sched.Defer(func() { c.Put(v, func(Envelope[V]) {}) })
	})
	c.td.chain(func() { timer.Stop() })
}

// NewTimeout constructs a Channel that delivers v exactly once, after d
// elapses.
func NewTimeout[V any](d time.Duration, v V, opts ...Option) *Channel[V] {
	c := NewChannel[V](opts...)
	c.ScheduleTimeout(d, v)
	return c
}
