package async

import "github.com/ygrebnov/async/internal/pool"

// Process installs a self-looping consumer: fn is invoked with each take
// result along with a loop continuation that re-arms the next Take. fn must
// call loop() to continue consuming, or stop consuming by simply not
// calling it (e.g. after observing the end sentinel).
func (c *Channel[V]) Process(fn func(Envelope[V], func())) {
	var loop func()
	loop = func() {
		c.Take(func(e Envelope[V]) { fn(e, loop) })
	}
	loop()
}

// Bind obtains a handler per message from a dynamic pool (adapted from the
// teacher's dispatcher.go: pool.Get -> execute -> pool.Put), so a released
// handler may be reused for a later message; newHandler is called only when
// the pool is empty. Each taken value is dispatched to method. The dispatch loop stops once the
// channel delivers an error or the end sentinel.
//
// When spawnImmediately is true, the next Take is armed before method runs
// (fire-and-forget dispatch: messages may be handled out of order relative
// to each other). When false, the next Take is armed only after method
// invokes the done continuation it is given, serializing handler
// invocations one at a time.
func Bind[V any, H any](c *Channel[V], newHandler func() *H, method func(h *H, v V, done func()), spawnImmediately bool) {
	p := pool.NewDynamic(func() interface{} { return newHandler() })

	var loop func()
	loop = func() {
		c.Take(func(e Envelope[V]) {
			if e.Err != nil || e.IsEnd() {
				return
			}

			h := p.Get().(*H)
			release := func() { p.Put(h) }

			if spawnImmediately {
				loop()
				method(h, e.Value, release)
				return
			}

			method(h, e.Value, func() {
				release()
				loop()
			})
		})
	}
	loop()
}

// Receive returns a node-style (err, value) callback that bridges a
// callback-based producer into the channel world: the first successful
// invocation Fills the channel with the delivered value; the first failing
// invocation latches the error instead. Subsequent invocations are no-ops,
// matching Fill's idempotence.
func (c *Channel[V]) Receive() func(error, V) {
	return func(err error, v V) {
		if err != nil {
			c.fillError(err)
			return
		}
		c.Fill(v)
	}
}

// NewResolver constructs a Channel alongside the completion callback that
// fills it, for bridging a single callback-style completion (e.g. a host
// API's async result) into the channel world.
func NewResolver[V any](opts ...Option) (*Channel[V], func(error, V)) {
	c := NewChannel[V](opts...)
	return c, c.Receive()
}
