package async

// blockedProducer is a Put call that arrived while a Buffer was at
// capacity; it is parked outside the channel's own ready/waiters queues
// until room frees up.
type blockedProducer[V any] struct {
	val V
	ack AckFunc[V]
}

type bufferState[V any] struct {
	capacity int
	blocked  []blockedProducer[V]
}

// Buffer returns a channel that accepts up to n values without blocking the
// producer: Put's ack fires as soon as the value is accepted into the
// buffer, not only once a taker consumes it. A Put beyond capacity blocks
// (the producer's ack is deferred) until a Take frees a slot, at which
// point the earliest blocked producer is let in and its ack fires.
func Buffer[V any](n int, opts ...Option) *Channel[V] {
	c := NewChannel[V](opts...)
	st := &bufferState[V]{capacity: n}

	c.putOverride = func(v V, ack AckFunc[V]) {
		c.mu.Lock()
		if len(c.waiters) > 0 {
			c.mu.Unlock()
			c.basePut(v, ack)
			return
		}
		if len(c.ready) < st.capacity {
			c.ready = append(c.ready, readyItem[V]{val: v})
			c.mu.Unlock()
			c.m.puts.Add(1)
			c.m.backlog.Add(1)
			if ack != nil {
				c.sched.Defer(func() { ack(value(v)) })
			}
			return
		}
		st.blocked = append(st.blocked, blockedProducer[V]{val: v, ack: ack})
		c.mu.Unlock()
	}

	c.takeOverride = func(cb TakeFunc[V]) {
		c.baseTake(cb)

		c.mu.Lock()
		if len(st.blocked) == 0 || len(c.ready) >= st.capacity {
			c.mu.Unlock()
			return
		}
		bp := st.blocked[0]
		st.blocked = st.blocked[1:]
		c.ready = append(c.ready, readyItem[V]{val: bp.val})
		c.mu.Unlock()

		c.m.puts.Add(1)
		c.m.backlog.Add(1)
		if bp.ack != nil {
			c.sched.Defer(func() { bp.ack(value(bp.val)) })
		}
	}
	return c
}

// DroppingBuffer returns a channel that accepts up to n values without
// blocking the producer: Put's ack fires with the value as soon as the value
// is accepted into the buffer. A Put beyond capacity is silently dropped and
// its ack fires with the end envelope (no value delivered, no error). It
// never blocks a producer.
func DroppingBuffer[V any](n int, opts ...Option) *Channel[V] {
	c := NewChannel[V](opts...)

	c.putOverride = func(v V, ack AckFunc[V]) {
		c.mu.Lock()
		if len(c.waiters) > 0 || c.filled {
			c.mu.Unlock()
			c.basePut(v, ack)
			return
		}
		if len(c.ready) < n {
			c.ready = append(c.ready, readyItem[V]{val: v})
			c.mu.Unlock()
			c.m.puts.Add(1)
			c.m.backlog.Add(1)
			if ack != nil {
				c.sched.Defer(func() { ack(value(v)) })
			}
			return
		}
		c.mu.Unlock()

		c.m.drops.Add(1)
		if ack != nil {
			c.sched.Defer(func() { ack(end[V]()) })
		}
	}
	return c
}

// ExpiringBuffer returns a channel that accepts up to n values without
// blocking the producer; a Put beyond capacity first discards the oldest
// buffered value — its own ack, if any, fires with the end envelope, never
// with the value it carried — then enqueues the new one. Accepted values'
// acks fire only once a taker actually consumes them, same as an unbuffered
// Channel. It never blocks a producer.
func ExpiringBuffer[V any](n int, opts ...Option) *Channel[V] {
	c := NewChannel[V](opts...)

	c.putOverride = func(v V, ack AckFunc[V]) {
		c.mu.Lock()
		if len(c.waiters) > 0 {
			c.mu.Unlock()
			c.basePut(v, ack)
			return
		}
		var evicted []readyItem[V]
		for len(c.ready) >= n {
			evicted = append(evicted, c.ready[0])
			c.ready = c.ready[1:]
			c.m.backlog.Add(-1)
		}
		c.mu.Unlock()

		for _, item := range evicted {
			item := item
			c.m.drops.Add(1)
			if item.ack != nil {
				c.sched.Defer(func() { item.ack(end[V]()) })
			}
		}

		c.basePut(v, ack)
	}
	return c
}
