package async

import (
	"sync"
	"time"
)

type debounceState[V any] struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	val     V
	ack     AckFunc[V]
}

// Debounce returns a channel whose Put defers delivery by d; a second Put
// arriving before d elapses cancels the pending delivery and replaces it, so
// only the most recent value of a burst is ever forwarded.
func Debounce[V any](d time.Duration, opts ...Option) *Channel[V] {
	c := NewChannel[V](opts...)
	st := &debounceState[V]{}

	c.putOverride = func(v V, ack AckFunc[V]) {
		st.mu.Lock()
		if st.timer != nil {
			st.timer.Stop()
		}
		st.val, st.ack, st.pending = v, ack, true
		st.timer = time.AfterFunc(d, func() {
			c.sched.Defer(func() {
				st.mu.Lock()
				if !st.pending {
					st.mu.Unlock()
					return
				}
				val, a := st.val, st.ack
				st.pending = false
				st.mu.Unlock()
				c.basePut(val, a)
			})
		})
		st.mu.Unlock()
	}

	c.td.chain(func() {
		st.mu.Lock()
		if st.timer != nil {
			st.timer.Stop()
		}
		st.mu.Unlock()
	})
	return c
}
