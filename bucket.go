package async

import "sync"

type bucketPhase int

const (
	bucketFilling bucketPhase = iota
	bucketDraining
)

// bucketState implements the two-phase gate described in SPEC_FULL.md §4.4:
// takers are held off while filling, so a burst of producers can build up a
// minimum backlog before any of them is serviced.
type bucketState[V any] struct {
	mu        sync.Mutex
	full, low int
	phase     bucketPhase
	suspended []TakeFunc[V]
}

// Bucket returns a channel that withholds takers until its backlog exceeds
// full, then drains normally until the backlog falls to low or below, at
// which point it reverts to withholding. Puts are never affected; only Take
// is gated.
func Bucket[V any](full, low int, opts ...Option) *Channel[V] {
	c := NewChannel[V](opts...)
	st := &bucketState[V]{full: full, low: low, phase: bucketFilling}

	c.putOverride = func(v V, ack AckFunc[V]) {
		c.basePut(v, ack)

		st.mu.Lock()
		defer st.mu.Unlock()
		if st.phase != bucketFilling || len(st.suspended) == 0 {
			return
		}
		if c.Backlog() <= st.full {
			return
		}
		st.phase = bucketDraining
		toDrain := st.suspended
		st.suspended = nil
		for _, cb := range toDrain {
			c.baseTake(cb)
		}
		if c.Backlog() <= st.low {
			st.phase = bucketFilling
		}
	}

	c.takeOverride = func(cb TakeFunc[V]) {
		st.mu.Lock()
		switch st.phase {
		case bucketFilling:
			if c.Backlog() > st.full {
				st.phase = bucketDraining
				st.mu.Unlock()
				c.baseTake(cb)
				return
			}
			st.suspended = append(st.suspended, cb)
			st.mu.Unlock()
		case bucketDraining:
			st.mu.Unlock()
			c.baseTake(cb)
			st.mu.Lock()
			if c.Backlog() <= st.low {
				st.phase = bucketFilling
			}
			st.mu.Unlock()
		}
	}
	return c
}
