package async

import (
	"errors"
	"sync"
)

// ErrReadOnly is returned to a Put's ack on a channel derived by Map, Reduce
// or Group, whose element type can differ from its source's: there is no
// value of the source type to forward, so the write is refused (even when
// the two types happen to match) and callers put into the source instead.
var ErrReadOnly = errors.New(Namespace + ": derived channel does not accept Put; put into the source channel")

func unsupportedPut[W any](out *Channel[W]) func(W, AckFunc[W]) {
	return func(_ W, ack AckFunc[W]) {
		if ack != nil {
			out.sched.Defer(func() { ack(errEnvelope[W](ErrReadOnly)) })
		}
	}
}

// Map returns a derived channel whose takes yield f applied to each source
// value; errors and the end sentinel pass through unchanged. Map(f).Map(g)
// is equivalent to a single Map(x => g(f(x))).
func Map[V, W any](src *Channel[V], f func(V) W, opts ...Option) *Channel[W] {
	out := NewChannel[W](append(opts, WithScheduler(src.sched))...)
	out.putOverride = unsupportedPut(out)
	out.takeOverride = func(cb TakeFunc[W]) {
		src.Take(func(e Envelope[V]) {
			if cb == nil {
				return
			}
			switch {
			case e.Err != nil:
				cb(errEnvelope[W](e.Err))
			case e.IsEnd():
				cb(end[W]())
			default:
				cb(value(f(e.Value)))
			}
		})
	}
	return out
}

// Filter returns a derived channel that only yields source values
// satisfying p; values failing p are dropped and the source is re-taken
// immediately, without re-entering on error. Filter(p).Filter(q) is
// equivalent to a single Filter(x => p(x) && q(x)).
func Filter[V any](src *Channel[V], p func(V) bool, opts ...Option) *Channel[V] {
	out := NewChannel[V](append(opts, WithScheduler(src.sched))...)
	out.putOverride = func(v V, ack AckFunc[V]) { src.Put(v, ack) }
	out.takeOverride = func(cb TakeFunc[V]) {
		var attempt func()
		attempt = func() {
			src.Take(func(e Envelope[V]) {
				if cb == nil {
					return
				}
				if e.Err != nil || e.IsEnd() || p(e.Value) {
					cb(e)
					return
				}
				attempt()
			})
		}
		attempt()
	}
	return out
}

// Reduce returns a derived channel carrying a running accumulator: each
// take yields the fold of f over every value consumed so far, seeded with
// init.
func Reduce[V, W any](src *Channel[V], init W, f func(W, V) W, opts ...Option) *Channel[W] {
	out := NewChannel[W](append(opts, WithScheduler(src.sched))...)
	out.putOverride = unsupportedPut(out)

	acc := init
	out.takeOverride = func(cb TakeFunc[W]) {
		src.Take(func(e Envelope[V]) {
			if cb == nil {
				return
			}
			switch {
			case e.Err != nil:
				cb(errEnvelope[W](e.Err))
			case e.IsEnd():
				cb(end[W]())
			default:
				acc = f(acc, e.Value)
				cb(value(acc))
			}
		})
	}
	return out
}

// Group returns a derived channel that reduces source values into chunks of
// exactly n, filtering out a trailing partial chunk when the source ends.
// n must be >= 1.
func Group[V any](src *Channel[V], n int, opts ...Option) (*Channel[[]V], error) {
	if n < 1 {
		return nil, ErrInvalidGroupSize
	}

	out := NewChannel[[]V](append(opts, WithScheduler(src.sched))...)
	out.putOverride = unsupportedPut(out)

	out.takeOverride = func(cb TakeFunc[[]V]) {
		var collect func(buf []V)
		collect = func(buf []V) {
			src.Take(func(e Envelope[V]) {
				if cb == nil {
					return
				}
				switch {
				case e.Err != nil:
					cb(errEnvelope[[]V](e.Err))
				case e.IsEnd():
					// a partial chunk is discarded, never emitted.
					cb(end[[]V]())
				default:
					buf = append(buf, e.Value)
					if len(buf) == n {
						cb(value(buf))
						return
					}
					collect(buf)
				}
			})
		}
		collect(make([]V, 0, n))
	}
	return out, nil
}

// Until returns a derived channel that yields src's values until signal
// produces its first value or ends, whichever happens first; every take
// after that point yields the end sentinel. Per SPEC_FULL.md §9, a value
// already in flight on src at the moment signal fires is delivered before
// the end sentinel: both are scheduled through the same Scheduler, so FIFO
// ordering resolves the race deterministically rather than leaving it to
// goroutine scheduling. Values still parked in src when the signal fires are
// not yielded through the returned channel.
func Until[V, S any](src *Channel[V], signal *Channel[S]) *Channel[V] {
	out := NewChannel[V](WithScheduler(src.sched))

	state := struct {
		mu        sync.Mutex
		triggered bool
	}{}

	signal.Take(func(Envelope[S]) {
		state.mu.Lock()
		state.triggered = true
		state.mu.Unlock()
	})

	out.putOverride = func(v V, ack AckFunc[V]) { src.Put(v, ack) }
	out.takeOverride = func(cb TakeFunc[V]) {
		state.mu.Lock()
		triggered := state.triggered
		state.mu.Unlock()

		if triggered {
			if cb != nil {
				out.sched.Defer(func() { cb(end[V]()) })
			}
			return
		}
		src.Take(cb)
	}
	out.td.chain(func() { signal.End() })
	return out
}

// Stream sequentially Puts each element of xs onto c, awaiting each ack
// before producing the next, then invokes ack(nil, xs) once all elements
// have been delivered.
func (c *Channel[V]) Stream(xs []V, ack func(error, []V)) {
	i := 0
	var step func()
	step = func() {
		if i >= len(xs) {
			if ack != nil {
				ack(nil, xs)
			}
			return
		}
		v := xs[i]
		i++
		c.Put(v, func(Envelope[V]) { step() })
	}
	step()
}

// TakeN collects up to n values into a slice and invokes cb once n values
// have been collected or the channel ends, whichever comes first; the end
// sentinel short-circuits with the partial slice collected so far.
func TakeN[V any](c *Channel[V], n int, cb func([]V)) {
	if n <= 0 {
		if cb != nil {
			cb(nil)
		}
		return
	}

	out := make([]V, 0, n)
	var step func()
	step = func() {
		c.Take(func(e Envelope[V]) {
			if e.Err != nil || e.IsEnd() {
				if cb != nil {
					cb(out)
				}
				return
			}
			out = append(out, e.Value)
			if len(out) >= n {
				if cb != nil {
					cb(out)
				}
				return
			}
			step()
		})
	}
	step()
}

// TakeSome snapshots the channel's current backlog and takes that many
// values without blocking beyond what is already parked.
func TakeSome[V any](c *Channel[V], cb func([]V)) {
	n := c.Backlog()
	if n <= 0 {
		if cb != nil {
			cb(nil)
		}
		return
	}
	TakeN(c, n, cb)
}
