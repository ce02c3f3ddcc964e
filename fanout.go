package async

import (
	"context"
	"sync"
)

// FanoutGroup latches a source channel's values out to a dynamic set of
// connected channels. Unlike Tap, distribution does not begin until Start is
// called, so the source can accumulate values undisturbed until the caller
// is ready to consume them; this asymmetry with Tap is intentional (see
// SPEC_FULL.md §9).
type FanoutGroup[V any] struct {
	src *Channel[V]

	mu      sync.Mutex
	conns   []*Channel[V]
	started bool
}

// NewFanout constructs a FanoutGroup reading from src. Call Connect to add
// destinations and Start to begin distribution.
func NewFanout[V any](src *Channel[V]) *FanoutGroup[V] {
	return &FanoutGroup[V]{src: src}
}

// Connect adds channels to the distribution set.
func (f *FanoutGroup[V]) Connect(chans ...*Channel[V]) {
	f.mu.Lock()
	f.conns = append(f.conns, chans...)
	f.mu.Unlock()
}

// Disconnect removes channels from the distribution set; already-delivered
// values are unaffected.
func (f *FanoutGroup[V]) Disconnect(chans ...*Channel[V]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, target := range chans {
		for i, c := range f.conns {
			if c == target {
				f.conns = append(f.conns[:i], f.conns[i+1:]...)
				break
			}
		}
	}
}

// Start begins the distribution loop: each take-result from src is copied to
// every currently-connected channel, in connection order. The end sentinel
// ends every connected channel and stops the loop. Start is idempotent.
// Cancelling ctx stops the loop before its next Take and ends every
// currently-connected channel, the same as observing the end sentinel.
func (f *FanoutGroup[V]) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true
	f.mu.Unlock()

	var loop func()
	loop = func() {
		if err := ctx.Err(); err != nil {
			f.mu.Lock()
			conns := append([]*Channel[V](nil), f.conns...)
			f.started = false
			f.mu.Unlock()
			for _, c := range conns {
				c.End()
			}
			return
		}

		f.src.Take(func(e Envelope[V]) {
			f.mu.Lock()
			conns := append([]*Channel[V](nil), f.conns...)
			f.mu.Unlock()

			for _, c := range conns {
				c := c
				switch {
				case e.Err != nil:
					c.Put(e.Value, nil)
				case e.IsEnd():
					c.End()
				default:
					c.Put(e.Value, nil)
				}
			}

			f.mu.Lock()
			stillRunning := f.started
			f.mu.Unlock()

			if e.IsEnd() || !stillRunning {
				f.mu.Lock()
				f.started = false
				f.mu.Unlock()
				return
			}
			loop()
		})
	}
	loop()
}

// Stop marks the group as not started; the in-flight Take already issued
// still completes and is delivered, but no further take is chained after it.
func (f *FanoutGroup[V]) Stop() {
	f.mu.Lock()
	f.started = false
	f.mu.Unlock()
}
