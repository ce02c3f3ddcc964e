package async

// Tap installs a non-consuming subscriber on src: every value put into src
// is forwarded to the returned tap channel before being (conditionally)
// forwarded to src's real takers. The forward to src's own ready/waiters
// queue only happens when src currently has a real waiting taker, so values
// consumed only by taps never pile up in src's ready queue (this asymmetry
// with Fanout, which latches and requires explicit Start, is intentional;
// see SPEC_FULL.md §9).
//
// If chanOpt is non-nil it is used as the tap channel instead of allocating
// a new one, and the buffer depth below does not apply. Otherwise a
// DroppingBuffer of depth cfg.tapBufferSize (see WithTapBuffer) is
// allocated implicitly, so a slow or absent tap subscriber cannot apply
// backpressure to src. Detaching a tap (calling its End) removes it from
// src's subscriber list; src.End() ends every remaining tap and restores
// src's original Put behavior.
func Tap[V any](src *Channel[V], chanOpt *Channel[V], opts ...Option) *Channel[V] {
	tap := chanOpt
	if tap == nil {
		cfg := buildConfig(opts)
		tapOpts := append(append([]Option(nil), opts...), WithScheduler(src.sched))
		tap = DroppingBuffer[V](int(cfg.tapBufferSize), tapOpts...)
	}

	src.mu.Lock()
	if !src.tapActive {
		src.tapActive = true
		src.tapOriginalPut = src.putOverride
	}
	src.taps = append(src.taps, tap)
	orig := src.tapOriginalPut
	src.putOverride = func(v V, ack AckFunc[V]) {
		src.mu.Lock()
		subscribers := append([]*Channel[V](nil), src.taps...)
		hasWaiter := len(src.waiters) > 0
		src.mu.Unlock()

		for _, t := range subscribers {
			t := t
			t.Put(v, nil)
		}

		if hasWaiter {
			if orig != nil {
				orig(v, ack)
			} else {
				src.basePut(v, ack)
			}
			return
		}

		// no real takers parked: avoid piling the value into src's ready
		// queue just because taps consumed it.
		if ack != nil {
			src.sched.Defer(func() { ack(value(v)) })
		}
	}
	src.td.chain(func() {
		src.mu.Lock()
		subscribers := src.taps
		src.taps = nil
		src.tapActive = false
		src.putOverride = orig
		src.mu.Unlock()
		for _, t := range subscribers {
			t.End()
		}
	})
	src.mu.Unlock()

	tap.td.chain(func() { detachTap(src, tap) })
	return tap
}

// detachTap removes tap from src's subscriber list without tearing src
// itself down, giving a tap its own independent End.
func detachTap[V any](src, tap *Channel[V]) {
	src.mu.Lock()
	defer src.mu.Unlock()
	for i, t := range src.taps {
		if t == tap {
			src.taps = append(src.taps[:i], src.taps[i+1:]...)
			break
		}
	}
}
