package task

import "sync"

// errorSinkEvent pairs an error with the state that produced it, en route
// to the global handler.
type errorSinkEvent struct {
	err   error
	state *State
}

var (
	sinkMu      sync.Mutex
	sinkCh      chan errorSinkEvent
	sinkDone    chan struct{}
	sinkHandler func(error, *State)
)

// SetGlobalErrorHandler registers the process-wide hook invoked, via the
// error sink's forwarder goroutine, whenever any Runtime's Callback is
// invoked with a non-nil error. The forwarder is started lazily on first
// registration, adapted from the teacher's errorForwarder.
func SetGlobalErrorHandler(fn func(error, *State)) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	sinkHandler = fn
	if sinkCh == nil {
		sinkCh = make(chan errorSinkEvent, 64)
		sinkDone = make(chan struct{})
		go runErrorSink(sinkCh, sinkDone)
	}
}

// Shutdown tears down the error sink and clears the registered handler,
// matching the teacher's register/reset pattern around package-level state
// used for test isolation.
func Shutdown() {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sinkDone != nil {
		close(sinkDone)
	}
	sinkCh = nil
	sinkDone = nil
	sinkHandler = nil
}

func runErrorSink(in chan errorSinkEvent, done chan struct{}) {
	for {
		select {
		case ev := <-in:
			sinkMu.Lock()
			h := sinkHandler
			sinkMu.Unlock()
			if h != nil {
				h(ev.err, ev.state)
			}
		case <-done:
			for {
				select {
				case <-in:
				default:
					return
				}
			}
		}
	}
}

// dispatchGlobalError enqueues err for the error sink; it is a no-op if no
// handler has ever been registered. A blocked sink falls back to a detached
// sender so error producers are never stalled by a slow hook.
func dispatchGlobalError(err error, state *State) {
	sinkMu.Lock()
	ch := sinkCh
	sinkMu.Unlock()
	if ch == nil {
		return
	}

	ev := errorSinkEvent{err: err, state: state}
	select {
	case ch <- ev:
	default:
		go func() {
			select {
			case ch <- ev:
			case <-sinkDone:
			}
		}()
	}
}
