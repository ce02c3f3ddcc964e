package async

import (
	"sync"

	"github.com/ygrebnov/async/internal/pool"
)

// schedNode is a single queued continuation. Nodes are recycled through a
// pool instead of being discarded on every Defer/drain cycle.
type schedNode struct {
	fn   func()
	next *schedNode
}

// Scheduler is the deferred-dispatch primitive described in the package
// design: it runs zero-argument continuations after the current stack
// unwinds, in FIFO order relative to other continuations scheduled from the
// same tick. It is the only concurrency primitive Channel, task.Runtime,
// Clock, Debounce, and Timeout use to run continuations; they do not spawn
// ad hoc goroutines (Resolve and the task error sink do run their own).
//
// A Scheduler trampolines: Defer calls made from within a running
// continuation enqueue onto the same queue instead of recursing, so a burst
// of same-tick scheduling drains without growing the call stack and without
// reordering.
type Scheduler struct {
	mu      sync.Mutex
	head    *schedNode
	tail    *schedNode
	running bool
	nodes   pool.Pool
}

// NewScheduler creates a Scheduler with its own independent drain loop.
// Most programs should share a single Scheduler (see DefaultScheduler)
// rather than create one per Channel, since ordering guarantees only hold
// between continuations dispatched through the same Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		nodes: pool.NewDynamic(func() interface{} { return &schedNode{} }),
	}
}

var defaultScheduler = NewScheduler()

// DefaultScheduler returns the process-wide Scheduler used by Channels and
// task Runtimes that are not constructed with an explicit WithScheduler
// option.
func DefaultScheduler() *Scheduler { return defaultScheduler }

// Defer schedules fn to run on the next tick of the loop. fn runs strictly
// after the call to Defer returns.
func (s *Scheduler) Defer(fn func()) {
	n := s.nodes.Get().(*schedNode)
	n.fn = fn
	n.next = nil

	s.mu.Lock()
	if s.tail != nil {
		s.tail.next = n
	} else {
		s.head = n
	}
	s.tail = n

	start := !s.running
	if start {
		s.running = true
	}
	s.mu.Unlock()

	if start {
		go s.drain()
	}
}

// drain runs until the queue is empty, executing continuations in FIFO
// order. Only one drain goroutine is ever active at a time.
func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		n := s.head
		if n == nil {
			s.running = false
			s.mu.Unlock()
			return
		}
		s.head = n.next
		if s.head == nil {
			s.tail = nil
		}
		s.mu.Unlock()

		fn := n.fn
		n.fn, n.next = nil, nil
		s.nodes.Put(n)

		fn()
	}
}
