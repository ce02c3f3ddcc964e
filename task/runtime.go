package task

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/async"
)

// StepFunc is a compiled step function: a big dispatch on rt's current step
// id. The compiler front end that generates these is an external
// collaborator; Runtime only owns the dispatch loop around it.
type StepFunc[L Locals] func(ctx context.Context, rt *Runtime[L])

// FinalFunc is invoked exactly once, when a task's unwind stack empties.
type FinalFunc func(ctx context.Context, err error, args []any)

// Runtime drives one running instance of a compiled task: it owns the
// State, the unwind stack, and the jump-table cache, and exposes every
// entry point the compiler emits calls to (SPEC_FULL.md §4.7).
type Runtime[L Locals] struct {
	mu sync.Mutex

	name  string
	state State
	fn    StepFunc[L]
	final FinalFunc
	sched *async.Scheduler
	m     taskMetrics
	jt    *jumpTableCache

	// Locals is the compiled task's locals struct; compiled step bodies
	// read and write it directly. Capture/Restore snapshot and replay it
	// across suspension points (cleanup steps, phi joins).
	Locals L
}

// New constructs a Runtime for a compiled task. name identifies the task in
// error traces; locals is the zero/initial value of the task's locals
// struct.
func New[L Locals](name string, fn StepFunc[L], final FinalFunc, locals L, opts ...Option) *Runtime[L] {
	cfg := buildConfig(opts)
	rt := &Runtime[L]{
		name:   name,
		fn:     fn,
		final:  final,
		sched:  cfg.scheduler,
		m:      newTaskMetrics(cfg.metrics),
		jt:     newJumpTableCache(),
		Locals: locals,
	}
	rt.state.strictUnwind = cfg.strictUnwindDefault
	return rt
}

// Args returns the most recent resumption payload.
func (rt *Runtime[L]) Args() []any {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.args
}

// Err returns the currently active error, if any.
func (rt *Runtime[L]) Err() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.err
}

// IsWaiting reports whether a resumption is outstanding.
func (rt *Runtime[L]) IsWaiting() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.waiting > 0 && !rt.state.isFinished
}

// IsFinished reports whether the task's unwind stack has fully emptied.
func (rt *Runtime[L]) IsFinished() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.state.isFinished
}

// Start sets id=1 and deferred-dispatches the first step. Calling Start on
// an already-started Runtime returns ErrAlreadyStarted.
func (rt *Runtime[L]) Start(ctx context.Context) error {
	rt.mu.Lock()
	if rt.state.id != 0 {
		rt.mu.Unlock()
		return ErrAlreadyStarted
	}
	rt.state.id = 1
	rt.state.waiting++
	rt.mu.Unlock()
	rt.deferStep(ctx)
	return nil
}

// GoTo sets the target step id and args and deferred-dispatches a step.
// Every forward transition goes through GoTo so suspension is uniform.
func (rt *Runtime[L]) GoTo(ctx context.Context, id int, args ...any) {
	rt.mu.Lock()
	rt.state.id = id
	rt.state.args = args
	rt.state.strictUnwind = false
	rt.state.waiting++
	rt.mu.Unlock()
	rt.deferStep(ctx)
}

func (rt *Runtime[L]) deferStep(ctx context.Context) {
	rt.sched.Defer(func() { rt.step(ctx) })
}

// step decrements waiting, honors a pending abort, otherwise invokes the
// compiled step function.
func (rt *Runtime[L]) step(ctx context.Context) {
	rt.mu.Lock()
	rt.state.waiting--
	abortErr := rt.state.abortWithError
	rt.state.abortWithError = nil
	rt.mu.Unlock()

	if abortErr != nil {
		rt.performAbort(ctx, abortErr)
		return
	}
	rt.m.steps.Add(1)
	rt.fn(ctx, rt)
}

// performAbort is invoked when the step dispatcher finds abortWithError
// pending: it routes the pending error through the same error/unwind
// pathway Callback uses, which stands in for "synchronously invoke fn with
// the error" since the compiled dispatch itself is an external collaborator
// this package does not generate.
func (rt *Runtime[L]) performAbort(ctx context.Context, err error) {
	rt.Callback(ctx, err)
}

// ThenTo returns a one-shot callback that, when invoked, jumps to id with
// the given args. A second invocation is ignored (and counted) rather than
// re-entering the machine.
func (rt *Runtime[L]) ThenTo(ctx context.Context, id int) func(args ...any) {
	var done atomic.Bool
	return func(args ...any) {
		if !done.CompareAndSwap(false, true) {
			rt.m.errors.Add(1)
			return
		}
		rt.GoTo(ctx, id, args...)
	}
}

// ThenToWithErr returns a one-shot node-style (err, ...results) callback: a
// non-nil err routes through Callback (the error/unwind pathway); a nil err
// jumps to id with a leading nil prepended to args, so the step body always
// sees a uniform (err, result...) shape. Guarded the same way as ThenTo.
func (rt *Runtime[L]) ThenToWithErr(ctx context.Context, id int) func(err error, args ...any) {
	var done atomic.Bool
	return func(err error, args ...any) {
		if !done.CompareAndSwap(false, true) {
			rt.m.errors.Add(1)
			return
		}
		if err != nil {
			rt.Callback(ctx, err, args...)
			return
		}
		uniform := append([]any{nil}, args...)
		rt.GoTo(ctx, id, uniform...)
	}
}

// Callback is the unified error-completion entry point: it stores args,
// tags err with this step's trace frame, marks strict unwinding, notifies
// the global error sink, and defers unwind.
func (rt *Runtime[L]) Callback(ctx context.Context, err error, args ...any) {
	if err == nil {
		return
	}
	rt.mu.Lock()
	rt.state.args = args
	tagged := newStepError(err).tag(rt.name, rt.state.id)
	rt.state.err = tagged
	rt.state.strictUnwind = true
	rt.mu.Unlock()

	rt.m.errors.Add(1)
	dispatchGlobalError(tagged, &rt.state)
	rt.sched.Defer(func() { rt.unwind(ctx) })
}

// PushCleanupStep registers a finally block at step id, capturing the
// current locals, then jumps to afterID to continue the protected region.
func (rt *Runtime[L]) PushCleanupStep(ctx context.Context, id, afterID int) {
	rt.mu.Lock()
	saved := rt.Locals.Capture()
	rt.state.push(cleanupStepRecord{step: id, savedLocals: saved})
	rt.mu.Unlock()
	rt.GoTo(ctx, afterID)
}

// PushCleanupAction registers a synchronous cleanup closure, run inline
// during unwinding.
func (rt *Runtime[L]) PushCleanupAction(fn func()) {
	rt.mu.Lock()
	rt.state.push(cleanupActionRecord{fn: fn})
	rt.mu.Unlock()
}

// PushErrorStep registers a catch handler at step id guarding the region
// starting at retryID, recording the current unwind-stack depth as the
// anchor Retry splices back in at.
func (rt *Runtime[L]) PushErrorStep(id, retryID int) {
	rt.mu.Lock()
	anchor := len(rt.state.unwinding)
	rt.state.push(errorHandlerRecord{step: id, retryStep: retryID, anchor: anchor})
	rt.mu.Unlock()
}

// PushPhi registers a post-branch join point, optionally capturing locals.
func (rt *Runtime[L]) PushPhi(id int, captureLocals bool) {
	rt.mu.Lock()
	var saved Locals
	if captureLocals {
		saved = rt.Locals.Capture()
	}
	rt.state.push(phiRecord{step: id, savedLocals: saved})
	rt.mu.Unlock()
}

// Retry re-enters the protected block guarded by the currently active catch
// handler. Only valid while handling an error (currentErrorStep non-nil);
// otherwise it panics, a genuine programming error rather than a runtime
// condition, matching the teacher's own panic-on-misuse precedent in
// options.go.
func (rt *Runtime[L]) Retry(ctx context.Context, args ...any) {
	rt.mu.Lock()
	eh := rt.state.currentErrorStep
	if eh == nil {
		rt.mu.Unlock()
		panic(ErrRetryWithoutHandler)
	}
	rearmed := errorHandlerRecord{step: eh.step, retryStep: eh.retryStep, anchor: eh.anchor}
	// Splice at the anchor depth so records pushed since the catch began
	// (its own finallies) unwind before the retry re-enters the block.
	at := eh.anchor
	if at > len(rt.state.unwinding) {
		at = len(rt.state.unwinding)
	}
	spliced := make([]unwindRecord, 0, len(rt.state.unwinding)+2)
	spliced = append(spliced, rt.state.unwinding[:at]...)
	spliced = append(spliced, rearmed, retryRecord{step: eh.retryStep})
	spliced = append(spliced, rt.state.unwinding[at:]...)
	rt.state.unwinding = spliced
	rt.state.args = args
	rt.state.err = nil
	rt.state.strictUnwind = true
	rt.state.currentErrorStep = nil
	rt.mu.Unlock()

	rt.m.retries.Add(1)
	rt.sched.Defer(func() { rt.unwind(ctx) })
}

// JumpTable returns the cached table for id, building it with build on the
// first call and memoizing thereafter.
func (rt *Runtime[L]) JumpTable(id int, build func() *JumpTable) *JumpTable {
	return rt.jt.getOrBuild(id, build)
}

// Abort requests cancellation with err. If the machine is currently
// awaiting a resumption, the error is deferred until the next resumption
// boundary; otherwise it is delivered immediately through Callback.
func (rt *Runtime[L]) Abort(ctx context.Context, err error) {
	rt.mu.Lock()
	waiting := rt.state.waiting
	rt.mu.Unlock()

	if waiting <= 0 {
		rt.Callback(ctx, err)
		return
	}
	rt.mu.Lock()
	rt.state.abortWithError = err
	rt.mu.Unlock()
}

// unwind pops one unwind record and acts per variant, per SPEC_FULL.md
// §4.7's pop-and-dispatch loop.
func (rt *Runtime[L]) unwind(ctx context.Context) {
	rt.mu.Lock()
	rec := rt.state.pop()
	rt.mu.Unlock()

	if rec == nil {
		rt.mu.Lock()
		rt.state.isFinished = true
		args, err := rt.state.args, rt.state.err
		rt.mu.Unlock()
		if rt.final != nil {
			rt.final(ctx, err, args)
		}
		return
	}

	switch r := rec.(type) {
	case restoreLocalsRecord:
		if r.savedLocals != nil {
			r.savedLocals.Restore()
		}
		rt.sched.Defer(func() { rt.unwind(ctx) })

	case retryRecord:
		rt.mu.Lock()
		rt.state.isUnwinding = false
		rt.mu.Unlock()
		rt.GoTo(ctx, r.step)

	case phiRecord:
		rt.mu.Lock()
		skip := rt.state.err != nil || rt.state.strictUnwind
		rt.mu.Unlock()
		if skip {
			rt.sched.Defer(func() { rt.unwind(ctx) })
			return
		}
		if r.savedLocals != nil {
			r.savedLocals.Restore()
		}
		rt.GoTo(ctx, r.step)

	case errorHandlerRecord:
		rt.mu.Lock()
		if rt.state.err == nil {
			rt.mu.Unlock()
			rt.sched.Defer(func() { rt.unwind(ctx) })
			return
		}
		rr := r
		rt.state.currentErrorStep = &rr
		rt.mu.Unlock()
		rt.GoTo(ctx, r.step)

	case cleanupActionRecord:
		if r.fn != nil {
			r.fn()
		}
		rt.sched.Defer(func() { rt.unwind(ctx) })

	case cleanupStepRecord:
		rt.mu.Lock()
		rt.state.isUnwinding = true
		rt.state.push(restoreLocalsRecord{savedLocals: r.savedLocals})
		rt.mu.Unlock()
		rt.m.finallys.Add(1)
		rt.GoTo(ctx, r.step)
	}
}

// JumpToCase pushes a Phi for jt's beyondID (the post-switch join) and goes
// to the target step for value; returns ErrUnmappedCase if value has no
// mapping.
func JumpToCase[L Locals](ctx context.Context, rt *Runtime[L], jt *JumpTable, value any) error {
	target, ok := jt.stepIDs[value]
	if !ok {
		return ErrUnmappedCase
	}
	rt.PushPhi(jt.beyondID, false)
	rt.GoTo(ctx, target)
	return nil
}
