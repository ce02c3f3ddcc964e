package task

// unwindRecord is the tagged-sum unwind stack entry described in
// SPEC_FULL.md §4.7: cleanup steps, synchronous cleanup actions, error
// handlers, phi join points, retries, and locals restoration, popped in LIFO
// order by a single dispatch loop in Runtime.unwind.
type unwindRecord interface {
	isUnwindRecord()
}

// cleanupStepRecord is a finally block to run; locals are snapshotted
// because the catching frame's locals may have been overwritten by the time
// the finally step runs.
type cleanupStepRecord struct {
	step        int
	savedLocals Locals
}

// cleanupActionRecord is a synchronous cleanup closure, run inline during
// unwinding rather than by jumping to a compiled step.
type cleanupActionRecord struct {
	fn func()
}

// errorHandlerRecord is a catch block guarding the region starting at
// retryStep; anchor records the unwind-stack depth at which it was
// registered, used by Retry to splice itself back in at the right depth.
type errorHandlerRecord struct {
	step      int
	retryStep int
	anchor    int
}

// phiRecord is a post-branch join point, skipped during error unwinding.
type phiRecord struct {
	step        int
	savedLocals Locals
}

// retryRecord re-enters a protected block after corrective action in a catch
// handler.
type retryRecord struct {
	step int
}

// restoreLocalsRecord is pushed automatically when entering a cleanup step,
// so the enclosing locals are restored once the finally block completes.
type restoreLocalsRecord struct {
	savedLocals Locals
}

func (cleanupStepRecord) isUnwindRecord()   {}
func (cleanupActionRecord) isUnwindRecord() {}
func (errorHandlerRecord) isUnwindRecord()  {}
func (phiRecord) isUnwindRecord()           {}
func (retryRecord) isUnwindRecord()         {}
func (restoreLocalsRecord) isUnwindRecord() {}
