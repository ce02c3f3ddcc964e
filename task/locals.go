package task

// Locals is the escape hatch a compiled task's generated locals struct
// implements when there is no compiler front end generating the
// capture/restore closures directly: Capture snapshots the current field
// values into a new value, and Restore, called on that snapshot, copies the
// fields back onto the live struct it was captured from.
type Locals interface {
	Capture() Locals
	Restore()
}

// noLocals is used by tasks that declare no locals to capture.
type noLocals struct{}

func (noLocals) Capture() Locals { return noLocals{} }
func (noLocals) Restore()        {}
