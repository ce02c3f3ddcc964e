package task

import (
	"errors"
	"fmt"
	"strings"
)

const Namespace = "async/task"

var (
	ErrRetryWithoutHandler = errors.New(Namespace + ": retry called outside an active catch handler")
	ErrUnmappedCase        = errors.New(Namespace + ": jump table has no mapping for case value")
	ErrAlreadyStarted      = errors.New(Namespace + ": runtime already started")
)

// StepError tags an error with the "taskName:stepId" trace it accumulated
// while unwinding through nested task frames, the Go analogue of the
// runtime's cspjsStack.
type StepError struct {
	err   error
	trace []string
}

func newStepError(err error) *StepError {
	if err == nil {
		return nil
	}
	var existing *StepError
	if errors.As(err, &existing) {
		return existing
	}
	return &StepError{err: err}
}

// tag appends a "taskName:stepId" frame and returns the (possibly new)
// tagged error; callers always reassign err to the result.
func (e *StepError) tag(taskName string, stepID int) *StepError {
	e.trace = append(e.trace, fmt.Sprintf("%s:%d", taskName, stepID))
	return e
}

func (e *StepError) Error() string { return e.err.Error() }
func (e *StepError) Unwrap() error { return e.err }

func (e *StepError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "%s (trace: %s)", e.err.Error(), strings.Join(e.trace, " -> "))
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractTrace returns the accumulated "taskName:stepId" trace from err, if
// it (or something it wraps) is a *StepError.
func ExtractTrace(err error) ([]string, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.trace, true
	}
	return nil, false
}
