package async

import "errors"

// Namespace prefixes every sentinel error this package defines, matching
// the teacher's "workers: ..." convention.
const Namespace = "async"

var (
	// ErrFilled is returned to a producer's ack when Put is called on a
	// channel that has been latched with Fill.
	ErrFilled = errors.New(Namespace + ": channel is filled")

	// ErrInvalidGroupSize is returned by Group when N <= 0.
	ErrInvalidGroupSize = errors.New(Namespace + ": group size must be >= 1")

	// ErrEnded is the sentinel for a channel that has ended. No operation in
	// this package returns it.
	ErrEnded = errors.New(Namespace + ": channel has ended")
)
