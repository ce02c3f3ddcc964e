package pool

import "sync"

// NewDynamic returns a Pool backed by sync.Pool: it grows and shrinks with
// demand and never blocks a caller waiting for an object to free up.
func NewDynamic(newFn func() interface{}) Pool {
	return &sync.Pool{New: newFn}
}
