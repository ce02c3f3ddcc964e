// Package pool provides a minimal free-list abstraction used internally by
// the scheduler and by async.Bind to recycle short-lived objects instead
// of allocating one per message.
package pool

// Pool is an interface that defines methods on a pool of reusable objects.
type Pool interface {
	// Get returns an object from the pool, allocating a new one if empty.
	Get() interface{}

	// Put returns an object back to the pool.
	Put(interface{})
}
