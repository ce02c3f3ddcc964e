package async

import "sync"

// teardownCoordinator orchestrates a Channel's End() sequence. It is adapted
// from the teacher's lifecycleCoordinator: a fixed, ordered list of cleanup
// steps executed exactly once via sync.Once, regardless of how many times
// End() is called or how many goroutines call it concurrently.
//
// Wrappers that hold resources (Tap, Until, and the timers of Debounce,
// Clock and ScheduleTimeout) register their own teardown step by chaining
// onto the channel's coordinator, so ending that channel also tears down the
// wrapper's resources (timers, tap subscriptions) in a deterministic order: the
// wrapper's own state first, then whatever the source itself needs to
// release.
type teardownCoordinator struct {
	once  sync.Once
	steps []func()
}

// chain registers fn to run during End(), before any previously-registered
// step runs (innermost-wrapper-first), matching the teacher's convention
// that the most specific cleanup runs nearest the trigger.
func (t *teardownCoordinator) chain(fn func()) {
	t.steps = append([]func(){fn}, t.steps...)
}

// run executes every registered step exactly once, in chain order.
func (t *teardownCoordinator) run() {
	t.once.Do(func() {
		for _, step := range t.steps {
			step()
		}
	})
}
