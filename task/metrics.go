package task

import "github.com/ygrebnov/async/metrics"

// taskMetrics are the Runtime-scoped instruments named in SPEC_FULL.md §3:
// steps dispatched, errors, retries, finally runs.
type taskMetrics struct {
	steps    metrics.Counter
	errors   metrics.Counter
	retries  metrics.Counter
	finallys metrics.Counter
}

func newTaskMetrics(p metrics.Provider) taskMetrics {
	return taskMetrics{
		steps:    p.Counter("async_task_steps_total"),
		errors:   p.Counter("async_task_errors_total"),
		retries:  p.Counter("async_task_retries_total"),
		finallys: p.Counter("async_task_finally_total"),
	}
}
