package task

import (
	"github.com/ygrebnov/async"
	"github.com/ygrebnov/async/metrics"
)

// config mirrors the teacher's config.go/defaults.go/options.go trio:
// unexported defaults, a public functional-options layer on top.
type config struct {
	scheduler           *async.Scheduler
	metrics             metrics.Provider
	strictUnwindDefault bool
}

func defaultConfig() config {
	return config{
		scheduler: async.DefaultScheduler(),
		metrics:   metrics.NewNoopProvider(),
	}
}

// Option configures a Runtime at construction time.
type Option func(*config)

// WithScheduler attaches the Runtime's deferred-dispatch to an
// already-existing Scheduler instead of the package default, letting a
// Runtime and the channels it drives share one single-threaded trampoline.
func WithScheduler(s *async.Scheduler) Option {
	return func(c *config) { c.scheduler = s }
}

// WithMetrics installs a metrics.Provider for step/error/retry/finally
// counters.
func WithMetrics(p metrics.Provider) Option {
	return func(c *config) { c.metrics = p }
}

// WithStrictUnwindDefault sets the initial strictUnwind flag a Runtime
// starts with, before any goTo or callback has run.
func WithStrictUnwindDefault(strict bool) Option {
	return func(c *config) { c.strictUnwindDefault = strict }
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	return cfg
}
