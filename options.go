package async

import "github.com/ygrebnov/async/metrics"

// config holds Channel construction knobs. Grounded on the teacher's
// config.go/defaults.go split: a package-private struct plus a
// defaultConfig() constructor, with a public functional-options layer on
// top (see Option below).
type config struct {
	scheduler     *Scheduler
	metrics       metrics.Provider
	tapBufferSize uint
}

func defaultConfig() config {
	return config{
		scheduler:     defaultScheduler,
		metrics:       metrics.NewNoopProvider(),
		tapBufferSize: 16,
	}
}

// Option configures a Channel at construction time.
type Option func(*config)

// WithScheduler attaches the Channel to a specific Scheduler instead of the
// process-wide DefaultScheduler. Channels that must observe a defined
// interleaving of each other's events should share a Scheduler.
func WithScheduler(s *Scheduler) Option {
	return func(c *config) {
		if s == nil {
			panic("async: WithScheduler requires a non-nil Scheduler")
		}
		c.scheduler = s
	}
}

// WithMetrics attaches a metrics.Provider used to record Channel activity
// (puts, takes, drops, backlog). The default is a no-op provider.
func WithMetrics(p metrics.Provider) Option {
	return func(c *config) {
		if p == nil {
			panic("async: WithMetrics requires a non-nil Provider")
		}
		c.metrics = p
	}
}

// WithTapBuffer sets the internal buffer depth used when a Tap subscriber
// channel is created implicitly (Tap() called with no channel argument).
func WithTapBuffer(n uint) Option {
	return func(c *config) { c.tapBufferSize = n }
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("async: nil Channel option")
		}
		opt(&cfg)
	}
	return cfg
}
