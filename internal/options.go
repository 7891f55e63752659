package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// MaxUpdateCount is the default number of times a watcher may re-queue itself within one flush.
	MaxUpdateCount = 100

	defaultNamespace = "reactive"
	tracerName       = "github.com/AnatoleLucet/reactive"
)

type config struct {
	logger         zerolog.Logger
	reporter       Reporter
	registerer     prometheus.Registerer
	namespace      string
	tracer         trace.Tracer
	tasks          TaskQueue
	async          bool
	maxUpdateCount int
}

// Option configures a Runtime.
type Option func(*config)

func newConfig(opts ...Option) config {
	cfg := config{
		logger:         Logger,
		namespace:      defaultNamespace,
		async:          true,
		maxUpdateCount: MaxUpdateCount,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}

	return cfg
}

// WithLogger sets the logger used for warnings, errors and flush traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithReporter routes every warning and error to fn instead of the logger.
func WithReporter(fn Reporter) Option {
	return func(c *config) {
		c.reporter = fn
	}
}

// WithRegisterer registers the runtime's metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithNamespace sets the metrics namespace (default: "reactive").
func WithNamespace(namespace string) Option {
	return func(c *config) {
		c.namespace = namespace
	}
}

// WithTracer sets the tracer used for flush spans (default: the global otel provider).
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithTaskQueue replaces the runtime's event loop as the async boundary.
// Tick then does nothing and Run returns ErrNoEventLoop: the owner of tasks drains it.
func WithTaskQueue(tasks TaskQueue) Option {
	return func(c *config) {
		c.tasks = tasks
	}
}

// WithAsync controls whether flushes are deferred to the next tick (default) or run inline.
// Inline, subscribers of a changed dep run in creation order, lazy ones being marked dirty first.
func WithAsync(async bool) Option {
	return func(c *config) {
		c.async = async
	}
}

// WithMaxUpdateCount sets how many times a watcher may re-queue itself within one flush.
func WithMaxUpdateCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxUpdateCount = n
		}
	}
}
