package reactive

import (
	"github.com/AnatoleLucet/reactive/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// MaxUpdateCount is the default number of times a watcher may re-run within one flush.
const MaxUpdateCount = internal.MaxUpdateCount

// WithLogger sets the logger used for warnings, errors and flush traces.
func WithLogger(logger zerolog.Logger) Option { return internal.WithLogger(logger) }

// WithReporter routes every warning and error to fn instead of the logger.
func WithReporter(fn Reporter) Option { return internal.WithReporter(fn) }

// WithRegisterer registers the runtime's metrics on reg instead of a private registry.
func WithRegisterer(reg prometheus.Registerer) Option { return internal.WithRegisterer(reg) }

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option { return internal.WithNamespace(namespace) }

// WithTracer sets the tracer used for flush spans.
func WithTracer(tracer trace.Tracer) Option { return internal.WithTracer(tracer) }

// WithTaskQueue replaces the runtime's own event loop.
func WithTaskQueue(tasks TaskQueue) Option { return internal.WithTaskQueue(tasks) }

// WithAsync controls whether flushes are deferred to the next tick (default) or run inline.
func WithAsync(async bool) Option { return internal.WithAsync(async) }

// WithMaxUpdateCount sets how many times a watcher may re-run within one flush.
func WithMaxUpdateCount(n int) Option { return internal.WithMaxUpdateCount(n) }

// WatchOption configures a watcher.
type WatchOption func(*watchConfig)

type watchConfig struct {
	opts  internal.WatcherOptions
	owner *internal.Owner
	rt    *internal.Runtime
}

func newWatchConfig(opts ...WatchOption) *watchConfig {
	cfg := &watchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

func (c *watchConfig) runtime() *internal.Runtime {
	switch {
	case c.rt != nil:
		return c.rt
	case c.owner != nil:
		return c.owner.Runtime()
	}

	return internal.GetRuntime()
}

// Deep makes the watcher react to changes anywhere inside its value.
func Deep() WatchOption {
	return func(c *watchConfig) { c.opts.Deep = true }
}

// User reports getter errors instead of returning them.
func User() WatchOption {
	return func(c *watchConfig) { c.opts.User = true }
}

// Lazy defers evaluation until the value is read.
func Lazy() WatchOption {
	return func(c *watchConfig) { c.opts.Lazy = true }
}

// Sync re-runs the watcher as soon as a dependency changes instead of on the next flush.
func Sync() WatchOption {
	return func(c *watchConfig) { c.opts.Sync = true }
}

// Before is called right before each scheduled re-run.
func Before(fn func()) WatchOption {
	return func(c *watchConfig) { c.opts.Before = fn }
}

// Expression names the watcher in reports.
func Expression(expr string) WatchOption {
	return func(c *watchConfig) { c.opts.Expression = expr }
}

// InOwner registers the watcher under o; it is torn down when o is destroyed.
func InOwner(o *Owner) WatchOption {
	return func(c *watchConfig) { c.owner = o.owner }
}

// OnRuntime creates the watcher on rt instead of the goroutine's runtime.
func OnRuntime(rt *Runtime) WatchOption {
	return func(c *watchConfig) { c.rt = rt }
}
