package internal

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Runtime is one independent reactive engine: its own active target stack,
// scheduler queue, next-tick callbacks and id counters.
// A runtime is single-threaded: all reactive reads, writes and flushes must
// happen on the goroutine driving it.
type Runtime struct {
	tracker   *Tracker
	scheduler *Scheduler
	ticks     *tickQueue

	loop  *EventLoop
	tasks TaskQueue

	async     bool
	observing bool

	logger   zerolog.Logger
	reporter Reporter
	metrics  *metrics
	registry *prometheus.Registry
	tracer   trace.Tracer

	watcherIDs uint64
	depIDs     uint64
}

func NewRuntime(opts ...Option) *Runtime {
	cfg := newConfig(opts...)

	r := &Runtime{
		tracker: NewTracker(),
		ticks:   &tickQueue{},
		loop:    NewEventLoop(),

		async:     cfg.async,
		observing: true,

		logger:   cfg.logger,
		reporter: cfg.reporter,
		tracer:   cfg.tracer,
	}

	r.tasks = cfg.tasks
	if r.tasks == nil {
		r.tasks = r.loop
	}

	registerer := cfg.registerer
	if registerer == nil {
		r.registry = prometheus.NewRegistry()
		registerer = r.registry
	}
	r.metrics = newMetrics(registerer, cfg.namespace)

	r.scheduler = NewScheduler(r, cfg.maxUpdateCount)

	return r
}

func (r *Runtime) nextWatcherID() uint64 {
	r.watcherIDs++
	return r.watcherIDs
}

func (r *Runtime) nextDepID() uint64 {
	r.depIDs++
	return r.depIDs
}

func (r *Runtime) Tracker() *Tracker     { return r.tracker }
func (r *Runtime) Scheduler() *Scheduler { return r.scheduler }
func (r *Runtime) Logger() zerolog.Logger {
	return r.logger
}

// Registry returns the private metrics registry, nil when a registerer was provided.
func (r *Runtime) Registry() *prometheus.Registry {
	return r.registry
}

// Async reports whether flushes are deferred to the next tick.
func (r *Runtime) Async() bool { return r.async }

// SetObserving toggles whether Observe converts new values. Already observed values stay reactive.
func (r *Runtime) SetObserving(on bool) {
	r.observing = on
}

func (r *Runtime) Observing() bool { return r.observing }

// Untrack runs fn without collecting dependencies.
func (r *Runtime) Untrack(fn func()) {
	r.tracker.RunUntracked(fn)
}

// Post schedules fn on the runtime's task queue. Safe to call from any goroutine.
func (r *Runtime) Post(fn func()) {
	r.tasks.Post(fn)
}

// Tick runs everything pending on the runtime's own event loop and returns the number of tasks run.
// It does nothing when a custom task queue was configured.
func (r *Runtime) Tick() int {
	if r.tasks != r.loop {
		return 0
	}

	return r.loop.Drain()
}

// Run binds the runtime to the calling goroutine and processes its event loop until ctx is done.
// It returns ErrNoEventLoop right away when a custom task queue was configured:
// whoever drives that queue drives the runtime.
func (r *Runtime) Run(ctx context.Context) error {
	if r.tasks != r.loop {
		return ErrNoEventLoop
	}

	r.Bind()
	defer r.Unbind()

	r.logger.Debug().Msg("event loop started")
	err := r.loop.Run(ctx)
	r.logger.Debug().Err(err).Msg("event loop stopped")

	return err
}

func (r *Runtime) safeCall(fn func(), info string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.handleError(recoverError(rec), nil, info)
		}
	}()

	fn()
}

func (r *Runtime) String() string {
	return fmt.Sprintf("runtime(watchers=%d, deps=%d)", r.watcherIDs, r.depIDs)
}
