package internal

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Scheduler batches watcher runs into one flush per tick, in ascending watcher id order.
// Parents are created before their children and user watchers before render
// watchers, so id order updates them in that order.
type Scheduler struct {
	rt *Runtime

	queue     []*Watcher
	activated []*Owner

	// ids currently pending in the queue
	has map[uint64]bool

	// how many times each id re-queued itself during the current flush
	circular map[uint64]int

	// a flush is scheduled for the next tick (or running)
	waiting bool

	flushing bool
	index    int

	maxUpdateCount int
}

func NewScheduler(rt *Runtime, maxUpdateCount int) *Scheduler {
	if maxUpdateCount <= 0 {
		maxUpdateCount = MaxUpdateCount
	}

	return &Scheduler{
		rt:             rt,
		has:            make(map[uint64]bool),
		circular:       make(map[uint64]int),
		maxUpdateCount: maxUpdateCount,
	}
}

// Flushing reports whether a flush is in progress.
func (s *Scheduler) Flushing() bool { return s.flushing }

// Waiting reports whether a flush is scheduled or in progress.
func (s *Scheduler) Waiting() bool { return s.waiting }

// Pending returns the number of queued watchers not processed yet.
func (s *Scheduler) Pending() int {
	if s.flushing {
		return len(s.queue) - s.index - 1
	}

	return len(s.queue)
}

// QueueWatcher adds w to the queue unless it is already pending.
func (s *Scheduler) QueueWatcher(w *Watcher) {
	id := w.id
	if s.has[id] {
		return
	}
	s.has[id] = true

	if !s.flushing {
		s.queue = append(s.queue, w)
	} else {
		// already flushing: splice the watcher in id order among the ones not run yet.
		// if its id was already passed, it runs next.
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = slices.Insert(s.queue, i+1, w)
	}

	s.schedule()
}

// QueueActivated records an owner whose activated hooks must run after the current flush.
func (s *Scheduler) QueueActivated(o *Owner) {
	o.inactive = false
	s.activated = append(s.activated, o)

	s.schedule()
}

func (s *Scheduler) schedule() {
	if s.waiting {
		return
	}
	s.waiting = true

	if !s.rt.async {
		s.flush()
		return
	}

	s.rt.NextTick(s.flush)
}

func (s *Scheduler) flush() {
	start := time.Now()
	_, span := s.rt.tracer.Start(context.Background(), "reactive.flush")
	defer span.End()

	s.flushing = true
	defer func() {
		// only set if something panicked before the reset below
		if s.flushing {
			s.reset()
		}
	}()

	// sort by id so that:
	// 1. owners update from parent to child (parents are created first)
	// 2. user watchers run before render watchers of the same owner
	// 3. watchers of an owner destroyed during a parent's run can be skipped
	slices.SortStableFunc(s.queue, func(a, b *Watcher) int {
		return cmp.Compare(a.id, b.id)
	})

	ran := 0
	var aborted *Watcher

	// the queue may grow while running, don't cache its length
	for s.index = 0; s.index < len(s.queue); s.index++ {
		w := s.queue[s.index]
		w.callBefore()

		id := w.id
		delete(s.has, id)
		w.Run()
		ran++

		if s.has[id] {
			s.circular[id]++
			if s.circular[id] > s.maxUpdateCount {
				aborted = w
				break
			}
		}
	}

	activated := slices.Clone(s.activated)
	updated := slices.Clone(s.queue)

	// reset before calling hooks so that anything they schedule starts a new cycle
	s.reset()

	if aborted != nil {
		err := infiniteUpdate(aborted.expression)
		s.rt.metrics.infiniteLoops.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.rt.warn(err, aborted, "scheduler flush")
	}

	callActivatedHooks(activated)
	callUpdatedHooks(updated)

	elapsed := time.Since(start)
	s.rt.metrics.flushes.Inc()
	s.rt.metrics.watcherRuns.Add(float64(ran))
	s.rt.metrics.flushDuration.Observe(elapsed.Seconds())
	s.rt.metrics.queueLength.Observe(float64(len(updated)))

	span.SetAttributes(
		attribute.Int("reactive.queue_length", len(updated)),
		attribute.Int("reactive.watchers_run", ran),
	)

	s.rt.logger.Debug().
		Int("queued", len(updated)).
		Int("ran", ran).
		Dur("elapsed", elapsed).
		Msg("flushed")
}

func (s *Scheduler) reset() {
	clear(s.queue)
	s.queue = s.queue[:0]
	s.activated = nil
	s.index = 0

	clear(s.has)
	clear(s.circular)

	s.waiting = false
	s.flushing = false
}

func callActivatedHooks(owners []*Owner) {
	for _, o := range owners {
		o.callHook(HookActivated)
	}
}

// updated hooks run in reverse so that children are notified before their parents
func callUpdatedHooks(queue []*Watcher) {
	for i := len(queue) - 1; i >= 0; i-- {
		w := queue[i]
		o := w.owner

		if o != nil && o.render == w && o.mounted && !o.destroyed {
			o.callHook(HookUpdated)
		}
	}
}
