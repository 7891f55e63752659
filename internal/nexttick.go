package internal

// tickQueue holds the callbacks waiting for the next tick.
// Only one flushCallbacks task is posted per tick; callbacks added while it is
// pending simply join the batch.
type tickQueue struct {
	callbacks []func()
	pending   bool
}

// NextTick defers fn until the current synchronous work is done and the
// scheduler has flushed. Callbacks run in the order they were registered.
func (r *Runtime) NextTick(fn func()) {
	r.ticks.callbacks = append(r.ticks.callbacks, fn)

	if !r.ticks.pending {
		r.ticks.pending = true
		r.tasks.Post(r.flushCallbacks)
	}
}

func (r *Runtime) flushCallbacks() {
	r.ticks.pending = false

	callbacks := r.ticks.callbacks
	r.ticks.callbacks = nil

	for _, cb := range callbacks {
		r.safeCall(cb, "nextTick")
	}
}
