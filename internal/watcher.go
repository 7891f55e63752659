package internal

import (
	"fmt"
	"slices"
)

// Getter is the evaluation function of a watcher. Every reactive read it
// performs is recorded as a dependency of the watcher.
type Getter func() (any, error)

// Callback is called by a watcher after a re-evaluation produced a new value.
type Callback func(value, old any) error

type WatcherOptions struct {
	// Deep reads the whole result after each evaluation so that nested changes trigger the watcher.
	Deep bool

	// User marks watchers created by user code: getter errors are reported instead of returned.
	User bool

	// Lazy watchers only flip a dirty flag when notified and are evaluated on demand.
	Lazy bool

	// Sync watchers re-run inline when notified instead of going through the scheduler.
	Sync bool

	// Render marks the watcher as the render watcher of its owner.
	Render bool

	// Before is called by the scheduler right before the watcher runs.
	Before func()

	// Expression is used in diagnostics. Defaults to "watcher#<id>".
	Expression string
}

// Watcher evaluates a getter, subscribes to every dep read while doing so,
// and reacts to their notifications.
type Watcher struct {
	rt    *Runtime
	owner *Owner

	id         uint64
	expression string

	getter Getter
	cb     Callback
	before func()

	deep bool
	user bool
	lazy bool
	sync bool

	// dirty is only meaningful for lazy watchers
	dirty  bool
	active bool

	value any

	// deps held since the last evaluation and deps collected by the current one.
	// both are swapped at the end of each evaluation.
	deps      []*Dep
	newDeps   []*Dep
	depIDs    map[uint64]struct{}
	newDepIDs map[uint64]struct{}
}

func noopGetter() (any, error) { return nil, nil }

func noopCallback(_, _ any) error { return nil }

// NewWatcher creates a watcher owned by owner (which may be nil).
// Non-lazy watchers are evaluated right away; if that evaluation fails for a
// non-user watcher, the error is returned alongside the (active) watcher.
func (r *Runtime) NewWatcher(owner *Owner, getter Getter, cb Callback, opts WatcherOptions) (*Watcher, error) {
	w := &Watcher{
		rt:    r,
		owner: owner,
		id:    r.nextWatcherID(),

		getter: getter,
		cb:     cb,
		before: opts.Before,

		deep: opts.Deep,
		user: opts.User,
		lazy: opts.Lazy,
		sync: opts.Sync,

		dirty:  opts.Lazy,
		active: true,

		depIDs:    make(map[uint64]struct{}),
		newDepIDs: make(map[uint64]struct{}),
	}

	w.expression = opts.Expression
	if w.expression == "" {
		w.expression = fmt.Sprintf("watcher#%d", w.id)
	}
	if w.getter == nil {
		w.getter = noopGetter
	}
	if w.cb == nil {
		w.cb = noopCallback
	}

	if owner != nil {
		owner.addWatcher(w, opts.Render)
	}

	if w.lazy {
		return w, nil
	}

	value, err := w.Get()
	w.value = value

	return w, err
}

// WatchPath creates a user watcher on a dot-delimited path starting at root (e.g. "user.address.city").
func (r *Runtime) WatchPath(owner *Owner, root *Object, path string, cb Callback, opts WatcherOptions) (*Watcher, error) {
	getter, ok := parsePath(path)
	if !ok {
		r.warn(invalidPath(path), nil, "watch path")
		getter = func(any) any { return nil }
	}

	if opts.Expression == "" {
		opts.Expression = path
	}
	opts.User = true

	return r.NewWatcher(owner, func() (any, error) { return getter(root), nil }, cb, opts)
}

func (w *Watcher) ID() uint64         { return w.id }
func (w *Watcher) Expression() string { return w.expression }
func (w *Watcher) Owner() *Owner      { return w.owner }
func (w *Watcher) Runtime() *Runtime  { return w.rt }
func (w *Watcher) Active() bool       { return w.active }
func (w *Watcher) Dirty() bool        { return w.dirty }
func (w *Watcher) Lazy() bool         { return w.lazy }
func (w *Watcher) User() bool         { return w.user }

// Value returns the last computed value, without evaluating nor tracking.
func (w *Watcher) Value() any { return w.value }

// DepIDs returns the ids of the deps the watcher is currently subscribed to.
func (w *Watcher) DepIDs() []uint64 {
	ids := make([]uint64, 0, len(w.deps))
	for _, dep := range w.deps {
		ids = append(ids, dep.id)
	}

	return ids
}

// Get evaluates the getter and re-collects dependencies.
// Errors of user watchers are reported and swallowed, others are returned.
func (w *Watcher) Get() (any, error) {
	value, err := w.get()
	if err != nil && w.user {
		w.rt.handleError(err, w, fmt.Sprintf("getter for watcher %q", w.expression))
		return value, nil
	}

	return value, err
}

func (w *Watcher) get() (any, error) {
	w.rt.tracker.Push(w)

	value, err := w.call()
	if err != nil {
		err = &EvalError{Expression: w.expression, Cause: err}
	}

	// touch every nested property so they are all tracked
	if w.deep {
		traverse(value)
	}

	w.rt.tracker.Pop()
	w.cleanupDeps()

	return value, err
}

func (w *Watcher) call() (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value, err = nil, recoverError(r)
		}
	}()

	return w.getter()
}

// AddDep records dep as read by the current evaluation.
func (w *Watcher) AddDep(dep *Dep) {
	id := dep.id
	if _, ok := w.newDepIDs[id]; ok {
		return
	}

	w.newDepIDs[id] = struct{}{}
	w.newDeps = append(w.newDeps, dep)

	if _, ok := w.depIDs[id]; !ok {
		dep.AddSub(w)
	}
}

// cleanupDeps drops the deps that weren't read by the last evaluation
// and commits the newly collected ones.
func (w *Watcher) cleanupDeps() {
	for _, dep := range w.deps {
		if _, ok := w.newDepIDs[dep.id]; !ok {
			dep.RemoveSub(w)
		}
	}

	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	clear(w.newDepIDs)

	w.deps, w.newDeps = w.newDeps, w.deps
	clear(w.newDeps)
	w.newDeps = w.newDeps[:0]

	// torn down while evaluating
	if !w.active {
		w.unsubscribe()
	}
}

// Update is called by a dep when it changes.
func (w *Watcher) Update() {
	if !w.active {
		return
	}

	switch {
	case w.lazy:
		w.dirty = true
	case w.sync:
		w.Run()
	default:
		w.rt.scheduler.QueueWatcher(w)
	}
}

// Run re-evaluates the watcher and calls its callback if the value changed.
// Containers and deep watchers always call back since they may have been mutated in place.
func (w *Watcher) Run() {
	if !w.active {
		return
	}

	value, err := w.get()
	if err != nil {
		w.rt.handleError(err, w, fmt.Sprintf("getter for watcher %q", w.expression))
		return
	}

	if sameValue(value, w.value) && !isObject(value) && !w.deep {
		return
	}

	old := w.value
	w.value = value
	w.invoke(value, old)
}

func (w *Watcher) invoke(value, old any) {
	info := fmt.Sprintf("callback for watcher %q", w.expression)

	defer func() {
		if r := recover(); r != nil {
			w.rt.handleError(&CallbackError{Expression: w.expression, Cause: recoverError(r)}, w, info)
		}
	}()

	if err := w.cb(value, old); err != nil {
		w.rt.handleError(&CallbackError{Expression: w.expression, Cause: err}, w, info)
	}
}

func (w *Watcher) callBefore() {
	if w.before == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.rt.handleError(recoverError(r), w, fmt.Sprintf("before hook for watcher %q", w.expression))
		}
	}()

	w.before()
}

// Evaluate recomputes a lazy watcher's value and clears its dirty flag.
// On error the watcher stays dirty.
func (w *Watcher) Evaluate() error {
	value, err := w.Get()
	if err != nil {
		return err
	}

	w.value = value
	w.dirty = false

	return nil
}

// Depend makes the active target depend on every dep this watcher depends on.
func (w *Watcher) Depend() {
	for _, dep := range slices.Clone(w.deps) {
		dep.Depend()
	}
}

// Read is the computed value accessor: evaluates if dirty, then forwards the
// dependencies to whoever is reading.
func (w *Watcher) Read() (any, error) {
	if w.dirty {
		if err := w.Evaluate(); err != nil {
			return nil, err
		}
	}

	if w.rt.tracker.Target() != nil {
		w.Depend()
	}

	return w.value, nil
}

// Teardown removes the watcher from all its deps and from its owner.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}

	// the owner drops its whole list when destroyed, no need to search it
	if w.owner != nil && !w.owner.beingDestroyed {
		w.owner.removeWatcher(w)
	}

	w.unsubscribe()
	w.active = false
}

func (w *Watcher) unsubscribe() {
	for _, dep := range w.deps {
		dep.RemoveSub(w)
	}
	for _, dep := range w.newDeps {
		dep.RemoveSub(w)
	}

	w.deps = nil
	w.newDeps = nil
	clear(w.depIDs)
	clear(w.newDepIDs)
}
