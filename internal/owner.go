package internal

import (
	"fmt"
	"iter"
	"slices"
)

// Hook identifies a lifecycle hook of an owner.
type Hook int

const (
	HookMounted Hook = iota
	HookBeforeUpdate
	HookUpdated
	HookActivated
	HookDeactivated
)

func (h Hook) String() string {
	switch h {
	case HookMounted:
		return "mounted"
	case HookBeforeUpdate:
		return "beforeUpdate"
	case HookUpdated:
		return "updated"
	case HookActivated:
		return "activated"
	case HookDeactivated:
		return "deactivated"
	}

	return fmt.Sprintf("hook(%d)", int(h))
}

// ErrorCaptor receives errors raised by the watchers and hooks of an owner or
// of its descendants. Returning false stops the error from propagating further.
type ErrorCaptor func(err error, info string) bool

// Owner groups watchers, root data and lifecycle hooks, like a component
// instance. Destroying an owner tears down everything it owns, children included.
type Owner struct {
	rt   *Runtime
	name string

	data *Object

	// render is the watcher created by Mount; it is also part of watchers
	render   *Watcher
	watchers []*Watcher

	hooks    map[Hook][]func()
	cleanups []func()
	captors  []ErrorCaptor

	mounted        bool
	inactive       bool
	beingDestroyed bool
	destroyed      bool

	parent       *Owner
	prevSibling  *Owner
	nextSibling  *Owner
	childrenHead *Owner
}

func (r *Runtime) NewOwner(name string) *Owner {
	return &Owner{
		rt:    r,
		name:  name,
		hooks: make(map[Hook][]func()),
	}
}

// NewChild creates an owner destroyed along with o.
func (o *Owner) NewChild(name string) *Owner {
	child := o.rt.NewOwner(name)
	o.AddChild(child)

	return child
}

func (o *Owner) Name() string            { return o.name }
func (o *Owner) Runtime() *Runtime       { return o.rt }
func (o *Owner) Parent() *Owner          { return o.parent }
func (o *Owner) Data() *Object           { return o.data }
func (o *Owner) RenderWatcher() *Watcher { return o.render }
func (o *Owner) Mounted() bool           { return o.mounted }
func (o *Owner) Inactive() bool          { return o.inactive }
func (o *Owner) Destroyed() bool         { return o.destroyed }

// Watchers returns the watchers currently registered under o.
func (o *Owner) Watchers() []*Watcher {
	return slices.Clone(o.watchers)
}

func (parent *Owner) AddChild(child *Owner) {
	if child.parent != nil {
		child.parent.removeChild(child)
	}

	child.parent = parent
	child.prevSibling = nil
	child.nextSibling = parent.childrenHead

	if parent.childrenHead != nil {
		parent.childrenHead.prevSibling = child
	}

	parent.childrenHead = child
}

func (parent *Owner) removeChild(child *Owner) {
	if child.prevSibling != nil {
		child.prevSibling.nextSibling = child.nextSibling
	} else {
		parent.childrenHead = child.nextSibling
	}

	if child.nextSibling != nil {
		child.nextSibling.prevSibling = child.prevSibling
	}

	child.parent = nil
	child.prevSibling = nil
	child.nextSibling = nil
}

func (o *Owner) Children() iter.Seq[*Owner] {
	return func(yield func(*Owner) bool) {
		child := o.childrenHead

		for child != nil {
			// read before yielding, the child may unlink itself
			next := child.nextSibling
			if !yield(child) {
				return
			}

			child = next
		}
	}
}

func (o *Owner) addWatcher(w *Watcher, render bool) {
	if render {
		o.render = w
	}

	o.watchers = append(o.watchers, w)
}

func (o *Owner) removeWatcher(w *Watcher) {
	if i := slices.Index(o.watchers, w); i != -1 {
		o.watchers = slices.Delete(o.watchers, i, i+1)
	}

	if o.render == w {
		o.render = nil
	}
}

// SetData observes data as the owner's root data.
// Keys can't be added to or removed from root data afterwards.
func (o *Owner) SetData(data *Object) *Observer {
	if o.data != nil {
		o.releaseData()
	}

	o.data = data
	return o.rt.ObserveRoot(data)
}

func (o *Owner) releaseData() {
	if ob := observerOf(o.data); ob != nil && ob.rootCount > 0 {
		ob.rootCount--
	}
}

// Watch creates a user watcher owned by o.
func (o *Owner) Watch(getter Getter, cb Callback, opts WatcherOptions) (*Watcher, error) {
	opts.User = true
	return o.rt.NewWatcher(o, getter, cb, opts)
}

// Computed creates a lazy watcher owned by o.
func (o *Owner) Computed(getter Getter, expression string) *Watcher {
	w, _ := o.rt.NewWatcher(o, getter, nil, WatcherOptions{Lazy: true, Expression: expression})
	return w
}

// Mount creates the render watcher and runs the mounted hooks.
// render re-runs, batched by the scheduler, whenever something it read changes;
// the beforeUpdate hooks run right before each re-render, the updated hooks after the flush.
func (o *Owner) Mount(render func() error) error {
	if o.destroyed || o.render != nil {
		return nil
	}

	_, err := o.rt.NewWatcher(o,
		func() (any, error) { return nil, render() },
		nil,
		WatcherOptions{
			Render:     true,
			Expression: o.name + " render",
			Before: func() {
				if o.mounted && !o.destroyed {
					o.callHook(HookBeforeUpdate)
				}
			},
		},
	)

	o.mounted = true
	o.callHook(HookMounted)

	return err
}

func (o *Owner) OnMounted(fn func())      { o.hooks[HookMounted] = append(o.hooks[HookMounted], fn) }
func (o *Owner) OnBeforeUpdate(fn func()) { o.hooks[HookBeforeUpdate] = append(o.hooks[HookBeforeUpdate], fn) }
func (o *Owner) OnUpdated(fn func())      { o.hooks[HookUpdated] = append(o.hooks[HookUpdated], fn) }
func (o *Owner) OnActivated(fn func())    { o.hooks[HookActivated] = append(o.hooks[HookActivated], fn) }
func (o *Owner) OnDeactivated(fn func())  { o.hooks[HookDeactivated] = append(o.hooks[HookDeactivated], fn) }

// OnCleanup registers fn to run when the owner is destroyed.
func (o *Owner) OnCleanup(fn func()) {
	o.cleanups = append(o.cleanups, fn)
}

// OnErrorCaptured registers fn to receive errors of this owner and its descendants.
func (o *Owner) OnErrorCaptured(fn ErrorCaptor) {
	o.captors = append(o.captors, fn)
}

// captureError walks the owner chain up from o and reports whether the error
// should still reach the runtime's reporter.
func (o *Owner) captureError(err error, info string) bool {
	for cur := o; cur != nil; cur = cur.parent {
		for _, captor := range cur.captors {
			if !cur.capture(captor, err, info) {
				return false
			}
		}
	}

	return true
}

func (o *Owner) capture(captor ErrorCaptor, err error, info string) (propagate bool) {
	defer func() {
		if r := recover(); r != nil {
			o.rt.report(Report{Err: recoverError(r), Info: "errorCaptured hook", Owner: o.name}, nil)
			propagate = true
		}
	}()

	return captor(err, info)
}

func (o *Owner) handleError(err error, info string) {
	if !o.captureError(err, info) {
		return
	}

	o.rt.report(Report{Err: err, Info: info, Owner: o.name}, nil)
}

// callHook runs the hooks registered for h without tracking dependencies.
func (o *Owner) callHook(h Hook) {
	hooks := slices.Clone(o.hooks[h])
	if len(hooks) == 0 {
		return
	}

	o.rt.Untrack(func() {
		for _, fn := range hooks {
			o.safeCall(fn, fmt.Sprintf("%s hook", h))
		}
	})
}

func (o *Owner) safeCall(fn func(), info string) {
	defer func() {
		if r := recover(); r != nil {
			o.handleError(recoverError(r), info)
		}
	}()

	fn()
}

// Activate queues the activated hooks of o and its children for the end of the next flush.
func (o *Owner) Activate() {
	if o.destroyed {
		return
	}

	o.rt.scheduler.QueueActivated(o)
	for child := range o.Children() {
		child.Activate()
	}
}

// Deactivate marks o and its children inactive and runs their deactivated hooks right away.
func (o *Owner) Deactivate() {
	if o.destroyed || o.inactive {
		return
	}

	o.inactive = true
	o.callHook(HookDeactivated)

	for child := range o.Children() {
		child.Deactivate()
	}
}

// Destroy tears down the render watcher then every other watcher, destroys
// the children, releases the root data and runs the cleanups. It is idempotent.
func (o *Owner) Destroy() {
	if o.beingDestroyed {
		return
	}
	o.beingDestroyed = true

	if o.parent != nil && !o.parent.beingDestroyed {
		o.parent.removeChild(o)
	}

	if o.render != nil {
		o.render.Teardown()
	}
	for i := len(o.watchers) - 1; i >= 0; i-- {
		o.watchers[i].Teardown()
	}
	o.watchers = nil

	for child := range o.Children() {
		child.Destroy()
	}
	o.childrenHead = nil

	o.releaseData()
	o.destroyed = true

	for _, fn := range o.cleanups {
		o.safeCall(fn, "cleanup")
	}
	o.cleanups = nil
}
