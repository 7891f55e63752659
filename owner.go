package reactive

import "github.com/AnatoleLucet/reactive/internal"

type Owner struct {
	owner *internal.Owner
}

// NewOwner creates a new owner on the goroutine's runtime.
// An owner manages the lifecycle of the watchers created with InOwner and of
// its render watcher, like a component instance.
func NewOwner(name string) *Owner {
	return &Owner{internal.GetRuntime().NewOwner(name)}
}

// NewOwnerOn creates a new owner on rt.
func NewOwnerOn(rt *Runtime, name string) *Owner {
	return &Owner{rt.NewOwner(name)}
}

// NewChild creates an owner destroyed along with o.
func (o *Owner) NewChild(name string) *Owner {
	return &Owner{o.owner.NewChild(name)}
}

func (o *Owner) Name() string      { return o.owner.Name() }
func (o *Owner) Runtime() *Runtime { return o.owner.Runtime() }
func (o *Owner) Mounted() bool     { return o.owner.Mounted() }
func (o *Owner) Destroyed() bool   { return o.owner.Destroyed() }

// SetData observes data as the owner's root data. Keys can't be added to or
// removed from it afterwards with Set and Del.
func (o *Owner) SetData(data *Object) *Observer { return o.owner.SetData(data) }

func (o *Owner) Data() *Object { return o.owner.Data() }

// Mount runs render, then again on the next flush whenever something it read changes.
func (o *Owner) Mount(render func() error) error { return o.owner.Mount(render) }

// Destroy tears down every watcher of this owner and its children, then runs the cleanups.
func (o *Owner) Destroy() { o.owner.Destroy() }

// Activate runs the activated hooks of this owner and its children after the next flush.
func (o *Owner) Activate() { o.owner.Activate() }

// Deactivate runs the deactivated hooks of this owner and its children.
func (o *Owner) Deactivate() { o.owner.Deactivate() }

func (o *Owner) OnMounted(fn func())      { o.owner.OnMounted(fn) }
func (o *Owner) OnBeforeUpdate(fn func()) { o.owner.OnBeforeUpdate(fn) }
func (o *Owner) OnUpdated(fn func())      { o.owner.OnUpdated(fn) }
func (o *Owner) OnActivated(fn func())    { o.owner.OnActivated(fn) }
func (o *Owner) OnDeactivated(fn func())  { o.owner.OnDeactivated(fn) }

// Add a cleanup function to be called once when the owner is destroyed.
func (o *Owner) OnCleanup(fn func()) { o.owner.OnCleanup(fn) }

// Add a function receiving the errors of this owner and its descendants.
// Returning false stops the error from reaching the runtime's reporter.
func (o *Owner) OnErrorCaptured(fn func(err error, info string) bool) {
	o.owner.OnErrorCaptured(fn)
}
