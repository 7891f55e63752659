package reactive

import "github.com/AnatoleLucet/reactive/internal"

type (
	Object    = internal.Object
	Array     = internal.Array
	Observer  = internal.Observer
	Watcher   = internal.Watcher
	Runtime   = internal.Runtime
	Option    = internal.Option
	Report    = internal.Report
	Reporter  = internal.Reporter
	TaskQueue = internal.TaskQueue
	EventLoop = internal.EventLoop
)

var (
	ErrInfiniteUpdate = internal.ErrInfiniteUpdate
	ErrReadOnly       = internal.ErrReadOnly
	ErrRootData       = internal.ErrRootData
	ErrInvalidTarget  = internal.ErrInvalidTarget
	ErrInvalidKey     = internal.ErrInvalidKey
	ErrInvalidPath    = internal.ErrInvalidPath
	ErrNoEventLoop    = internal.ErrNoEventLoop
)

type (
	EvalError     = internal.EvalError
	CallbackError = internal.CallbackError
	PanicError    = internal.PanicError
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// NewRuntime creates an independent reactive engine.
// Use Runtime.Bind to make it the default runtime of the calling goroutine.
func NewRuntime(opts ...Option) *Runtime {
	return internal.NewRuntime(opts...)
}

// GetRuntime returns the runtime of the calling goroutine, creating one if needed.
func GetRuntime() *Runtime {
	return internal.GetRuntime()
}

// NewObject creates an object from values. It becomes reactive once observed.
func NewObject(values map[string]any) *Object {
	return internal.NewObject(values)
}

// NewArray creates an array from items. It becomes reactive once observed.
func NewArray(items ...any) *Array {
	return internal.NewArray(items...)
}

// Observe makes an *Object or *Array reactive, recursively.
func Observe(v any) *Observer {
	return internal.GetRuntime().Observe(v)
}

// Reactive creates an object from values and observes it.
func Reactive(values map[string]any) *Object {
	o := internal.NewObject(values)
	internal.GetRuntime().Observe(o)

	return o
}

// Set adds key to target as a reactive property, notifying watchers of target's keys.
// Keys are strings for objects and ints for arrays.
func Set(target any, key any, value any) any {
	return internal.GetRuntime().Set(target, key, value)
}

// Del removes key from target, notifying watchers of target's keys.
func Del(target any, key any) {
	internal.GetRuntime().Del(target, key)
}

// MarkRaw excludes an *Object or *Array from ever being observed.
func MarkRaw[T any](v T) T {
	switch t := any(v).(type) {
	case *Object:
		t.MarkRaw()
	case *Array:
		t.MarkRaw()
	}

	return v
}

// NextTick runs fn after the pending updates have been flushed.
func NextTick(fn func()) {
	internal.GetRuntime().NextTick(fn)
}

// Tick drains the current runtime's event loop, running pending flushes and
// next-tick callbacks, and returns the number of tasks run.
func Tick() int {
	return internal.GetRuntime().Tick()
}

// Untrack runs the given function without tracking any reactive dependencies.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Untrack(func() { result = fn() })
	return result
}

// NewEventLoop creates a task queue to pass to WithTaskQueue, e.g. to drive several runtimes from one goroutine.
func NewEventLoop() *EventLoop {
	return internal.NewEventLoop()
}
