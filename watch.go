package reactive

import "github.com/AnatoleLucet/reactive/internal"

// NewWatcher creates a watcher evaluating getter right away (unless Lazy) and
// calling cb after each re-evaluation that produced a new value.
// Unless User is set, an error from the first evaluation is returned.
func NewWatcher(getter func() (any, error), cb func(value, old any) error, opts ...WatchOption) (*Watcher, error) {
	cfg := newWatchConfig(opts...)
	return cfg.runtime().NewWatcher(cfg.owner, getter, cb, cfg.opts)
}

// Watch calls cb whenever the value returned by fn changes.
// Errors and panics are reported through the runtime, never returned.
func Watch[T any](fn func() T, cb func(value, old T), opts ...WatchOption) *Watcher {
	cfg := newWatchConfig(opts...)
	cfg.opts.User = true

	w, _ := cfg.runtime().NewWatcher(cfg.owner,
		func() (any, error) { return fn(), nil },
		func(value, old any) error {
			cb(as[T](value), as[T](old))
			return nil
		},
		cfg.opts,
	)

	return w
}

// WatchPath calls cb whenever the value at a dot-delimited path of obj changes, e.g. "user.address.city".
func WatchPath(obj *Object, path string, cb func(value, old any), opts ...WatchOption) *Watcher {
	cfg := newWatchConfig(opts...)

	w, _ := cfg.runtime().WatchPath(cfg.owner, obj, path,
		func(value, old any) error {
			cb(value, old)
			return nil
		},
		cfg.opts,
	)

	return w
}

// Effect runs fn now and again, on the next flush, whenever something it read changes.
func Effect(fn func(), opts ...WatchOption) *Watcher {
	cfg := newWatchConfig(opts...)
	cfg.opts.User = true

	w, _ := cfg.runtime().NewWatcher(cfg.owner,
		func() (any, error) {
			fn()
			return nil, nil
		},
		nil,
		cfg.opts,
	)

	return w
}

// Computed is a cached derived value: it is only recomputed when read after
// one of its dependencies changed.
type Computed[T any] struct {
	watcher *internal.Watcher
}

// NewComputed creates a computed value. fn isn't called until the first read.
func NewComputed[T any](fn func() T, opts ...WatchOption) *Computed[T] {
	cfg := newWatchConfig(opts...)
	cfg.opts.Lazy = true

	w, _ := cfg.runtime().NewWatcher(cfg.owner,
		func() (any, error) { return fn(), nil },
		nil,
		cfg.opts,
	)

	return &Computed[T]{w}
}

// Get returns the current value, recomputing it if needed, and tracks it when
// read inside a watcher. A panic in fn is re-panicked here.
func (c *Computed[T]) Get() T {
	v, err := c.Value()
	if err != nil {
		panic(internal.PanicValue(err))
	}

	return v
}

// Value is like Get but returns fn's failure as an error.
func (c *Computed[T]) Value() (T, error) {
	v, err := c.watcher.Read()
	if err != nil {
		var zero T
		return zero, err
	}

	return as[T](v), nil
}

// Dirty reports whether the next read recomputes the value.
func (c *Computed[T]) Dirty() bool { return c.watcher.Dirty() }

// Watcher returns the underlying lazy watcher.
func (c *Computed[T]) Watcher() *Watcher { return c.watcher }
