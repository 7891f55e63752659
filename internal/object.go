package internal

import (
	"maps"
	"slices"
)

// Object is a record with string keys. Once observed, every key becomes a
// reactive property: reading it inside a watcher subscribes the watcher,
// writing a different value notifies the subscribers.
type Object struct {
	keys  []string
	props map[string]*property

	ob *Observer

	frozen bool
	raw    bool
}

type property struct {
	value any

	// nil for keys that aren't reactive
	dep *Dep
}

// NewObject creates an object from values. Nested map[string]any and []any
// values are converted to *Object and *Array. Keys are kept sorted.
func NewObject(values map[string]any) *Object {
	o := &Object{
		props: make(map[string]*property, len(values)),
	}

	for _, key := range slices.Sorted(maps.Keys(values)) {
		o.keys = append(o.keys, key)
		o.props[key] = &property{value: wrap(values[key])}
	}

	return o
}

// wrap converts plain Go containers to their reactive counterparts.
func wrap(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return NewObject(t)
	case []any:
		return NewArray(t...)
	}

	return v
}

// Get returns the value of key, tracking it when the object is observed.
func (o *Object) Get(key string) any {
	p, ok := o.props[key]
	if !ok {
		return nil
	}

	if p.dep != nil {
		p.depend()
	}

	return p.value
}

// Lookup is like Get but also reports whether the key exists.
func (o *Object) Lookup(key string) (any, bool) {
	if _, ok := o.props[key]; !ok {
		return nil, false
	}

	return o.Get(key), true
}

// Set assigns key like a plain field assignment: reactive keys go through
// their setter, unknown keys are added without reactivity (use Runtime.Set to
// add a reactive key).
func (o *Object) Set(key string, value any) {
	if o.frozen {
		o.warn(readOnly(key))
		return
	}

	p, ok := o.props[key]
	if !ok {
		o.keys = append(o.keys, key)
		o.props[key] = &property{value: wrap(value)}
		return
	}

	if p.dep == nil {
		p.value = wrap(value)
		return
	}

	p.set(value)
}

// Has reports whether key exists, without tracking.
func (o *Object) Has(key string) bool {
	_, ok := o.props[key]
	return ok
}

// Reactive reports whether key is a reactive property.
func (o *Object) Reactive(key string) bool {
	p, ok := o.props[key]
	return ok && p.dep != nil
}

// Keys returns the keys in insertion order. When observed, the active
// watcher is subscribed to key additions and removals.
func (o *Object) Keys() []string {
	o.depend()
	return slices.Clone(o.keys)
}

// Len returns the number of keys, tracked like Keys.
func (o *Object) Len() int {
	o.depend()
	return len(o.keys)
}

func (o *Object) depend() {
	if o.ob != nil {
		o.ob.dep.Depend()
	}
}

// Freeze makes the object read-only and non-extensible. A frozen object is never observed.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

func (o *Object) Frozen() bool { return o.frozen }

// MarkRaw excludes the object from observation.
func (o *Object) MarkRaw() *Object {
	o.raw = true
	return o
}

// Observer returns the object's observer, nil if it isn't observed.
func (o *Object) Observer() *Observer { return o.ob }

// ToMap returns a deep copy as plain Go values, without tracking.
func (o *Object) ToMap() map[string]any {
	m := make(map[string]any, len(o.keys))
	for _, key := range o.keys {
		m[key] = unwrap(o.props[key].value)
	}

	return m
}

func unwrap(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.ToMap()
	case *Array:
		return t.ToSlice()
	}

	return v
}

func (o *Object) remove(key string) {
	delete(o.props, key)
	if i := slices.Index(o.keys, key); i != -1 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
}

func (o *Object) warn(err error) {
	if o.ob != nil {
		o.ob.dep.rt.warn(err, nil, "object")
		return
	}

	Logger.Warn().Err(err).Msg("object")
}

func (p *property) depend() {
	if p.dep.rt.tracker.Target() == nil {
		return
	}

	p.dep.Depend()

	if ob := observerOf(p.value); ob != nil {
		ob.dep.Depend()

		if arr, ok := p.value.(*Array); ok {
			dependArray(arr)
		}
	}
}

func (p *property) set(value any) {
	if sameValue(value, p.value) {
		return
	}

	p.value = wrap(value)
	p.dep.rt.Observe(p.value)
	p.dep.Notify()
}
