package internal

// Observer is attached to every observed Object or Array. Its dep notifies
// watchers when the container changes shape (keys added or removed, array
// mutations) rather than when one of its properties is reassigned.
type Observer struct {
	value any
	dep   *Dep

	// number of owners using the value as their root data
	rootCount int
}

func (ob *Observer) Value() any     { return ob.value }
func (ob *Observer) Dep() *Dep      { return ob.dep }
func (ob *Observer) RootCount() int { return ob.rootCount }

func observerOf(v any) *Observer {
	switch t := v.(type) {
	case *Object:
		if t != nil {
			return t.ob
		}
	case *Array:
		if t != nil {
			return t.ob
		}
	}

	return nil
}

// Observe makes value reactive and returns its observer.
// Returns nil for anything that isn't an *Object or *Array, for raw or frozen
// values, and for new values while observation is turned off.
// Observing an already observed value returns its existing observer.
func (r *Runtime) Observe(value any) *Observer {
	if ob := observerOf(value); ob != nil {
		return ob
	}

	switch v := value.(type) {
	case *Object:
		if v == nil || v.raw || v.frozen || !r.observing {
			return nil
		}

		// attached before walking so that cycles find it
		ob := r.newObserver(v)
		v.ob = ob
		for _, key := range v.keys {
			r.defineReactive(v, key)
		}

		return ob

	case *Array:
		if v == nil || v.raw || !r.observing {
			return nil
		}

		ob := r.newObserver(v)
		v.ob = ob
		r.observeItems(v.items)

		return ob
	}

	return nil
}

// ObserveRoot observes value as the root data of an owner.
func (r *Runtime) ObserveRoot(value any) *Observer {
	ob := r.Observe(value)
	if ob != nil {
		ob.rootCount++
	}

	return ob
}

func (r *Runtime) newObserver(value any) *Observer {
	return &Observer{
		value: value,
		dep:   r.NewDep(),
	}
}

// defineReactive turns an existing key of o into a reactive property.
func (r *Runtime) defineReactive(o *Object, key string) {
	p := o.props[key]
	if p.dep == nil {
		p.dep = r.NewDep()
	}

	r.Observe(p.value)
}

func (r *Runtime) observeItems(items []any) {
	for _, item := range items {
		r.Observe(item)
	}
}

// Set adds or updates a key of target and triggers change notification when
// the key is new. Array targets take an int index and go through Splice.
func (r *Runtime) Set(target any, key any, value any) any {
	switch t := target.(type) {
	case *Array:
		i, ok := key.(int)
		if t == nil || !ok || i < 0 {
			r.warn(invalidKey(key), nil, "set")
			return value
		}

		if i > len(t.items) {
			t.items = append(t.items, make([]any, i-len(t.items))...)
		}
		t.Splice(i, 1, value)

		return value

	case *Object:
		k, ok := key.(string)
		if t == nil || !ok {
			r.warn(invalidKey(key), nil, "set")
			return value
		}

		if t.Has(k) {
			t.Set(k, value)
			return value
		}

		ob := t.ob
		if ob != nil && ob.rootCount > 0 {
			r.warn(ErrRootData, nil, "set")
			return value
		}
		if ob == nil || t.frozen {
			t.Set(k, value)
			return value
		}

		t.keys = append(t.keys, k)
		t.props[k] = &property{value: wrap(value)}
		ob.dep.rt.defineReactive(t, k)
		ob.dep.Notify()

		return value
	}

	r.warn(ErrInvalidTarget, nil, "set")
	return value
}

// Del removes a key of target and triggers change notification if target is observed.
func (r *Runtime) Del(target any, key any) {
	switch t := target.(type) {
	case *Array:
		i, ok := key.(int)
		if t == nil || !ok {
			r.warn(invalidKey(key), nil, "delete")
			return
		}
		if i < 0 || i >= len(t.items) {
			return
		}

		t.Splice(i, 1)
		return

	case *Object:
		k, ok := key.(string)
		if t == nil || !ok {
			r.warn(invalidKey(key), nil, "delete")
			return
		}

		ob := t.ob
		if ob != nil && ob.rootCount > 0 {
			r.warn(ErrRootData, nil, "delete")
			return
		}
		if t.frozen {
			r.warn(readOnly(k), nil, "delete")
			return
		}
		if !t.Has(k) {
			return
		}

		t.remove(k)
		if ob == nil {
			return
		}
		ob.dep.Notify()

		return
	}

	r.warn(ErrInvalidTarget, nil, "delete")
}
