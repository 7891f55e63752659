package internal

import (
	"cmp"
	"slices"
)

// Dep is a publisher owning the subscriber list of one reactive property,
// or of one observed container as a whole.
type Dep struct {
	rt *Runtime
	id uint64

	// subscribers in insertion order, each one at most once
	subs []*Watcher
}

func (r *Runtime) NewDep() *Dep {
	return &Dep{
		rt: r,
		id: r.nextDepID(),
	}
}

func (d *Dep) ID() uint64 {
	return d.id
}

func (d *Dep) AddSub(w *Watcher) {
	if !slices.Contains(d.subs, w) {
		d.subs = append(d.subs, w)
	}
}

func (d *Dep) RemoveSub(w *Watcher) {
	if i := slices.Index(d.subs, w); i != -1 {
		d.subs = slices.Delete(d.subs, i, i+1)
	}
}

// Subs returns a copy of the current subscribers.
func (d *Dep) Subs() []*Watcher {
	return slices.Clone(d.subs)
}

// Depend registers this dep with the active target, if any.
func (d *Dep) Depend() {
	if target := d.rt.tracker.Target(); target != nil {
		target.AddDep(d)
	}
}

func (d *Dep) Notify() {
	// clonning to avoid mutation during iteration
	subs := slices.Clone(d.subs)

	if !d.rt.async {
		// subs aren't sorted by the scheduler when flushing inline,
		// sort them here so they run in creation order
		slices.SortFunc(subs, func(a, b *Watcher) int {
			return cmp.Compare(a.id, b.id)
		})

		// lazy watchers only get dirty, do it before anything runs inline
		// so that a reader created before its computed doesn't see a stale value
		for _, sub := range subs {
			if sub.lazy {
				sub.Update()
			}
		}
		subs = slices.DeleteFunc(subs, func(w *Watcher) bool { return w.lazy })
	}

	for _, sub := range subs {
		sub.Update()
	}
}
