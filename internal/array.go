package internal

import (
	"fmt"
	"slices"
	"strings"
)

// Array is a sequence whose mutating methods are the only way to change it.
// Once observed, every mutation observes inserted values and notifies the
// array's observer.
type Array struct {
	items []any

	ob *Observer

	raw bool
}

// NewArray creates an array; nested map[string]any and []any values are converted.
func NewArray(items ...any) *Array {
	a := &Array{
		items: make([]any, len(items)),
	}

	for i, item := range items {
		a.items[i] = wrap(item)
	}

	return a
}

func (a *Array) Len() int {
	a.depend()
	return len(a.items)
}

// At returns the item at i, nil if out of range.
func (a *Array) At(i int) any {
	a.depend()

	if i < 0 || i >= len(a.items) {
		return nil
	}

	return a.items[i]
}

// Values returns a copy of the items.
func (a *Array) Values() []any {
	a.depend()
	return slices.Clone(a.items)
}

func (a *Array) Push(items ...any) int {
	items = wrapAll(items)
	a.items = append(a.items, items...)

	a.mutated(items)
	return len(a.items)
}

func (a *Array) Pop() any {
	var last any

	if n := len(a.items); n > 0 {
		last = a.items[n-1]
		a.items[n-1] = nil
		a.items = a.items[:n-1]
	}

	a.mutated(nil)
	return last
}

func (a *Array) Shift() any {
	var first any

	if len(a.items) > 0 {
		first = a.items[0]
		a.items = slices.Delete(a.items, 0, 1)
	}

	a.mutated(nil)
	return first
}

func (a *Array) Unshift(items ...any) int {
	items = wrapAll(items)
	a.items = slices.Insert(a.items, 0, items...)

	a.mutated(items)
	return len(a.items)
}

// Splice removes deleteCount items from start, inserts items there, and returns the removed ones.
// A negative start counts from the end; both bounds are clamped.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	n := len(a.items)

	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := slices.Clone(a.items[start : start+deleteCount])

	items = wrapAll(items)
	a.items = slices.Replace(a.items, start, start+deleteCount, items...)

	a.mutated(items)
	return removed
}

// Sort sorts the items in place; a nil cmp compares their string forms.
func (a *Array) Sort(cmp func(x, y any) int) {
	if cmp == nil {
		cmp = func(x, y any) int {
			return strings.Compare(fmt.Sprint(x), fmt.Sprint(y))
		}
	}

	slices.SortStableFunc(a.items, cmp)
	a.mutated(nil)
}

func (a *Array) Reverse() {
	slices.Reverse(a.items)
	a.mutated(nil)
}

// MarkRaw excludes the array from observation.
func (a *Array) MarkRaw() *Array {
	a.raw = true
	return a
}

// Observer returns the array's observer, nil if it isn't observed.
func (a *Array) Observer() *Observer { return a.ob }

// ToSlice returns a deep copy as plain Go values, without tracking.
func (a *Array) ToSlice() []any {
	s := make([]any, len(a.items))
	for i, item := range a.items {
		s[i] = unwrap(item)
	}

	return s
}

func (a *Array) depend() {
	if a.ob != nil {
		a.ob.dep.Depend()
	}
}

func (a *Array) mutated(inserted []any) {
	ob := a.ob
	if ob == nil {
		return
	}

	if len(inserted) > 0 {
		ob.dep.rt.observeItems(inserted)
	}

	ob.dep.Notify()
}

func wrapAll(items []any) []any {
	wrapped := make([]any, len(items))
	for i, item := range items {
		wrapped[i] = wrap(item)
	}

	return wrapped
}

// dependArray subscribes the active target to every observed element, recursively,
// since element changes can't be caught by the array's own property getter.
func dependArray(a *Array) {
	for _, item := range a.items {
		if ob := observerOf(item); ob != nil {
			ob.dep.Depend()
		}

		if inner, ok := item.(*Array); ok {
			dependArray(inner)
		}
	}
}
