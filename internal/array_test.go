package internal

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArray(t *testing.T) {
	t.Run("mutators", func(t *testing.T) {
		a := NewArray(1, 2, 3)

		assert.Equal(t, 5, a.Push(4, 5))
		assert.Equal(t, 5, a.Pop())
		assert.Equal(t, 1, a.Shift())
		assert.Equal(t, 4, a.Unshift(0))
		assert.Equal(t, []any{0, 2, 3, 4}, a.Values())

		a.Reverse()
		assert.Equal(t, []any{4, 3, 2, 0}, a.Values())

		a.Sort(func(x, y any) int { return cmp.Compare(x.(int), y.(int)) })
		assert.Equal(t, []any{0, 2, 3, 4}, a.Values())
	})

	t.Run("empty", func(t *testing.T) {
		a := NewArray()

		assert.Nil(t, a.Pop())
		assert.Nil(t, a.Shift())
		assert.Nil(t, a.At(0))
		assert.Equal(t, 0, a.Len())
	})

	t.Run("splice", func(t *testing.T) {
		a := NewArray(1, 2, 3, 4)

		assert.Equal(t, []any{3}, a.Splice(-2, 1, "x", "y"))
		assert.Equal(t, []any{1, 2, "x", "y", 4}, a.Values())

		assert.Equal(t, []any{"y", 4}, a.Splice(3, 10))
		assert.Equal(t, []any{1, 2, "x"}, a.Values())

		assert.Empty(t, a.Splice(10, 1, "end"))
		assert.Equal(t, []any{1, 2, "x", "end"}, a.Values())
	})

	t.Run("default sort compares strings", func(t *testing.T) {
		a := NewArray(10, 9, 1)
		a.Sort(nil)

		assert.Equal(t, []any{1, 10, 9}, a.Values())
	})

	t.Run("mutations notify and observe inserted values", func(t *testing.T) {
		runs := 0

		r, _ := newTestRuntime()
		a := NewArray()
		r.Observe(a)

		_, err := r.NewWatcher(nil, func() (any, error) {
			runs++
			return a.Len(), nil
		}, nil, WatcherOptions{})
		require.NoError(t, err)

		a.Push(map[string]any{"x": 1})
		r.Tick()
		assert.Equal(t, 2, runs)
		assert.NotNil(t, a.At(0).(*Object).Observer())

		a.Reverse()
		r.Tick()
		assert.Equal(t, 3, runs)
	})

	t.Run("reading an array property tracks its elements", func(t *testing.T) {
		calls := 0

		r, _ := newTestRuntime()
		o := NewObject(map[string]any{
			"list": []any{map[string]any{"x": 1}, []any{map[string]any{"y": 2}}},
		})
		r.Observe(o)

		_, err := r.NewWatcher(nil,
			func() (any, error) { return o.Get("list"), nil },
			func(_, _ any) error {
				calls++
				return nil
			},
			WatcherOptions{},
		)
		require.NoError(t, err)

		list := o.Get("list").(*Array)
		r.Set(list.At(0), "z", 1)
		r.Tick()
		assert.Equal(t, 1, calls)

		inner := list.At(1).(*Array)
		r.Set(inner.At(0), "z", 1)
		r.Tick()
		assert.Equal(t, 2, calls)
	})

	t.Run("inserted slices are not aliased", func(t *testing.T) {
		items := []any{map[string]any{"x": 1}}

		a := NewArray()
		a.Push(items...)

		assert.IsType(t, map[string]any{}, items[0])
		assert.IsType(t, &Object{}, a.At(0))
	})

	t.Run("to slice", func(t *testing.T) {
		a := NewArray(1, map[string]any{"x": []any{2}})

		assert.Equal(t, []any{1, map[string]any{"x": []any{2}}}, a.ToSlice())
	})
}
