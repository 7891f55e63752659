package internal

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler(t *testing.T) {
	t.Run("batches writes into one run", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		o := NewObject(map[string]any{"a": 1, "b": 2})
		r.Observe(o)

		_, err := r.NewWatcher(nil,
			func() (any, error) { return o.Get("a").(int) + o.Get("b").(int), nil },
			func(value, old any) error {
				log = append(log, fmt.Sprintf("%v -> %v", old, value))
				return nil
			},
			WatcherOptions{},
		)
		require.NoError(t, err)

		o.Set("a", 2)
		o.Set("b", 3)
		assert.True(t, r.Scheduler().Waiting())
		assert.Equal(t, 1, r.Scheduler().Pending())

		assert.Equal(t, 1, r.Tick())
		assert.Equal(t, []string{"3 -> 5"}, log)
		assert.False(t, r.Scheduler().Waiting())
	})

	t.Run("runs in creation order", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		o := NewObject(map[string]any{"a": 0, "b": 0, "c": 0})
		r.Observe(o)

		for _, key := range []string{"a", "b", "c"} {
			_, err := r.NewWatcher(nil,
				func() (any, error) { return o.Get(key), nil },
				func(_, _ any) error {
					log = append(log, key)
					return nil
				},
				WatcherOptions{},
			)
			require.NoError(t, err)
		}

		o.Set("c", 1)
		o.Set("b", 1)
		o.Set("a", 1)
		r.Tick()

		assert.Equal(t, []string{"a", "b", "c"}, log)
	})

	t.Run("watchers queued while flushing", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		o := NewObject(map[string]any{"a": 0, "b": 0, "c": 0, "d": 0})
		r.Observe(o)

		watch := func(key string, cb func()) {
			_, err := r.NewWatcher(nil,
				func() (any, error) { return o.Get(key), nil },
				func(_, _ any) error {
					log = append(log, key)
					cb()
					return nil
				},
				WatcherOptions{},
			)
			require.NoError(t, err)
		}

		watch("a", func() {})
		watch("b", func() { o.Set("c", 1) })
		watch("c", func() {})
		watch("d", func() { o.Set("a", 1) })

		// c comes after b, it runs in the same flush
		o.Set("b", 1)
		assert.Equal(t, 1, r.Tick())
		assert.Equal(t, []string{"b", "c"}, log)

		// a was already passed, it runs right after d
		log = log[:0]
		o.Set("d", 1)
		assert.Equal(t, 1, r.Tick())
		assert.Equal(t, []string{"d", "a"}, log)
	})

	t.Run("detects infinite update loops", func(t *testing.T) {
		runs := 0

		r, reports := newTestRuntime()
		o := NewObject(map[string]any{"a": 0})
		r.Observe(o)

		_, err := r.NewWatcher(nil,
			func() (any, error) { return o.Get("a"), nil },
			func(value, _ any) error {
				runs++
				o.Set("a", value.(int)+1)
				return nil
			},
			WatcherOptions{Expression: "runaway"},
		)
		require.NoError(t, err)

		o.Set("a", 1)
		assert.Equal(t, 1, r.Tick())

		assert.Equal(t, MaxUpdateCount+1, runs)
		require.Len(t, *reports, 1)
		assert.True(t, (*reports)[0].Warning)
		assert.Equal(t, "runaway", (*reports)[0].Expression)
		assert.ErrorIs(t, (*reports)[0].Err, ErrInfiniteUpdate)

		assert.False(t, r.Scheduler().Waiting())
		assert.False(t, r.Scheduler().Flushing())
		assert.Equal(t, 0, r.Scheduler().Pending())
	})

	t.Run("custom update limit", func(t *testing.T) {
		runs := 0

		r, reports := newTestRuntime(WithMaxUpdateCount(10))
		o := NewObject(map[string]any{"a": 0})
		r.Observe(o)

		_, err := r.NewWatcher(nil,
			func() (any, error) { return o.Get("a"), nil },
			func(value, _ any) error {
				runs++
				o.Set("a", value.(int)+1)
				return nil
			},
			WatcherOptions{},
		)
		require.NoError(t, err)

		o.Set("a", 1)
		r.Tick()

		assert.Equal(t, 11, runs)
		assert.Len(t, *reports, 1)
	})

	t.Run("state is reset before hooks", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		data := NewObject(map[string]any{"a": 1})

		owner := r.NewOwner("app")
		owner.SetData(data)
		require.NoError(t, owner.Mount(func() error {
			log = append(log, fmt.Sprintf("render %v", data.Get("a")))
			return nil
		}))

		owner.OnUpdated(func() {
			log = append(log, fmt.Sprintf("updated flushing=%t waiting=%t", r.Scheduler().Flushing(), r.Scheduler().Waiting()))

			// starts a new cycle
			if data.Get("a") == 2 {
				data.Set("a", 3)
			}
		})

		data.Set("a", 2)
		assert.Equal(t, 2, r.Tick())

		assert.Equal(t, []string{
			"render 1",
			"render 2",
			"updated flushing=false waiting=false",
			"render 3",
			"updated flushing=false waiting=false",
		}, log)
	})

	t.Run("inline flush", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime(WithAsync(false))
		o := NewObject(map[string]any{"a": 1})
		r.Observe(o)

		_, err := r.NewWatcher(nil,
			func() (any, error) { return o.Get("a"), nil },
			func(value, _ any) error {
				log = append(log, fmt.Sprint(value))
				return nil
			},
			WatcherOptions{},
		)
		require.NoError(t, err)

		o.Set("a", 2)
		o.Set("a", 3)

		assert.Equal(t, []string{"2", "3"}, log)
		assert.Equal(t, 0, r.Tick())
	})

	t.Run("inline flush dirties computeds before their readers", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime(WithAsync(false))
		o := NewObject(map[string]any{"on": false, "a": 1})
		r.Observe(o)

		// the reader is created before the computed it reads
		var c *Watcher
		_, err := r.NewWatcher(nil,
			func() (any, error) {
				if !o.Get("on").(bool) {
					return 0, nil
				}
				return c.Read()
			},
			func(value, _ any) error {
				log = append(log, fmt.Sprint(value))
				return nil
			},
			WatcherOptions{},
		)
		require.NoError(t, err)

		c, err = r.NewWatcher(nil, func() (any, error) { return o.Get("a").(int) * 10, nil }, nil, WatcherOptions{Lazy: true})
		require.NoError(t, err)

		o.Set("on", true)
		o.Set("a", 2)
		o.Set("a", 3)

		assert.Equal(t, []string{"10", "20", "30"}, log)
		assert.False(t, c.Dirty())
	})

	t.Run("a panicking reporter doesn't stop flushing", func(t *testing.T) {
		runs := 0
		var out bytes.Buffer

		r := NewRuntime(
			WithLogger(zerolog.New(&out)),
			WithReporter(func(Report) { panic("reporter down") }),
		)
		o := NewObject(map[string]any{"a": 1})
		r.Observe(o)

		_, err := r.NewWatcher(nil,
			func() (any, error) {
				runs++
				return o.Get("a"), nil
			},
			func(_, _ any) error { return errors.New("oops") },
			WatcherOptions{User: true, Expression: "a"},
		)
		require.NoError(t, err)

		o.Set("a", 2)
		assert.NotPanics(t, func() { r.Tick() })
		assert.False(t, r.Scheduler().Flushing())
		assert.False(t, r.Scheduler().Waiting())

		o.Set("a", 3)
		assert.Equal(t, 1, r.Tick())
		assert.Equal(t, 3, runs)

		// both the reporter's panic and the original error reach the logger
		assert.Contains(t, out.String(), "reporter panicked")
		assert.Contains(t, out.String(), "reporter down")
		assert.Contains(t, out.String(), "oops")
	})
}
