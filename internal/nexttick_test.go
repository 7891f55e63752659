package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextTick(t *testing.T) {
	t.Run("runs callbacks in order in one task", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		r.NextTick(func() { log = append(log, "a") })
		r.NextTick(func() { log = append(log, "b") })

		assert.Empty(t, log)
		assert.Equal(t, 1, r.Tick())
		assert.Equal(t, []string{"a", "b"}, log)
	})

	t.Run("sees flushed updates", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		o := NewObject(map[string]any{"a": 1})
		r.Observe(o)

		_, err := r.NewWatcher(nil, func() (any, error) {
			log = append(log, "watcher")
			return o.Get("a"), nil
		}, nil, WatcherOptions{})
		require.NoError(t, err)

		o.Set("a", 2)
		r.NextTick(func() { log = append(log, "tick") })
		r.Tick()

		assert.Equal(t, []string{"watcher", "watcher", "tick"}, log)
	})

	t.Run("callbacks added while flushing run on the next tick", func(t *testing.T) {
		log := []string{}

		r, _ := newTestRuntime()
		r.NextTick(func() {
			log = append(log, "first")
			r.NextTick(func() { log = append(log, "second") })
		})

		assert.Equal(t, 2, r.Tick())
		assert.Equal(t, []string{"first", "second"}, log)
	})

	t.Run("panicking callbacks are reported", func(t *testing.T) {
		log := []string{}

		r, reports := newTestRuntime()
		r.NextTick(func() { panic("boom") })
		r.NextTick(func() { log = append(log, "after") })
		r.Tick()

		assert.Equal(t, []string{"after"}, log)
		require.Len(t, *reports, 1)
		assert.Equal(t, "nextTick", (*reports)[0].Info)
		assert.Equal(t, "boom", PanicValue((*reports)[0].Err))
	})

	t.Run("custom task queue", func(t *testing.T) {
		log := []string{}

		loop := NewEventLoop()
		r, _ := newTestRuntime(WithTaskQueue(loop))

		r.NextTick(func() { log = append(log, "a") })
		assert.Equal(t, 0, r.Tick())
		assert.Equal(t, 1, loop.Pending())

		assert.Equal(t, 1, loop.Drain())
		assert.Equal(t, []string{"a"}, log)
	})
}

func TestEventLoop(t *testing.T) {
	t.Run("drain", func(t *testing.T) {
		log := []string{}

		loop := NewEventLoop()
		loop.Post(func() {
			log = append(log, "a")
			loop.Post(func() { log = append(log, "c") })
		})
		loop.Post(func() { log = append(log, "b") })

		assert.Equal(t, 3, loop.Drain())
		assert.Equal(t, []string{"a", "b", "c"}, log)
		assert.Equal(t, 0, loop.Pending())
	})

	t.Run("run until canceled", func(t *testing.T) {
		loop := NewEventLoop()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- loop.Run(ctx) }()

		ran := make(chan struct{})
		loop.Post(func() { close(ran) })

		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("task never ran")
		}

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}
