package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	t.Run("push and pop", func(t *testing.T) {
		tr := NewTracker()
		a, b := &Watcher{id: 1}, &Watcher{id: 2}

		assert.Nil(t, tr.Target())

		tr.Push(a)
		tr.Push(b)
		assert.Same(t, b, tr.Target())
		assert.Equal(t, 2, tr.Depth())

		tr.Pop()
		assert.Same(t, a, tr.Target())

		tr.Pop()
		assert.Nil(t, tr.Target())

		// popping an empty stack is a no-op
		tr.Pop()
		assert.Nil(t, tr.Target())
	})

	t.Run("run untracked", func(t *testing.T) {
		tr := NewTracker()
		a := &Watcher{id: 1}
		tr.Push(a)

		tr.RunUntracked(func() {
			assert.Nil(t, tr.Target())
		})

		assert.Same(t, a, tr.Target())
	})
}
