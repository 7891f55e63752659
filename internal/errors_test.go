package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors(t *testing.T) {
	t.Run("wrapped sentinels", func(t *testing.T) {
		assert.ErrorIs(t, infiniteUpdate("a"), ErrInfiniteUpdate)
		assert.ErrorIs(t, readOnly("a"), ErrReadOnly)
		assert.ErrorIs(t, invalidKey(1), ErrInvalidKey)
		assert.ErrorIs(t, invalidPath("a[0]"), ErrInvalidPath)

		assert.EqualError(t, infiniteUpdate("a"), `in watcher with expression "a": you may have an infinite update loop`)
	})

	t.Run("panic value", func(t *testing.T) {
		cause := errors.New("oops")

		assert.Equal(t, "boom", PanicValue(&EvalError{Expression: "a", Cause: recoverError("boom")}))
		assert.Equal(t, cause, PanicValue(recoverError(cause)))

		err := &EvalError{Expression: "a", Cause: cause}
		assert.Equal(t, err, PanicValue(err))
	})

	t.Run("messages", func(t *testing.T) {
		cause := errors.New("oops")

		assert.EqualError(t, &EvalError{Expression: "a", Cause: cause}, `error in getter for watcher "a": oops`)
		assert.EqualError(t, &CallbackError{Expression: "a", Cause: cause}, `error in callback for watcher "a": oops`)
		assert.EqualError(t, &PanicError{Value: 1}, "panic: 1")
	})
}
