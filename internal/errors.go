package internal

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

var (
	// ErrInfiniteUpdate is reported when a watcher keeps re-queueing itself within one flush.
	ErrInfiniteUpdate = errors.New("you may have an infinite update loop")

	// ErrReadOnly is reported when writing to a frozen object.
	ErrReadOnly = errors.New("cannot assign to read-only property")

	// ErrRootData is reported when adding or removing keys of an object used as root data.
	ErrRootData = errors.New("avoid adding reactive properties to root data at runtime")

	// ErrInvalidTarget is reported when Set/Del is called on something that isn't an Object or an Array.
	ErrInvalidTarget = errors.New("cannot set reactive property on nil or primitive value")

	// ErrInvalidKey is reported when the key type doesn't match the target (string for objects, int for arrays).
	ErrInvalidKey = errors.New("invalid key for target")

	// ErrNoEventLoop is returned by Runtime.Run when the runtime posts to a custom task queue.
	ErrNoEventLoop = errors.New("runtime uses a custom task queue, drive that queue instead")

	// ErrInvalidPath is reported when a watched path contains unsupported characters.
	ErrInvalidPath = errors.New("watcher only accepts simple dot-delimited paths")
)

// EvalError is returned when a watcher's getter fails.
type EvalError struct {
	Expression string
	Cause      error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("error in getter for watcher %q: %v", e.Expression, e.Cause)
}

func (e *EvalError) Unwrap() error { return e.Cause }

// CallbackError is reported when a watcher's callback fails.
type CallbackError struct {
	Expression string
	Cause      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("error in callback for watcher %q: %v", e.Expression, e.Cause)
}

func (e *CallbackError) Unwrap() error { return e.Cause }

// PanicError holds a value recovered from a panic in user code.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func recoverError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}

	return &PanicError{Value: r}
}

// PanicValue returns what should be re-panicked for err: the original panic value
// when err wraps a recovered panic, err itself otherwise.
func PanicValue(err error) any {
	var p *PanicError
	if errors.As(err, &p) {
		return p.Value
	}

	return err
}

func infiniteUpdate(expression string) error {
	return xerrors.Errorf("in watcher with expression %q: %w", expression, ErrInfiniteUpdate)
}

func readOnly(key string) error {
	return xerrors.Errorf("key %q: %w", key, ErrReadOnly)
}

func invalidKey(key any) error {
	return xerrors.Errorf("%T(%v): %w", key, key, ErrInvalidKey)
}

func invalidPath(path string) error {
	return xerrors.Errorf("failed watching path %q: %w", path, ErrInvalidPath)
}
