//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// default runtimes, one per goroutine
var runtimes sync.Map

// GetRuntime returns the runtime bound to the calling goroutine, creating one if needed.
func GetRuntime() *Runtime {
	gid := getGID()

	if r, ok := runtimes.Load(gid); ok {
		return r.(*Runtime)
	}

	r := NewRuntime()
	runtimes.Store(gid, r)
	return r
}

// Bind makes r the runtime returned by GetRuntime on the calling goroutine.
func (r *Runtime) Bind() {
	runtimes.Store(getGID(), r)
}

// Unbind forgets the calling goroutine's runtime if it is r.
func (r *Runtime) Unbind() {
	runtimes.CompareAndDelete(getGID(), r)
}

func getGID() int64 {
	return goid.Get()
}
