//go:build wasm

package internal

import "sync"

var mu sync.Mutex
var globalRuntime *Runtime

// GetRuntime returns the process runtime, wasm being single-threaded.
func GetRuntime() *Runtime {
	mu.Lock()
	defer mu.Unlock()

	if globalRuntime == nil {
		globalRuntime = NewRuntime()
	}

	return globalRuntime
}

func (r *Runtime) Bind() {
	mu.Lock()
	globalRuntime = r
	mu.Unlock()
}

func (r *Runtime) Unbind() {}
