package internal

import (
	"context"
	"sync"
)

// TaskQueue is the async boundary of a runtime: Post must run fn later, on
// the goroutine driving the runtime, in the order tasks were posted.
type TaskQueue interface {
	Post(fn func())
}

// EventLoop is a FIFO task queue drained by a single goroutine.
// Post can be called from any goroutine.
type EventLoop struct {
	mu    sync.Mutex
	tasks []func()

	wake chan struct{}
}

func NewEventLoop() *EventLoop {
	return &EventLoop{
		wake: make(chan struct{}, 1),
	}
}

func (l *EventLoop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of tasks waiting to run.
func (l *EventLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.tasks)
}

// Drain runs tasks until the queue is empty, including tasks posted while draining.
func (l *EventLoop) Drain() int {
	n := 0

	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return n
		}

		fn := l.tasks[0]
		l.tasks[0] = nil
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		fn()
		n++
	}
}

// Run drains the loop each time tasks are posted, until ctx is done.
func (l *EventLoop) Run(ctx context.Context) error {
	for {
		l.Drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
