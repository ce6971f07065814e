package tick

import (
	"context"
	"sync"
)

// Loop is a single threaded cooperative event loop.
//
// Macrotasks may be posted from any goroutine. Microtasks may only be queued
// from the goroutine running the loop, and the whole microtask queue is
// drained after every macrotask, before the next one starts.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
	micro []func()
}

func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post queues fn as a macrotask. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Microtask queues fn to run once the current task unwinds.
func (l *Loop) Microtask(fn func()) {
	l.micro = append(l.micro, fn)
}

// Drain runs microtasks until none are left, including the ones queued
// while draining.
func (l *Loop) Drain() {
	for len(l.micro) > 0 {
		fn := l.micro[0]
		l.micro[0] = nil
		l.micro = l.micro[1:]
		fn()
	}
	l.micro = nil
}

func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks) + len(l.micro)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

func (l *Loop) runTask(fn func()) {
	fn()
	l.Drain()
}

// RunUntilIdle runs queued microtasks and macrotasks on the calling
// goroutine until both queues are empty.
func (l *Loop) RunUntilIdle() {
	l.Drain()
	for {
		fn, ok := l.next()
		if !ok {
			return
		}
		l.runTask(fn)
	}
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunUntilIdle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
