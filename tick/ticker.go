package tick

import "fmt"

type OnErrorFunc func(err error)

type queued struct {
	cb   func() error
	done chan struct{}
}

// Ticker coalesces every callback queued during one synchronous stretch
// into a single flush that runs on the next microtask turn of its Loop.
type Ticker struct {
	loop      *Loop
	onError   OnErrorFunc
	callbacks []queued
	pending   bool
}

func NewTicker(loop *Loop, onError OnErrorFunc) *Ticker {
	return &Ticker{
		loop:    loop,
		onError: onError,
	}
}

// NextTick defers cb until the current call stack unwinds. cb may be nil.
// The returned channel is closed once the flush that ran cb has happened;
// only wait on it from a goroutine other than the one running the loop.
func (t *Ticker) NextTick(cb func() error) <-chan struct{} {
	done := make(chan struct{})
	t.callbacks = append(t.callbacks, queued{cb: cb, done: done})
	if !t.pending {
		t.pending = true
		t.loop.Microtask(t.flush)
	}
	return done
}

// Pending reports whether a flush is scheduled but has not run yet.
func (t *Ticker) Pending() bool {
	return t.pending
}

func (t *Ticker) flush() {
	t.pending = false
	copies := t.callbacks
	t.callbacks = nil
	for _, q := range copies {
		if q.cb != nil {
			if err := call(q.cb); err != nil && t.onError != nil {
				t.onError(err)
			}
		}
		close(q.done)
	}
}

func call(cb func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in tick callback: %v", r)
		}
	}()
	return cb()
}
