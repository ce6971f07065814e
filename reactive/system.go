package reactive

import (
	"fmt"

	"github.com/delaneyj/turnsignal/tick"
)

// OnErrorFunc receives every error caught by the runtime. vm is the owning
// instance when one is known, info names where the error came from.
type OnErrorFunc func(err error, vm Instance, info string)

// Instance is the component lifecycle collaborator owning watchers.
type Instance interface {
	RenderWatcher() *Watcher
	IsMounted() bool
	IsDestroyed() bool
	CallHook(hook string)
}

// Activatable is a kept-alive instance reattached during patch.
type Activatable interface {
	SetInactive(inactive bool)
	ActivateChild(direct bool)
}

type Config struct {
	// Async batches watcher runs into one flush per tick. When false every
	// notification flushes synchronously, in ascending watcher id order.
	Async bool `yaml:"async"`
}

func DefaultConfig() Config {
	return Config{Async: true}
}

// ReactiveSystem is the explicit context shared by everything reactive:
// the active watcher stack, id counters and the scheduler.
type ReactiveSystem struct {
	cfg     Config
	onError OnErrorFunc

	target      *Watcher
	targetStack []*Watcher

	shouldObserve bool
	depUID        uint64
	watcherUID    uint64

	loop      *tick.Loop
	ticker    *tick.Ticker
	scheduler *Scheduler
}

func CreateReactiveSystem(loop *tick.Loop, onError OnErrorFunc) *ReactiveSystem {
	rs := &ReactiveSystem{
		cfg:           DefaultConfig(),
		onError:       onError,
		shouldObserve: true,
		loop:          loop,
	}
	rs.ticker = tick.NewTicker(loop, func(err error) {
		rs.HandleError(err, nil, "nextTick")
	})
	rs.scheduler = newScheduler(rs)
	return rs
}

func (rs *ReactiveSystem) Configure(cfg Config) {
	rs.cfg = cfg
}

func (rs *ReactiveSystem) Config() Config {
	return rs.cfg
}

func (rs *ReactiveSystem) Loop() *tick.Loop {
	return rs.loop
}

func (rs *ReactiveSystem) Scheduler() *Scheduler {
	return rs.scheduler
}

// Target is the watcher currently collecting dependencies, if any.
func (rs *ReactiveSystem) Target() *Watcher {
	return rs.target
}

// PushTarget makes w the active watcher. Passing nil pauses tracking.
func (rs *ReactiveSystem) PushTarget(w *Watcher) {
	rs.targetStack = append(rs.targetStack, w)
	rs.target = w
}

// PopTarget restores the watcher that was active before the matching PushTarget.
func (rs *ReactiveSystem) PopTarget() {
	lastIdx := len(rs.targetStack) - 1
	if lastIdx < 0 {
		return
	}
	rs.targetStack[lastIdx] = nil
	rs.targetStack = rs.targetStack[:lastIdx]
	if lastIdx == 0 {
		rs.target = nil
		return
	}
	rs.target = rs.targetStack[lastIdx-1]
}

func (rs *ReactiveSystem) PauseTracking() {
	rs.PushTarget(nil)
}

func (rs *ReactiveSystem) ResumeTracking() {
	rs.PopTarget()
}

// SetShouldObserve toggles whether Observe creates new observers. It returns
// the previous setting so callers can restore it.
func (rs *ReactiveSystem) SetShouldObserve(value bool) (prev bool) {
	prev = rs.shouldObserve
	rs.shouldObserve = value
	return prev
}

// NextTick defers cb to the next tick. Errors returned by cb are reported
// against vm.
func (rs *ReactiveSystem) NextTick(vm Instance, cb func() error) <-chan struct{} {
	if cb == nil {
		return rs.ticker.NextTick(nil)
	}
	return rs.ticker.NextTick(func() error {
		rs.invokeWithErrorHandling(cb, vm, "nextTick")
		return nil
	})
}

func (rs *ReactiveSystem) HandleError(err error, vm Instance, info string) {
	if err == nil {
		return
	}
	if rs.onError != nil {
		rs.onError(err, vm, info)
	}
}

// invokeWithErrorHandling runs fn, reporting any error or recovered panic.
// It returns true when fn completed cleanly.
func (rs *ReactiveSystem) invokeWithErrorHandling(fn func() error, vm Instance, info string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			rs.HandleError(fmt.Errorf("panic: %v", r), vm, info)
			ok = false
		}
	}()
	if err := fn(); err != nil {
		rs.HandleError(err, vm, info)
		return false
	}
	return true
}

func (rs *ReactiveSystem) nextDepID() uint64 {
	id := rs.depUID
	rs.depUID++
	return id
}

func (rs *ReactiveSystem) nextWatcherID() uint64 {
	rs.watcherUID++
	return rs.watcherUID
}
