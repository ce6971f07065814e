package reactive

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Getter evaluates a watcher expression. Reactive reads made while it runs
// become the watcher's dependencies.
type Getter func() (any, error)

// Callback receives the new and previous value of a watcher.
type Callback func(newValue, oldValue any) error

type WatcherOptions struct {
	// Deep also depends on every nested value of the result.
	Deep bool
	// User marks watchers created from user code; their errors are attributed
	// to Expression.
	User bool
	// Lazy watchers only mark themselves dirty and evaluate on demand.
	Lazy bool
	// Sync watchers run on notification instead of being queued.
	Sync bool
	// Before runs ahead of every scheduled run.
	Before func()
	// Expression describes the watcher in diagnostics.
	Expression string
}

// Watcher parses an expression, collects dependencies, and fires its
// callback when the expression value changes.
type Watcher struct {
	rs  *ReactiveSystem
	vm  Instance
	id  uint64
	cb  Callback
	opt WatcherOptions

	getter Getter
	value  any
	dirty  bool
	active bool

	deps      []*Dep
	newDeps   []*Dep
	depIDs    mapset.Set[uint64]
	newDepIDs mapset.Set[uint64]
}

// NewWatcher creates a watcher owned by vm (which may be nil). Non lazy
// watchers evaluate immediately to collect their first dependencies.
func NewWatcher(rs *ReactiveSystem, vm Instance, getter Getter, cb Callback, opt WatcherOptions) *Watcher {
	if cb == nil {
		cb = func(_, _ any) error { return nil }
	}
	w := &Watcher{
		rs:        rs,
		vm:        vm,
		id:        rs.nextWatcherID(),
		cb:        cb,
		opt:       opt,
		getter:    getter,
		dirty:     opt.Lazy,
		active:    true,
		depIDs:    mapset.NewThreadUnsafeSet[uint64](),
		newDepIDs: mapset.NewThreadUnsafeSet[uint64](),
	}
	if !opt.Lazy {
		w.value = w.Get()
	}
	return w
}

func (w *Watcher) ID() uint64 {
	return w.id
}

func (w *Watcher) VM() Instance {
	return w.vm
}

func (w *Watcher) Expression() string {
	return w.opt.Expression
}

func (w *Watcher) IsUser() bool {
	return w.opt.User
}

func (w *Watcher) IsSync() bool {
	return w.opt.Sync
}

func (w *Watcher) IsLazy() bool {
	return w.opt.Lazy
}

func (w *Watcher) IsDirty() bool {
	return w.dirty
}

func (w *Watcher) IsActive() bool {
	return w.active
}

func (w *Watcher) Value() any {
	return w.value
}

// Deps returns the dependencies collected by the last evaluation.
func (w *Watcher) Deps() []*Dep {
	deps := make([]*Dep, len(w.deps))
	copy(deps, w.deps)
	return deps
}

func (w *Watcher) errorInfo() string {
	if w.opt.User {
		return fmt.Sprintf("getter for watcher %q", w.opt.Expression)
	}
	return "render"
}

// Get evaluates the getter and re-collects dependencies. When the getter
// fails the error is reported and the previous value is kept.
func (w *Watcher) Get() any {
	w.rs.PushTarget(w)
	value := w.value
	w.rs.invokeWithErrorHandling(func() error {
		v, err := w.getter()
		if err != nil {
			return err
		}
		value = v
		return nil
	}, w.vm, w.errorInfo())

	// "touch" every nested value so they are all tracked for deep watching
	if w.opt.Deep {
		traverse(value)
	}
	w.rs.PopTarget()
	w.cleanupDeps()
	return value
}

// AddDep records dep for the evaluation in progress. Subscribing is skipped
// when dep was already a dependency of the previous evaluation.
func (w *Watcher) AddDep(dep *Dep) {
	id := dep.id
	if w.newDepIDs.Contains(id) {
		return
	}
	w.newDepIDs.Add(id)
	w.newDeps = append(w.newDeps, dep)
	if !w.depIDs.Contains(id) {
		dep.AddSub(w)
	}
}

func (w *Watcher) cleanupDeps() {
	for _, dep := range w.deps {
		if !w.newDepIDs.Contains(dep.id) {
			dep.RemoveSub(w)
		}
	}
	w.depIDs, w.newDepIDs = w.newDepIDs, w.depIDs
	w.newDepIDs.Clear()
	w.deps, w.newDeps = w.newDeps, w.deps[:0]
}

// Update is called by a Dep when one of the watcher's dependencies changed.
func (w *Watcher) Update() {
	switch {
	case w.opt.Lazy:
		w.dirty = true
	case w.opt.Sync:
		w.Run()
	default:
		w.rs.scheduler.Enqueue(w)
	}
}

// Run re-evaluates and fires the callback on change. Inactive watchers are
// skipped, so a torn down watcher left in a queue is inert.
func (w *Watcher) Run() {
	if !w.active {
		return
	}
	value := w.Get()
	if sameValue(value, w.value) && !isObject(value) && !w.opt.Deep {
		return
	}
	oldValue := w.value
	w.value = value
	if w.opt.User {
		w.rs.invokeWithErrorHandling(func() error {
			return w.cb(value, oldValue)
		}, w.vm, fmt.Sprintf("callback for watcher %q", w.opt.Expression))
		return
	}
	w.rs.invokeWithErrorHandling(func() error {
		return w.cb(value, oldValue)
	}, w.vm, "watcher callback")
}

// Evaluate computes the value of a lazy watcher.
func (w *Watcher) Evaluate() any {
	w.value = w.Get()
	w.dirty = false
	return w.value
}

// Depend makes the active watcher depend on everything w depends on.
func (w *Watcher) Depend() {
	for _, dep := range w.deps {
		dep.Depend()
	}
}

// Teardown unsubscribes w from all its dependencies. It is safe to call
// more than once.
func (w *Watcher) Teardown() {
	if !w.active {
		return
	}
	for _, dep := range w.deps {
		dep.RemoveSub(w)
	}
	w.deps = nil
	w.depIDs.Clear()
	w.active = false
}
