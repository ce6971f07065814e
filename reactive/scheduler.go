package reactive

import (
	"fmt"
	"sort"
)

// MaxUpdateCount is how often a watcher may re-queue itself during the flush
// running it before the flush is aborted.
const MaxUpdateCount = 100

const HookUpdated = "updated"

// Scheduler batches dirty watchers and runs them in ascending id order, once
// per tick.
type Scheduler struct {
	rs *ReactiveSystem

	queue []*Watcher
	// watchers queued during a flush that cannot run in the current pass
	next              []*Watcher
	ran               []*Watcher
	activatedChildren []Activatable
	has               map[uint64]bool
	circular          map[uint64]int
	waiting           bool
	flushing          bool
	index             int
}

func newScheduler(rs *ReactiveSystem) *Scheduler {
	return &Scheduler{
		rs:       rs,
		has:      map[uint64]bool{},
		circular: map[uint64]int{},
	}
}

func (s *Scheduler) IsFlushing() bool {
	return s.flushing
}

// Len is the number of watchers waiting to run.
func (s *Scheduler) Len() int {
	n := len(s.queue) + len(s.next)
	if s.flushing {
		n -= s.index + 1
	}
	return n
}

// Enqueue pushes w into the queue. Duplicate ids are skipped unless w is
// pushed while it is being run.
//
// During a flush, a watcher with an id above the one being run is spliced in
// by id and runs later in the same pass. Any other watcher waits for the next
// pass so nothing is inserted behind the cursor.
func (s *Scheduler) Enqueue(w *Watcher) {
	id := w.id
	if s.has[id] {
		return
	}
	s.has[id] = true

	switch {
	case !s.flushing:
		s.queue = append(s.queue, w)
	case id > s.queue[s.index].id:
		i := len(s.queue) - 1
		for i > s.index && s.queue[i].id > id {
			i--
		}
		s.queue = append(s.queue, nil)
		copy(s.queue[i+2:], s.queue[i+1:])
		s.queue[i+1] = w
	default:
		s.next = append(s.next, w)
	}

	if !s.waiting {
		s.waiting = true
		if !s.rs.cfg.Async {
			s.Flush()
			return
		}
		s.rs.ticker.NextTick(func() error {
			s.Flush()
			return nil
		})
	}
}

// EnqueueActivatedComponent queues a kept-alive instance that was
// reattached during patch. Its activated hooks run after the whole tree has
// been flushed.
func (s *Scheduler) EnqueueActivatedComponent(vm Activatable) {
	// render functions may check whether they sit in an inactive tree
	vm.SetInactive(false)
	s.activatedChildren = append(s.activatedChildren, vm)
}

// Flush runs every queued watcher. It is normally invoked by the tick
// scheduler; calling it directly flushes synchronously.
func (s *Scheduler) Flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	defer func() {
		if r := recover(); r != nil {
			var vm Instance
			if s.index < len(s.queue) {
				vm = s.queue[s.index].vm
			}
			s.reset()
			s.rs.HandleError(fmt.Errorf("panic: %v", r), vm, "scheduler")
		}
	}()

	// Sorting ensures that parents update before children, that a component's
	// user watchers run before its render watcher, and that watchers of a
	// component destroyed by its parent's update are skipped.
passes:
	for {
		sort.SliceStable(s.queue, func(i, j int) bool {
			return s.queue[i].id < s.queue[j].id
		})

		// the queue may grow while running, do not cache its length
		for s.index = 0; s.index < len(s.queue); s.index++ {
			w := s.queue[s.index]
			if before := w.opt.Before; before != nil {
				s.rs.invokeWithErrorHandling(func() error {
					before()
					return nil
				}, w.vm, "before hook")
			}
			id := w.id
			delete(s.has, id)
			w.Run()
			s.ran = append(s.ran, w)

			if s.has[id] {
				s.circular[id]++
				if s.circular[id] > MaxUpdateCount {
					s.rs.HandleError(&InfiniteUpdateError{
						WatcherID:  id,
						Expression: w.opt.Expression,
						User:       w.opt.User,
					}, w.vm, "scheduler")
					break passes
				}
			}
		}

		if len(s.next) == 0 {
			break
		}
		s.queue, s.next = s.next, nil
	}

	// keep copies of the post queues before resetting state
	activatedQueue := make([]Activatable, len(s.activatedChildren))
	copy(activatedQueue, s.activatedChildren)
	updatedQueue := make([]*Watcher, len(s.ran))
	copy(updatedQueue, s.ran)

	s.reset()

	callActivatedHooks(activatedQueue)
	callUpdatedHooks(updatedQueue)
}

func (s *Scheduler) reset() {
	s.queue = nil
	s.next = nil
	s.ran = nil
	s.activatedChildren = nil
	s.index = 0
	s.has = map[uint64]bool{}
	s.circular = map[uint64]int{}
	s.waiting = false
	s.flushing = false
}

func callActivatedHooks(queue []Activatable) {
	for _, vm := range queue {
		vm.SetInactive(true)
		vm.ActivateChild(true)
	}
}

func callUpdatedHooks(queue []*Watcher) {
	for i := len(queue) - 1; i >= 0; i-- {
		w := queue[i]
		vm := w.vm
		if vm == nil {
			continue
		}
		if vm.RenderWatcher() == w && vm.IsMounted() && !vm.IsDestroyed() {
			vm.CallHook(HookUpdated)
		}
	}
}
