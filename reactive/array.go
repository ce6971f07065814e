package reactive

import "sort"

// Mutator is the structure mutating surface of a sequence. Array intercepts
// each operation: once observed, inserted items are observed and the array's
// own Dep is notified after the real operation ran.
type Mutator interface {
	Push(items ...any) int
	Pop() any
	Shift() any
	Unshift(items ...any) int
	Splice(start, deleteCount int, items ...any) []any
	Sort(less func(a, b any) bool)
	Reverse()
}

var _ Mutator = (*Array)(nil)

type Array struct {
	items  []any
	ob     *Observer
	frozen bool
	raw    bool
}

func NewArray(items ...any) *Array {
	return &Array{items: items}
}

func (a *Array) Len() int {
	return len(a.items)
}

// At returns the item at i, nil when out of range. Reads are not tracked
// per index; depend on the property holding the array instead.
func (a *Array) At(i int) any {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Items returns a copy of the backing slice.
func (a *Array) Items() []any {
	items := make([]any, len(a.items))
	copy(items, a.items)
	return items
}

func (a *Array) Observer() *Observer {
	return a.ob
}

func (a *Array) Freeze() *Array {
	a.frozen = true
	return a
}

func (a *Array) MarkRaw() *Array {
	a.raw = true
	return a
}

func (a *Array) mutated(inserted []any) {
	if a.ob == nil {
		return
	}
	if len(inserted) > 0 {
		a.ob.observeArray(inserted)
	}
	a.ob.dep.Notify()
}

func (a *Array) Push(items ...any) int {
	a.items = append(a.items, items...)
	a.mutated(items)
	return len(a.items)
}

func (a *Array) Pop() any {
	var last any
	if n := len(a.items); n > 0 {
		last = a.items[n-1]
		a.items[n-1] = nil
		a.items = a.items[:n-1]
	}
	a.mutated(nil)
	return last
}

func (a *Array) Shift() any {
	var first any
	if len(a.items) > 0 {
		first = a.items[0]
		a.items = append(a.items[:0:0], a.items[1:]...)
	}
	a.mutated(nil)
	return first
}

func (a *Array) Unshift(items ...any) int {
	next := make([]any, 0, len(items)+len(a.items))
	next = append(next, items...)
	a.items = append(next, a.items...)
	a.mutated(items)
	return len(a.items)
}

// Splice removes deleteCount items at start and inserts items in their
// place. A negative start counts from the end; both are clamped.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	n := len(a.items)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > n-start {
		deleteCount = n - start
	}

	removed := make([]any, deleteCount)
	copy(removed, a.items[start:start+deleteCount])

	next := make([]any, 0, n-deleteCount+len(items))
	next = append(next, a.items[:start]...)
	next = append(next, items...)
	next = append(next, a.items[start+deleteCount:]...)
	a.items = next

	a.mutated(items)
	return removed
}

func (a *Array) Sort(less func(a, b any) bool) {
	sort.SliceStable(a.items, func(i, j int) bool {
		return less(a.items[i], a.items[j])
	})
	a.mutated(nil)
}

func (a *Array) Reverse() {
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
	a.mutated(nil)
}
