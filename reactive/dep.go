package reactive

import "sort"

// Dep is an observable that can have multiple watchers subscribing to it.
type Dep struct {
	rs   *ReactiveSystem
	id   uint64
	key  string
	subs []*Watcher
}

func (rs *ReactiveSystem) NewDep(key string) *Dep {
	return &Dep{
		rs:  rs,
		id:  rs.nextDepID(),
		key: key,
	}
}

func (d *Dep) ID() uint64 {
	return d.id
}

func (d *Dep) Key() string {
	return d.key
}

// Subscribers returns a copy of the current subscriber list.
func (d *Dep) Subscribers() []*Watcher {
	subs := make([]*Watcher, len(d.subs))
	copy(subs, d.subs)
	return subs
}

func (d *Dep) AddSub(w *Watcher) {
	d.subs = append(d.subs, w)
}

func (d *Dep) RemoveSub(w *Watcher) {
	for i, sub := range d.subs {
		if sub == w {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Depend registers d on the active watcher, if any.
func (d *Dep) Depend() {
	if d.rs.target != nil {
		d.rs.target.AddDep(d)
	}
}

func (d *Dep) Notify() {
	// stabilize the subscriber list first
	subs := d.Subscribers()
	if !d.rs.cfg.Async {
		// the scheduler does not sort in sync mode, so fire in creation order here
		sort.Slice(subs, func(i, j int) bool {
			return subs[i].id < subs[j].id
		})
	}
	for _, sub := range subs {
		sub.Update()
	}
}
