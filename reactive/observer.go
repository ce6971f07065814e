package reactive

// Observer is attached to each observed Object or Array. It converts the
// target's keys into reactive properties and owns the Dep notified on
// structural changes of the whole container.
type Observer struct {
	rs    *ReactiveSystem
	value any
	dep   *Dep
	// number of component instances using this as root data
	vmCount int
}

func (ob *Observer) Value() any {
	return ob.value
}

func (ob *Observer) Dep() *Dep {
	return ob.dep
}

func (ob *Observer) VMCount() int {
	return ob.vmCount
}

// Observe attaches an observer to value, or returns the existing one.
// Values that are not an Object or Array, are frozen, marked raw, or already
// owned by another ReactiveSystem yield nil.
func (rs *ReactiveSystem) Observe(value any) *Observer {
	switch v := value.(type) {
	case *Object:
		if v == nil {
			return nil
		}
		if v.ob != nil {
			if v.ob.rs != rs {
				return nil
			}
			return v.ob
		}
		if !rs.shouldObserve || v.frozen || v.raw {
			return nil
		}
		ob := rs.newObserver(v)
		v.ob = ob
		ob.walk(v)
		return ob

	case *Array:
		if v == nil {
			return nil
		}
		if v.ob != nil {
			if v.ob.rs != rs {
				return nil
			}
			return v.ob
		}
		if !rs.shouldObserve || v.frozen || v.raw {
			return nil
		}
		ob := rs.newObserver(v)
		v.ob = ob
		ob.observeArray(v.items)
		return ob

	default:
		return nil
	}
}

// ObserveRoot observes value as the root data of a component instance.
func (rs *ReactiveSystem) ObserveRoot(value any) *Observer {
	ob := rs.Observe(value)
	if ob != nil {
		ob.vmCount++
	}
	return ob
}

func (rs *ReactiveSystem) newObserver(value any) *Observer {
	return &Observer{
		rs:    rs,
		value: value,
		dep:   rs.NewDep(""),
	}
}

func (ob *Observer) walk(obj *Object) {
	for _, key := range obj.keys {
		p := obj.props[key]
		// cells installed by DefineReactive keep their dep and subscribers
		if p.dep != nil {
			if !p.shallow && p.childOb == nil {
				p.childOb = ob.rs.Observe(p.value)
			}
			continue
		}
		ob.rs.DefineReactive(obj, key, p.value, nil, false)
	}
}

func (ob *Observer) observeArray(items []any) {
	for _, item := range items {
		ob.rs.Observe(item)
	}
}

// dependArray collects dependencies on array elements when the array is
// touched, since element access is not intercepted like property getters.
func dependArray(arr *Array) {
	for _, item := range arr.items {
		switch e := item.(type) {
		case *Object:
			if e != nil && e.ob != nil {
				e.ob.dep.Depend()
			}
		case *Array:
			if e == nil {
				continue
			}
			if e.ob != nil {
				e.ob.dep.Depend()
			}
			dependArray(e)
		}
	}
}

// Release drops one component instance from the root data count.
func (ob *Observer) Release() {
	if ob.vmCount > 0 {
		ob.vmCount--
	}
}
