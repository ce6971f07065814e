package reactive

import "fmt"

// SetKey sets key on obj, adding a reactive property and notifying the
// container when the key is new. This is the explicit route for reactive
// property addition; Object.Set alone never makes a new key reactive.
func (rs *ReactiveSystem) SetKey(obj *Object, key string, val any) error {
	if p, ok := obj.props[key]; ok {
		p.Set(val)
		return nil
	}
	if obj.frozen {
		return fmt.Errorf("set %q: %w", key, ErrFrozen)
	}
	ob := obj.ob
	if ob != nil && ob.vmCount > 0 {
		return fmt.Errorf("set %q: %w", key, ErrRootData)
	}
	if ob == nil {
		obj.Set(key, val)
		return nil
	}
	rs.DefineReactive(obj, key, val, nil, false)
	ob.dep.Notify()
	return nil
}

// SetIndex replaces the item at i, growing arr when i is past its end.
func (rs *ReactiveSystem) SetIndex(arr *Array, i int, val any) error {
	if i < 0 {
		return fmt.Errorf("set index %d: out of range", i)
	}
	if arr.frozen {
		return fmt.Errorf("set index %d: %w", i, ErrFrozen)
	}
	if i >= len(arr.items) {
		grown := make([]any, i+1)
		copy(grown, arr.items)
		arr.items = grown
	}
	arr.Splice(i, 1, val)
	return nil
}

// DeleteKey removes key from obj and notifies the container if observed.
func (rs *ReactiveSystem) DeleteKey(obj *Object, key string) error {
	if obj.frozen {
		return fmt.Errorf("delete %q: %w", key, ErrFrozen)
	}
	ob := obj.ob
	if ob != nil && ob.vmCount > 0 {
		return fmt.Errorf("delete %q: %w", key, ErrRootData)
	}
	if !obj.remove(key) {
		return nil
	}
	if ob != nil {
		ob.dep.Notify()
	}
	return nil
}

func (rs *ReactiveSystem) DeleteIndex(arr *Array, i int) error {
	if i < 0 || i >= len(arr.items) {
		return nil
	}
	if arr.frozen {
		return fmt.Errorf("delete index %d: %w", i, ErrFrozen)
	}
	arr.Splice(i, 1)
	return nil
}
