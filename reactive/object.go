package reactive

import "sort"

// Object is a plain keyed record. Once observed every key present at that
// moment is backed by a reactive Property; keys added later with Set stay
// plain until routed through ReactiveSystem.SetKey.
type Object struct {
	keys   []string
	props  map[string]*Property
	ob     *Observer
	frozen bool
	raw    bool
}

func NewObject() *Object {
	return &Object{
		props: map[string]*Property{},
	}
}

// FromMap builds an Object from m with keys in sorted order. Nested
// map[string]any and []any values are converted as well.
func FromMap(m map[string]any) *Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := NewObject()
	for _, k := range keys {
		o.Put(k, FromValue(m[k]))
	}
	return o
}

// FromValue converts maps and slices into Objects and Arrays, recursively.
func FromValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return FromMap(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = FromValue(item)
		}
		return NewArray(items...)
	default:
		return v
	}
}

// Put sets key without notifying anyone and returns o, for building literals.
func (o *Object) Put(key string, value any) *Object {
	o.Set(key, value)
	return o
}

func (o *Object) Has(key string) bool {
	_, ok := o.props[key]
	return ok
}

func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Get reads key. Reading a reactive key registers it on the active watcher.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

func (o *Object) Lookup(key string) (any, bool) {
	p, ok := o.props[key]
	if !ok {
		return nil, false
	}
	return p.Get(), true
}

// Set writes key. Writes to reactive keys go through the property setter;
// a missing key is added as a plain, non reactive value.
func (o *Object) Set(key string, value any) {
	if p, ok := o.props[key]; ok {
		p.Set(value)
		return
	}
	if o.frozen {
		return
	}
	o.keys = append(o.keys, key)
	o.props[key] = &Property{key: key, value: value}
}

func (o *Object) remove(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Property returns the cell backing key.
func (o *Object) Property(key string) *Property {
	return o.props[key]
}

// Observer returns the observer attached to o, nil when not observed.
func (o *Object) Observer() *Observer {
	return o.ob
}

// Freeze prevents o from being observed and from gaining keys.
func (o *Object) Freeze() *Object {
	o.frozen = true
	return o
}

func (o *Object) IsFrozen() bool {
	return o.frozen
}

// MarkRaw opts o out of observation for good.
func (o *Object) MarkRaw() *Object {
	o.raw = true
	return o
}

// Property is a reactive cell: reads depend, writes notify.
type Property struct {
	key          string
	value        any
	dep          *Dep
	childOb      *Observer
	shallow      bool
	customSetter func()
}

func (p *Property) Key() string {
	return p.key
}

// Dep is nil for plain, non reactive properties.
func (p *Property) Dep() *Dep {
	return p.dep
}

func (p *Property) IsReactive() bool {
	return p.dep != nil
}

func (p *Property) Get() any {
	if p.dep == nil {
		return p.value
	}
	if p.dep.rs.target != nil {
		p.dep.Depend()
		if p.childOb != nil {
			p.childOb.dep.Depend()
			if arr, ok := p.value.(*Array); ok {
				dependArray(arr)
			}
		}
	}
	return p.value
}

func (p *Property) Set(value any) {
	if p.dep == nil {
		p.value = value
		return
	}
	if sameValue(p.value, value) {
		return
	}
	if p.customSetter != nil {
		p.customSetter()
	}
	p.value = value
	if !p.shallow {
		p.childOb = p.dep.rs.Observe(value)
	}
	p.dep.Notify()
}

// DefineReactive installs a reactive cell for key on obj holding val.
// customSetter runs before every effective write, shallow skips observing
// the value. Frozen objects are left untouched and nil is returned.
func (rs *ReactiveSystem) DefineReactive(obj *Object, key string, val any, customSetter func(), shallow bool) *Property {
	if obj.frozen {
		return nil
	}
	p := &Property{
		key:          key,
		value:        val,
		dep:          rs.NewDep(key),
		shallow:      shallow,
		customSetter: customSetter,
	}
	if !shallow {
		p.childOb = rs.Observe(val)
	}
	if _, ok := obj.props[key]; !ok {
		obj.keys = append(obj.keys, key)
	}
	obj.props[key] = p
	return p
}
