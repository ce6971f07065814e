package instance

import (
	"fmt"
	"sort"

	"github.com/delaneyj/turnsignal/reactive"
)

const (
	HookBeforeMount   = "beforeMount"
	HookMounted       = "mounted"
	HookBeforeUpdate  = "beforeUpdate"
	HookUpdated       = reactive.HookUpdated
	HookActivated     = "activated"
	HookDeactivated   = "deactivated"
	HookBeforeDestroy = "beforeDestroy"
	HookDestroyed     = "destroyed"
)

type RenderFunc func(c *Component) (any, error)

type WatchHandler struct {
	Handler   func(c *Component, newValue, oldValue any) error
	Deep      bool
	Immediate bool
	Sync      bool
}

type Options struct {
	Name     string
	Data     map[string]any
	Computed map[string]func(c *Component) (any, error)
	Watch    map[string]WatchHandler
	Render   RenderFunc
	// RenderError produces a fallback vnode when Render fails.
	RenderError func(c *Component, err error) (any, error)
	// Patch applies a freshly rendered vnode over the previous one.
	Patch func(c *Component, oldVNode, vnode any)
	Hooks map[string]func(c *Component) error
}

// Component is a minimal lifecycle collaborator: it owns reactive root data,
// computed properties, user watchers and one render watcher.
type Component struct {
	rs       *reactive.ReactiveSystem
	opts     Options
	parent   *Component
	children []*Component

	data          *reactive.Object
	computed      map[string]*reactive.Watcher
	watchers      []*reactive.Watcher
	renderWatcher *reactive.Watcher
	vnode         any

	isMounted        bool
	isDestroyed      bool
	isBeingDestroyed bool
	inactive         bool
	directInactive   bool
}

var (
	_ reactive.Instance    = (*Component)(nil)
	_ reactive.Activatable = (*Component)(nil)
)

// New creates a component under parent (which may be nil) and initializes
// its state in the order data, computed, watch.
func New(rs *reactive.ReactiveSystem, parent *Component, opts Options) *Component {
	c := &Component{
		rs:       rs,
		opts:     opts,
		parent:   parent,
		computed: map[string]*reactive.Watcher{},
	}
	if parent != nil {
		parent.children = append(parent.children, c)
	}
	c.initData()
	c.initComputed()
	c.initWatch()
	return c
}

func (c *Component) initData() {
	c.data = reactive.FromMap(c.opts.Data)
	c.rs.ObserveRoot(c.data)
}

// sortedKeys fixes watcher creation order, and so their ids, for options
// given as maps.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Component) initComputed() {
	for _, key := range sortedKeys(c.opts.Computed) {
		fn := c.opts.Computed[key]
		c.computed[key] = reactive.NewWatcher(c.rs, c, func() (any, error) {
			return fn(c)
		}, nil, reactive.WatcherOptions{Lazy: true, Expression: key})
	}
}

func (c *Component) initWatch() {
	for _, expr := range sortedKeys(c.opts.Watch) {
		h := c.opts.Watch[expr]
		_, err := c.Watch(expr, func(newValue, oldValue any) error {
			return h.Handler(c, newValue, oldValue)
		}, WatchOptions{Deep: h.Deep, Immediate: h.Immediate, Sync: h.Sync})
		if err != nil {
			c.rs.HandleError(err, c, fmt.Sprintf("watcher %q", expr))
		}
	}
}

func (c *Component) Name() string {
	return c.opts.Name
}

func (c *Component) Parent() *Component {
	return c.parent
}

func (c *Component) Children() []*Component {
	children := make([]*Component, len(c.children))
	copy(children, c.children)
	return children
}

func (c *Component) Data() *reactive.Object {
	return c.data
}

func (c *Component) VNode() any {
	return c.vnode
}

// Get reads a data key or a computed property.
func (c *Component) Get(key string) any {
	if w, ok := c.computed[key]; ok {
		if w.IsDirty() {
			w.Evaluate()
		}
		if c.rs.Target() != nil {
			w.Depend()
		}
		return w.Value()
	}
	return c.data.Get(key)
}

// Set writes a data key.
func (c *Component) Set(key string, value any) {
	c.data.Set(key, value)
}

func (c *Component) NextTick(fn func() error) <-chan struct{} {
	return c.rs.NextTick(c, fn)
}

func (c *Component) CallHook(hook string) {
	fn, ok := c.opts.Hooks[hook]
	if !ok || fn == nil {
		return
	}
	c.rs.PauseTracking()
	defer c.rs.ResumeTracking()
	c.invoke(func() error { return fn(c) }, hook+" hook")
}

func (c *Component) invoke(fn func() error, info string) {
	defer func() {
		if r := recover(); r != nil {
			c.rs.HandleError(fmt.Errorf("panic: %v", r), c, info)
		}
	}()
	if err := fn(); err != nil {
		c.rs.HandleError(err, c, info)
	}
}

func (c *Component) RenderWatcher() *reactive.Watcher {
	return c.renderWatcher
}

func (c *Component) IsMounted() bool {
	return c.isMounted
}

func (c *Component) IsDestroyed() bool {
	return c.isDestroyed
}

func (c *Component) IsInactive() bool {
	return c.inactive
}
