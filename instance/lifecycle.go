package instance

import (
	"fmt"
	"strings"

	"github.com/delaneyj/turnsignal/reactive"
)

// Mount creates the render watcher, which renders once right away and then
// again whenever anything it read changes.
func (c *Component) Mount() *Component {
	if c.renderWatcher != nil || c.isDestroyed {
		return c
	}
	c.CallHook(HookBeforeMount)
	c.renderWatcher = reactive.NewWatcher(c.rs, c, c.updateComponent, nil, reactive.WatcherOptions{
		Expression: c.opts.Name,
		Before: func() {
			if c.isMounted && !c.isDestroyed {
				c.CallHook(HookBeforeUpdate)
			}
		},
	})
	c.isMounted = true
	c.CallHook(HookMounted)
	return c
}

func (c *Component) updateComponent() (any, error) {
	vnode := c.render()
	prev := c.vnode
	c.vnode = vnode
	if c.opts.Patch != nil {
		c.opts.Patch(c, prev, vnode)
	}
	return vnode, nil
}

// render runs the render function. On failure it falls back to RenderError,
// then to the previous vnode so an error never blanks the component.
func (c *Component) render() (vnode any) {
	if c.opts.Render == nil {
		return nil
	}
	var err error
	vnode, err = c.safeRender(func() (any, error) { return c.opts.Render(c) })
	if err == nil {
		return vnode
	}
	c.rs.HandleError(err, c, "render")

	if c.opts.RenderError != nil {
		vnode, err = c.safeRender(func() (any, error) { return c.opts.RenderError(c, err) })
		if err == nil {
			return vnode
		}
		c.rs.HandleError(err, c, "renderError")
	}
	return c.vnode
}

func (c *Component) safeRender(fn func() (any, error)) (vnode any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// ForceUpdate queues a re-render even though no dependency changed.
func (c *Component) ForceUpdate() {
	if c.renderWatcher != nil {
		c.renderWatcher.Update()
	}
}

type WatchOptions struct {
	Deep      bool
	Immediate bool
	Sync      bool
}

// Watch observes a dotted data path such as "user.name". The returned func
// stops watching.
func (c *Component) Watch(expr string, cb reactive.Callback, opts WatchOptions) (func(), error) {
	if _, err := reactive.ParsePath(expr); err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	head, rest, nested := strings.Cut(expr, ".")
	var tail func(root any) any
	if nested {
		tail, _ = reactive.ParsePath(rest)
	}
	getter := func() (any, error) {
		v := c.Get(head)
		if tail == nil {
			return v, nil
		}
		return tail(v), nil
	}
	return c.watch(expr, getter, cb, opts), nil
}

// WatchFunc observes whatever fn reads.
func (c *Component) WatchFunc(expr string, fn func(c *Component) (any, error), cb reactive.Callback, opts WatchOptions) func() {
	return c.watch(expr, func() (any, error) { return fn(c) }, cb, opts)
}

func (c *Component) watch(expr string, getter reactive.Getter, cb reactive.Callback, opts WatchOptions) func() {
	w := reactive.NewWatcher(c.rs, c, getter, cb, reactive.WatcherOptions{
		User:       true,
		Deep:       opts.Deep,
		Sync:       opts.Sync,
		Expression: expr,
	})
	c.watchers = append(c.watchers, w)
	if opts.Immediate {
		value := w.Value()
		c.rs.PauseTracking()
		c.invoke(func() error { return cb(value, nil) }, fmt.Sprintf("callback for immediate watcher %q", expr))
		c.rs.ResumeTracking()
	}
	return w.Teardown
}

// Destroy tears down every watcher owned by c and its children, children
// first being destroyed after c's beforeDestroy hook.
func (c *Component) Destroy() {
	if c.isBeingDestroyed {
		return
	}
	c.CallHook(HookBeforeDestroy)
	c.isBeingDestroyed = true

	if p := c.parent; p != nil && !p.isBeingDestroyed {
		p.removeChild(c)
	}
	for i := len(c.children) - 1; i >= 0; i-- {
		c.children[i].Destroy()
	}
	c.children = nil

	if c.renderWatcher != nil {
		c.renderWatcher.Teardown()
	}
	for _, w := range c.computed {
		w.Teardown()
	}
	for _, w := range c.watchers {
		w.Teardown()
	}
	if ob := c.data.Observer(); ob != nil {
		ob.Release()
	}
	c.isDestroyed = true
	c.CallHook(HookDestroyed)
}

func (c *Component) removeChild(child *Component) {
	for i, ch := range c.children {
		if ch == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

func (c *Component) SetInactive(inactive bool) {
	c.inactive = inactive
}

func (c *Component) isInInactiveTree() bool {
	for p := c.parent; p != nil; p = p.parent {
		if p.inactive {
			return true
		}
	}
	return false
}

// ActivateChild reactivates c and its subtree, calling activated hooks.
func (c *Component) ActivateChild(direct bool) {
	if direct {
		c.directInactive = false
		if c.isInInactiveTree() {
			return
		}
	} else if c.directInactive {
		return
	}
	if c.inactive {
		c.inactive = false
		for _, child := range c.children {
			child.ActivateChild(false)
		}
		c.CallHook(HookActivated)
	}
}

// Deactivate detaches a kept-alive component without destroying it.
func (c *Component) Deactivate(direct bool) {
	if direct {
		c.directInactive = true
		if c.isInInactiveTree() {
			return
		}
	}
	if !c.inactive {
		c.inactive = true
		for _, child := range c.children {
			child.Deactivate(false)
		}
		c.CallHook(HookDeactivated)
	}
}

// Activate reattaches a deactivated component. While a flush is patching the
// tree the activated hooks are deferred until it is done.
func (c *Component) Activate() {
	if s := c.rs.Scheduler(); s.IsFlushing() {
		s.EnqueueActivatedComponent(c)
		return
	}
	c.ActivateChild(true)
}
