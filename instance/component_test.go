package instance_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/delaneyj/turnsignal/instance"
	"github.com/delaneyj/turnsignal/reactive"
	"github.com/delaneyj/turnsignal/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reported struct {
	err  error
	vm   reactive.Instance
	info string
}

type recorder struct {
	errs []reported
}

func (r *recorder) onError(err error, vm reactive.Instance, info string) {
	r.errs = append(r.errs, reported{err: err, vm: vm, info: info})
}

func newRuntime(t *testing.T) (*reactive.ReactiveSystem, *tick.Loop, *recorder) {
	t.Helper()
	loop := tick.NewLoop()
	rec := &recorder{}
	return reactive.CreateReactiveSystem(loop, rec.onError), loop, rec
}

func hookLogger(log *[]string, name string, hooks ...string) map[string]func(c *instance.Component) error {
	m := map[string]func(c *instance.Component) error{}
	for _, hook := range hooks {
		hook := hook
		m[hook] = func(c *instance.Component) error {
			*log = append(*log, name+" "+hook)
			return nil
		}
	}
	return m
}

// mounting renders once, writes re-render on the next tick with update hooks
func TestMountAndUpdate(t *testing.T) {
	rs, loop, rec := newRuntime(t)
	log := []string{}

	var patches [][2]any
	c := instance.New(rs, nil, instance.Options{
		Name: "hello",
		Data: map[string]any{"msg": "hi"},
		Render: func(c *instance.Component) (any, error) {
			log = append(log, "render")
			return fmt.Sprintf("<p>%v</p>", c.Get("msg")), nil
		},
		Patch: func(c *instance.Component, oldVNode, vnode any) {
			patches = append(patches, [2]any{oldVNode, vnode})
		},
		Hooks: hookLogger(&log, "hello",
			instance.HookBeforeMount, instance.HookMounted,
			instance.HookBeforeUpdate, instance.HookUpdated),
	}).Mount()

	assert.True(t, c.IsMounted())
	assert.Equal(t, "<p>hi</p>", c.VNode())
	assert.Equal(t, []string{"hello beforeMount", "render", "hello mounted"}, log)

	log = log[:0]
	c.Set("msg", "bye")
	c.Set("msg", "ciao")
	assert.Equal(t, "<p>hi</p>", c.VNode())
	loop.Drain()

	assert.Equal(t, "<p>ciao</p>", c.VNode())
	assert.Equal(t, []string{"hello beforeUpdate", "render", "hello updated"}, log)
	assert.Equal(t, [][2]any{{nil, "<p>hi</p>"}, {"<p>hi</p>", "<p>ciao</p>"}}, patches)
	assert.Empty(t, rec.errs)

	// mounting twice is a no-op
	c.Mount()
	assert.Len(t, patches, 2)
}

// ForceUpdate re-renders without any dependency change
func TestForceUpdate(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	renders := 0
	c := instance.New(rs, nil, instance.Options{
		Render: func(c *instance.Component) (any, error) {
			renders++
			return renders, nil
		},
	}).Mount()

	c.ForceUpdate()
	c.ForceUpdate()
	loop.Drain()
	assert.Equal(t, 2, renders)
	assert.Equal(t, 2, c.VNode())
}

// computed properties are cached until a dependency changes
func TestComputed(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	evals := 0
	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"n": 1},
		Computed: map[string]func(c *instance.Component) (any, error){
			"double": func(c *instance.Component) (any, error) {
				evals++
				return c.Get("n").(int) * 2, nil
			},
		},
		Render: func(c *instance.Component) (any, error) {
			return fmt.Sprintf("%v/%v", c.Get("double"), c.Get("double")), nil
		},
	})
	assert.Equal(t, 0, evals)

	c.Mount()
	assert.Equal(t, "2/2", c.VNode())
	assert.Equal(t, 1, evals)
	assert.Equal(t, 2, c.Get("double"))
	assert.Equal(t, 1, evals)

	c.Set("n", 5)
	loop.Drain()
	assert.Equal(t, "10/10", c.VNode())
	assert.Equal(t, 2, evals)
}

// watch handlers receive new and old values for dotted paths
func TestWatchOption(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	type call struct{ newValue, oldValue any }
	calls := []call{}

	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"user": map[string]any{"name": "ada"}},
		Watch: map[string]instance.WatchHandler{
			"user.name": {Handler: func(c *instance.Component, newValue, oldValue any) error {
				calls = append(calls, call{newValue, oldValue})
				return nil
			}},
		},
	})

	user := c.Get("user").(*reactive.Object)
	user.Set("name", "grace")
	loop.Drain()
	assert.Equal(t, []call{{"grace", "ada"}}, calls)

	// replacing the parent object is seen through the path
	c.Set("user", reactive.NewObject().Put("name", "linus"))
	loop.Drain()
	assert.Equal(t, []call{{"grace", "ada"}, {"linus", "grace"}}, calls)
}

// immediate handlers run on creation with no old value
func TestWatchImmediate(t *testing.T) {
	rs, _, rec := newRuntime(t)
	calls := [][2]any{}
	instance.New(rs, nil, instance.Options{
		Data: map[string]any{"n": 1},
		Watch: map[string]instance.WatchHandler{
			"n": {Immediate: true, Handler: func(c *instance.Component, newValue, oldValue any) error {
				calls = append(calls, [2]any{newValue, oldValue})
				return errors.New("immediate failed")
			}},
		},
	})
	assert.Equal(t, [][2]any{{1, nil}}, calls)
	require.Len(t, rec.errs, 1)
	assert.Equal(t, `callback for immediate watcher "n"`, rec.errs[0].info)
}

// deep watchers see nested mutation, Watch returns a stop func
func TestWatchDeepAndStop(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"todos": []any{map[string]any{"done": false}}},
	})

	calls := 0
	stop, err := c.Watch("todos", func(_, _ any) error {
		calls++
		return nil
	}, instance.WatchOptions{Deep: true})
	require.NoError(t, err)

	todo := c.Get("todos").(*reactive.Array).At(0).(*reactive.Object)
	todo.Set("done", true)
	loop.Drain()
	assert.Equal(t, 1, calls)

	stop()
	todo.Set("done", false)
	loop.Drain()
	assert.Equal(t, 1, calls)
}

// watching a computed property goes through its cached value
func TestWatchComputed(t *testing.T) {
	rs, _, _ := newRuntime(t)
	rs.Configure(reactive.Config{Async: false})
	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"first": "ada", "last": "lovelace"},
		Computed: map[string]func(c *instance.Component) (any, error){
			"full": func(c *instance.Component) (any, error) {
				return fmt.Sprintf("%v %v", c.Get("first"), c.Get("last")), nil
			},
		},
	})

	seen := []any{}
	_, err := c.Watch("full", func(newValue, _ any) error {
		seen = append(seen, newValue)
		return nil
	}, instance.WatchOptions{})
	require.NoError(t, err)

	c.Set("last", "byron")
	assert.Equal(t, []any{"ada byron"}, seen)
}

// bad expressions are rejected, and reported when they come from options
func TestWatchInvalidExpression(t *testing.T) {
	rs, _, rec := newRuntime(t)
	c := instance.New(rs, nil, instance.Options{
		Watch: map[string]instance.WatchHandler{
			"a-b": {Handler: func(c *instance.Component, _, _ any) error { return nil }},
		},
	})
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0].err, reactive.ErrInvalidPath)
	assert.Equal(t, `watcher "a-b"`, rec.errs[0].info)
	assert.Same(t, c, rec.errs[0].vm)

	_, err := c.Watch("a..b", func(_, _ any) error { return nil }, instance.WatchOptions{})
	assert.ErrorIs(t, err, reactive.ErrInvalidPath)
}

// failing renders fall back to RenderError, then to the previous vnode
func TestRenderErrorFallback(t *testing.T) {
	rs, loop, rec := newRuntime(t)
	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"n": 1},
		Render: func(c *instance.Component) (any, error) {
			n := c.Get("n").(int)
			switch {
			case n < 0:
				return nil, fmt.Errorf("negative %d", n)
			case n == 0:
				panic("zero")
			}
			return n, nil
		},
		RenderError: func(c *instance.Component, err error) (any, error) {
			if c.Get("n").(int) < -1 {
				return nil, errors.New("fallback failed")
			}
			return "error: " + err.Error(), nil
		},
	}).Mount()
	assert.Equal(t, 1, c.VNode())

	c.Set("n", -1)
	loop.Drain()
	assert.Equal(t, "error: negative -1", c.VNode())
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "render", rec.errs[0].info)
	assert.Same(t, c, rec.errs[0].vm)

	c.Set("n", -2)
	loop.Drain()
	assert.Equal(t, "error: negative -1", c.VNode())
	require.Len(t, rec.errs, 3)
	assert.Equal(t, "renderError", rec.errs[2].info)

	c.Set("n", 0)
	loop.Drain()
	assert.EqualError(t, rec.errs[3].err, "panic: zero")

	// dependencies survive the failures
	c.Set("n", 7)
	loop.Drain()
	assert.Equal(t, 7, c.VNode())
}

// parents re-render before children, user watchers before render watchers
func TestUpdateOrder(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	log := []string{}

	parent := instance.New(rs, nil, instance.Options{
		Name: "parent",
		Data: map[string]any{"n": 0},
		Watch: map[string]instance.WatchHandler{
			"n": {Handler: func(c *instance.Component, _, _ any) error {
				log = append(log, "parent watch")
				return nil
			}},
		},
		Render: func(c *instance.Component) (any, error) {
			log = append(log, "parent render")
			return c.Get("n"), nil
		},
	})
	child := instance.New(rs, parent, instance.Options{
		Name: "child",
		Render: func(c *instance.Component) (any, error) {
			log = append(log, "child render")
			return c.Parent().Get("n"), nil
		},
	})
	parent.Mount()
	child.Mount()

	log = log[:0]
	parent.Set("n", 1)
	loop.Drain()
	assert.Equal(t, []string{"parent watch", "parent render", "child render"}, log)
}

// updated hooks run child first once the whole tree has been patched
func TestUpdatedHookOrder(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	log := []string{}
	render := func(c *instance.Component) (any, error) {
		return c.Data().Get("n"), nil
	}
	shared := map[string]any{"n": 0}
	parent := instance.New(rs, nil, instance.Options{
		Data:   shared,
		Render: render,
		Hooks:  hookLogger(&log, "parent", instance.HookBeforeUpdate, instance.HookUpdated),
	}).Mount()
	child := instance.New(rs, parent, instance.Options{
		Render: func(c *instance.Component) (any, error) {
			return c.Parent().Get("n"), nil
		},
		Hooks: hookLogger(&log, "child", instance.HookBeforeUpdate, instance.HookUpdated),
	}).Mount()
	require.NotNil(t, child.RenderWatcher())

	parent.Set("n", 1)
	loop.Drain()
	assert.Equal(t, []string{
		"parent beforeUpdate", "child beforeUpdate",
		"child updated", "parent updated",
	}, log)
}

// destroying tears down every watcher and children, last child first
func TestDestroy(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	log := []string{}
	hooks := []string{instance.HookBeforeDestroy, instance.HookDestroyed}

	renders := 0
	watched := 0
	parent := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"n": 0},
		Watch: map[string]instance.WatchHandler{
			"n": {Handler: func(c *instance.Component, _, _ any) error {
				watched++
				return nil
			}},
		},
		Render: func(c *instance.Component) (any, error) {
			renders++
			return c.Get("n"), nil
		},
		Hooks: hookLogger(&log, "parent", hooks...),
	}).Mount()
	one := instance.New(rs, parent, instance.Options{Hooks: hookLogger(&log, "one", hooks...)})
	two := instance.New(rs, parent, instance.Options{Hooks: hookLogger(&log, "two", hooks...)})
	three := instance.New(rs, parent, instance.Options{Hooks: hookLogger(&log, "three", hooks...)})

	two.Destroy()
	assert.Equal(t, []*instance.Component{one, three}, parent.Children())
	assert.True(t, two.IsDestroyed())

	log = log[:0]
	parent.Set("n", 1)
	parent.Destroy()
	parent.Destroy()
	loop.Drain()

	assert.Equal(t, []string{
		"parent beforeDestroy",
		"three beforeDestroy", "three destroyed",
		"one beforeDestroy", "one destroyed",
		"parent destroyed",
	}, log)
	assert.Equal(t, 1, renders)
	assert.Equal(t, 0, watched)
	assert.Empty(t, parent.Children())
	assert.False(t, parent.RenderWatcher().IsActive())
	assert.Equal(t, 0, parent.Data().Observer().VMCount())
	assert.Empty(t, parent.Data().Property("n").Dep().Subscribers())
}

// keep-alive: deactivating and reactivating a subtree calls hooks children first
func TestKeepAlive(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	log := []string{}
	hooks := []string{instance.HookActivated, instance.HookDeactivated}

	root := instance.New(rs, nil, instance.Options{Data: map[string]any{"show": true}})
	cached := instance.New(rs, root, instance.Options{Hooks: hookLogger(&log, "cached", hooks...)})
	inner := instance.New(rs, cached, instance.Options{Hooks: hookLogger(&log, "inner", hooks...)})

	cached.Deactivate(true)
	assert.True(t, cached.IsInactive())
	assert.True(t, inner.IsInactive())
	assert.Equal(t, []string{"inner deactivated", "cached deactivated"}, log)

	log = log[:0]
	cached.Activate()
	assert.False(t, cached.IsInactive())
	assert.Equal(t, []string{"inner activated", "cached activated"}, log)

	// activation during a flush is deferred until the flush is done
	cached.Deactivate(true)
	log = log[:0]
	_, err := root.Watch("show", func(newValue, _ any) error {
		log = append(log, "watcher")
		if newValue.(bool) {
			cached.Activate()
			log = append(log, "after activate")
		}
		return nil
	}, instance.WatchOptions{})
	require.NoError(t, err)

	root.Set("show", false)
	loop.Drain()
	root.Set("show", true)
	loop.Drain()
	assert.Equal(t, []string{
		"watcher",
		"watcher", "after activate",
		"inner activated", "cached activated",
	}, log)
	assert.False(t, cached.IsInactive())
}

// a directly deactivated child stays inactive when its parent is reactivated
func TestKeepAliveDirectInactive(t *testing.T) {
	rs, _, _ := newRuntime(t)
	log := []string{}
	hooks := []string{instance.HookActivated, instance.HookDeactivated}

	outer := instance.New(rs, nil, instance.Options{Hooks: hookLogger(&log, "outer", hooks...)})
	inner := instance.New(rs, outer, instance.Options{Hooks: hookLogger(&log, "inner", hooks...)})

	inner.Deactivate(true)
	outer.Deactivate(true)
	outer.Activate()

	assert.False(t, outer.IsInactive())
	assert.True(t, inner.IsInactive())
	assert.Equal(t, []string{"inner deactivated", "outer deactivated", "outer activated"}, log)
}

// NextTick callbacks run after the pending re-render
func TestComponentNextTick(t *testing.T) {
	rs, loop, rec := newRuntime(t)
	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"msg": "a"},
		Render: func(c *instance.Component) (any, error) {
			return c.Get("msg"), nil
		},
	}).Mount()

	var seen any
	c.Set("msg", "b")
	done := c.NextTick(func() error {
		seen = c.VNode()
		return errors.New("tick failed")
	})

	select {
	case <-done:
		t.Fatal("callback ran synchronously")
	default:
	}
	loop.Drain()
	<-done

	assert.Equal(t, "b", seen)
	require.Len(t, rec.errs, 1)
	assert.Equal(t, "nextTick", rec.errs[0].info)
	assert.Same(t, c, rec.errs[0].vm)
}

// hook failures are reported and do not stop the lifecycle
func TestHookErrors(t *testing.T) {
	rs, _, rec := newRuntime(t)
	c := instance.New(rs, nil, instance.Options{
		Hooks: map[string]func(c *instance.Component) error{
			instance.HookBeforeMount: func(c *instance.Component) error {
				return errors.New("before mount failed")
			},
			instance.HookMounted: func(c *instance.Component) error {
				panic("mounted panicked")
			},
		},
	}).Mount()

	assert.True(t, c.IsMounted())
	require.Len(t, rec.errs, 2)
	assert.Equal(t, "beforeMount hook", rec.errs[0].info)
	assert.Equal(t, "mounted hook", rec.errs[1].info)
	assert.EqualError(t, rec.errs[1].err, "panic: mounted panicked")
}

// reads inside hooks are not tracked by the active watcher
func TestHooksDoNotTrack(t *testing.T) {
	rs, loop, _ := newRuntime(t)
	renders := 0
	c := instance.New(rs, nil, instance.Options{
		Data: map[string]any{"n": 0, "other": 0},
		Render: func(c *instance.Component) (any, error) {
			renders++
			return c.Get("n"), nil
		},
		Hooks: map[string]func(c *instance.Component) error{
			instance.HookBeforeUpdate: func(c *instance.Component) error {
				c.Get("other")
				return nil
			},
		},
	}).Mount()

	c.Set("n", 1)
	loop.Drain()
	c.Set("other", 1)
	loop.Drain()
	assert.Equal(t, 2, renders)
}

// watch options run in key order whatever the map iteration order
func TestWatchOptionOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		rs, loop, _ := newRuntime(t)
		order := ""
		handler := func(name string) instance.WatchHandler {
			return instance.WatchHandler{Handler: func(c *instance.Component, _, _ any) error {
				order += name
				return nil
			}}
		}
		c := instance.New(rs, nil, instance.Options{
			Data: map[string]any{"a": 0, "b": 0, "c": 0},
			Watch: map[string]instance.WatchHandler{
				"c": handler("c"),
				"a": handler("a"),
				"b": handler("b"),
			},
		})

		c.Set("c", 1)
		c.Set("b", 1)
		c.Set("a", 1)
		loop.Drain()
		require.Equal(t, "abc", order)
	}
}
