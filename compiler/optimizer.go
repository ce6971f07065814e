package compiler

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"
)

// baseStaticKeys are the structural keys an element may carry and still be
// static.
const baseStaticKeys = "type,tag,attrsList,attrsMap,plain,parent,children,attrs,start,end,rawAttrsMap"

type Options struct {
	// StaticKeys is a comma separated list of extra keys allowed on static
	// elements, such as "staticClass,staticStyle".
	StaticKeys string
	// IsReservedTag reports platform elements. Nil treats every tag as a
	// component, so no element is static.
	IsReservedTag func(tag string) bool
}

var staticKeysCache = struct {
	sync.Mutex
	m map[uint64]mapset.Set[string]
}{m: map[uint64]mapset.Set[string]{}}

func genStaticKeysCached(keys string) mapset.Set[string] {
	h := xxhash.Sum64String(keys)

	staticKeysCache.Lock()
	defer staticKeysCache.Unlock()
	if set, ok := staticKeysCache.m[h]; ok {
		return set
	}
	set := genStaticKeys(keys)
	staticKeysCache.m[h] = set
	return set
}

func genStaticKeys(keys string) mapset.Set[string] {
	set := makeSet(baseStaticKeys)
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			set.Add(k)
		}
	}
	return set
}

type optimizer struct {
	staticKeys    mapset.Set[string]
	isReservedTag func(tag string) bool
}

// Optimize walks the AST and marks static sub-trees, i.e. parts of the DOM
// that never need to change. Renderers can then hoist them into constants
// and skip them entirely when patching.
//
// The tree is only annotated: Static on every visited node, StaticRoot and
// StaticInFor on elements. A nil root is a no-op.
func Optimize(root *Node, opts Options) {
	if root == nil {
		return
	}
	o := &optimizer{
		staticKeys:    genStaticKeysCached(opts.StaticKeys),
		isReservedTag: opts.IsReservedTag,
	}
	if o.isReservedTag == nil {
		o.isReservedTag = func(string) bool { return false }
	}
	// first pass: mark all non-static nodes
	o.markStatic(root)
	// second pass: mark static roots
	o.markStaticRoots(root, false)
}

func (o *optimizer) markStatic(n *Node) {
	n.Static = o.isStatic(n)
	if n.Type != NodeElement {
		return
	}
	// do not make component slot content static, components must be able
	// to mutate slot nodes and hot reloading needs them fresh
	if !o.isReservedTag(n.Tag) && n.Tag != "slot" && !n.HasAttr("inline-template") {
		return
	}
	for _, child := range n.Children {
		o.markStatic(child)
		if !child.Static {
			n.Static = false
		}
	}
	for i := 1; i < len(n.IfConditions); i++ {
		block := n.IfConditions[i].Block
		if block == nil {
			continue
		}
		o.markStatic(block)
		if !block.Static {
			n.Static = false
		}
	}
}

func (o *optimizer) markStaticRoots(n *Node, isInFor bool) {
	if n.Type != NodeElement {
		return
	}
	if n.Static || n.Once {
		n.StaticInFor = isInFor
	}
	// A static root needs children that are not just one static text node,
	// otherwise hoisting costs more than rendering it fresh.
	if n.Static && len(n.Children) > 0 && !(len(n.Children) == 1 && n.Children[0].Type == NodeText) {
		n.StaticRoot = true
		return
	}
	n.StaticRoot = false

	for _, child := range n.Children {
		o.markStaticRoots(child, isInFor || n.For != "")
	}
	for i := 1; i < len(n.IfConditions); i++ {
		if block := n.IfConditions[i].Block; block != nil {
			o.markStaticRoots(block, isInFor)
		}
	}
}

func (o *optimizer) isStatic(n *Node) bool {
	switch n.Type {
	case NodeExpression:
		return false
	case NodeText:
		return true
	}
	if n.Pre {
		return true
	}
	if n.Volatile || n.HasBindings || n.If != "" || n.For != "" {
		return false
	}
	if isBuiltInTag(n.Tag) || !o.isReservedTag(n.Tag) {
		return false
	}
	if isDirectChildOfTemplateFor(n) {
		return false
	}
	for _, k := range n.OwnKeys() {
		if !o.staticKeys.Contains(k) {
			return false
		}
	}
	return true
}

// isDirectChildOfTemplateFor walks up through template wrappers looking for
// one carrying v-for.
func isDirectChildOfTemplateFor(n *Node) bool {
	for n.Parent != nil {
		n = n.Parent
		if n.Tag != "template" {
			return false
		}
		if n.For != "" {
			return true
		}
	}
	return false
}
