package compiler

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

type NodeType int

const (
	NodeElement    NodeType = 1
	NodeExpression NodeType = 2
	NodeText       NodeType = 3
)

func (t NodeType) String() string {
	switch t {
	case NodeElement:
		return "element"
	case NodeExpression:
		return "expression"
	case NodeText:
		return "text"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

type Attr struct {
	Name    string `yaml:"name"`
	Value   string `yaml:"value"`
	Dynamic bool   `yaml:"dynamic,omitempty"`
}

// IfCondition is one branch of a v-if chain. The first branch's Block is
// the element carrying the chain itself.
type IfCondition struct {
	Exp   string `yaml:"exp,omitempty"`
	Block *Node  `yaml:"block,omitempty"`
}

// Node is a template AST node as produced by the parser. The optimizer
// only writes Static, StaticRoot and StaticInFor.
type Node struct {
	Type NodeType `yaml:"type"`
	Tag  string   `yaml:"tag,omitempty"`

	AttrsList   []Attr            `yaml:"attrsList,omitempty"`
	AttrsMap    map[string]string `yaml:"attrsMap,omitempty"`
	RawAttrsMap map[string]Attr   `yaml:"rawAttrsMap,omitempty"`
	Attrs       []Attr            `yaml:"attrs,omitempty"`
	Plain       bool              `yaml:"plain,omitempty"`
	Children    []*Node           `yaml:"children,omitempty"`
	Start       int               `yaml:"start,omitempty"`
	End         int               `yaml:"end,omitempty"`

	// text and expression nodes
	Text       string `yaml:"text,omitempty"`
	Expression string `yaml:"expression,omitempty"`

	HasBindings  bool          `yaml:"hasBindings,omitempty"`
	If           string        `yaml:"if,omitempty"`
	ElseIf       string        `yaml:"elseif,omitempty"`
	Else         bool          `yaml:"else,omitempty"`
	IfConditions []IfCondition `yaml:"ifConditions,omitempty"`
	For          string        `yaml:"for,omitempty"`
	Once         bool          `yaml:"once,omitempty"`
	Pre          bool          `yaml:"pre,omitempty"`
	// Volatile forces the element to be re-evaluated on every render.
	Volatile bool `yaml:"volatile,omitempty"`

	Static      bool `yaml:"static,omitempty"`
	StaticRoot  bool `yaml:"staticRoot,omitempty"`
	StaticInFor bool `yaml:"staticInFor,omitempty"`

	// Fields holds every other key the parser attached (key, ref, events,
	// staticClass, ...).
	Fields map[string]any `yaml:",inline"`

	// Parent is a non-owning back reference, only used for ancestor lookups.
	Parent *Node `yaml:"-"`
}

// OwnKeys lists the keys the parser set on n, in the parser's naming.
// Optimizer annotations are not included.
func (n *Node) OwnKeys() []string {
	keys := []string{"type"}
	add := func(key string, present bool) {
		if present {
			keys = append(keys, key)
		}
	}
	add("tag", n.Tag != "")
	add("attrsList", n.AttrsList != nil)
	add("attrsMap", n.AttrsMap != nil)
	add("rawAttrsMap", n.RawAttrsMap != nil)
	add("attrs", n.Attrs != nil)
	add("plain", n.Type == NodeElement)
	add("parent", n.Parent != nil)
	add("children", n.Type == NodeElement)
	add("start", n.Start != 0)
	add("end", n.End != 0)
	add("text", n.Text != "")
	add("expression", n.Expression != "")
	add("hasBindings", n.HasBindings)
	add("if", n.If != "")
	add("elseif", n.ElseIf != "")
	add("else", n.Else)
	add("ifConditions", n.IfConditions != nil)
	add("for", n.For != "")
	add("once", n.Once)
	add("pre", n.Pre)
	add("volatile", n.Volatile)

	extra := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// HasAttr reports whether the raw attribute name is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.AttrsMap[name]
	return ok
}

type nodeYAML Node

// MarshalYAML drops the self reference held by the first if-condition.
func (n *Node) MarshalYAML() (any, error) {
	out := nodeYAML(*n)
	if len(n.IfConditions) > 0 && n.IfConditions[0].Block == n {
		conds := make([]IfCondition, len(n.IfConditions))
		copy(conds, n.IfConditions)
		conds[0].Block = nil
		out.IfConditions = conds
	}
	return out, nil
}

// Link restores the references a decoded tree cannot carry: every Parent
// and the self block of each if-condition chain. Else branches share the
// parent of the element owning the chain.
func Link(root *Node) {
	link(root, nil)
}

func link(n *Node, parent *Node) {
	if n == nil {
		return
	}
	n.Parent = parent
	for _, child := range n.Children {
		link(child, n)
	}
	for i := range n.IfConditions {
		if i == 0 {
			if n.IfConditions[0].Block == nil {
				n.IfConditions[0].Block = n
			}
			continue
		}
		link(n.IfConditions[i].Block, parent)
	}
}

// Decode reads a YAML document holding a single root node and links it.
func Decode(r io.Reader) (*Node, error) {
	root := &Node{}
	if err := yaml.NewDecoder(r).Decode(root); err != nil {
		return nil, fmt.Errorf("decode ast: %w", err)
	}
	Link(root)
	return root, nil
}

func Encode(w io.Writer, root *Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("encode ast: %w", err)
	}
	return enc.Close()
}

// Walk visits n and every node below it, children first then else
// branches, in document order. Returning false skips the subtree.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(n *Node, depth int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		walk(child, depth+1, fn)
	}
	for i := 1; i < len(n.IfConditions); i++ {
		walk(n.IfConditions[i].Block, depth, fn)
	}
}
