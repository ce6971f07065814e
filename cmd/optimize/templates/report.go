package templates

import (
	"strings"

	"github.com/delaneyj/turnsignal/compiler"
)

type ReportNode struct {
	Depth       int
	Tag         string
	Static      bool
	StaticRoot  bool
	StaticInFor bool
}

type Report struct {
	Source   string
	Elements int
	Static   int
	Roots    int
	InFor    int
	Nodes    []ReportNode
}

// NewReport collects the element annotations of an optimized tree.
func NewReport(source string, root *compiler.Node) *Report {
	r := &Report{Source: source}
	compiler.Walk(root, func(n *compiler.Node, depth int) bool {
		if n.Type != compiler.NodeElement {
			return true
		}
		r.Elements++
		if n.Static {
			r.Static++
		}
		if n.StaticRoot {
			r.Roots++
		}
		if n.StaticInFor {
			r.InFor++
		}
		r.Nodes = append(r.Nodes, ReportNode{
			Depth:       depth,
			Tag:         n.Tag,
			Static:      n.Static,
			StaticRoot:  n.StaticRoot,
			StaticInFor: n.StaticInFor,
		})
		return true
	})
	return r
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func flags(n ReportNode) string {
	var sb strings.Builder
	if n.Static {
		sb.WriteString(" static")
	}
	if n.StaticRoot {
		sb.WriteString(" root")
	}
	if n.StaticInFor {
		sb.WriteString(" in-for")
	}
	return sb.String()
}
