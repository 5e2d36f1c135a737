package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

// Definition is the serializable form of a grammar node
type Definition struct {
	Kind     string       `json:"kind" yaml:"kind"`
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	Literal  string       `json:"literal,omitempty" yaml:"literal,omitempty"`
	Fold     bool         `json:"fold,omitempty" yaml:"fold,omitempty"`
	Class    string       `json:"class,omitempty" yaml:"class,omitempty"`
	Min      int          `json:"min,omitempty" yaml:"min,omitempty"`
	Max      int          `json:"max,omitempty" yaml:"max,omitempty"`
	Children []Definition `json:"children,omitempty" yaml:"children,omitempty"`
}

// RuleDefinition is one exported named rule
type RuleDefinition struct {
	Name string     `json:"name" yaml:"name"`
	Root Definition `json:"root" yaml:"root"`
}

// Export returns every rule of g as a serializable tree, in definition order.
// Consumers such as railroad-diagram renderers read this instead of the engine.
func Export(g *Grammar) []RuleDefinition {
	out := make([]RuleDefinition, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, RuleDefinition{Name: name, Root: exportNode(g.rules[name])})
	}
	return out
}

func exportNode(n *Node) Definition {
	d := Definition{
		Kind:    n.Kind.String(),
		Name:    n.Name,
		Literal: n.Literal,
		Fold:    n.Fold,
		Min:     n.Min,
		Max:     n.Max,
	}
	if n.Class != nil {
		d.Class = n.Class.Label
	}
	for _, child := range n.Children {
		d.Children = append(d.Children, exportNode(child))
	}
	return d
}

// EBNF renders g as one "NAME = expression ;" line per rule.
func EBNF(g *Grammar) string {
	var b strings.Builder
	for _, name := range g.order {
		fmt.Fprintf(&b, "%s = %s ;\n", name, ebnf(g.rules[name], false))
	}
	return b.String()
}

func ebnf(n *Node, nested bool) string {
	switch n.Kind {
	case KindLiteral:
		lit := strconv.Quote(n.Literal)
		if n.Fold {
			lit += "i"
		}
		return lit
	case KindClass:
		return n.Class.Label
	case KindAny:
		return "."
	case KindEnd:
		return "EOL"
	case KindRef:
		return n.Name
	case KindSequence:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, ebnf(child, true))
		}
		return group(strings.Join(parts, " "), nested && len(parts) > 1)
	case KindChoice:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			parts = append(parts, ebnf(child, false))
		}
		return group(strings.Join(parts, " / "), nested && len(parts) > 1)
	case KindOptional:
		return atom(n.Children[0]) + "?"
	case KindRepeat:
		inner := atom(n.Children[0])
		switch {
		case n.Min == 0 && n.Max == 0:
			return inner + "*"
		case n.Min == 1 && n.Max == 0:
			return inner + "+"
		case n.Max == 0:
			return fmt.Sprintf("%s{%d,}", inner, n.Min)
		default:
			return fmt.Sprintf("%s{%d,%d}", inner, n.Min, n.Max)
		}
	case KindCapture:
		return n.Name + ":" + atom(n.Children[0])
	case KindNot:
		return "!" + atom(n.Children[0])
	case KindAnd:
		return "&" + atom(n.Children[0])
	}
	return "?"
}

// atom renders n so a postfix or prefix operator binds to all of it.
func atom(n *Node) string {
	s := ebnf(n, false)
	if (n.Kind == KindSequence || n.Kind == KindChoice) && len(n.Children) > 1 {
		return "(" + s + ")"
	}
	return s
}

func group(s string, wrap bool) string {
	if wrap {
		return "(" + s + ")"
	}
	return s
}
