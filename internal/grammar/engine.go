package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxRefDepth bounds rule recursion so a left-recursive rule fails instead of
// overflowing the stack
const maxRefDepth = 256

// Capture is a named span of matched input
type Capture struct {
	Name  string
	Text  string
	Start int // Byte offset into the matched input
	End   int
}

// Match is the result of a successful match
type Match struct {
	End      int       // Byte offset where the match stopped
	Captures []Capture // In document order, outer before inner
}

// Get returns the first capture with the given name.
func (m Match) Get(name string) (Capture, bool) {
	for _, c := range m.Captures {
		if c.Name == name {
			return c, true
		}
	}
	return Capture{}, false
}

// All returns every capture with the given name.
func (m Match) All(name string) []Capture {
	var out []Capture
	for _, c := range m.Captures {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Grammar is a set of named rules
type Grammar struct {
	rules map[string]*Node
	order []string
}

// New creates an empty grammar.
func New() *Grammar {
	return &Grammar{rules: make(map[string]*Node)}
}

// Define adds or replaces a named rule.
func (g *Grammar) Define(name string, node *Node) {
	if _, exists := g.rules[name]; !exists {
		g.order = append(g.order, name)
	}
	g.rules[name] = node
}

// Rule returns a named rule.
func (g *Grammar) Rule(name string) (*Node, bool) {
	node, ok := g.rules[name]
	return node, ok
}

// Names returns rule names in definition order.
func (g *Grammar) Names() []string {
	return append([]string(nil), g.order...)
}

// Check verifies every reference resolves to a defined rule.
func (g *Grammar) Check() error {
	for _, name := range g.order {
		if err := g.checkNode(name, g.rules[name]); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grammar) checkNode(rule string, n *Node) error {
	if n == nil {
		return fmt.Errorf("rule %q: nil node", rule)
	}
	if n.Kind == KindRef {
		if _, ok := g.rules[n.Name]; !ok {
			return fmt.Errorf("rule %q: undefined reference %q", rule, n.Name)
		}
	}
	if n.Kind == KindClass && n.Class == nil {
		return fmt.Errorf("rule %q: class node without class", rule)
	}
	for _, child := range n.Children {
		if err := g.checkNode(rule, child); err != nil {
			return err
		}
	}
	return nil
}

// Match matches the named rule against a prefix of input.
func (g *Grammar) Match(rule, input string) (Match, bool) {
	node, ok := g.rules[rule]
	if !ok {
		return Match{}, false
	}
	return g.MatchNode(node, input)
}

// MatchFull matches the named rule against the whole of input.
func (g *Grammar) MatchFull(rule, input string) (Match, bool) {
	m, ok := g.Match(rule, input)
	if !ok || m.End != len(input) {
		return Match{}, false
	}
	return m, true
}

// MatchNode matches an arbitrary node against a prefix of input.
func (g *Grammar) MatchNode(node *Node, input string) (Match, bool) {
	s := &state{g: g, input: input}
	end, ok := s.match(node, 0)
	if !ok {
		return Match{}, false
	}
	return Match{End: end, Captures: s.caps}, true
}

type state struct {
	g     *Grammar
	input string
	caps  []Capture
	depth int
}

func (s *state) match(n *Node, pos int) (int, bool) {
	switch n.Kind {
	case KindLiteral:
		end := pos + len(n.Literal)
		if end > len(s.input) {
			return pos, false
		}
		got := s.input[pos:end]
		if got == n.Literal || (n.Fold && strings.EqualFold(got, n.Literal)) {
			return end, true
		}
		return pos, false

	case KindClass:
		if pos >= len(s.input) {
			return pos, false
		}
		r, size := utf8.DecodeRuneInString(s.input[pos:])
		if n.Class.Contains(r) {
			return pos + size, true
		}
		return pos, false

	case KindAny:
		if pos >= len(s.input) {
			return pos, false
		}
		_, size := utf8.DecodeRuneInString(s.input[pos:])
		return pos + size, true

	case KindEnd:
		return pos, pos == len(s.input)

	case KindSequence:
		mark := len(s.caps)
		p := pos
		for _, child := range n.Children {
			next, ok := s.match(child, p)
			if !ok {
				s.caps = s.caps[:mark]
				return pos, false
			}
			p = next
		}
		return p, true

	case KindChoice:
		mark := len(s.caps)
		for _, child := range n.Children {
			if next, ok := s.match(child, pos); ok {
				return next, true
			}
			s.caps = s.caps[:mark]
		}
		return pos, false

	case KindOptional:
		mark := len(s.caps)
		if next, ok := s.match(n.Children[0], pos); ok {
			return next, true
		}
		s.caps = s.caps[:mark]
		return pos, true

	case KindRepeat:
		start := len(s.caps)
		p := pos
		count := 0
		for n.Max == 0 || count < n.Max {
			mark := len(s.caps)
			next, ok := s.match(n.Children[0], p)
			if !ok {
				s.caps = s.caps[:mark]
				break
			}
			if next == p {
				// Empty iteration; stop to avoid looping forever
				break
			}
			p = next
			count++
		}
		if count < n.Min {
			s.caps = s.caps[:start]
			return pos, false
		}
		return p, true

	case KindCapture:
		mark := len(s.caps)
		next, ok := s.match(n.Children[0], pos)
		if !ok {
			return pos, false
		}
		c := Capture{Name: n.Name, Text: s.input[pos:next], Start: pos, End: next}
		s.caps = append(s.caps, Capture{})
		copy(s.caps[mark+1:], s.caps[mark:])
		s.caps[mark] = c
		return next, true

	case KindNot, KindAnd:
		mark := len(s.caps)
		_, ok := s.match(n.Children[0], pos)
		s.caps = s.caps[:mark]
		if n.Kind == KindNot {
			ok = !ok
		}
		return pos, ok

	case KindRef:
		rule, ok := s.g.rules[n.Name]
		if !ok || s.depth >= maxRefDepth {
			return pos, false
		}
		s.depth++
		next, matched := s.match(rule, pos)
		s.depth--
		return next, matched
	}
	return pos, false
}
