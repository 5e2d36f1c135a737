// Package grammar implements the declarative flag-syntax grammar.
//
// A grammar is a tree of tagged Node values (literal, character class,
// sequence, ordered choice, optional, repetition, capture, lookahead and rule
// reference) interpreted by a small PEG engine. Ordered choice gives
// deterministic precedence: the first alternative that matches wins and is
// never revisited.
package grammar

// Kind tags the variant of a Node
type Kind int

const (
	KindLiteral  Kind = iota // Exact text
	KindClass                // One rune from a character class
	KindSequence             // All children in order
	KindChoice               // First matching child
	KindOptional             // Child or nothing
	KindRepeat               // Child between Min and Max times (Max 0 = unbounded)
	KindCapture              // Child, recording the matched text under Name
	KindNot                  // Negative lookahead, consumes nothing
	KindAnd                  // Positive lookahead, consumes nothing
	KindRef                  // Reference to a named rule
	KindAny                  // Any single rune
	KindEnd                  // End of input
)

var kindNames = map[Kind]string{
	KindLiteral:  "literal",
	KindClass:    "class",
	KindSequence: "sequence",
	KindChoice:   "choice",
	KindOptional: "optional",
	KindRepeat:   "repeat",
	KindCapture:  "capture",
	KindNot:      "not",
	KindAnd:      "and",
	KindRef:      "ref",
	KindAny:      "any",
	KindEnd:      "end",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node is one element of a grammar tree
type Node struct {
	Kind     Kind
	Name     string // Capture name or referenced rule name
	Literal  string
	Fold     bool // Case-insensitive literal
	Class    *CharClass
	Children []*Node
	Min      int
	Max      int
}

// Lit matches text exactly.
func Lit(text string) *Node {
	return &Node{Kind: KindLiteral, Literal: text}
}

// LitFold matches text ignoring ASCII case.
func LitFold(text string) *Node {
	return &Node{Kind: KindLiteral, Literal: text, Fold: true}
}

// In matches one rune from the class.
func In(class *CharClass) *Node {
	return &Node{Kind: KindClass, Class: class}
}

// Seq matches all nodes in order.
func Seq(nodes ...*Node) *Node {
	return &Node{Kind: KindSequence, Children: nodes}
}

// Choice matches the first node that succeeds.
func Choice(nodes ...*Node) *Node {
	return &Node{Kind: KindChoice, Children: nodes}
}

// Opt matches node zero or one time.
func Opt(node *Node) *Node {
	return &Node{Kind: KindOptional, Children: []*Node{node}}
}

// Star matches node zero or more times.
func Star(node *Node) *Node {
	return Repeat(node, 0, 0)
}

// Plus matches node one or more times.
func Plus(node *Node) *Node {
	return Repeat(node, 1, 0)
}

// Repeat matches node between min and max times; max 0 means unbounded.
func Repeat(node *Node, min, max int) *Node {
	return &Node{Kind: KindRepeat, Children: []*Node{node}, Min: min, Max: max}
}

// Cap records the text matched by node under name.
func Cap(name string, node *Node) *Node {
	return &Node{Kind: KindCapture, Name: name, Children: []*Node{node}}
}

// Not succeeds when node does not match, consuming nothing.
func Not(node *Node) *Node {
	return &Node{Kind: KindNot, Children: []*Node{node}}
}

// And succeeds when node matches, consuming nothing.
func And(node *Node) *Node {
	return &Node{Kind: KindAnd, Children: []*Node{node}}
}

// Ref refers to a named rule of the enclosing Grammar.
func Ref(rule string) *Node {
	return &Node{Kind: KindRef, Name: rule}
}

// Any matches a single rune.
func Any() *Node {
	return &Node{Kind: KindAny}
}

// End matches only at the end of input.
func End() *Node {
	return &Node{Kind: KindEnd}
}

// Until matches one or more runes up to (not including) stop.
func Until(stop *Node) *Node {
	return Plus(Seq(Not(stop), Any()))
}
