package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchNode_Primitives(t *testing.T) {
	g := New()
	tests := []struct {
		name    string
		node    *Node
		input   string
		wantEnd int
		wantOK  bool
	}{
		{"literal", Lit("ab"), "abc", 2, true},
		{"literal mismatch", Lit("ab"), "ac", 0, false},
		{"literal fold", LitFold("usage"), "USAGE:", 5, true},
		{"class", In(ClassUpper), "Q", 1, true},
		{"class miss", In(ClassUpper), "q", 0, false},
		{"negated class", In(ClassUpper.Negated()), "q", 1, true},
		{"any multibyte", Any(), "…x", 3, true},
		{"end", End(), "", 0, true},
		{"end not reached", End(), "x", 0, false},
		{"ordered choice", Choice(Lit("a"), Lit("ab")), "ab", 1, true},
		{"greedy star", Star(Lit("a")), "aaab", 3, true},
		{"plus needs one", Plus(Lit("a")), "b", 0, false},
		{"bounded repeat", Repeat(Lit("a"), 2, 3), "aaaa", 3, true},
		{"bounded repeat too few", Repeat(Lit("a"), 2, 3), "ab", 0, false},
		{"optional absent", Opt(Lit("x")), "y", 0, true},
		{"not", Seq(Not(Lit("-")), Any()), "a", 1, true},
		{"not blocks", Seq(Not(Lit("-")), Any()), "-", 0, false},
		{"and consumes nothing", And(Lit("ab")), "ab", 0, true},
		{"until", Until(Lit(">")), "abc>", 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := g.MatchNode(tt.node, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantEnd, m.End)
			}
		})
	}
}

func TestMatchNode_CapturesInDocumentOrder(t *testing.T) {
	g := New()
	node := Cap("outer", Seq(Cap("inner", Lit("a")), Cap("tail", Lit("b"))))

	m, ok := g.MatchNode(node, "ab")
	require.True(t, ok)
	require.Len(t, m.Captures, 3)
	assert.Equal(t, Capture{Name: "outer", Text: "ab", Start: 0, End: 2}, m.Captures[0])
	assert.Equal(t, "inner", m.Captures[1].Name)
	assert.Equal(t, "tail", m.Captures[2].Name)
}

func TestMatchNode_FailedAlternativeDropsCaptures(t *testing.T) {
	g := New()
	node := Choice(
		Seq(Cap("x", Lit("a")), Lit("z")),
		Cap("y", Lit("ab")),
	)

	m, ok := g.MatchNode(node, "ab")
	require.True(t, ok)
	require.Len(t, m.Captures, 1)
	assert.Equal(t, "y", m.Captures[0].Name)

	_, found := m.Get("x")
	assert.False(t, found)
}

func TestMatch_RefsAndRecursion(t *testing.T) {
	g := New()
	g.Define("PAREN", Seq(Lit("("), Star(Choice(Ref("PAREN"), Seq(Not(Lit(")")), Any()))), Lit(")")))

	m, ok := g.MatchFull("PAREN", "(a(b)c)")
	require.True(t, ok)
	assert.Equal(t, 7, m.End)

	_, ok = g.MatchFull("PAREN", "(a(b)c")
	assert.False(t, ok)

	_, ok = g.Match("MISSING", "x")
	assert.False(t, ok)
}

func TestMatch_LeftRecursionFails(t *testing.T) {
	g := New()
	g.Define("L", Seq(Ref("L"), Lit("a")))

	_, ok := g.Match("L", "aaa")
	assert.False(t, ok)
}

func TestCheck(t *testing.T) {
	g := New()
	g.Define("A", Seq(Lit("x"), Ref("B")))
	assert.Error(t, g.Check())

	g.Define("B", Lit("y"))
	assert.NoError(t, g.Check())
	assert.Equal(t, []string{"A", "B"}, g.Names())

	require.NoError(t, Default().Check())
}
