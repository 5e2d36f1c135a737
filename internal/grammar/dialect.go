package grammar

import "sync"

// Dialect contributes one option-line syntax to the grammar
type Dialect interface {
	// Name returns the dialect name
	Name() string

	// Rule returns the name of the dialect's option-line rule
	Rule() string

	// Define adds the dialect's rules to g; shared base rules are already defined
	Define(g *Grammar)
}

// Registry manages option-line dialects in precedence order
type Registry struct {
	dialects []Dialect
}

// NewRegistry creates a registry holding the built-in dialects
func NewRegistry() *Registry {
	registry := &Registry{
		dialects: make([]Dialect, 0),
	}

	// Register built-in dialects; GNU first so it takes precedence
	registry.Register(GNUDialect{})
	registry.Register(GoDialect{})

	return registry
}

// Register appends a dialect with the lowest precedence
func (r *Registry) Register(d Dialect) {
	r.dialects = append(r.dialects, d)
}

// Dialects returns the registered dialects in precedence order
func (r *Registry) Dialects() []Dialect {
	return append([]Dialect(nil), r.dialects...)
}

// Build assembles a grammar from the base rules and every registered dialect
func (r *Registry) Build() *Grammar {
	g := New()
	defineBase(g)
	for _, d := range r.dialects {
		d.Define(g)
	}
	defineOptionLine(g, r.dialects)
	defineUsage(g)
	defineEntries(g)
	return g
}

var (
	defaultOnce    sync.Once
	defaultGrammar *Grammar
)

// Default returns the shared built-in grammar. It is read-only after construction.
func Default() *Grammar {
	defaultOnce.Do(func() {
		defaultGrammar = NewRegistry().Build()
	})
	return defaultGrammar
}

// GNUDialect covers getopt_long, argparse, click and cobra style option lines:
//
//	-f, --file=FILE   read input from FILE
type GNUDialect struct{}

func (GNUDialect) Name() string { return "gnu" }
func (GNUDialect) Rule() string { return "GNU_OPTION" }

func (d GNUDialect) Define(g *Grammar) {
	g.Define(d.Rule(), Seq(
		Star(Ref(RuleWS)),
		Ref(RuleSyn),
		Star(Seq(Ref(RuleSep), Ref(RuleSyn))),
		Ref(RuleTail),
	))
}

// GoDialect covers the output of Go's flag.PrintDefaults:
//
//	-timeout duration
//	    	request timeout
type GoDialect struct{}

func (GoDialect) Name() string { return "go" }
func (GoDialect) Rule() string { return "GO_OPTION" }

func (d GoDialect) Define(g *Grammar) {
	g.Define(d.Rule(), Seq(
		Star(Ref(RuleWS)),
		Cap(CapSingle, Seq(Lit("-"), Ref(RuleWord), Star(Seq(Lit("-"), Ref(RuleWord))))),
		Opt(Seq(Lit(" "), Cap(CapPlaceholder, Seq(In(ClassLower), Star(In(ClassAlnum)))))),
		Ref(RuleTail),
	))
}
