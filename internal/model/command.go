package model

import "strings"

// Command is one node of the normalized command tree
type Command struct {
	Name         string          `json:"name" yaml:"name"`
	Path         []string        `json:"path" yaml:"path"` // Full invocation path, e.g. ["git", "remote", "add"]
	Synopsis     string          `json:"synopsis,omitempty" yaml:"synopsis,omitempty"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Arguments    []TypedArgument `json:"arguments" yaml:"arguments"` // Flags first, then positionals, in text order
	Subcommands  []*Command      `json:"subcommands" yaml:"subcommands"`
	Depth        int             `json:"depth" yaml:"depth"`
	Completeness Completeness    `json:"completeness" yaml:"completeness"`
	ProbeError   string          `json:"probe_error,omitempty" yaml:"probe_error,omitempty"` // Set when help for this node could not be captured
}

// FullCommand returns the invocation path joined by spaces
func (c *Command) FullCommand() string {
	if len(c.Path) == 0 {
		return c.Name
	}
	return strings.Join(c.Path, " ")
}

// Flags returns the flag arguments in order
func (c *Command) Flags() []TypedArgument {
	var flags []TypedArgument
	for _, a := range c.Arguments {
		if a.Kind == ArgumentFlag {
			flags = append(flags, a)
		}
	}
	return flags
}

// Positionals returns the positional arguments in order
func (c *Command) Positionals() []TypedArgument {
	var pos []TypedArgument
	for _, a := range c.Arguments {
		if a.Kind == ArgumentPositional {
			pos = append(pos, a)
		}
	}
	return pos
}

// Flag finds a flag by any of its synonyms
func (c *Command) Flag(synonym string) (TypedArgument, bool) {
	for _, a := range c.Arguments {
		if a.Kind == ArgumentFlag && a.HasSynonym(synonym) {
			return a, true
		}
	}
	return TypedArgument{}, false
}

// Subcommand finds a direct child by name
func (c *Command) Subcommand(name string) *Command {
	for _, s := range c.Subcommands {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Walk visits the tree depth-first in order. Returning false skips the node's children.
func (c *Command) Walk(fn func(*Command) bool) {
	if !fn(c) {
		return
	}
	for _, s := range c.Subcommands {
		s.Walk(fn)
	}
}

// Completeness summarizes how much of a command's help text was understood
type Completeness struct {
	Score        float64  `json:"score" yaml:"score"`           // 0-1
	Confidence   string   `json:"confidence" yaml:"confidence"` // "low", "medium", "high"
	Grammar      int      `json:"grammar_lines" yaml:"grammar_lines"`
	Heuristic    int      `json:"heuristic_lines" yaml:"heuristic_lines"`
	Continuation int      `json:"continuation_lines" yaml:"continuation_lines"`
	Unparsed     int      `json:"unparsed_lines" yaml:"unparsed_lines"`
	Signals      []Signal `json:"signals,omitempty" yaml:"signals,omitempty"`
}

// Signal is a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType     `json:"type" yaml:"type"`
	Severity    SignalSeverity `json:"severity" yaml:"severity"`
	Description string         `json:"description" yaml:"description"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalGrammarCoverage SignalType = "grammar_coverage" // Share of lines matched by the grammar
	SignalHeuristicLines  SignalType = "heuristic_lines"  // Lines that fell through to heuristics
	SignalUnparsedLines   SignalType = "unparsed_lines"   // Lines nothing could place
	SignalAmbiguousTypes  SignalType = "ambiguous_types"  // Arguments left as complex
	SignalProbeFailure    SignalType = "probe_failure"    // Help could not be captured
	SignalCycleSkipped    SignalType = "cycle_skipped"    // Subcommand named like an ancestor
	SignalDepthLimited    SignalType = "depth_limited"    // Subcommands listed beyond max depth
	SignalNoHeaders       SignalType = "no_headers"       // Text had no recognizable sections
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// AddSignal appends a signal to the completeness record
func (c *Completeness) AddSignal(s Signal) {
	c.Signals = append(c.Signals, s)
}
