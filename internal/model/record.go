package model

// Arity is the number of values a flag consumes
type Arity string

const (
	ArityNone Arity = "none"
	ArityOne  Arity = "one"
	ArityMany Arity = "many"
)

// MatchSource records which stage produced a record
type MatchSource string

const (
	SourceGrammar   MatchSource = "grammar"   // Full match by the flag grammar
	SourceHeuristic MatchSource = "heuristic" // Fallback token heuristics
	SourceUsage     MatchSource = "usage"     // Extracted from a usage synopsis
)

// Confidence levels assigned by the parsing stages
const (
	ConfidenceHigh = 1.0
	ConfidenceLow  = 0.5
)

// FlagRecord is the parsed representation of one flag/option line
type FlagRecord struct {
	Synonyms      []string    // Literal tokens, e.g. "-f", "--foo"
	Arity         Arity       // Value arity
	Placeholder   string      // Raw value placeholder token, if any
	OptionalValue bool        // Placeholder was bracket-delimited ([=VALUE])
	Choices       []string    // Choices from a {a,b,c} placeholder
	Description   string      // Free text after the flag syntax
	Confidence    float64     // ConfidenceHigh or ConfidenceLow
	Source        MatchSource // grammar or heuristic
	Span          LineSpan    // Source lines (grows with continuation lines)
	Indent        int         // Indentation of the opening line
	DescColumn    int         // Column where the description started, 0 if unknown
}

// AppendDescription merges a wrapped continuation line into the description
func (r *FlagRecord) AppendDescription(text string, line int) {
	r.Description = joinText(r.Description, text)
	if line > r.Span.End {
		r.Span.End = line
	}
}

// PositionalRecord is the parsed representation of one positional argument
type PositionalRecord struct {
	Name        string
	Optional    bool
	Repeated    bool
	Description string
	Confidence  float64
	Source      MatchSource
	Span        LineSpan
	Indent      int
	DescColumn  int
}

// AppendDescription merges a wrapped continuation line into the description
func (r *PositionalRecord) AppendDescription(text string, line int) {
	r.Description = joinText(r.Description, text)
	if line > r.Span.End {
		r.Span.End = line
	}
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
