package model

import "strings"

// TypeKind is the canonical type taxonomy for arguments
type TypeKind string

const (
	TypeFlag    TypeKind = "flag"    // Boolean switch, no value
	TypeString  TypeKind = "string"  // Value with no recognized pattern
	TypeInteger TypeKind = "integer" // Whole number
	TypeFloat   TypeKind = "float"   // Decimal number
	TypePath    TypeKind = "path"    // File or directory
	TypeEnum    TypeKind = "enum"    // One of a fixed set of choices
	TypeComplex TypeKind = "complex" // Irreducible (conflicting or absent signals)
)

// Path kinds
const (
	PathFile = "file"
	PathDir  = "dir"
)

// Type is an inferred canonical type
type Type struct {
	Kind     TypeKind `json:"kind" yaml:"kind"`
	Choices  []string `json:"choices,omitempty" yaml:"choices,omitempty"`     // Enum choices, ordered and deduplicated
	PathKind string   `json:"path_kind,omitempty" yaml:"path_kind,omitempty"` // file or dir, for TypePath
}

// String renders the type compactly, e.g. "enum(json|yaml)"
func (t Type) String() string {
	switch {
	case t.Kind == TypeEnum && len(t.Choices) > 0:
		return "enum(" + strings.Join(t.Choices, "|") + ")"
	case t.Kind == TypePath && t.PathKind != "":
		return "path(" + t.PathKind + ")"
	default:
		return string(t.Kind)
	}
}

// ArgumentKind distinguishes flags from positionals
type ArgumentKind string

const (
	ArgumentFlag       ArgumentKind = "flag"
	ArgumentPositional ArgumentKind = "positional"
)

// TypedArgument is a flag or positional record augmented with its inferred type
type TypedArgument struct {
	Kind          ArgumentKind `json:"kind" yaml:"kind"`
	Name          string       `json:"name" yaml:"name"` // Variable name (snake_case), unique within the command
	Synonyms      []string     `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	Placeholder   string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Arity         Arity        `json:"arity" yaml:"arity"`
	OptionalValue bool         `json:"optional_value,omitempty" yaml:"optional_value,omitempty"`
	Repeated      bool         `json:"repeated,omitempty" yaml:"repeated,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Sentences     []Span       `json:"sentences,omitempty" yaml:"sentences,omitempty"`
	Type          Type         `json:"type" yaml:"type"`
	Default       *string      `json:"default,omitempty" yaml:"default,omitempty"`
	Required      bool         `json:"required" yaml:"required"`
	Confidence    float64      `json:"confidence" yaml:"confidence"`
	Source        MatchSource  `json:"source" yaml:"source"`
	Ambiguity     string       `json:"ambiguity,omitempty" yaml:"ambiguity,omitempty"` // Why the type stayed complex
	Span          LineSpan     `json:"span" yaml:"span"`
}

// LongestSynonym returns the longest synonym, preferring the first on ties
func (a TypedArgument) LongestSynonym() string {
	longest := ""
	for _, s := range a.Synonyms {
		if len(s) > len(longest) {
			longest = s
		}
	}
	return longest
}

// HasSynonym reports whether the argument is reachable by the given literal
func (a TypedArgument) HasSynonym(s string) bool {
	for _, syn := range a.Synonyms {
		if syn == s {
			return true
		}
	}
	return false
}
