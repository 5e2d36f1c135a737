package model

import (
	"path/filepath"
	"strings"
)

// RawHelpText is the verbatim output captured from one help invocation
type RawHelpText struct {
	Tool string   `json:"tool" yaml:"tool"`                     // Executable name (e.g., "git")
	Path []string `json:"path" yaml:"path"`                     // Argument path used to obtain help (e.g., ["git", "remote"])
	Flag string   `json:"flag,omitempty" yaml:"flag,omitempty"` // Help flag that produced the text
	Text string   `json:"text" yaml:"text"`
}

// CommandName returns the last element of the path, or the tool name. A root
// given as a file path is named by its base name: /usr/bin/git is git.
func (r RawHelpText) CommandName() string {
	switch len(r.Path) {
	case 0:
		if r.Tool == "" {
			return ""
		}
		return filepath.Base(r.Tool)
	case 1:
		return filepath.Base(r.Path[0])
	}
	return r.Path[len(r.Path)-1]
}

// SectionKind classifies a region of help text
type SectionKind string

const (
	SectionUsage       SectionKind = "usage"
	SectionDescription SectionKind = "description"
	SectionOptions     SectionKind = "options"
	SectionArguments   SectionKind = "arguments" // Positional argument listings
	SectionSubcommands SectionKind = "subcommands"
	SectionUnknown     SectionKind = "unknown"
)

// Line is one physical line of help text
type Line struct {
	Number int    // 0-based line index
	Offset int    // Byte offset of the line start in the original text
	Indent int    // Leading whitespace width (tabs count as 8)
	Text   string // Line content without the trailing newline
}

// Blank reports whether the line holds only whitespace
func (l Line) Blank() bool {
	return strings.TrimSpace(l.Text) == ""
}

// Section is a labeled contiguous slice of a RawHelpText
type Section struct {
	Kind   SectionKind
	Header string // Header line text, empty for implicit sections
	Start  int    // Byte offset of the first line
	End    int    // Byte offset just past the last line
	Lines  []Line // Body lines (the header line is excluded unless it carries inline content)
}

// LineSpan is an inclusive range of line numbers
type LineSpan struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// CandidateLine is one line within an Options, Arguments or Subcommands section
type CandidateLine struct {
	Text   string
	Kind   SectionKind
	Indent int
	Span   LineSpan
}

// Span is a sub-range of a description, as returned by a sentence segmenter
type Span struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

// Column returns the display column of a byte offset within a line, expanding tabs to 8
func Column(text string, offset int) int {
	col := 0
	for i, r := range text {
		if i >= offset {
			break
		}
		if r == '\t' {
			col += 8 - col%8
			continue
		}
		col++
	}
	return col
}
