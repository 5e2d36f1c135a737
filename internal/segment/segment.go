// Package segment splits raw help text into labeled sections.
package segment

import (
	"strings"

	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
)

// vocabulary maps normalized header names to section kinds
var vocabulary = map[string]model.SectionKind{
	"usage":                 model.SectionUsage,
	"synopsis":              model.SectionUsage,
	"options":               model.SectionOptions,
	"option":                model.SectionOptions,
	"flags":                 model.SectionOptions,
	"global options":        model.SectionOptions,
	"global flags":          model.SectionOptions,
	"optional arguments":    model.SectionOptions,
	"named arguments":       model.SectionOptions,
	"positional arguments":  model.SectionArguments,
	"arguments":             model.SectionArguments,
	"args":                  model.SectionArguments,
	"parameters":            model.SectionArguments,
	"commands":              model.SectionSubcommands,
	"subcommands":           model.SectionSubcommands,
	"available commands":    model.SectionSubcommands,
	"available subcommands": model.SectionSubcommands,
	"description":           model.SectionDescription,
	"about":                 model.SectionDescription,
	"summary":               model.SectionDescription,
}

// Segmenter splits help text into sections
type Segmenter struct{}

// New creates a segmenter
func New() *Segmenter {
	return &Segmenter{}
}

// Header classifies a column-0 line as a section header. recognized reports
// whether the name belongs to the header vocabulary; a line ending in ':'
// outside the vocabulary is still a header, of kind Unknown. inline holds
// content following the colon ("Usage: tool [OPTIONS]").
func Header(text string) (kind model.SectionKind, inline string, recognized, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "-") {
		return "", "", false, false
	}

	name := trimmed
	endsWithColon := strings.HasSuffix(trimmed, ":")
	switch {
	case endsWithColon:
		name = strings.TrimSuffix(trimmed, ":")
	case strings.Contains(trimmed, ":"):
		i := strings.Index(trimmed, ":")
		name = trimmed[:i]
		inline = strings.TrimSpace(trimmed[i+1:])
	}

	if kind, recognized = classify(name, endsWithColon || inline != ""); recognized {
		return kind, inline, true, true
	}
	if endsWithColon {
		return model.SectionUnknown, "", false, true
	}
	return "", "", false, false
}

// classify maps a header name to a kind using the vocabulary. Names followed
// by a colon also match suffix rules such as "<word> options".
func classify(name string, colon bool) (model.SectionKind, bool) {
	norm := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if kind, ok := vocabulary[norm]; ok {
		return kind, true
	}
	if !colon {
		return "", false
	}

	words := strings.Fields(norm)
	if len(words) < 2 || len(words) > 10 {
		return "", false
	}
	for _, w := range words {
		// "These are common Git commands used in various situations"
		if w == "commands" || w == "subcommands" {
			return model.SectionSubcommands, true
		}
	}
	switch words[len(words)-1] {
	case "options", "flags":
		return model.SectionOptions, true
	case "arguments":
		if words[0] == "optional" {
			return model.SectionOptions, true
		}
		return model.SectionArguments, true
	}
	return "", false
}

// Segment splits raw.Text into ordered sections. Text without any recognized
// header becomes a single Unknown section.
func (s *Segmenter) Segment(raw model.RawHelpText) []model.Section {
	lines := SplitLines(raw.Text)

	recognized := 0
	for _, l := range lines {
		if l.Indent != 0 {
			continue
		}
		if _, _, known, ok := Header(l.Text); ok && known {
			recognized++
		}
	}

	if recognized == 0 {
		logging.Debug().Str("tool", raw.Tool).Int("lines", len(lines)).Msg("no section headers recognized")
		return []model.Section{newSection(model.SectionUnknown, "", lines, len(raw.Text))}
	}

	var (
		sections []model.Section
		current  *model.Section
	)
	flush := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}
	open := func(kind model.SectionKind, header string, start int) {
		flush()
		current = &model.Section{Kind: kind, Header: header, Start: start, End: start}
	}
	add := func(l model.Line) {
		current.Lines = append(current.Lines, l)
		current.End = l.Offset + len(l.Text)
	}

	for i, l := range lines {
		if l.Indent == 0 && !l.Blank() {
			if kind, inline, _, ok := Header(l.Text); ok {
				open(kind, strings.TrimSpace(l.Text), l.Offset)
				current.End = l.Offset + len(l.Text)
				if inline != "" {
					add(inlineLine(l, inline))
				}
				continue
			}
		}

		if current == nil {
			kind := model.SectionDescription
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(l.Text)), "usage:") {
				kind = model.SectionUsage
			}
			if l.Blank() {
				continue
			}
			open(kind, "", l.Offset)
			add(l)
			continue
		}

		if l.Indent == 0 && !l.Blank() && endsAtColumnZero(current.Kind) && !strings.HasPrefix(l.Text, "-") {
			if current.Kind == model.SectionSubcommands && nextIndented(lines, i) {
				// Group label inside a command listing, e.g. git's "start a working area"
				continue
			}
			open(model.SectionDescription, "", l.Offset)
		}

		add(l)
	}
	flush()

	logging.Debug().Str("tool", raw.Tool).Int("sections", len(sections)).Msg("segmented help text")
	return sections
}

// endsAtColumnZero reports whether an unindented prose line closes a section of kind
func endsAtColumnZero(kind model.SectionKind) bool {
	switch kind {
	case model.SectionUsage, model.SectionOptions, model.SectionArguments, model.SectionSubcommands:
		return true
	}
	return false
}

func nextIndented(lines []model.Line, i int) bool {
	for _, l := range lines[i+1:] {
		if l.Blank() {
			continue
		}
		return l.Indent > 0
	}
	return false
}

func newSection(kind model.SectionKind, header string, lines []model.Line, end int) model.Section {
	return model.Section{Kind: kind, Header: header, Start: 0, End: end, Lines: lines}
}

// inlineLine turns the content after a header's colon into a body line
func inlineLine(header model.Line, inline string) model.Line {
	idx := strings.Index(header.Text, inline)
	if idx < 0 {
		idx = 0
	}
	return model.Line{
		Number: header.Number,
		Offset: header.Offset + idx,
		Indent: model.Column(header.Text, idx),
		Text:   header.Text[idx:],
	}
}

// SplitLines splits text into lines, recording byte offsets and indentation.
// A trailing "\r" is dropped from each line.
func SplitLines(text string) []model.Line {
	var lines []model.Line
	offset := 0
	for n := 0; offset <= len(text); n++ {
		end := strings.IndexByte(text[offset:], '\n')
		next := len(text) + 1
		if end >= 0 {
			end += offset
			next = end + 1
		} else {
			end = len(text)
		}
		line := strings.TrimSuffix(text[offset:end], "\r")
		if end == len(text) && line == "" && n > 0 {
			break
		}
		lines = append(lines, model.Line{
			Number: n,
			Offset: offset,
			Indent: indentWidth(line),
			Text:   line,
		})
		offset = next
	}
	return lines
}

// indentWidth measures leading whitespace, with tabs advancing to the next multiple of 8
func indentWidth(line string) int {
	width := 0
	for _, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			return width
		}
	}
	return width
}
