package grammar

import (
	"strings"

	"github.com/ppiankov/helpscan/internal/model"
)

// MatchOption matches a candidate line against the option-line rule.
// It returns false on a partial or failed match; the caller falls back to heuristics.
func (g *Grammar) MatchOption(line model.CandidateLine) (model.FlagRecord, bool) {
	m, ok := g.MatchFull(RuleOptionLine, line.Text)
	if !ok {
		return model.FlagRecord{}, false
	}

	rec := model.FlagRecord{
		Arity:      model.ArityNone,
		Confidence: model.ConfidenceHigh,
		Source:     model.SourceGrammar,
		Span:       line.Span,
		Indent:     line.Indent,
	}

	for _, c := range m.Captures {
		switch c.Name {
		case CapLong:
			rec.Synonyms = appendUnique(rec.Synonyms, expandNegatable(c.Text)...)
		case CapShort, CapSingle:
			rec.Synonyms = appendUnique(rec.Synonyms, c.Text)
		case CapPlaceholder:
			if rec.Placeholder == "" {
				rec.Placeholder = c.Text
			}
			if rec.Arity == model.ArityNone {
				rec.Arity = model.ArityOne
			}
		case CapOptional:
			rec.OptionalValue = true
		case CapChoices:
			if len(rec.Choices) == 0 {
				rec.Choices = splitChoices(c.Text)
			}
		case CapEllipsis:
			rec.Arity = model.ArityMany
		case CapDescription:
			rec.Description = strings.TrimSpace(c.Text)
			rec.DescColumn = model.Column(line.Text, c.Start)
		}
	}

	if len(rec.Synonyms) == 0 {
		return model.FlagRecord{}, false
	}
	return rec, true
}

// Entry is one line of a subcommand listing
type Entry struct {
	Name        string
	Aliases     []string
	Description string
	DescColumn  int
	Group       bool // Brace list header such as "{run,stop}"; carries no command
}

// MatchEntry matches a subcommand listing line.
func (g *Grammar) MatchEntry(line model.CandidateLine) (Entry, bool) {
	m, ok := g.MatchFull(RuleEntryLine, line.Text)
	if !ok {
		return Entry{}, false
	}
	var e Entry
	for _, c := range m.Captures {
		switch c.Name {
		case CapName:
			e.Name = c.Text
		case CapAlias:
			e.Aliases = append(e.Aliases, c.Text)
		case CapGroup:
			e.Group = true
		case CapDescription:
			e.Description = strings.TrimSpace(c.Text)
			e.DescColumn = model.Column(line.Text, c.Start)
		}
	}
	return e, true
}

// PositionalEntry is one line of a positional-argument listing; a line may
// name several arguments sharing one description.
type PositionalEntry struct {
	Records     []model.PositionalRecord
	Description string
	DescColumn  int
}

// MatchPositional matches a positional-argument listing line.
func (g *Grammar) MatchPositional(line model.CandidateLine) (PositionalEntry, bool) {
	m, ok := g.MatchFull(RulePosEntry, line.Text)
	if !ok {
		return PositionalEntry{}, false
	}
	var entry PositionalEntry
	for _, c := range m.Captures {
		switch c.Name {
		case CapName:
			name, optional, repeated := unwrapName(c.Text)
			entry.Records = append(entry.Records, model.PositionalRecord{
				Name:       name,
				Optional:   optional,
				Repeated:   repeated,
				Confidence: model.ConfidenceHigh,
				Source:     model.SourceGrammar,
				Span:       line.Span,
				Indent:     line.Indent,
			})
		case CapEllipsis:
			if n := len(entry.Records); n > 0 {
				entry.Records[n-1].Repeated = true
			}
		case CapDescription:
			entry.Description = strings.TrimSpace(c.Text)
			entry.DescColumn = model.Column(line.Text, c.Start)
		}
	}
	for i := range entry.Records {
		entry.Records[i].DescColumn = entry.DescColumn
	}
	return entry, len(entry.Records) > 0
}

// expandNegatable turns "--[no-]color" into "--color" and "--no-color".
func expandNegatable(long string) []string {
	if !strings.Contains(long, "[no-]") {
		return []string{long}
	}
	base := strings.Replace(long, "[no-]", "", 1)
	negated := strings.Replace(long, "[no-]", "no-", 1)
	return []string{base, negated}
}

// unwrapName strips <>, [] and a trailing ellipsis from an argument name.
func unwrapName(raw string) (name string, optional, repeated bool) {
	name, repeated = trimEllipsis(strings.TrimSpace(raw))
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		optional = true
		var inner bool
		name, inner = trimEllipsis(strings.TrimSpace(name[1 : len(name)-1]))
		repeated = repeated || inner
	}
	if strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">") {
		name = strings.TrimSpace(name[1 : len(name)-1])
	}
	return strings.TrimSpace(name), optional, repeated
}

func trimEllipsis(s string) (string, bool) {
	for _, suffix := range []string{"...", "…"} {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(s, suffix)), true
		}
	}
	return s, false
}

// splitChoices splits "a,b, c" or "a|b" into ordered, deduplicated choices.
func splitChoices(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '|' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = appendUnique(out, f)
		}
	}
	return out
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		seen := false
		for _, existing := range list {
			if existing == item {
				seen = true
				break
			}
		}
		if !seen {
			list = append(list, item)
		}
	}
	return list
}
