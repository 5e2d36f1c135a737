package extract

import (
	"strings"

	"github.com/ppiankov/helpscan/internal/model"
)

// token is a whitespace-delimited word with its byte offsets
type token struct {
	text       string
	start, end int
}

func tokenize(line string) []token {
	var tokens []token
	start := -1
	for i := 0; i <= len(line); i++ {
		space := i == len(line) || line[i] == ' ' || line[i] == '\t'
		switch {
		case space && start >= 0:
			tokens = append(tokens, token{text: line[start:i], start: start, end: i})
			start = -1
		case !space && start < 0:
			start = i
		}
	}
	return tokens
}

// IsFlagLike reports whether a line opens with a flag token such as "-x" or "--foo"
func IsFlagLike(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	return isFlagToken(fields[0])
}

func isFlagToken(tok string) bool {
	tok = strings.TrimRight(tok, ",;")
	return len(tok) >= 2 && tok[0] == '-' && tok != "--" && tok[1] != ' '
}

// ParseFlag applies loose token rules to a line the grammar rejected. Leading
// tokens starting with '-' are synonyms; the next token is the placeholder
// unless a wide gap (two or more columns) separates it from the flags, in
// which case it starts the description.
func ParseFlag(line model.CandidateLine) (model.FlagRecord, bool) {
	tokens := tokenize(line.Text)

	rec := model.FlagRecord{
		Arity:      model.ArityNone,
		Confidence: model.ConfidenceLow,
		Source:     model.SourceHeuristic,
		Span:       line.Span,
		Indent:     line.Indent,
	}

	i := 0
	lastEnd := 0
	for ; i < len(tokens); i++ {
		tok := tokens[i].text
		if tok == "|" || tok == "/" || tok == "," {
			lastEnd = tokens[i].end
			continue
		}
		if !isFlagToken(tok) {
			break
		}
		for _, part := range strings.Split(strings.TrimRight(tok, ",;"), ",") {
			name, value, hasValue := strings.Cut(part, "=")
			if !isFlagToken(name) {
				continue
			}
			rec.Synonyms = appendUnique(rec.Synonyms, name)
			if hasValue && value != "" && rec.Placeholder == "" {
				rec.Placeholder = value
			}
		}
		lastEnd = tokens[i].end
	}

	if len(rec.Synonyms) == 0 {
		return model.FlagRecord{}, false
	}

	if i < len(tokens) && rec.Placeholder == "" && gapWidth(line.Text, lastEnd, tokens[i].start) < 2 {
		rec.Placeholder = strings.TrimRight(tokens[i].text, ",;")
		i++
	}

	if rec.Placeholder != "" {
		rec.Arity = model.ArityOne
		if strings.HasSuffix(rec.Placeholder, "...") || strings.HasSuffix(rec.Placeholder, "…") {
			rec.Arity = model.ArityMany
		}
		if strings.HasPrefix(rec.Placeholder, "[") && strings.HasSuffix(rec.Placeholder, "]") {
			rec.OptionalValue = true
		}
	}

	if i < len(tokens) {
		rec.Description = strings.TrimSpace(line.Text[tokens[i].start:])
		rec.DescColumn = model.Column(line.Text, tokens[i].start)
	}
	return rec, true
}

// ParsePositional reads "NAME  description" from an argument listing line the
// grammar rejected.
func ParsePositional(line model.CandidateLine) (model.PositionalRecord, bool) {
	tokens := tokenize(line.Text)
	if len(tokens) == 0 || isFlagToken(tokens[0].text) {
		return model.PositionalRecord{}, false
	}

	name := strings.TrimRight(tokens[0].text, ",:")
	rec := model.PositionalRecord{
		Confidence: model.ConfidenceLow,
		Source:     model.SourceHeuristic,
		Span:       line.Span,
		Indent:     line.Indent,
	}
	name, rec.Repeated = trimEllipsis(name)
	if strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]") {
		rec.Optional = true
		var repeated bool
		name, repeated = trimEllipsis(name[1 : len(name)-1])
		rec.Repeated = rec.Repeated || repeated
	}
	rec.Name = strings.Trim(name, "<>")
	if rec.Name == "" {
		return model.PositionalRecord{}, false
	}

	if len(tokens) > 1 {
		rec.Description = strings.TrimSpace(line.Text[tokens[1].start:])
		rec.DescColumn = model.Column(line.Text, tokens[1].start)
	}
	return rec, true
}

// ParseEntry reads "name  description" from a subcommand listing line the
// grammar rejected. The name must be a single word separated from the
// description by a wide gap; aliases after a comma are dropped.
func ParseEntry(line model.CandidateLine) (name, description string, descColumn int, ok bool) {
	tokens := tokenize(line.Text)
	if len(tokens) == 0 || isFlagToken(tokens[0].text) {
		return "", "", 0, false
	}
	name = strings.TrimRight(tokens[0].text, ",:")
	if name == "" || strings.ContainsAny(name, "<>[]{}()=") {
		return "", "", 0, false
	}
	i := 1
	for i < len(tokens) && strings.HasSuffix(tokens[i-1].text, ",") {
		i++
	}
	if i < len(tokens) {
		// A single space means the line is prose, not "name  description"
		if gapWidth(line.Text, tokens[i-1].end, tokens[i].start) < 2 {
			return "", "", 0, false
		}
		description = strings.TrimSpace(line.Text[tokens[i].start:])
		descColumn = model.Column(line.Text, tokens[i].start)
	}
	return name, description, descColumn, true
}

// Continues reports whether line continues the previous record's description:
// it has no flag token, or it sits at or past the record's description column.
func Continues(line model.CandidateLine, prevDescColumn int) bool {
	if strings.TrimSpace(line.Text) == "" {
		return false
	}
	if prevDescColumn > 0 && line.Indent >= prevDescColumn {
		return true
	}
	return !IsFlagLike(line.Text)
}

func trimEllipsis(s string) (string, bool) {
	for _, suffix := range []string{"...", "…"} {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSuffix(s, suffix), true
		}
	}
	return s, false
}

func gapWidth(line string, from, to int) int {
	if to <= from {
		return 0
	}
	return model.Column(line, to) - model.Column(line, from)
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
