package grammar

import (
	"strings"

	"github.com/ppiankov/helpscan/internal/model"
)

// UsageToken is one token of a usage synopsis
type UsageToken struct {
	Kind     string // One of the Cap* token capture names
	Text     string
	Ellipsis bool
}

// genericPlaceholders stand for "any options" and never name a positional
var genericPlaceholders = map[string]bool{
	"OPTIONS": true, "OPTION": true, "FLAGS": true, "FLAG": true,
	"SWITCHES": true, "GLOBAL OPTIONS": true, "GLOBAL_OPTIONS": true,
	"options": true, "option": true, "flags": true, "global options": true,
}

// ScanUsage splits a synopsis into tokens.
func (g *Grammar) ScanUsage(synopsis string) []UsageToken {
	var tokens []UsageToken
	pos := 0
	for pos < len(synopsis) {
		m, ok := g.Match(RuleUsageToken, synopsis[pos:])
		if !ok || m.End == 0 {
			break
		}
		tok := UsageToken{}
		for _, c := range m.Captures {
			switch c.Name {
			case CapGroup, CapParen, CapFlag, CapAngle, CapUpper, CapWord:
				if tok.Kind == "" {
					tok.Kind = c.Name
					tok.Text = c.Text
				}
			case CapChoices:
				if tok.Kind == "" {
					tok.Kind = CapChoices
					tok.Text = c.Text
				}
			case CapEllipsis:
				tok.Ellipsis = true
			}
		}
		if tok.Kind != "" {
			tokens = append(tokens, tok)
		}
		pos += m.End
	}
	return tokens
}

// UsagePositionals extracts positional arguments from a synopsis.
// Bracketed names are optional, a trailing ellipsis marks repetition, option
// groups and generic OPTIONS placeholders are ignored, and a placeholder that
// directly follows a flag is taken as that flag's value.
func (g *Grammar) UsagePositionals(synopsis string, span model.LineSpan) []model.PositionalRecord {
	var out []model.PositionalRecord
	index := make(map[string]int)
	g.collectPositionals(synopsis, false, false, span, &out, index)
	return out
}

func (g *Grammar) collectPositionals(text string, optional, repeated bool, span model.LineSpan,
	out *[]model.PositionalRecord, index map[string]int) {

	add := func(name string, opt, rep bool) {
		name = strings.TrimSpace(name)
		if name == "" || genericPlaceholders[name] {
			return
		}
		if i, ok := index[name]; ok {
			// "[FILE [FILE ...]]" names the same argument twice
			if rep {
				(*out)[i].Repeated = true
			}
			return
		}
		index[name] = len(*out)
		*out = append(*out, model.PositionalRecord{
			Name:       name,
			Optional:   opt,
			Repeated:   rep,
			Confidence: model.ConfidenceHigh,
			Source:     model.SourceUsage,
			Span:       span,
		})
	}

	afterFlag := false
	for _, tok := range g.ScanUsage(text) {
		switch tok.Kind {
		case CapGroup:
			inner := strings.TrimSpace(tok.Text[1 : len(tok.Text)-1])
			afterFlag = false
			if inner == "" || strings.HasPrefix(inner, "-") {
				continue
			}
			if name, _ := trimEllipsis(inner); genericPlaceholders[name] {
				continue
			}
			g.collectPositionals(inner, true, repeated || tok.Ellipsis, span, out, index)
		case CapAngle, CapUpper:
			if afterFlag {
				afterFlag = false
				continue
			}
			name := tok.Text
			if tok.Kind == CapAngle {
				name = strings.TrimSpace(name[1 : len(name)-1])
			}
			add(name, optional, repeated || tok.Ellipsis)
		case CapFlag:
			// "-" (stdin) and "--" (end of options) take no value
			afterFlag = tok.Text != "-" && tok.Text != "--" && !strings.Contains(tok.Text, "=")
		default:
			afterFlag = false
		}
	}
}
