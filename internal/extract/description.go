// Package extract recovers records and hints from help-text lines that the
// grammar could not fully explain, and mines descriptions for type hints.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/helpscan/internal/model"
)

// DescriptionSegmenter splits a description into sentence spans
type DescriptionSegmenter interface {
	SegmentDescription(text string) []model.Span
}

// Hints are the facts mined from one description. The description itself is
// never modified.
type Hints struct {
	Sentences  []model.Span
	TypeTokens []string // Capitalized or bracketed tokens, e.g. "INT", "<path>"
	Choices    []string // Ordered, deduplicated enum choices
	Default    *string
	Required   *bool // nil when the text says nothing
}

// Extractor mines descriptions using a sentence segmenter
type Extractor struct {
	segmenter DescriptionSegmenter
}

// NewExtractor creates an extractor backed by segmenter
func NewExtractor(segmenter DescriptionSegmenter) *Extractor {
	return &Extractor{segmenter: segmenter}
}

var (
	enumPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bone of[:]?\s+([^;)\]\n]+)`),
		regexp.MustCompile(`(?i)\bchoices?(?:\s+are)?\s*[:=]\s*([^;)\]\n]+)`),
		regexp.MustCompile(`(?i)\bpossible values?(?:\s+are)?\s*[:=]?\s*([^;)\]\n]+)`),
		regexp.MustCompile(`(?i)\b(?:valid|allowed|supported|accepted) values?(?:\s+are)?\s*[:=]?\s*([^;)\]\n]+)`),
		regexp.MustCompile(`(?i)\beither\s+(\S+\s+or\s+\S+)`),
	}
	bracePattern = regexp.MustCompile(`\{([^{}\s]+(?:,\s*[^{}\s,]+)+)\}`)

	defaultPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\[default\s*[:=]?\s*([^\]]+)\]`),
		regexp.MustCompile(`(?i)\(default\s*[:=]?\s*([^)]+)\)`),
		regexp.MustCompile(`(?i)\bdefaults?\s+to\s+("[^"]*"|'[^']*'|\S+)`),
		regexp.MustCompile(`(?i)\bdefault(?:\s+value)?(?:\s+is)?\s*[:=]\s*("[^"]*"|'[^']*'|\S+)`),
		regexp.MustCompile(`(?i)\bdefault\s+is\s+("[^"]*"|'[^']*'|\S+)`),
	}

	optionalPattern = regexp.MustCompile(`(?i)\b(?:optional|not required|optionally)\b`)
	requiredPattern = regexp.MustCompile(`(?i)\b(?:required|mandatory|must be (?:given|specified|provided))\b`)

	listSeparator  = regexp.MustCompile(`\s*,\s*(?:or\s+|and\s+)?|\s+or\s+|\s+and\s+|\s*\|\s*|\s*/\s*`)
	typeTokenUpper = regexp.MustCompile(`\b[A-Z][A-Z0-9_]+\b`)
	typeTokenAngle = regexp.MustCompile(`<[^<>\s][^<>]*>`)
	typeTokenSmall = regexp.MustCompile(`\[[a-z][a-z0-9_]*\]`)
	conjunctions   = regexp.MustCompile(`\s*,\s*(?:and|or)\s+|\s*,\s*|\s+and\s+|\s+or\s+`)
)

// Analyze mines one description for sentences, type tokens, enum choices,
// default value and required/optional phrasing.
func (e *Extractor) Analyze(description string) Hints {
	var h Hints
	text := strings.TrimSpace(description)
	if text == "" {
		return h
	}

	if e.segmenter != nil {
		h.Sentences = e.segmenter.SegmentDescription(text)
	}
	h.Choices = Choices(text)
	h.Default = Default(text)
	h.Required = Requirement(text)
	h.TypeTokens = TypeTokens(text)
	return h
}

// Split divides a description shared by several argument names into one
// description per name: by sentences first, then by coordinate conjunctions.
// When neither yields exactly one part per name, every name gets the whole text.
func (e *Extractor) Split(names []string, description string) []string {
	out := make([]string, len(names))
	if len(names) == 0 {
		return out
	}
	text := strings.TrimSpace(description)
	if len(names) > 1 && text != "" {
		if e.segmenter != nil {
			if spans := e.segmenter.SegmentDescription(text); len(spans) == len(names) {
				for i, s := range spans {
					out[i] = s.Text
				}
				return out
			}
		}
		if parts := conjunctions.Split(strings.TrimSuffix(text, "."), -1); len(parts) == len(names) {
			for i, p := range parts {
				out[i] = strings.TrimSpace(p)
			}
			return out
		}
	}
	for i := range out {
		out[i] = text
	}
	return out
}

// Choices returns enum choices stated in text, or nil.
func Choices(text string) []string {
	for _, re := range enumPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if choices := splitList(m[1]); len(choices) >= 2 {
				return choices
			}
		}
	}
	if m := bracePattern.FindStringSubmatch(text); m != nil {
		if choices := splitList(m[1]); len(choices) >= 2 {
			return choices
		}
	}
	return nil
}

// splitList splits "a, b, or c" into items, stopping at the first item that is
// not a single token.
func splitList(list string) []string {
	if i := strings.Index(list, ". "); i >= 0 {
		list = list[:i]
	}
	list = strings.TrimRight(strings.TrimSpace(list), ".")

	var out []string
	seen := make(map[string]bool)
	for _, item := range listSeparator.Split(list, -1) {
		item = strings.Trim(strings.TrimSpace(item), "\"'`“”.:")
		if item == "" {
			continue
		}
		if strings.ContainsAny(item, " \t") {
			break
		}
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

// Default returns a stated default value, or nil.
func Default(text string) *string {
	for _, re := range defaultPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		value = strings.TrimRight(value, ".,;")
		value = strings.Trim(value, "\"'`")
		if value == "" {
			continue
		}
		return &value
	}
	return nil
}

// Requirement returns true for "required" phrasing, false for "optional"
// phrasing and nil when the text says neither.
func Requirement(text string) *bool {
	var result bool
	switch {
	case optionalPattern.MatchString(text):
		result = false
	case requiredPattern.MatchString(text):
		result = true
	default:
		return nil
	}
	return &result
}

// TypeTokens returns capitalized and bracketed tokens in order of appearance.
func TypeTokens(text string) []string {
	type hit struct {
		pos  int
		text string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{typeTokenUpper, typeTokenAngle, typeTokenSmall} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{pos: loc[0], text: text[loc[0]:loc[1]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var out []string
	for _, h := range hits {
		out = appendUnique(out, h.text)
	}
	return out
}
