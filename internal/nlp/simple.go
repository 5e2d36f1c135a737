package nlp

import (
	"strings"

	"github.com/ppiankov/helpscan/internal/model"
)

// abbreviations never end a sentence
var abbreviations = []string{"e.g.", "i.e.", "etc.", "vs.", "cf.", "approx.", "no.", "Dr.", "Mr."}

// Simple splits on sentence terminators followed by whitespace
type Simple struct{}

// SegmentDescription splits text into sentence spans with byte offsets into text.
func (Simple) SegmentDescription(text string) []model.Span {
	var spans []model.Span
	start := 0

	emit := func(end int) {
		raw := text[start:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			spans = append(spans, model.Span{Start: start + lead, End: start + lead + len(trimmed), Text: trimmed})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			// Look ahead to avoid splitting inside tokens like "v1.2" or "file.txt"
			if i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\t' || text[i+1] == '\n') {
				if text[i] == '.' && endsWithAbbreviation(text[start:i+1]) {
					continue
				}
				emit(i + 1)
			}
		}
	}
	if start < len(text) {
		emit(len(text))
	}
	return spans
}

func endsWithAbbreviation(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimLeft(fields[len(fields)-1], "([")
	for _, abbr := range abbreviations {
		if strings.EqualFold(last, abbr) {
			return true
		}
	}
	return false
}
