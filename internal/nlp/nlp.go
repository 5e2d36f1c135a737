// Package nlp provides sentence segmentation for argument descriptions.
//
// The statistical model (Punkt, trained on English) is loaded once per process
// and shared read-only by every parser.
package nlp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"

	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
)

// Backend names
const (
	BackendPunkt  = "punkt"
	BackendSimple = "simple"
)

// Punkt segments text with the Punkt sentence boundary model
type Punkt struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

var (
	sharedOnce  sync.Once
	sharedPunkt *Punkt
	sharedErr   error
)

// Shared returns the process-wide Punkt model, loading it on first use.
func Shared() (*Punkt, error) {
	sharedOnce.Do(func() {
		tokenizer, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			sharedErr = fmt.Errorf("load punkt model: %w", err)
			return
		}
		sharedPunkt = &Punkt{tokenizer: tokenizer}
		logging.Debug().Msg("punkt sentence model loaded")
	})
	return sharedPunkt, sharedErr
}

// SegmentDescription splits text into sentence spans with byte offsets into text.
func (p *Punkt) SegmentDescription(text string) []model.Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var spans []model.Span
	cursor := 0
	for _, s := range p.tokenizer.Tokenize(text) {
		sentence := strings.TrimSpace(s.Text)
		if sentence == "" {
			continue
		}
		start := s.Start
		if idx := strings.Index(text[cursor:], sentence); idx >= 0 {
			start = cursor + idx
		}
		end := start + len(sentence)
		if end > len(text) {
			end = len(text)
		}
		spans = append(spans, model.Span{Start: start, End: end, Text: sentence})
		cursor = end
	}
	return spans
}

// Segmenter is anything that splits a description into sentence spans
type Segmenter interface {
	SegmentDescription(text string) []model.Span
}

// ForBackend returns the local segmenter for a backend name. Punkt falls back
// to the simple splitter when the model cannot be loaded.
func ForBackend(name string) (Segmenter, error) {
	switch strings.ToLower(name) {
	case "", BackendPunkt:
		p, err := Shared()
		if err != nil {
			logging.Warn().Err(err).Msg("falling back to simple sentence splitter")
			return Simple{}, nil
		}
		return p, nil
	case BackendSimple:
		return Simple{}, nil
	default:
		return nil, fmt.Errorf("unknown nlp backend %q", name)
	}
}
