package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/helpscan/internal/cache"
	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
	"github.com/ppiankov/helpscan/internal/nlp"
)

const (
	retryInitialInterval = 500 * time.Millisecond
	retryMaxInterval     = 10 * time.Second
	retryMaxElapsedTime  = time.Minute
)

// StatusError is a non-200 answer from a provider's HTTP API
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Code, e.Message)
}

// Segmenter segments descriptions with an LLM provider. Answers are cached;
// transient failures are retried with exponential backoff; anything else falls
// back to the local sentence model.
type Segmenter struct {
	provider   Provider
	fallback   nlp.Segmenter
	cache      cache.Cache
	ttl        time.Duration
	timeout    time.Duration
	maxRetries int
	newBackOff func(ctx context.Context) backoff.BackOff
}

// NewSegmenter creates an LLM segmenter. c may be nil.
func NewSegmenter(provider Provider, fallback nlp.Segmenter, c cache.Cache, ttl time.Duration, config Config) *Segmenter {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	s := &Segmenter{
		provider:   provider,
		fallback:   fallback,
		cache:      c,
		ttl:        ttl,
		timeout:    timeout,
		maxRetries: config.MaxRetries,
	}
	s.newBackOff = s.retryBackOff
	return s
}

// retryBackOff creates a new exponential backoff with jitter for API retries
func (s *Segmenter) retryBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.MaxElapsedTime = retryMaxElapsedTime
	b.RandomizationFactor = 0.5 // Add jitter
	b.Multiplier = 2.0
	b.Reset()
	retries := s.maxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// SegmentDescription splits text into sentence spans, falling back to the
// local model when the provider fails.
func (s *Segmenter) SegmentDescription(text string) []model.Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout*time.Duration(s.maxRetries+1))
	defer cancel()

	spans, err := s.Segment(ctx, text)
	if err != nil {
		logging.Debug().Err(err).Str("provider", s.provider.Name()).Msg("LLM segmentation failed, using local model")
		if s.fallback == nil {
			return nil
		}
		return s.fallback.SegmentDescription(text)
	}
	return spans
}

// Segment asks the provider for a segmentation of text, without fallback
func (s *Segmenter) Segment(ctx context.Context, text string) ([]model.Span, error) {
	key := cache.Key(cache.NamespaceSegment, s.provider.Name(), text)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			var spans []model.Span
			if err := json.Unmarshal(data, &spans); err == nil {
				return spans, nil
			}
		}
	}

	var resp *SegmentResponse
	operation := func() error {
		r, err := s.provider.Segment(ctx, SegmentRequest{Text: text})
		if err != nil {
			if retryable(err) {
				logging.Debug().Err(err).Str("provider", s.provider.Name()).Msg("retrying LLM segmentation")
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}
	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		return nil, err
	}

	spans, err := locate(text, resp.Sentences)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(spans); err == nil {
			if err := s.cache.Set(key, data, s.ttl); err != nil {
				logging.Warn().Err(err).Msg("failed to cache segmentation")
			}
		}
	}
	return spans, nil
}

// locate maps each sentence to its byte offsets in text, in order. A sentence
// that is not a verbatim substring invalidates the whole answer.
func locate(text string, sentences []string) ([]model.Span, error) {
	spans := make([]model.Span, 0, len(sentences))
	cursor := 0
	for _, sentence := range sentences {
		idx := strings.Index(text[cursor:], sentence)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrNotVerbatim, sentence)
		}
		start := cursor + idx
		spans = append(spans, model.Span{Start: start, End: start + len(sentence), Text: sentence})
		cursor = start + len(sentence)
	}
	return spans, nil
}

// retryable reports transient failures: rate limits, server errors and timeouts
func retryable(err error) bool {
	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == 429 || status.Code >= 500
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// NewDescriptionSegmenter returns the segmenter selected by cfg.NLP.Backend:
// the LLM segmenter for "llm", otherwise a local model.
func NewDescriptionSegmenter(cfg *model.Config, c cache.Cache) (nlp.Segmenter, error) {
	if !strings.EqualFold(cfg.NLP.Backend, BackendLLM) {
		return nlp.ForBackend(cfg.NLP.Backend)
	}

	config := ConfigFromModel(cfg.LLM)
	provider, err := NewProvider(config)
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("nlp backend %q requires llm.provider", BackendLLM)
	}

	fallback, err := nlp.ForBackend(nlp.BackendPunkt)
	if err != nil {
		return nil, err
	}
	return NewSegmenter(provider, fallback, c, cfg.Cache.DiskTTL, config), nil
}

// BackendLLM selects LLM segmentation in the nlp.backend setting
const BackendLLM = "llm"
