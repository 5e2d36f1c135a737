// Package llm segments argument descriptions with a language model. It is an
// optional backend behind the same capability as the local sentence model.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Segment splits a description into sentences copied verbatim from it
	Segment(ctx context.Context, req SegmentRequest) (*SegmentResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SegmentRequest contains the input for LLM segmentation
type SegmentRequest struct {
	// Text is the argument description to segment
	Text string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SegmentResponse contains the model's segmentation
type SegmentResponse struct {
	// Sentences are the segments, each a verbatim substring of the request text
	Sentences []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// MaxRetries bounds retries of transient failures
	MaxRetries int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:   "", // Disabled by default
		Model:      "",
		Timeout:    30,
		MaxTokens:  1000,
		MaxRetries: 3,
	}
}

// systemPrompt is shared by every provider
const systemPrompt = "You split command-line option descriptions into sentences. You never rewrite, summarize or add text."

// ErrNotVerbatim is returned when a model answer is not a segmentation of the input
var ErrNotVerbatim = errors.New("segment not found verbatim in description")

// BuildPrompt constructs the default segmentation prompt
func BuildPrompt(text string) string {
	return fmt.Sprintf(`Split the following command-line argument description into sentences.

RULES:
1. Return ONLY a JSON array of strings.
2. Every string MUST be copied exactly from the description, in order.
3. Do not split inside abbreviations (e.g., i.e., etc.), file names or version numbers.
4. A description without sentence boundaries is a single-element array.

Description:
%s`, text)
}

// ParseSentences reads the JSON array of sentences from a model answer,
// tolerating surrounding prose or code fences.
func ParseSentences(content string) ([]string, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var raw []string
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("parse sentences: %w", err)
	}

	var sentences []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("empty sentence list")
	}
	return sentences, nil
}

// requestDefaults resolves the model and token limit of a request
func requestDefaults(req SegmentRequest, config Config, fallbackModel string) (string, int) {
	model := req.Model
	if model == "" {
		model = config.Model
	}
	if model == "" {
		model = fallbackModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}
	return model, maxTokens
}

func promptFor(req SegmentRequest) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return BuildPrompt(req.Text)
}
