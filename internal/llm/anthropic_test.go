package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	provider, err := NewAnthropicProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-3-5-haiku-20241022",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestAnthropicProvider_Segment_Success(t *testing.T) {
	provider := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if req.System != systemPrompt {
			t.Errorf("Expected system prompt, got %q", req.System)
		}
		if req.Temperature != 0 {
			t.Errorf("Expected temperature 0, got %v", req.Temperature)
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_123",
			"type": "message",
			"role": "assistant",
			"content": [{"type": "text", "text": "[\"Set the mode.\", \"Defaults to fast.\"]"}],
			"model": "claude-3-5-haiku-20241022",
			"usage": {"input_tokens": 30, "output_tokens": 12}
		}`))
	})

	resp, err := provider.Segment(context.Background(), SegmentRequest{Text: "Set the mode. Defaults to fast."})
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(resp.Sentences) != 2 || resp.Sentences[0] != "Set the mode." {
		t.Errorf("Unexpected sentences: %v", resp.Sentences)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestAnthropicProvider_Segment_APIError(t *testing.T) {
	provider := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad model"}}`))
	})

	_, err := provider.Segment(context.Background(), SegmentRequest{Text: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("Expected StatusError, got %T", err)
	}
	if status.Code != http.StatusBadRequest {
		t.Errorf("Expected code 400, got %d", status.Code)
	}
	if status.Message != "invalid_request_error - bad model" {
		t.Errorf("Unexpected message: %s", status.Message)
	}
	if retryable(err) {
		t.Error("Expected 400 to be permanent")
	}
}

func TestAnthropicProvider_Segment_Overloaded(t *testing.T) {
	provider := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		_, _ = w.Write([]byte(`overloaded`))
	})

	_, err := provider.Segment(context.Background(), SegmentRequest{Text: "x"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !retryable(err) {
		t.Errorf("Expected overloaded to be retryable: %v", err)
	}
}

func TestAnthropicProvider_Segment_EmptyContent(t *testing.T) {
	provider := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "msg_1", "content": []}`))
	})

	if _, err := provider.Segment(context.Background(), SegmentRequest{Text: "x"}); err == nil {
		t.Fatal("Expected error for empty content, got nil")
	}
}

func TestAnthropicProvider_Segment_Timeout(t *testing.T) {
	provider := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := provider.Segment(ctx, SegmentRequest{Text: "x"})
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	if !retryable(err) {
		t.Errorf("Expected deadline to be retryable: %v", err)
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}
