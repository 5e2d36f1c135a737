package worker

import (
	"context"
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1) // 100 rps, burst 1
	ctx := context.Background()

	if err := limiter.Wait(ctx, []string{"git", "remote"}); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different tool should also work
	if err := limiter.Wait(ctx, []string{"docker"}); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 10; i++ {
		if !limiter.Allow([]string{"git"}) {
			t.Fatalf("probe %d should pass with limiting disabled", i)
		}
	}

	var nilLimiter *Limiter
	if err := nilLimiter.Wait(context.Background(), []string{"git"}); err != nil {
		t.Errorf("nil limiter wait failed: %v", err)
	}
}

func TestLimiter_CancelledContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = limiter.Allow([]string{"git"}) // use the burst
	if err := limiter.Wait(ctx, []string{"git"}); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	// First probe ok
	if err := limiter.Wait(ctx, []string{"git"}); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Subcommands share the tool's limiter
	if limiter.Allow([]string{"/usr/bin/git", "remote"}) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Different tool should be allowed
	if !limiter.Allow([]string{"docker"}) {
		t.Errorf("expected allow for other tool")
	}
}

func TestLimiter_SetToolRate(t *testing.T) {
	limiter := NewLimiter(0, 10) // unlimited default

	// Set strict limit for specific tool
	limiter.SetToolRate("slow", 0.1, 1)

	if !limiter.Allow([]string{"slow"}) {
		t.Errorf("first probe should pass")
	}
	if limiter.Allow([]string{"slow", "sub"}) {
		t.Errorf("second probe should fail")
	}
	if !limiter.Allow([]string{"fast"}) {
		t.Errorf("other tool should pass")
	}
}

func TestToolKey(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"git"}, "git"},
		{[]string{"/usr/local/bin/kubectl", "get"}, "kubectl"},
	}
	for _, tt := range tests {
		if got := ToolKey(tt.path); got != tt.want {
			t.Errorf("ToolKey(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
