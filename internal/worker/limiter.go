package worker

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-tool rate limiting of help probes
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter. A rate of zero or less disables limiting.
func NewLimiter(probesPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(probesPerSecond),
		defaultBurst: burst,
	}
}

// Wait waits for rate limit clearance for the tool at the head of path
func (l *Limiter) Wait(ctx context.Context, path []string) error {
	if l == nil || l.defaultRate <= 0 && !l.hasOverride(ToolKey(path)) {
		return ctx.Err()
	}
	return l.getLimiter(ToolKey(path)).Wait(ctx)
}

// Allow checks if a probe is allowed without waiting
func (l *Limiter) Allow(path []string) bool {
	if l == nil || l.defaultRate <= 0 && !l.hasOverride(ToolKey(path)) {
		return true
	}
	return l.getLimiter(ToolKey(path)).Allow()
}

// ToolKey returns the limiter key of a command path: the executable's base name
func ToolKey(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return filepath.Base(path[0])
}

func (l *Limiter) hasOverride(tool string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.limiters[tool]
	return ok
}

// getLimiter returns the rate limiter for a tool
func (l *Limiter) getLimiter(tool string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[tool]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[tool]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[tool] = limiter

	return limiter
}

// SetToolRate sets a custom rate limit for a specific tool
func (l *Limiter) SetToolRate(tool string, probesPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[tool] = rate.NewLimiter(rate.Limit(probesPerSecond), burst)
}
