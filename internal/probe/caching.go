package probe

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ppiankov/helpscan/internal/cache"
	"github.com/ppiankov/helpscan/internal/logging"
	"github.com/ppiankov/helpscan/internal/model"
)

// CachingProber serves help text from a cache before asking the wrapped
// prober. Only successful captures are stored.
type CachingProber struct {
	inner Prober
	cache cache.Cache
	ttl   time.Duration
}

// NewCachingProber wraps inner with c. A nil cache disables caching.
func NewCachingProber(inner Prober, c cache.Cache, ttl time.Duration) Prober {
	if c == nil {
		return inner
	}
	return &CachingProber{inner: inner, cache: c, ttl: ttl}
}

// Probe returns the cached text for path or probes and stores it
func (p *CachingProber) Probe(ctx context.Context, path []string, timeout time.Duration) (model.RawHelpText, error) {
	key := cache.Key(cache.NamespaceProbe, path...)

	if data, ok := p.cache.Get(key); ok {
		var raw model.RawHelpText
		if err := json.Unmarshal(data, &raw); err == nil {
			logging.Debug().Strs("path", path).Msg("help probe cache hit")
			return raw, nil
		}
		_ = p.cache.Delete(key)
	}

	raw, err := p.inner.Probe(ctx, path, timeout)
	if err != nil {
		return raw, err
	}

	if data, err := json.Marshal(raw); err == nil {
		if err := p.cache.Set(key, data, p.ttl); err != nil {
			logging.Warn().Err(err).Strs("path", path).Msg("failed to cache help text")
		}
	}
	return raw, nil
}
