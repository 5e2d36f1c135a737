// Package cache stores captured help text and segmentation results between runs.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/helpscan/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key namespaces
const (
	NamespaceProbe   = "probe"
	NamespaceSegment = "segment"
)

// Key generates a cache key from a namespace and its identifying parts,
// e.g. Key(NamespaceProbe, "git", "remote", "--help")
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "helpscan:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: memory in front of the configured
// persistent backend. It returns nil when caching is disabled.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	memory := NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)

	switch cfg.Backend {
	case "", "disk":
		return NewLayeredCache(memory, NewDiskCache(cfg.Dir, cfg.DiskTTL)), nil
	case "sqlite":
		store, err := OpenSQLiteCache(cfg.Dir, cfg.DiskTTL)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return NewLayeredCache(memory, store), nil
	case "memory":
		return memory, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
