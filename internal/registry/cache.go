package registry

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrCacheMiss is returned by a Cache when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized lookups for a limited time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryCache is a process-local Cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// CachedLookup wraps a Registry with a Cache. Cache failures are logged and
// the upstream registry is used instead.
type CachedLookup struct {
	inner Registry
	cache Cache
	ttl   time.Duration
}

// NewCachedLookup wraps inner; ttl is how long a company stays cached.
func NewCachedLookup(inner Registry, cache Cache, ttl time.Duration) *CachedLookup {
	return &CachedLookup{inner: inner, cache: cache, ttl: ttl}
}

func cacheKey(ico string) string { return "ares:" + ico }

// Lookup returns the cached company or asks the wrapped registry.
func (c *CachedLookup) Lookup(ctx context.Context, ico string) (*Company, error) {
	n, ok := NormalizeICO(ico)
	if !ok || !ValidateICO(n) {
		return nil, ErrInvalidICO
	}
	key := cacheKey(n)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var company Company
		if err := json.Unmarshal(raw, &company); err == nil {
			return &company, nil
		}
		log.Printf("registry cache: corrupt entry %s", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Printf("registry cache get %s: %v", key, err)
	}

	company, err := c.inner.Lookup(ctx, n)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(company); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			log.Printf("registry cache set %s: %v", key, err)
		}
	}
	return company, nil
}
