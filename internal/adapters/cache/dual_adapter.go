package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dawadex/backend/internal/domain/providers"
	"github.com/dawadex/backend/internal/infrastructure/observability"
)

type memEntry struct {
	fetchedAt time.Time
	payload   []byte
}

// DualCache layers a process-local map in front of a persistent
// CacheProvider. Both layers honor the same TTL. The cache is strictly a
// performance optimization: persistent-store failures are logged and treated
// as a miss on read and a no-op on write, never surfaced to callers.
type DualCache struct {
	source  string
	store   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics

	mu  sync.RWMutex
	mem map[string]memEntry

	now func() time.Time
}

// NewDualCache creates a dual-layer cache for one source. A nil store
// degrades to the in-process layer alone.
func NewDualCache(source string, store providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *DualCache {
	return &DualCache{
		source:  source,
		store:   store,
		ttl:     ttl,
		metrics: metrics,
		mem:     make(map[string]memEntry),
		now:     time.Now,
	}
}

// Get returns the cached payload for key, consulting the in-process layer
// first and warming it from the persistent store on a hit there
func (c *DualCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()

	if ok {
		if c.now().Sub(entry.fetchedAt) <= c.ttl {
			c.metrics.CacheHit(ctx, c.source, "memory")
			return entry.payload, true
		}
		c.mu.Lock()
		delete(c.mem, key)
		c.mu.Unlock()
	}

	if c.store != nil {
		payload, found, err := c.store.Get(ctx, key)
		if err != nil {
			log.Debug().Err(err).Str("source", c.source).Str("key", key).
				Msg("cache store read failed, treating as miss")
		} else if found {
			c.metrics.CacheHit(ctx, c.source, "store")
			c.warm(key, payload)
			return payload, true
		}
	}

	c.metrics.CacheMiss(ctx, c.source)
	return nil, false
}

// Put upserts the payload into the persistent store and warms the
// in-process layer
func (c *DualCache) Put(ctx context.Context, key string, payload []byte) {
	if c.store != nil {
		if err := c.store.Set(ctx, key, payload, c.ttl); err != nil {
			log.Debug().Err(err).Str("source", c.source).Str("key", key).
				Msg("cache store write failed, keeping in-process copy only")
		}
	}
	c.warm(key, payload)
}

// Reset clears the in-process layer. Intended for tests.
func (c *DualCache) Reset() {
	c.mu.Lock()
	c.mem = make(map[string]memEntry)
	c.mu.Unlock()
}

func (c *DualCache) warm(key string, payload []byte) {
	c.mu.Lock()
	c.mem[key] = memEntry{fetchedAt: c.now(), payload: payload}
	c.mu.Unlock()
}
