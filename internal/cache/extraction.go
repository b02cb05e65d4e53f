package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// ExtractionCache stores text-recognition results keyed by content hash. The
// local map tier answers repeats within one process; the Redis tier survives
// restarts. The cache never performs extraction itself.
type ExtractionCache struct {
	mu    sync.RWMutex
	local map[string]localEntry

	redis     *redis.Client
	keyPrefix string
	ttl       time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	log zerolog.Logger
}

type localEntry struct {
	result    model.ExtractionResult
	expiresAt time.Time
}

// New builds a cache backed by rdb. rdb may be nil, in which case only the
// in-process tier is active (used in tests and single-node deployments).
func New(rdb *redis.Client, keyPrefix string, ttl time.Duration) *ExtractionCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ExtractionCache{
		local:     make(map[string]localEntry),
		redis:     rdb,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		log:       logger.With("extraction_cache"),
	}
}

// Get returns the cached result for contentHash, or ok=false on a miss. A hit
// on the Redis tier backfills the local tier.
func (c *ExtractionCache) Get(ctx context.Context, contentHash string) (model.ExtractionResult, bool) {
	c.mu.RLock()
	entry, found := c.local[contentHash]
	c.mu.RUnlock()

	if found && time.Now().Before(entry.expiresAt) {
		c.hits.Add(1)
		return entry.result, true
	}

	if c.redis != nil {
		data, err := c.redis.Get(ctx, c.keyPrefix+contentHash).Bytes()
		if err == nil {
			var result model.ExtractionResult
			if jsonErr := json.Unmarshal(data, &result); jsonErr == nil {
				c.storeLocal(contentHash, result)
				c.hits.Add(1)
				return result, true
			}
			c.log.Warn().Str("content_hash", contentHash).Msg("Corrupt cache value, treating as miss")
		} else if err != redis.Nil {
			c.log.Error().Err(err).Msg("Redis cache read failed")
		}
	}

	c.misses.Add(1)
	return model.ExtractionResult{}, false
}

// Put writes the result to both tiers. Last writer wins; values are derived
// from immutable image bytes so a race overwrites with identical content.
func (c *ExtractionCache) Put(ctx context.Context, contentHash string, result model.ExtractionResult) {
	c.storeLocal(contentHash, result)

	if c.redis == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to marshal extraction result")
		return
	}
	if err := c.redis.Set(ctx, c.keyPrefix+contentHash, data, c.ttl).Err(); err != nil {
		c.log.Error().Err(err).Msg("Redis cache write failed")
	}
}

func (c *ExtractionCache) storeLocal(contentHash string, result model.ExtractionResult) {
	c.mu.Lock()
	c.local[contentHash] = localEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Stats returns the hit/miss counters accumulated since process start.
func (c *ExtractionCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
