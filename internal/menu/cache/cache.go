// Package cache implements the menu cache-aside layer: jittered TTL over a
// pluggable Backend, so repeated requests for the same hall/date/meal avoid
// re-running the pipeline while still expiring independently of each other.
package cache

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/claremont-dine/menu-api/internal/menu"
)

// BaseTTL and JitterRange follow the original cache layer: a 30-minute base
// TTL randomized by +/- 5 minutes, so concurrently-populated keys don't all
// expire in the same instant (thundering herd on a busy meal period).
const (
	BaseTTL     = 30 * time.Minute
	JitterRange = 5 * time.Minute
)

// Result reports whether a Get was a hit, miss, or stale (present but
// logically invalid — unused by the in-process backend but kept for a
// networked Backend that might mark entries stale without evicting them).
type Result string

const (
	Hit   Result = "hit"
	Miss  Result = "miss"
	Stale Result = "stale"
)

// Backend is the storage seam behind the Cache. Only an in-process
// implementation ships; a networked backend could implement this without
// touching Cache's jitter logic.
type Backend interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// inProcessBackend adapts patrickmn/go-cache to the Backend interface.
type inProcessBackend struct {
	c *gocache.Cache
}

// NewInProcessBackend builds a Backend backed by an in-memory TTL cache,
// cleaned up on a period proportional to the base TTL.
func NewInProcessBackend() Backend {
	return &inProcessBackend{c: gocache.New(BaseTTL, BaseTTL/2)}
}

func (b *inProcessBackend) Get(key string) ([]byte, bool) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, false
	}
	raw, ok := v.([]byte)
	return raw, ok
}

func (b *inProcessBackend) Set(key string, value []byte, ttl time.Duration) {
	b.c.Set(key, value, ttl)
}

// Cache is the menu response cache: one entry per (hall_id, date, meal).
type Cache struct {
	backend Backend
	logger  *zap.Logger
}

// New builds a Cache over the given Backend.
func New(backend Backend, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{backend: backend, logger: logger}
}

// Key builds the cache key for one hall/date/meal query.
func Key(hallID, date, meal string) string {
	return fmt.Sprintf("menu:%s:%s:%s", hallID, date, meal)
}

// Entry is the cached shape: the resolved meal plus the staleness metadata
// the fallback orchestrator attached when it was produced.
type Entry struct {
	Meal      menu.Meal `json:"meal"`
	IsStale   bool      `json:"is_stale"`
	FetchedAt *time.Time `json:"fetched_at"`
}

// Get returns the cached entry for key, or (Entry{}, Miss) if absent or
// undecodable (a corrupt entry is treated as a miss rather than an error).
func (c *Cache) Get(key string) (Entry, Result) {
	raw, ok := c.backend.Get(key)
	if !ok {
		return Entry{}, Miss
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn("cache entry failed to decode, treating as miss",
			zap.String("key", key), zap.Error(err))
		return Entry{}, Miss
	}
	return entry, Hit
}

// Set stores entry under key with a jittered TTL in [BaseTTL-JitterRange,
// BaseTTL+JitterRange].
func (c *Cache) Set(key string, entry Entry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("cache entry failed to encode, skipping set",
			zap.String("key", key), zap.Error(err))
		return
	}
	c.backend.Set(key, raw, jitteredTTL())
}

func jitteredTTL() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(2*JitterRange+1))) - JitterRange
	return BaseTTL + jitter
}
