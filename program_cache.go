package appstate

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ProgramCache stores compiled programs keyed by expression source.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

const programCacheShards = 16

// MemoryProgramCache is a ProgramCache safe for concurrent use. Keys are
// spread over shards by their xxhash so engines compiling in parallel rarely
// contend on one lock. A bounded cache evicts the oldest entry of a full
// shard. The zero value is an unbounded cache.
type MemoryProgramCache struct {
	shardLimit int
	shards     [programCacheShards]programShard
}

type programShard struct {
	mu      sync.RWMutex
	entries map[string]any
	// order holds insertion order, tracked only when the cache is bounded.
	order []string
}

// NewProgramCache returns an unbounded MemoryProgramCache.
func NewProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

// NewBoundedProgramCache returns a cache holding about maxEntries programs:
// each shard keeps at most maxEntries/16, rounded up. maxEntries <= 0 means
// unbounded.
func NewBoundedProgramCache(maxEntries int) *MemoryProgramCache {
	c := &MemoryProgramCache{}
	if maxEntries > 0 {
		c.shardLimit = (maxEntries + programCacheShards - 1) / programCacheShards
	}
	return c
}

func (c *MemoryProgramCache) shard(key string) *programShard {
	return &c.shards[xxhash.Sum64String(key)%programCacheShards]
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	shard := c.shard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	value, ok := shard.entries[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	shard := c.shard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if shard.entries == nil {
		shard.entries = map[string]any{}
	}
	if _, exists := shard.entries[key]; exists {
		shard.entries[key] = value
		return
	}
	if c.shardLimit > 0 {
		for len(shard.order) >= c.shardLimit {
			delete(shard.entries, shard.order[0])
			shard.order = shard.order[1:]
		}
		shard.order = append(shard.order, key)
	}
	shard.entries[key] = value
}

// Len reports the number of cached programs.
func (c *MemoryProgramCache) Len() int {
	total := 0
	for i := range c.shards {
		c.shards[i].mu.RLock()
		total += len(c.shards[i].entries)
		c.shards[i].mu.RUnlock()
	}
	return total
}
