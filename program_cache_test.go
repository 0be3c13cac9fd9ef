package appstate

import (
	"fmt"
	"testing"
)

func TestMemoryProgramCache(t *testing.T) {
	cache := NewProgramCache()
	if _, ok := cache.Get("expr:a"); ok {
		t.Fatalf("expected empty cache")
	}
	cache.Set("expr:a", 1)
	cache.Set("expr:b", 2)
	cache.Set("expr:a", 3)

	if got, ok := cache.Get("expr:a"); !ok || got != 3 {
		t.Fatalf("expected overwritten value 3, got %v ok=%v", got, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestMemoryProgramCacheZeroValue(t *testing.T) {
	var cache MemoryProgramCache
	cache.Set("k", "v")
	if got, ok := cache.Get("k"); !ok || got != "v" {
		t.Fatalf("expected zero value cache to be usable, got %v ok=%v", got, ok)
	}
}

func TestBoundedProgramCacheEvictsOldestPerShard(t *testing.T) {
	cache := NewBoundedProgramCache(programCacheShards)
	if cache.shardLimit != 1 {
		t.Fatalf("expected one entry per shard, got %d", cache.shardLimit)
	}
	var last string
	for i := 0; i < 200; i++ {
		last = fmt.Sprintf("expr:%d", i)
		cache.Set(last, i)
	}
	if cache.Len() > programCacheShards {
		t.Fatalf("expected at most %d entries, got %d", programCacheShards, cache.Len())
	}
	if got, ok := cache.Get(last); !ok || got != 199 {
		t.Fatalf("expected newest entry to survive, got %v ok=%v", got, ok)
	}

	// Overwriting an entry does not evict it.
	cache.Set(last, "again")
	if got, _ := cache.Get(last); got != "again" {
		t.Fatalf("expected overwrite, got %v", got)
	}
}

func TestBoundedProgramCacheRoundsUp(t *testing.T) {
	if got := NewBoundedProgramCache(17).shardLimit; got != 2 {
		t.Fatalf("expected 2 per shard, got %d", got)
	}
	if got := NewBoundedProgramCache(0).shardLimit; got != 0 {
		t.Fatalf("expected unbounded, got %d", got)
	}
}

func TestCELCacheKeyDependsOnSnapshotKeys(t *testing.T) {
	a := celCacheKey("x", map[string]any{"x": 1, "y": 2})
	b := celCacheKey("x", map[string]any{"y": 3, "x": 4})
	c := celCacheKey("x", map[string]any{"x": 1})
	if a != b {
		t.Fatalf("expected key to ignore values and order, got %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("expected different key sets to produce different keys")
	}
}
