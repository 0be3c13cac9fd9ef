package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. It uses Ref.Identifier() as its key, assigns a fresh
// SnapshotID on every save and stamps the content ETag.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
	now     func() time.Time
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}, now: time.Now}
}

func (s *MemoryStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	key, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return record.snapshot, cloneMeta(record.meta), true, nil
}

// Save stores snapshot under ref. When meta.ETag is set it must match the
// etag of the record being replaced.
func (s *MemoryStore[T]) Save(_ context.Context, ref Ref, snapshot T, meta Meta) (Meta, error) {
	key, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}
	etag, err := ETag(snapshot)
	if err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = map[string]memoryRecord[T]{}
	}
	existing, ok := s.records[key]
	if meta.ETag != "" && ok && existing.meta.ETag != meta.ETag {
		return cloneMeta(existing.meta), fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, existing.meta.ETag)
	}

	saved := MergeMeta(existing.meta, Meta{Extra: meta.Extra})
	saved.SnapshotID = uuid.NewString()
	saved.ETag = etag
	saved.UpdatedAt = s.clock()
	s.records[key] = memoryRecord[T]{snapshot: snapshot, meta: cloneMeta(saved)}
	return cloneMeta(saved), nil
}

// Len reports the number of stored snapshots.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore[T]) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func cloneMeta(meta Meta) Meta {
	out := meta
	if meta.Extra == nil {
		return out
	}
	out.Extra = make(map[string]string, len(meta.Extra))
	for k, v := range meta.Extra {
		out.Extra[k] = v
	}
	return out
}
