package appstate

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-appstate/pkg/state"
)

// SnapshotStore persists whole documents.
type SnapshotStore = state.Store[map[string]any]

// SaveSnapshot writes a copy of the current document to backend under ref.
// meta.ETag, when set, must match the stored record.
func (s *Store) SaveSnapshot(ctx context.Context, backend SnapshotStore, ref state.Ref, meta state.Meta) (saved state.Meta, err error) {
	start := time.Now()
	event := MutationLogEvent{Kind: LogKindSnapshot, StoreID: s.id, Message: "save " + ref.Name}
	defer func() {
		event.Duration = time.Since(start)
		event.Err = err
		s.logger.LogMutation(event)
	}()

	if backend == nil {
		return state.Meta{}, fmt.Errorf("appstate: snapshot store is required")
	}
	saved, err = backend.Save(ctx, ref, s.Snapshot(), meta)
	if err != nil {
		return saved, fmt.Errorf("appstate: save snapshot %q: %w", ref.Name, err)
	}
	return saved, nil
}

// LoadSnapshot replaces the document with the snapshot stored under ref. The
// replacement is an ordinary root write, so every subscriber is notified and
// calculated properties are recomputed. It reports false, leaving the
// document untouched, when no snapshot exists.
func (s *Store) LoadSnapshot(ctx context.Context, backend SnapshotStore, ref state.Ref) (state.Meta, bool, error) {
	if backend == nil {
		return state.Meta{}, false, fmt.Errorf("appstate: snapshot store is required")
	}
	snapshot, meta, ok, err := backend.Load(ctx, ref)
	if err != nil {
		return state.Meta{}, false, fmt.Errorf("appstate: load snapshot %q: %w", ref.Name, err)
	}
	if !ok {
		return state.Meta{}, false, nil
	}
	if snapshot == nil {
		snapshot = map[string]any{}
	}
	if err := s.Set("", snapshot); err != nil {
		return meta, true, err
	}
	return meta, true, nil
}
