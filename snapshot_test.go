package appstate_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	appstate "github.com/goliatone/go-appstate"
	"github.com/goliatone/go-appstate/pkg/state"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryStore[map[string]any]()
	ref := state.Ref{Namespace: "tenant-1", Name: "prefs"}

	source := appstate.New(appstate.WithData(map[string]any{"theme": map[string]any{"dark": true}}))
	meta, err := source.SaveSnapshot(ctx, backend, ref, state.Meta{})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.SnapshotID == "" {
		t.Fatalf("expected snapshot id")
	}

	// The saved snapshot must not alias the live document.
	mustSet(t, source, "theme.dark", false)

	target := appstate.New()
	rec := &callRecorder{}
	mustSubscribe(t, target, rec.callback, "theme.dark")
	loadedMeta, ok, err := target.LoadSnapshot(ctx, backend, ref)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loadedMeta.SnapshotID != meta.SnapshotID {
		t.Fatalf("expected snapshot %s, got %s", meta.SnapshotID, loadedMeta.SnapshotID)
	}
	if got := target.Get("theme.dark"); got != true {
		t.Fatalf("expected restored value true, got %v", got)
	}
	if !reflect.DeepEqual([][]any{{true}}, rec.calls) {
		t.Fatalf("expected restore to notify subscribers, got %#v", rec.calls)
	}
}

func TestLoadSnapshotMissing(t *testing.T) {
	store := appstate.New(appstate.WithData(map[string]any{"a": 1}))
	_, ok, err := store.LoadSnapshot(context.Background(), state.NewMemoryStore[map[string]any](), state.Ref{Name: "none"})
	if err != nil || ok {
		t.Fatalf("expected missing snapshot, got ok=%v err=%v", ok, err)
	}
	if store.Get("a") != 1 {
		t.Fatalf("expected document untouched")
	}
}

func TestSaveSnapshotETagConflict(t *testing.T) {
	ctx := context.Background()
	backend := state.NewMemoryStore[map[string]any]()
	ref := state.Ref{Name: "doc"}
	store := appstate.New()

	if _, err := store.SaveSnapshot(ctx, backend, ref, state.Meta{}); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := store.SaveSnapshot(ctx, backend, ref, state.Meta{ETag: "stale"})
	if !errors.Is(err, state.ErrETagMismatch) {
		t.Fatalf("expected ErrETagMismatch, got %v", err)
	}
	if _, err := store.SaveSnapshot(ctx, nil, ref, state.Meta{}); err == nil {
		t.Fatalf("expected nil backend to fail")
	}
}
