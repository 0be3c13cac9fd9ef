package appstate_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	appstate "github.com/goliatone/go-appstate"
	"github.com/goliatone/go-appstate/pkg/activity"
)

func TestActivityHooksReceiveCommittedWrites(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := appstate.New(
		appstate.WithActivityHooks(activity.Hooks{capture}),
		appstate.WithActivityActor("actor-1"),
		appstate.WithActivityChannel("settings"),
	)
	mustSubscribe(t, store, func(...any) error { return nil }, "user")

	mustSet(t, store, "user.name", "Ada")
	mustSet(t, store, "", map[string]any{"fresh": true})

	if capture.Len() != 2 {
		t.Fatalf("expected 2 events, got %d", capture.Len())
	}
	if !reflect.DeepEqual([]string{"user.name", ""}, capture.Paths()) {
		t.Fatalf("unexpected paths %v", capture.Paths())
	}

	updated := capture.Events[0]
	if updated.Verb != activity.VerbStateUpdated {
		t.Fatalf("expected %s, got %s", activity.VerbStateUpdated, updated.Verb)
	}
	if updated.ObjectID != store.ID() || updated.ObjectType != activity.ObjectTypeState {
		t.Fatalf("unexpected object %s/%s", updated.ObjectType, updated.ObjectID)
	}
	if updated.ActorID != "actor-1" || updated.Channel != "settings" {
		t.Fatalf("expected actor and channel defaults, got %q %q", updated.ActorID, updated.Channel)
	}
	if updated.Metadata["value"] != "Ada" || updated.Metadata["source"] != activity.SourceSet {
		t.Fatalf("unexpected metadata %#v", updated.Metadata)
	}
	if capture.Events[1].Verb != activity.VerbStateReplaced {
		t.Fatalf("expected root write to be %s, got %s", activity.VerbStateReplaced, capture.Events[1].Verb)
	}
}

func TestActivityHookErrorsAreLoggedNotReturned(t *testing.T) {
	hookErr := errors.New("sink down")
	var observed []error
	store := appstate.New(
		appstate.WithActivityHooks(activity.Hooks{&activity.CaptureHook{Err: hookErr}}),
		appstate.WithLogger(appstate.LoggerFunc(func(e appstate.MutationLogEvent) {
			if e.Kind == appstate.LogKindSet {
				observed = append(observed, e.ObserverErr)
			}
		})),
	)
	mustSet(t, store, "a", 1)
	if len(observed) != 1 || !errors.Is(observed[0], hookErr) {
		t.Fatalf("expected hook error in log event, got %v", observed)
	}
}

func TestActivityHookPanicIsRecovered(t *testing.T) {
	var observerErr error
	panicking := activity.HookFunc(func(context.Context, activity.Event) error {
		panic("boom")
	})
	store := appstate.New(
		appstate.WithActivityHooks(activity.Hooks{panicking}),
		appstate.WithLogger(appstate.LoggerFunc(func(e appstate.MutationLogEvent) {
			observerErr = e.ObserverErr
		})),
	)
	mustSet(t, store, "a", 1)
	if observerErr == nil {
		t.Fatalf("expected recovered panic to be reported")
	}
	if err := store.Set("b", 2); err != nil {
		t.Fatalf("expected guard to be released after panic, got %v", err)
	}
}

func TestActivityHooksSkipFailedWrites(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := appstate.New(
		appstate.WithData(map[string]any{"a": 1}),
		appstate.WithActivityHooks(activity.Hooks{capture}),
	)
	if err := store.Set("a.b", 2); err == nil {
		t.Fatalf("expected conflict")
	}
	if capture.Len() != 0 {
		t.Fatalf("expected no events for failed write, got %d", capture.Len())
	}
}

func TestActivityHooksSeeWritesWhoseSubscribersFail(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := appstate.New(appstate.WithActivityHooks(activity.Hooks{capture}))
	mustSubscribe(t, store, func(...any) error { return errors.New("boom") }, "a")

	if err := store.Set("a", 1); err == nil {
		t.Fatalf("expected callback error")
	}
	if store.Get("a") != 1 {
		t.Fatalf("expected write to stay committed")
	}
	if !reflect.DeepEqual([]string{"a"}, capture.Paths()) {
		t.Fatalf("expected committed write to be mirrored, got %v", capture.Paths())
	}
}

func TestActivityHooksSeeCalculatedWrites(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := appstate.New(appstate.WithActivityHooks(activity.Hooks{capture}))
	err := store.Calculations(appstate.Calculate("full", func(s *appstate.Store) (any, error) {
		return fmt.Sprintf("%v!", s.Get("first")), nil
	}))
	if err != nil {
		t.Fatalf("calculations: %v", err)
	}
	mustSet(t, store, "first", "a")

	if !reflect.DeepEqual([]string{"first", "full"}, capture.Paths()) {
		t.Fatalf("expected writes in commit order, got %v", capture.Paths())
	}
	calc := capture.Events[1]
	if calc.Metadata["source"] != activity.SourceCalculated || calc.Metadata["trigger"] != "first" || calc.Metadata["value"] != "a!" {
		t.Fatalf("unexpected calculated event metadata %#v", calc.Metadata)
	}

	// Replaying the mirrored writes rebuilds the document.
	replica := appstate.New()
	for _, event := range capture.Events {
		mustSet(t, replica, event.Path, event.Metadata["value"])
	}
	if !reflect.DeepEqual(store.Snapshot(), replica.Snapshot()) {
		t.Fatalf("expected replica %#v to match %#v", replica.Snapshot(), store.Snapshot())
	}
}

func TestActivityMirrorsValueCommittedByModel(t *testing.T) {
	capture := &activity.CaptureHook{}
	store := appstate.New(
		appstate.WithModel(&doublingModel{values: map[string]any{}}),
		appstate.WithActivityHooks(activity.Hooks{capture}),
	)
	mustSet(t, store, "word", "ab")
	if capture.Len() != 1 || capture.Events[0].Metadata["value"] != "abab" {
		t.Fatalf("expected the stored value to be mirrored, got %#v", capture.Events)
	}
}

func TestActivityHooksIgnoreNil(t *testing.T) {
	store := appstate.New(appstate.WithActivityHooks(activity.Hooks{nil}))
	mustSet(t, store, "a", 1)
}
