package appstate

import (
	"reflect"
	"testing"
)

func noopCallback(...any) error { return nil }

func subscriptionIndexes(subs []*Subscription) []uint64 {
	out := make([]uint64, 0, len(subs))
	for _, sub := range subs {
		out = append(out, sub.index)
	}
	return out
}

func TestCandidatesAgreeWithMatches(t *testing.T) {
	var r subscriptionRegistry
	watched := []string{"", "a", "a.b", "a.b.c", "a.bc", "ab", "x.y", "a.b.c.d"}
	subs := make([]*Subscription, 0, len(watched))
	for _, path := range watched {
		sub, err := r.add(nil, noopCallback, []string{path})
		if err != nil {
			t.Fatalf("add %q: %v", path, err)
		}
		subs = append(subs, sub)
	}

	for _, changed := range []string{"", "a", "a.b", "a.b.c", "a.bc", "ab", "x", "q"} {
		segments, _ := ParsePath(changed)
		var want []uint64
		for _, sub := range subs {
			if Matches(sub.paths[0], changed) {
				want = append(want, sub.index)
			}
		}
		got := subscriptionIndexes(r.candidates(segments))
		if len(want) == 0 {
			want = []uint64{}
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("changed %q: expected %v, got %v", changed, want, got)
		}
	}
}

func TestCandidatesDedupeMultiPathSubscriptions(t *testing.T) {
	var r subscriptionRegistry
	late, _ := r.add(nil, noopCallback, []string{"a.b"})
	multi, _ := r.add(nil, noopCallback, []string{"a.b.c", "a", "a.b.d"})
	first, _ := r.add(nil, noopCallback, []string{"a.b"})

	segments, _ := ParsePath("a.b")
	got := r.candidates(segments)
	if !reflect.DeepEqual([]*Subscription{late, multi, first}, got) {
		t.Fatalf("expected each subscription once in registration order, got %v", subscriptionIndexes(got))
	}
}

func TestRegistryRemoveCleansIndex(t *testing.T) {
	var r subscriptionRegistry
	sub, _ := r.add(nil, noopCallback, []string{"a", "b", "a"})
	other, _ := r.add(nil, noopCallback, []string{"b"})

	// The caller's copy of the paths cannot change what gets removed.
	sub.Paths()[0] = "zzz"
	if !r.remove(sub) {
		t.Fatalf("expected removal")
	}
	if r.remove(sub) {
		t.Fatalf("expected second removal to report false")
	}
	if _, ok := r.byPath["a"]; ok {
		t.Fatalf("expected empty path set to be dropped")
	}
	if r.count("b") != 1 {
		t.Fatalf("expected the other subscription to remain")
	}
	segments, _ := ParsePath("b")
	if got := r.candidates(segments); !reflect.DeepEqual([]*Subscription{other}, got) {
		t.Fatalf("unexpected candidates %v", subscriptionIndexes(got))
	}
}
