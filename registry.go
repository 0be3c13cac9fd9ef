package appstate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Callback receives the current value of every path of its subscription, in
// the order the paths were given to Subscribe. Missing paths yield nil.
type Callback func(values ...any) error

// Subscription is the handle returned by Subscribe. It identifies one
// registration; subscribing the same callback twice yields two handles.
type Subscription struct {
	index    uint64
	paths    []string
	callback Callback
	store    *Store
}

// Index is the registration index, which fixes notification order.
func (s *Subscription) Index() uint64 {
	return s.index
}

// Paths returns a copy of the subscribed paths.
func (s *Subscription) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Unsubscribe removes the subscription from its store. It reports whether the
// subscription was still registered.
func (s *Subscription) Unsubscribe() bool {
	if s == nil || s.store == nil {
		return false
	}
	return s.store.Unsubscribe(s)
}

// subscriptionRegistry indexes subscriptions by each path they watch. The
// mutex guards the index only; callbacks never run while it is held.
type subscriptionRegistry struct {
	mu     sync.Mutex
	next   uint64
	byPath map[string]mapset.Set[*Subscription]
}

func (r *subscriptionRegistry) add(store *Store, callback Callback, paths []string) (*Subscription, error) {
	if callback == nil || len(paths) == 0 {
		return nil, ErrInvalidSubscription
	}
	for _, path := range paths {
		if _, err := ParsePath(path); err != nil {
			return nil, fmt.Errorf("appstate: subscribe: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byPath == nil {
		r.byPath = map[string]mapset.Set[*Subscription]{}
	}
	r.next++
	sub := &Subscription{
		index:    r.next,
		paths:    append([]string(nil), paths...),
		callback: callback,
		store:    store,
	}
	for _, path := range sub.paths {
		watchers, ok := r.byPath[path]
		if !ok {
			watchers = mapset.NewThreadUnsafeSet[*Subscription]()
			r.byPath[path] = watchers
		}
		watchers.Add(sub)
	}
	return sub, nil
}

// remove drops sub from every path it watches. The handle owns its path list,
// so identity alone pins both the callback and the paths it was given.
func (r *subscriptionRegistry) remove(sub *Subscription) bool {
	if sub == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := false
	for _, path := range sub.paths {
		watchers, ok := r.byPath[path]
		if !ok || !watchers.Contains(sub) {
			continue
		}
		watchers.Remove(sub)
		removed = true
		if watchers.Cardinality() == 0 {
			delete(r.byPath, path)
		}
	}
	return removed
}

// count returns how many subscriptions watch exactly path and nothing else.
func (r *subscriptionRegistry) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	watchers, ok := r.byPath[path]
	if !ok {
		return 0
	}
	total := 0
	watchers.Each(func(sub *Subscription) bool {
		if len(sub.paths) == 1 {
			total++
		}
		return false
	})
	return total
}

// candidates collects the subscriptions affected by a write at changed: those
// watching changed or one of its ancestors (looked up by exact key) and those
// watching a descendant (found by key prefix). A subscription watching several
// matching paths is reached once per path, so the union dedupes it; the result
// is sorted back into registration order.
func (r *subscriptionRegistry) candidates(changed []string) []*Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := mapset.NewThreadUnsafeSet[*Subscription]()
	collect := func(watchers mapset.Set[*Subscription]) {
		watchers.Each(func(sub *Subscription) bool {
			found.Add(sub)
			return false
		})
	}

	for i := 0; i <= len(changed); i++ {
		if watchers, ok := r.byPath[JoinPath(changed[:i])]; ok {
			collect(watchers)
		}
	}
	prefix := JoinPath(changed) + PathSeparator
	for path, watchers := range r.byPath {
		if len(changed) == 0 || strings.HasPrefix(path, prefix) {
			collect(watchers)
		}
	}

	selected := found.ToSlice()
	slices.SortFunc(selected, func(a, b *Subscription) int {
		return cmp.Compare(a.index, b.index)
	})
	return selected
}
