package appstate

import (
	"time"

	"github.com/goliatone/go-appstate/pkg/activity"
	"github.com/google/uuid"
)

// Store is a reactive document addressed by dot-delimited paths. Writes go
// through Set, which notifies every subscription whose paths overlap the
// written path and then recomputes calculated properties, all synchronously
// on the caller's goroutine.
//
// A Store expects to be driven from one goroutine at a time. Its only
// exclusivity contract is the fail-fast mutation guard: a Set issued while
// another Set is running (typically from a subscription callback) returns
// ErrConcurrentMutation unless WithAllowConcurrent(true) was given.
type Store struct {
	id           string
	model        Model
	guard        mutationGuard
	registry     subscriptionRegistry
	calculations calculationSet
	logger       Logger
	emitter      *activity.Emitter
	evaluator    Evaluator
}

// New constructs a Store. Without options it holds an empty document.
func New(opts ...Option) *Store {
	cfg := applyOptions(opts)
	s := &Store{
		id:     uuid.NewString(),
		logger: cfg.logger,
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	s.guard.allowConcurrent = cfg.allowConcurrent
	for _, err := range cfg.configErrs {
		s.logger.LogMutation(MutationLogEvent{Kind: LogKindConfig, StoreID: s.id, Err: err, Message: "option rejected"})
	}

	if cfg.model != nil {
		s.model = cfg.model
		if cfg.data != nil {
			s.logger.LogMutation(MutationLogEvent{
				Kind:    LogKindConfig,
				StoreID: s.id,
				Message: "initial data ignored: custom model configured",
			})
		}
	} else {
		s.model = NewTree(cfg.data)
	}

	s.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: len(cfg.activityHooks) > 0,
		Channel: cfg.activityChannel,
		ActorID: cfg.activityActor,
	})
	s.evaluator = resolveEvaluator(cfg)
	return s
}

// ID returns the identifier stamped on activity events from this store.
func (s *Store) ID() string {
	return s.id
}

// Get returns the value at path, or nil when any segment is missing. The empty
// path returns the whole document. Maps and slices are returned as copies.
func (s *Store) Get(path string) any {
	value, _ := s.Lookup(path)
	return value
}

// Lookup is Get with an explicit presence flag, so a stored nil can be told
// apart from a missing path.
func (s *Store) Lookup(path string) (any, bool) {
	return s.model.Get(path)
}

// Snapshot returns a copy of the whole document.
func (s *Store) Snapshot() map[string]any {
	if model, ok := s.model.(snapshotter); ok {
		return model.Snapshot()
	}
	if root, ok := s.model.Get(""); ok {
		if doc, ok := root.(map[string]any); ok {
			return doc
		}
	}
	return map[string]any{}
}

// Set writes value at path, creating intermediate maps as needed, then
// notifies subscribers and recomputes calculated properties. Writing the empty
// path replaces the whole document, which must then be a map[string]any.
//
// Errors returned by callbacks or compute functions are returned wrapped in
// *NotifyError or *CalculationError; the write itself is not rolled back and
// has already been mirrored to activity hooks.
//
// Reads descend through any string-keyed map and through slices by index,
// but writes only descend through map[string]any: any other non-nil
// intermediate value is a *PathConflictError.
func (s *Store) Set(path string, value any) (err error) {
	start := time.Now()
	event := MutationLogEvent{Kind: LogKindSet, StoreID: s.id, Path: path}
	defer func() {
		event.Duration = time.Since(start)
		event.Err = err
		s.logger.LogMutation(event)
	}()

	segments, err := ParsePath(path)
	if err != nil {
		return err
	}

	release, err := s.guard.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err = s.model.Set(path, value); err != nil {
		return err
	}
	event.ObserverErr = s.mirror(path, activity.SourceSet, "")

	event.Notified, err = s.notify(path, segments)
	if err != nil {
		return err
	}

	event.Calculated, err = s.recompute(path)
	return err
}

// Subscribe registers callback for one or more paths. The callback runs after
// every Set whose path is equal to, an ancestor of, or a descendant of any of
// the given paths. Subscribing to the empty path observes every write.
func (s *Store) Subscribe(callback Callback, paths ...string) (*Subscription, error) {
	return s.registry.add(s, callback, paths)
}

// Unsubscribe removes sub. It reports false when sub belongs to another store
// or was already removed.
func (s *Store) Unsubscribe(sub *Subscription) bool {
	if sub == nil || sub.store != s {
		return false
	}
	return s.registry.remove(sub)
}

// Subscribers counts the subscriptions registered for exactly path alone.
// Subscriptions to several paths are never counted.
func (s *Store) Subscribers(path string) int {
	return s.registry.count(path)
}

// Mutating reports whether a Set is in progress, e.g. when called from a
// subscription callback.
func (s *Store) Mutating() bool {
	return s.guard.held()
}
