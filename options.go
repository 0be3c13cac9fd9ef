package appstate

import (
	"strings"

	"github.com/goliatone/go-appstate/pkg/activity"
)

// Option configures a Store at construction time.
type Option func(*storeConfig)

type storeConfig struct {
	data            map[string]any
	model           Model
	allowConcurrent bool
	logger          Logger
	activityHooks   activity.Hooks
	activityChannel string
	activityActor   string
	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	configErrs      []error
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithData seeds the built-in document. The map is copied; later changes to
// data are not seen by the store.
func WithData(data map[string]any) Option {
	return func(cfg *storeConfig) {
		cfg.data = data
	}
}

// WithModel replaces the built-in Tree. WithData is ignored when a model is set.
func WithModel(model Model) Option {
	return func(cfg *storeConfig) {
		cfg.model = model
	}
}

// WithAllowConcurrent disables the fail-fast check for writes issued while
// another write is in progress. Nested writes then apply immediately with no
// isolation; the last write to a path wins.
func WithAllowConcurrent(allow bool) Option {
	return func(cfg *storeConfig) {
		cfg.allowConcurrent = allow
	}
}

// WithActivityHooks mirrors committed mutations to hooks. Hook failures are
// logged and never returned from Set.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *storeConfig) {
		cfg.activityHooks = normalized
	}
}

// WithActivityChannel overrides the channel stamped on mirrored events.
func WithActivityChannel(channel string) Option {
	return func(cfg *storeConfig) {
		cfg.activityChannel = strings.TrimSpace(channel)
	}
}

// WithActivityActor sets the actor id stamped on mirrored events.
func WithActivityActor(actorID string) Option {
	return func(cfg *storeConfig) {
		cfg.activityActor = strings.TrimSpace(actorID)
	}
}

// WithEvaluator sets the expression engine used by Expression and Evaluate.
// Defaults to the expr-lang engine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *storeConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares a compiled program cache with the default evaluator.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *storeConfig) {
		cfg.programCache = cache
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
