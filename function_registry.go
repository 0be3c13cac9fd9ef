package appstate

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Names bound by every engine. They cannot be registered.
const (
	getFunctionName  = "get"
	callFunctionName = "call"
)

// Function is a helper callable from expressions. fc exposes the snapshot the
// calling expression runs against.
type Function func(fc FunctionContext, args ...any) (any, error)

// FunctionContext is handed to every Function call. It reads the snapshot of
// the evaluation, never the live store.
type FunctionContext struct {
	eval EvalContext
}

func newFunctionContext(ctx EvalContext) FunctionContext {
	return FunctionContext{eval: ctx.withDefaults()}
}

// Get returns the value at path in the snapshot, or nil when it is missing or
// path is invalid. Expressions reach it as get("a.b.c").
func (fc FunctionContext) Get(path string) any {
	segments, err := ParsePath(path)
	if err != nil {
		return nil
	}
	value, _ := readPath(fc.eval.Snapshot, segments)
	return value
}

// Now is the evaluation clock.
func (fc FunctionContext) Now() time.Time {
	return fc.eval.timestamp()
}

// Arg returns the caller-supplied argument name, or nil.
func (fc FunctionContext) Arg(name string) any {
	return fc.eval.Args[name]
}

// FunctionRegistry holds expression helpers by name. Names are case-sensitive
// identifiers so that every engine can call them directly.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: map[string]Function{}}
}

// Register adds fn under name. get and call are reserved.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	switch {
	case fn == nil:
		return fmt.Errorf("%w: %q is nil", ErrInvalidFunction, name)
	case !isIdentifier(name):
		return fmt.Errorf("%w: %q is not an identifier", ErrInvalidFunction, name)
	case name == getFunctionName || name == callFunctionName:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidFunction, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = map[string]Function{}
	}
	if _, exists := r.functions[name]; exists {
		return fmt.Errorf("%w: %q already registered", ErrInvalidFunction, name)
	}
	r.functions[name] = fn
	return nil
}

// Clone copies the registry so later registrations do not leak into engines
// already built from it.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewFunctionRegistry()
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Call runs the function registered under name with fc.
func (r *FunctionRegistry) Call(fc FunctionContext, name string, args ...any) (any, error) {
	var fn Function
	if r != nil {
		r.mu.RLock()
		fn = r.functions[name]
		r.mu.RUnlock()
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}
	return fn(fc, args...)
}

// Names returns the registered names in sorted order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// callDispatch backs the call(name, args...) builtin.
func (r *FunctionRegistry) callDispatch(fc FunctionContext, params []any) (any, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("appstate: call requires a function name")
	}
	name, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("appstate: call name must be a string, got %T", params[0])
	}
	return r.Call(fc, name, params[1:]...)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// WithFunctionRegistry exposes a copy of registry to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *storeConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the default evaluator. A
// rejected registration is reported as a config log event by New.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *storeConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.configErrs = append(cfg.configErrs, err)
		}
	}
}
