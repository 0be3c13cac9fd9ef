package appstate

import (
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-appstate/pkg/activity"
)

// ComputeFunc derives the value of a calculated property. It receives the
// store for reads; writing to the store from a ComputeFunc fails with
// ErrConcurrentMutation unless concurrent writes are allowed.
type ComputeFunc func(s *Store) (any, error)

// Calculated binds a target path to the function that derives it.
type Calculated struct {
	Path    string
	Compute ComputeFunc
}

// Calculate is shorthand for a Calculated literal.
func Calculate(path string, compute ComputeFunc) Calculated {
	return Calculated{Path: path, Compute: compute}
}

type calculation struct {
	path     string
	segments []string
	compute  ComputeFunc
}

type calculationSet struct {
	mu      sync.Mutex
	entries []calculation
}

func (c *calculationSet) replace(calcs []Calculated) error {
	entries := make([]calculation, 0, len(calcs))
	seen := make(map[string]struct{}, len(calcs))
	for _, calc := range calcs {
		if calc.Compute == nil {
			return fmt.Errorf("appstate: calculated %s has no compute function", describePath(calc.Path))
		}
		segments, err := ParsePath(calc.Path)
		if err != nil {
			return err
		}
		if _, dup := seen[calc.Path]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCalculation, describePath(calc.Path))
		}
		seen[calc.Path] = struct{}{}
		entries = append(entries, calculation{path: calc.Path, segments: segments, compute: calc.Compute})
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}

func (c *calculationSet) snapshot() []calculation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]calculation(nil), c.entries...)
}

// Calculations registers derived paths, replacing any earlier registration.
// Every calculated property is recomputed, in the given order, after every
// successful Set, whether or not its inputs changed. An empty call clears the
// registration.
func (s *Store) Calculations(calcs ...Calculated) error {
	if model, ok := s.model.(CalculatingModel); ok {
		return model.Calculations(calcs...)
	}
	return s.calculations.replace(calcs)
}

// recompute runs under the guard already held by the triggering Set. Each
// result is written and notified like a regular Set but does not trigger a
// further round of recomputation.
func (s *Store) recompute(trigger string) (int, error) {
	calcs := s.calculations.snapshot()
	for i, calc := range calcs {
		written, err := s.recomputeOne(calc, trigger)
		if err != nil {
			return i + written, err
		}
	}
	return len(calcs), nil
}

// recomputeOne reports 1 once the value has been written, even when a
// subscriber then fails.
func (s *Store) recomputeOne(calc calculation, trigger string) (written int, err error) {
	start := time.Now()
	event := MutationLogEvent{Kind: LogKindCalculate, StoreID: s.id, Path: calc.path}
	defer func() {
		event.Duration = time.Since(start)
		event.Err = err
		s.logger.LogMutation(event)
	}()

	value, err := calc.compute(s)
	if err != nil {
		return 0, &CalculationError{Path: calc.path, Err: err}
	}
	if err := s.model.Set(calc.path, value); err != nil {
		return 0, &CalculationError{Path: calc.path, Err: err}
	}
	event.ObserverErr = s.mirror(calc.path, activity.SourceCalculated, trigger)
	event.Notified, err = s.notify(calc.path, calc.segments)
	return 1, err
}

// Expression derives a value by evaluating expr against the store snapshot
// with the store's evaluator.
func Expression(expr string) ComputeFunc {
	return func(s *Store) (any, error) {
		return s.Evaluate(expr)
	}
}

// CompileExpression compiles expr once with evaluator and returns a
// ComputeFunc that runs the compiled program against the store snapshot.
func CompileExpression(evaluator Evaluator, expr string) (ComputeFunc, error) {
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	compiled, err := evaluator.Compile(expr)
	if err != nil {
		return nil, wrapEvaluationError(evaluatorEngineName(evaluator), expr, err)
	}
	return func(s *Store) (any, error) {
		return compiled.Evaluate(EvalContext{Snapshot: s.Snapshot()})
	}, nil
}
