package appstate

import (
	"fmt"
	"time"
)

// Evaluate runs expr against a snapshot of the document using the store's
// evaluator. Top-level document keys are variables, so "user.first" reads the
// same value as Get("user.first").
func (s *Store) Evaluate(expr string) (any, error) {
	return s.EvaluateWith(EvalContext{}, expr)
}

// EvaluateWith is Evaluate with caller-supplied args and clock. A nil
// ctx.Snapshot is filled from the store.
func (s *Store) EvaluateWith(ctx EvalContext, expr string) (any, error) {
	if expr == "" {
		return nil, fmt.Errorf("appstate: expression must not be empty")
	}
	if s.evaluator == nil {
		return nil, ErrNoEvaluator
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = s.Snapshot()
	}
	engine := evaluatorEngineName(s.evaluator)
	start := time.Now()
	value, err := s.evaluator.Evaluate(ctx.withDefaults(), expr)
	err = wrapEvaluationError(engine, expr, err)
	s.logger.LogMutation(MutationLogEvent{
		Kind:     LogKindEvaluate,
		StoreID:  s.id,
		Expr:     expr,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func resolveEvaluator(cfg storeConfig) Evaluator {
	if cfg.evaluator != nil {
		return cfg.evaluator
	}
	return NewExprEvaluator(cfg.engineOptions()...)
}

func evaluatorEngineName(e Evaluator) string {
	switch e.(type) {
	case nil:
		return "unknown"
	case *exprEvaluator:
		return "expr"
	case *celEvaluator:
		return "cel"
	default:
		if isJSEvaluator(e) {
			return "js"
		}
		return "custom"
	}
}
