package appstate

import "time"

// EvalContext carries the inputs of one expression evaluation. Snapshot keys
// are exposed to expressions as top-level variables, next to now and args.
type EvalContext struct {
	Snapshot map[string]any
	Now      *time.Time
	Args     map[string]any
}

func (ctx EvalContext) withDefaults() EvalContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = map[string]any{}
	}
	return ctx
}

func (ctx EvalContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

// Evaluator executes expressions against a document snapshot.
type Evaluator interface {
	Evaluate(ctx EvalContext, expr string) (any, error)
	Compile(expr string) (CompiledExpression, error)
}

// CompiledExpression is a reusable program produced by Evaluator.Compile.
type CompiledExpression interface {
	Evaluate(ctx EvalContext) (any, error)
}
