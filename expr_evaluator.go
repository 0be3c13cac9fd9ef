package appstate

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprEvaluator runs expressions with github.com/expr-lang/expr. Programs are
// compiled against an environment that only declares the helper functions, so
// paths missing from the snapshot evaluate to nil instead of failing
// compilation.
type exprEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr. It is the
// default engine of a Store.
func NewExprEvaluator(opts ...EngineOption) Evaluator {
	cfg := applyEngineOptions(opts)
	return &exprEvaluator{cache: cfg.cache, functions: cfg.functions}
}

func (e *exprEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *exprEvaluator) Compile(expression string) (CompiledExpression, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("expr", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &exprCompiled{evaluator: e, program: program, expression: expression}, nil
}

func (e *exprEvaluator) run(ctx EvalContext, expression string, program *exprvm.Program) (any, error) {
	result, err := exprlang.Run(program, e.environment(ctx.withDefaults()))
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, err)
	}
	return result, nil
}

func (e *exprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	key := "expr:" + expression
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	// The declared helpers only fix their types; run binds them to the
	// evaluation's snapshot.
	declared := map[string]any{}
	e.bindFunctions(declared, FunctionContext{})
	program, err := exprlang.Compile(expression, exprlang.Env(declared), exprlang.AllowUndefinedVariables())
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// environment exposes snapshot keys as variables. Helpers shadow document
// keys of the same name.
func (e *exprEvaluator) environment(ctx EvalContext) map[string]any {
	env := make(map[string]any, len(ctx.Snapshot)+4)
	for key, value := range ctx.Snapshot {
		env[key] = value
	}
	env["now"] = ctx.timestamp()
	env["args"] = ctx.Args
	e.bindFunctions(env, newFunctionContext(ctx))
	return env
}

func (e *exprEvaluator) bindFunctions(env map[string]any, fc FunctionContext) {
	env[getFunctionName] = func(path string) any {
		return fc.Get(path)
	}
	if e.functions == nil {
		return
	}
	registry := e.functions
	env[callFunctionName] = func(params ...any) (any, error) {
		return registry.callDispatch(fc, params)
	}
	for _, name := range registry.Names() {
		name := name
		env[name] = func(params ...any) (any, error) {
			return registry.Call(fc, name, params...)
		}
	}
}

type exprCompiled struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
}

func (c *exprCompiled) Evaluate(ctx EvalContext) (any, error) {
	return c.evaluator.run(ctx, c.expression, c.program)
}
