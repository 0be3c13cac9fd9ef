//go:build js_eval

package appstate

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs expressions with goja. Each evaluation gets a fresh
// runtime, so expressions cannot leak state between calls.
type jsEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	cfg := applyEngineOptions(opts)
	return &jsEvaluator{cache: cfg.cache, functions: cfg.functions}
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}

func isJSEvaluator(e Evaluator) bool {
	_, ok := e.(*jsEvaluator)
	return ok
}

func (e *jsEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *jsEvaluator) Compile(expression string) (CompiledExpression, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiled{evaluator: e, expression: expression, program: program}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get("js:" + expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, err)
	}
	if e.cache != nil {
		e.cache.Set("js:"+expression, program)
	}
	return program, nil
}

func (e *jsEvaluator) run(ctx EvalContext, expression string, program *goja.Program) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	if err := e.inject(vm, ctx); err != nil {
		return nil, wrapEvaluationError("js", expression, err)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, err)
	}
	return value.Export(), nil
}

func (e *jsEvaluator) inject(vm *goja.Runtime, ctx EvalContext) error {
	for key, value := range ctx.Snapshot {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	if err := vm.Set("now", ctx.timestamp()); err != nil {
		return err
	}
	if err := vm.Set("args", ctx.Args); err != nil {
		return err
	}
	fc := newFunctionContext(ctx)
	if err := vm.Set(getFunctionName, func(path string) any {
		return fc.Get(path)
	}); err != nil {
		return err
	}
	if e.functions == nil {
		return nil
	}
	registry := e.functions
	if err := vm.Set(callFunctionName, func(params ...any) (any, error) {
		return registry.callDispatch(fc, params)
	}); err != nil {
		return err
	}
	for _, name := range registry.Names() {
		name := name
		if err := vm.Set(name, func(params ...any) (any, error) {
			return registry.Call(fc, name, params...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiled struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (c *jsCompiled) Evaluate(ctx EvalContext) (any, error) {
	return c.evaluator.run(ctx, c.expression, c.program)
}
