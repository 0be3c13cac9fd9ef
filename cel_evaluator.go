package appstate

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/functions"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// celChecked is a type-checked expression. Helper implementations are bound
// per evaluation, so only the declarations live in env.
type celChecked struct {
	env *celgo.Env
	ast *celgo.Ast
}

// celEvaluator type-checks against the top-level keys of the snapshot, so an
// expression is checked once per distinct key set. Registry functions take
// their arguments as a single list: name([a, b]).
type celEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...EngineOption) Evaluator {
	cfg := applyEngineOptions(opts)
	return &celEvaluator{cache: cfg.cache, functions: cfg.functions}
}

func (e *celEvaluator) Evaluate(ctx EvalContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaults()
	checked, err := e.loadOrCheck(expression, ctx.Snapshot)
	if err != nil {
		return nil, err
	}
	program, err := checked.env.Program(checked.ast, celgo.Functions(e.overloads(newFunctionContext(ctx))...))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, err)
	}
	out, _, err := program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, err)
	}
	return celNative(out), nil
}

// Compile parses expression up front to surface syntax errors. Type checking
// waits for the first snapshot.
func (e *celEvaluator) Compile(expression string) (CompiledExpression, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", fmt.Errorf("expression must not be empty"))
	}
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, issues.Err())
	}
	return &celCompiled{evaluator: e, expression: expression}, nil
}

func (e *celEvaluator) loadOrCheck(expression string, snapshot map[string]any) (*celChecked, error) {
	key := celCacheKey(expression, snapshot)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if checked, ok := cached.(*celChecked); ok {
				return checked, nil
			}
		}
	}

	env, err := e.buildEnv(snapshot)
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, issues.Err())
	}

	checked := &celChecked{env: env, ast: ast}
	if e.cache != nil {
		e.cache.Set(key, checked)
	}
	return checked, nil
}

func (e *celEvaluator) buildEnv(snapshot map[string]any) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Function(getFunctionName,
			celgo.Overload(getFunctionName+"_string", []*celgo.Type{celgo.StringType}, celgo.DynType),
		),
	}
	for key := range snapshot {
		if key == "now" || key == "args" {
			continue
		}
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	for _, name := range e.functions.Names() {
		opts = append(opts, celgo.Function(name,
			celgo.Overload(name+"_list", []*celgo.Type{celgo.ListType(celgo.DynType)}, celgo.DynType),
		))
	}
	return celgo.NewEnv(opts...)
}

// overloads binds get and the registry functions to fc. Each is registered
// under both its function name and its overload id.
func (e *celEvaluator) overloads(fc FunctionContext) []*functions.Overload {
	get := func(arg ref.Val) ref.Val {
		path, ok := arg.Value().(string)
		if !ok {
			return types.NewErr("appstate: get expects a string path")
		}
		return celValue(fc.Get(path))
	}
	out := []*functions.Overload{
		{Operator: getFunctionName, Unary: get},
		{Operator: getFunctionName + "_string", Unary: get},
	}
	for _, name := range e.functions.Names() {
		binding := e.binding(fc, name)
		out = append(out,
			&functions.Overload{Operator: name, Unary: binding},
			&functions.Overload{Operator: name + "_list", Unary: binding},
		)
	}
	return out
}

func (e *celEvaluator) activation(ctx EvalContext) map[string]any {
	activation := make(map[string]any, len(ctx.Snapshot)+2)
	for key, value := range ctx.Snapshot {
		activation[key] = value
	}
	activation["now"] = ctx.timestamp()
	activation["args"] = ctx.Args
	return activation
}

func (e *celEvaluator) binding(fc FunctionContext, name string) func(ref.Val) ref.Val {
	return func(arg ref.Val) ref.Val {
		native, err := arg.ConvertToNative(reflect.TypeOf([]any{}))
		if err != nil {
			return types.NewErr("appstate: %s: %v", name, err)
		}
		args, _ := native.([]any)
		result, err := e.functions.Call(fc, name, args...)
		if err != nil {
			return types.NewErr("appstate: %s: %v", name, err)
		}
		return celValue(result)
	}
}

func celValue(value any) ref.Val {
	if value == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(value)
}

type celCompiled struct {
	evaluator  *celEvaluator
	expression string
}

func (c *celCompiled) Evaluate(ctx EvalContext) (any, error) {
	return c.evaluator.Evaluate(ctx, c.expression)
}

// celNative converts CEL aggregates back to plain Go containers so results
// can be stored in the document.
func celNative(out ref.Val) any {
	switch out.(type) {
	case traits.Lister:
		if native, err := out.ConvertToNative(reflect.TypeOf([]any{})); err == nil {
			return native
		}
	case traits.Mapper:
		if native, err := out.ConvertToNative(reflect.TypeOf(map[string]any{})); err == nil {
			return native
		}
	}
	if out == types.NullValue {
		return nil
	}
	return out.Value()
}

func celCacheKey(expression string, snapshot map[string]any) string {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return "cel:" + strings.Join(keys, ",") + ":" + expression
}
