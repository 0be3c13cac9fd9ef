package appstate

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConcurrentMutation is returned by Set when another mutation is still
	// in progress and concurrent writes were not enabled.
	ErrConcurrentMutation = errors.New("appstate: cannot set while another set is in progress")
	ErrInvalidPath        = errors.New("appstate: invalid path")
	ErrInvalidRoot        = errors.New("appstate: root value must be a map[string]any")
	// ErrInvalidSubscription reports a Subscribe call without paths or callback.
	ErrInvalidSubscription  = errors.New("appstate: subscription requires a callback and at least one path")
	ErrDuplicateCalculation = errors.New("appstate: calculated path registered twice")
	ErrNoEvaluator          = errors.New("appstate: evaluator not configured")
	ErrInvalidShortcut      = errors.New("appstate: shortcut path must be a string")
	ErrNotFound             = errors.New("appstate: path not found")
	ErrUnknownFunction      = errors.New("appstate: function not registered")
	// ErrInvalidFunction reports a registration with a nil function, a name
	// that is not an expression identifier, a reserved name or a duplicate.
	ErrInvalidFunction = errors.New("appstate: invalid function registration")
)

// PathConflictError is returned when a write would have to descend through an
// existing value that is not a map[string]any. Typed maps such as
// map[string]string can be read through but not written through.
type PathConflictError struct {
	Path    string
	Segment string
	Value   any
}

func (e *PathConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("appstate: set %s: segment %q holds %T, not a map[string]any", describePath(e.Path), e.Segment, e.Value)
}

// NotifyError wraps an error returned by a subscription callback.
type NotifyError struct {
	Path         string
	Subscription uint64
	Err          error
}

func (e *NotifyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("appstate: notify %s subscription=%d: %v", describePath(e.Path), e.Subscription, e.Err)
}

func (e *NotifyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CalculationError wraps an error returned by a calculated property.
type CalculationError struct {
	Path string
	Err  error
}

func (e *CalculationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("appstate: calculate %s: %v", describePath(e.Path), e.Err)
}

func (e *CalculationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("appstate: %s evaluator %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describePath(path string) string {
	if path == "" {
		return "path=<root>"
	}
	return fmt.Sprintf("path=%q", path)
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "appstate:") {
		return err
	}
	return fmt.Errorf("appstate: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
