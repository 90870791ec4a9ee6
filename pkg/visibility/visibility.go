// Package visibility decides whether a schema-driven field is enabled for the
// current record. Fields declare an EnabledWhen rule; disabled fields are
// skipped by validation and left out of submitted payloads.
package visibility

// Evaluator determines whether a field is enabled based on a rule string and
// the values available in ctx.
type Evaluator interface {
	Eval(fieldKey, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values is the current record while
// Extras lets callers inject things such as the user's role or feature flags
// (addressed with the `extras.` prefix).
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldKey, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldKey, rule string, ctx Context) (bool, error) {
	return fn(fieldKey, rule, ctx)
}

// Always enables every field.
var Always Evaluator = EvaluatorFunc(func(string, string, Context) (bool, error) { return true, nil })
