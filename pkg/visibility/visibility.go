// Package visibility decides whether a conditional field is shown for the
// current form values.
package visibility

// Evaluator determines whether a field should be visible based on a rule
// string and the current form values.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the form values keyed
// by top-level field name. Scope, when set, is the dotted path of the record
// the field lives in (e.g. "teamMembers.1"); identifiers are resolved relative
// to it first and then from the form root. Extras carries caller metadata
// reachable through the "extras." prefix.
type Context struct {
	Values map[string]any
	Scope  string
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Always is an Evaluator that shows every field.
var Always Evaluator = EvaluatorFunc(func(string, string, Context) (bool, error) {
	return true, nil
})
