// Package expr implements the rule language used by VisibleIf and guard
// conditions.
//
// Supported forms:
//   - truthiness: `skipIdea`, `!skipIdea`
//   - comparison: `college == "Other"`, `teamSize != 1`, `resume == null`
//   - membership: `role in ["founder", "co-founder"]`
//   - array contains: `domains has "other"`
//   - composition: `a && (b || !c)`
//
// Identifiers are dotted paths into visibility.Context.Values, resolved
// against Context.Scope first. The `extras.` prefix reads Context.Extras.
package expr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-stepform/pkg/visibility"
)

// Evaluator parses rules once and caches the compiled tree.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]node
}

// New returns an Evaluator.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]node)}
}

var _ visibility.Evaluator = (*Evaluator)(nil)

// Eval reports whether rule holds for ctx. An empty rule always holds.
func (e *Evaluator) Eval(fieldPath, rule string, ctx visibility.Context) (bool, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return true, nil
	}
	root, err := e.compile(rule)
	if err != nil {
		if fieldPath != "" {
			return false, fmt.Errorf("%w (field %s)", err, fieldPath)
		}
		return false, err
	}
	return root.eval(ctx), nil
}

// Check parses rule without evaluating it.
func (e *Evaluator) Check(rule string) error {
	if strings.TrimSpace(rule) == "" {
		return nil
	}
	_, err := e.compile(strings.TrimSpace(rule))
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	e.mu.RLock()
	cached, ok := e.cache[rule]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tokens, err := tokenize(rule)
	if err != nil {
		return nil, err
	}
	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.cache == nil {
		e.cache = make(map[string]node)
	}
	e.cache[rule] = root
	e.mu.Unlock()
	return root, nil
}
