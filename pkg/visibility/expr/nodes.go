package expr

import (
	"strconv"

	"github.com/goliatone/go-stepform/pkg/visibility"
)

type node interface {
	eval(ctx visibility.Context) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) || n.right.eval(ctx) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) && n.right.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode struct{ path string }

func (n truthyNode) eval(ctx visibility.Context) bool {
	value, _ := resolve(ctx, n.path)
	return truthy(value)
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind literalKind
	raw  string
}

// matches compares a resolved value to the literal, coercing the value to
// the literal's kind so form-posted strings compare equal to numbers.
func (l literal) matches(value any) bool {
	switch l.kind {
	case litNull:
		return isEmpty(value)
	case litBool:
		got, _ := coerceBool(value)
		return got == (l.raw == "true")
	case litNumber:
		want, err := strconv.ParseFloat(l.raw, 64)
		if err != nil {
			return false
		}
		got, ok := coerceNumber(value)
		return ok && got == want
	default:
		return coerceString(value) == l.raw
	}
}

type compareNode struct {
	path   string
	negate bool
	want   literal
}

func (n compareNode) eval(ctx visibility.Context) bool {
	value, _ := resolve(ctx, n.path)
	return n.want.matches(value) != n.negate
}

type inNode struct {
	path string
	set  []literal
}

func (n inNode) eval(ctx visibility.Context) bool {
	value, _ := resolve(ctx, n.path)
	for _, lit := range n.set {
		if lit.matches(value) {
			return true
		}
	}
	return false
}

type hasNode struct {
	path string
	want literal
}

func (n hasNode) eval(ctx visibility.Context) bool {
	value, _ := resolve(ctx, n.path)
	switch items := value.(type) {
	case []any:
		for _, item := range items {
			if n.want.matches(item) {
				return true
			}
		}
	case []string:
		for _, item := range items {
			if n.want.matches(item) {
				return true
			}
		}
	}
	return false
}
