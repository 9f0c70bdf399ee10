// Package visibility evaluates conditions against a values snapshot and
// derives which sections and fields of a form are visible and required.
//
// Both the form-state path and the document renderer call Evaluate, so the
// two never disagree about what a condition means.
package visibility

import "github.com/goliatone/go-formdoc/pkg/model"

// Evaluate reports whether cond holds for values. An absent condition is
// true, an empty "and" is true and an empty "or" is false.
func Evaluate(cond model.Condition, values model.Values) bool {
	switch cond.Mode {
	case model.ModeAll:
		for _, expr := range cond.Expressions {
			if !Match(expr, values) {
				return false
			}
		}
		return true
	case model.ModeAny:
		for _, expr := range cond.Expressions {
			if Match(expr, values) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Match applies strict equality between the stored value and the expression
// value. List values never equal a scalar, and non-string comparison values
// never equal entered text.
func Match(expr model.Expression, values model.Values) bool {
	stored, ok := values.Get(expr.Field)
	if expr.Unset {
		return !ok
	}
	if !ok {
		return false
	}
	want, isString := expr.Value.(string)
	if !isString {
		return false
	}
	got, scalar := stored.Scalar()
	return scalar && got == want
}
