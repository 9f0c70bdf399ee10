package normalize

import "github.com/goliatone/go-formdoc/pkg/model"

// Condition normalizes a visibility condition. A bare array is shorthand for
// an "and" list. When both keys are present "and" wins. Any other shape is
// unconditional.
func Condition(raw any) model.Condition {
	if raw == nil {
		return model.Condition{}
	}
	if list, ok := asSlice(raw); ok {
		return model.All(expressions(list)...)
	}
	doc := asMap(raw)
	if list, ok := asSlice(doc["and"]); ok {
		return model.All(expressions(list)...)
	}
	if list, ok := asSlice(doc["or"]); ok {
		return model.Any(expressions(list)...)
	}
	return model.Condition{}
}

// Expression normalizes a single equality test. A missing value key yields an
// unset expression.
func Expression(raw any) model.Expression {
	doc := asMap(raw)
	expr := model.Expression{Field: scalarText(doc["field"])}
	value, ok := doc["value"]
	if !ok {
		expr.Unset = true
		return expr
	}
	expr.Value = canonicalScalar(value)
	return expr
}

func expressions(list []any) []model.Expression {
	out := make([]model.Expression, 0, len(list))
	for _, item := range list {
		out = append(out, Expression(item))
	}
	return out
}
