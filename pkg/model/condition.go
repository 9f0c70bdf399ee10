package model

import (
	"encoding/json"
	"fmt"
)

// Mode selects how a Condition combines its expressions.
type Mode int

const (
	// ModeNone marks an absent condition; the guarded element is always shown.
	ModeNone Mode = iota
	// ModeAll requires every expression to match.
	ModeAll
	// ModeAny requires at least one expression to match.
	ModeAny
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "and"
	case ModeAny:
		return "or"
	default:
		return "none"
	}
}

// Expression compares the value stored under Field against Value using strict
// equality. Unset marks an expression whose value was omitted; it matches only
// when the field itself has no value.
type Expression struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Unset bool   `json:"-"`
}

// Condition is a conjunction or disjunction of expressions. The zero value is
// unconditional.
type Condition struct {
	Mode        Mode
	Expressions []Expression
}

// All builds a conjunction.
func All(exprs ...Expression) Condition {
	return Condition{Mode: ModeAll, Expressions: append([]Expression{}, exprs...)}
}

// Any builds a disjunction.
func Any(exprs ...Expression) Condition {
	return Condition{Mode: ModeAny, Expressions: append([]Expression{}, exprs...)}
}

// Eq builds an expression matching field == value.
func Eq(field string, value any) Expression {
	return Expression{Field: field, Value: value}
}

// IsZero reports whether the condition is absent.
func (c Condition) IsZero() bool {
	return c.Mode == ModeNone
}

// MarshalJSON emits null, {"and":[...]} or {"or":[...]}.
func (c Condition) MarshalJSON() ([]byte, error) {
	exprs := c.Expressions
	if exprs == nil {
		exprs = []Expression{}
	}
	switch c.Mode {
	case ModeAll:
		return json.Marshal(map[string][]Expression{"and": exprs})
	case ModeAny:
		return json.Marshal(map[string][]Expression{"or": exprs})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts the canonical object form only. Raw authoring shapes
// go through pkg/normalize.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw struct {
		And *[]Expression `json:"and"`
		Or  *[]Expression `json:"or"`
	}
	if string(data) == "null" {
		*c = Condition{}
		return nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: decode condition: %w", err)
	}
	switch {
	case raw.And != nil:
		*c = All(*raw.And...)
	case raw.Or != nil:
		*c = Any(*raw.Or...)
	default:
		*c = Condition{}
	}
	return nil
}

// MarshalJSON omits the value key for unset expressions.
func (e Expression) MarshalJSON() ([]byte, error) {
	if e.Unset {
		return json.Marshal(struct {
			Field string `json:"field"`
		}{e.Field})
	}
	return json.Marshal(struct {
		Field string `json:"field"`
		Value any    `json:"value"`
	}{e.Field, e.Value})
}

// UnmarshalJSON records a missing value key as Unset.
func (e *Expression) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("model: decode expression: %w", err)
	}
	*e = Expression{}
	if field, ok := raw["field"]; ok {
		if err := json.Unmarshal(field, &e.Field); err != nil {
			return fmt.Errorf("model: decode expression field: %w", err)
		}
	}
	value, ok := raw["value"]
	if !ok {
		e.Unset = true
		return nil
	}
	return json.Unmarshal(value, &e.Value)
}
