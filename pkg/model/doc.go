// Package model defines the canonical configuration consumed by the state
// deriver, the document renderer and every output adapter. Values in this
// package are produced by pkg/normalize and treated as immutable: callers
// replace a Configuration wholesale instead of editing it in place.
//
// A Configuration carries one Form and one or more Templates. Form sections
// hold FieldItems, each of which is either a single Field or a Row of fields
// rendered side by side. Rows are a layout hint only; Form.Fields flattens them
// so visibility and placeholder resolution never see the nesting.
//
// Conditions compare field names against scalar values. The zero Condition is
// unconditional, ModeAll requires every expression to match (vacuously true
// when empty) and ModeAny requires at least one (false when empty).
package model
