package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MarshalJSON emits a field object, or an array of field objects for rows.
func (i FieldItem) MarshalJSON() ([]byte, error) {
	if i.isRow {
		row := i.row
		if row == nil {
			row = []Field{}
		}
		return json.Marshal(row)
	}
	if i.single == nil {
		return json.Marshal(Field{})
	}
	return json.Marshal(*i.single)
}

// UnmarshalJSON decodes either shape of a canonical field item.
func (i *FieldItem) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var row []Field
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return fmt.Errorf("model: decode field row: %w", err)
		}
		*i = Row(row...)
		return nil
	}
	var field Field
	if err := json.Unmarshal(trimmed, &field); err != nil {
		return fmt.Errorf("model: decode field: %w", err)
	}
	*i = Single(field)
	return nil
}

// MarshalJSON always emits an options array so canonical output is stable.
func (f Field) MarshalJSON() ([]byte, error) {
	type alias Field
	out := alias(f)
	if out.Options == nil {
		out.Options = []Option{}
	}
	return json.Marshal(out)
}

// MarshalJSON always emits a fields array.
func (s Section) MarshalJSON() ([]byte, error) {
	type alias Section
	out := alias(s)
	if out.Fields == nil {
		out.Fields = []FieldItem{}
	}
	return json.Marshal(out)
}

// MarshalJSON always emits a sections array.
func (f Form) MarshalJSON() ([]byte, error) {
	type alias Form
	out := alias(f)
	if out.Sections == nil {
		out.Sections = []Section{}
	}
	return json.Marshal(out)
}

// MarshalJSON always emits a sections array.
func (t Template) MarshalJSON() ([]byte, error) {
	type alias Template
	out := alias(t)
	if out.Sections == nil {
		out.Sections = []TemplateSection{}
	}
	return json.Marshal(out)
}

// MarshalJSON always emits a templates array.
func (c Configuration) MarshalJSON() ([]byte, error) {
	type alias Configuration
	out := alias(c)
	if out.Templates == nil {
		out.Templates = []Template{}
	}
	return json.Marshal(out)
}
