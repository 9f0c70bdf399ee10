package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Value is a user-entered field value: a single string, or a list of strings
// for checkbox groups and repeated keys.
type Value struct {
	single string
	multi  []string
	isList bool
}

// Text builds a single-string value.
func Text(s string) Value {
	return Value{single: s}
}

// List builds a multi-value.
func List(items ...string) Value {
	return Value{multi: append([]string{}, items...), isList: true}
}

// IsList reports whether the value holds several entries.
func (v Value) IsList() bool {
	return v.isList
}

// Items returns the entries of a list value, or the single string wrapped in a
// slice.
func (v Value) Items() []string {
	if v.isList {
		return append([]string(nil), v.multi...)
	}
	return []string{v.single}
}

// Scalar returns the single string and true, or "" and false for lists.
func (v Value) Scalar() (string, bool) {
	if v.isList {
		return "", false
	}
	return v.single, true
}

// String joins list entries with ", ".
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.multi, ", ")
	}
	return v.single
}

// Empty reports whether the value would render as blank text.
func (v Value) Empty() bool {
	if v.isList {
		return len(v.multi) == 0
	}
	return v.single == ""
}

// Contains reports whether a list (or a single value) holds s.
func (v Value) Contains(s string) bool {
	for _, item := range v.Items() {
		if item == s {
			return true
		}
	}
	return false
}

// Append adds s, promoting a single value to a list.
func (v Value) Append(s string) Value {
	if v.isList {
		return List(append(v.Items(), s)...)
	}
	return List(v.single, s)
}

// MarshalJSON emits a string or an array of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		items := v.multi
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.single)
}

// UnmarshalJSON accepts a string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Text(s)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("model: value must be a string or an array of strings")
	}
	*v = List(items...)
	return nil
}

// Values is a snapshot of field name to entered value. A missing key means the
// field has no value.
type Values map[string]Value

// Get returns the value stored for name.
func (vs Values) Get(name string) (Value, bool) {
	if vs == nil {
		return Value{}, false
	}
	v, ok := vs[name]
	return v, ok
}

// Clone returns a deep copy.
func (vs Values) Clone() Values {
	if vs == nil {
		return Values{}
	}
	out := make(Values, len(vs))
	for k, v := range vs {
		if v.isList {
			out[k] = List(v.multi...)
			continue
		}
		out[k] = v
	}
	return out
}

// Names returns the stored keys sorted.
func (vs Values) Names() []string {
	names := make([]string, 0, len(vs))
	for k := range vs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
