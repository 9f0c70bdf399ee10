package visibility

import "github.com/goliatone/go-formdoc/pkg/model"

// Kind tells whether a state entry describes a section or a field.
type Kind string

const (
	KindSection Kind = "section"
	KindField   Kind = "field"
)

// ItemState is the derived visibility of one section or field. Required is
// always false for sections.
type ItemState struct {
	Kind     Kind `json:"kind"`
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// State maps section and field names to their derived state. Names shared by
// several items resolve to the last one in declaration order.
type State map[string]ItemState

// Visible reports whether the named item is visible. Unknown names are not.
func (s State) Visible(name string) bool {
	return s[name].Visible
}

// Required reports whether the named field is currently required.
func (s State) Required(name string) bool {
	return s[name].Required
}

// Lookup returns the state recorded for name.
func (s State) Lookup(name string) (ItemState, bool) {
	item, ok := s[name]
	return item, ok
}

// walk visits every section and field in declaration order with its
// cascaded visibility: a field inside a hidden section is hidden regardless
// of its own condition.
func walk(form model.Form, values model.Values, section func(model.Section, bool), field func(model.Field, bool)) {
	for _, sec := range form.Sections {
		sectionVisible := Evaluate(sec.Condition, values)
		if section != nil {
			section(sec, sectionVisible)
		}
		for _, f := range sec.FlatFields() {
			field(f, sectionVisible && Evaluate(f.Condition, values))
		}
	}
}

// DeriveState computes the state map for values. A field inside a hidden
// section is hidden regardless of its own condition, and a hidden field is
// never required.
func DeriveState(form model.Form, values model.Values) State {
	state := make(State)
	walk(form, values,
		func(sec model.Section, visible bool) {
			state[sec.Name] = ItemState{Kind: KindSection, Visible: visible}
		},
		func(f model.Field, visible bool) {
			state[f.Name] = ItemState{Kind: KindField, Visible: visible, Required: visible && f.Required}
		},
	)
	return state
}

// VisibleFields returns, in declaration order, the fields the state map
// reports visible under values. Fields sharing a name follow the entry that
// won in DeriveState.
func VisibleFields(form model.Form, values model.Values) []model.Field {
	state := DeriveState(form, values)
	var out []model.Field
	walk(form, values, nil, func(f model.Field, _ bool) {
		if state.Visible(f.Name) {
			out = append(out, f)
		}
	})
	return out
}
