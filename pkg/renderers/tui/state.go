package tui

import (
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/visibility"
)

// State tracks the values collected during a session along with errors
// supplied by the caller. Visibility is re-derived from the values on demand.
type State struct {
	form   model.Form
	values model.Values
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(form model.Form, prefill model.Values, errs map[string][]string) *State {
	values := prefill.Clone()
	if values == nil {
		values = model.Values{}
	}
	return &State{
		form:   form,
		values: values,
		errors: cloneErrors(errs),
	}
}

// Values returns the collected snapshot (mutable).
func (s *State) Values() model.Values {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a field name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// Derive computes visibility and required state from the current values.
func (s *State) Derive() visibility.State {
	return visibility.DeriveState(s.form, s.values)
}

// Default returns the prefilled text for a field, or "".
func (s *State) Default(name string) string {
	value, ok := s.values.Get(name)
	if !ok {
		return ""
	}
	return value.String()
}

// Set stores a single answer. Blank answers remove the field so it reads as
// unanswered.
func (s *State) Set(name, answer string) {
	if strings.TrimSpace(answer) == "" {
		delete(s.values, name)
		delete(s.errors, name)
		return
	}
	s.values[name] = model.Text(answer)
	delete(s.errors, name)
}

// SetList stores a multi-select answer the way a submitted form would carry
// it: nothing selected removes the field, one selection is plain text.
func (s *State) SetList(name string, items []string) {
	delete(s.errors, name)
	switch len(items) {
	case 0:
		delete(s.values, name)
	case 1:
		s.values[name] = model.Text(items[0])
	default:
		s.values[name] = model.List(items...)
	}
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}
