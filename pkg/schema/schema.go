// Package schema describes a form's values snapshot as an OpenAPI schema and
// checks a snapshot for missing required answers.
//
// Only required-ness is validated. Option lists and formats appear in the
// exported schema for documentation but are never enforced.
package schema

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/visibility"
)

// ExtensionSection records the owning section name on each property.
const ExtensionSection = "x-formdoc-section"

// Issue is one validation failure.
type Issue struct {
	Field   string `json:"field"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// ValuesSchema describes every field of form. Required lists the fields that
// are required under an empty snapshot.
func ValuesSchema(form model.Form) *openapi3.Schema {
	root := openapi3.NewObjectSchema()
	root.Title = "values"
	sectionOf := make(map[string]string)
	labels := make(map[string]string)
	for _, section := range form.Sections {
		for _, field := range section.FlatFields() {
			if field.Name == "" {
				continue
			}
			sectionOf[field.Name] = section.Name
			labels[field.Name] = field.Label
			root.WithProperty(field.Name, propertySchema(field))
		}
	}
	for name, prop := range root.Properties {
		prop.Value.Description = labels[name]
		prop.Value.Extensions = map[string]any{ExtensionSection: sectionOf[name]}
	}
	root.Required = requiredNames(form, model.Values{})
	return root
}

func propertySchema(field model.Field) *openapi3.Schema {
	var enum []any
	for _, opt := range field.Options {
		enum = append(enum, opt.Value)
	}
	if field.Type == model.FieldTypeCheckbox {
		items := openapi3.NewStringSchema()
		if len(enum) > 0 {
			items.WithEnum(enum...)
		}
		return openapi3.NewArraySchema().WithItems(items)
	}
	prop := openapi3.NewStringSchema()
	switch field.Type {
	case model.FieldTypeEmail:
		prop.WithFormat("email")
	case model.FieldTypeDate:
		prop.WithFormat("date")
	case model.FieldTypeSelect, model.FieldTypeRadio:
		if len(enum) > 0 {
			prop.WithEnum(enum...)
		}
	}
	return prop
}

// Validate reports visible required fields that are absent or empty.
func Validate(form model.Form, values model.Values) Result {
	required := requiredNames(form, values)
	root := openapi3.NewObjectSchema()
	root.Required = required
	labels := make(map[string]string)
	for _, field := range form.Fields() {
		labels[field.Name] = field.Label
	}
	for _, name := range required {
		if isList(form, name) {
			root.WithProperty(name, openapi3.NewArraySchema().WithMinItems(1))
			continue
		}
		root.WithProperty(name, openapi3.NewStringSchema().WithMinLength(1))
	}

	err := root.VisitJSON(document(form, values), openapi3.MultiErrors())
	if err == nil {
		return Result{Valid: true}
	}

	seen := make(map[string]struct{})
	var issues []Issue
	for _, schemaErr := range flatten(err) {
		field := fieldOf(schemaErr)
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		issues = append(issues, Issue{Field: field, Label: labels[field], Message: "is required"})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		return indexOf(required, issues[i].Field) < indexOf(required, issues[j].Field)
	})
	return Result{Valid: len(issues) == 0, Issues: issues}
}

// requiredNames lists required fields in declaration order, deduplicated.
func requiredNames(form model.Form, values model.Values) []string {
	state := visibility.DeriveState(form, values)
	var out []string
	seen := make(map[string]struct{})
	for _, field := range form.Fields() {
		if field.Name == "" || !state.Required(field.Name) {
			continue
		}
		if _, ok := seen[field.Name]; ok {
			continue
		}
		seen[field.Name] = struct{}{}
		out = append(out, field.Name)
	}
	return out
}

// document shapes the snapshot as JSON data: checkbox fields are always
// arrays, everything else a string.
func document(form model.Form, values model.Values) map[string]any {
	out := make(map[string]any, len(values))
	for name, value := range values {
		if isList(form, name) {
			items := make([]any, 0)
			for _, item := range value.Items() {
				if item != "" {
					items = append(items, item)
				}
			}
			out[name] = items
			continue
		}
		out[name] = value.String()
	}
	return out
}

func isList(form model.Form, name string) bool {
	var last model.FieldType
	for _, field := range form.Fields() {
		if field.Name == name {
			last = field.Type
		}
	}
	return last == model.FieldTypeCheckbox
}

func flatten(err error) []*openapi3.SchemaError {
	switch e := err.(type) {
	case openapi3.MultiError:
		var out []*openapi3.SchemaError
		for _, inner := range e {
			out = append(out, flatten(inner)...)
		}
		return out
	case *openapi3.SchemaError:
		return []*openapi3.SchemaError{e}
	default:
		return nil
	}
}

func fieldOf(err *openapi3.SchemaError) string {
	if pointer := err.JSONPointer(); len(pointer) > 0 {
		return pointer[0]
	}
	reason := err.Reason
	if start := strings.Index(reason, `"`); start >= 0 {
		if end := strings.Index(reason[start+1:], `"`); end >= 0 {
			return reason[start+1 : start+1+end]
		}
	}
	return reason
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return len(list)
}
