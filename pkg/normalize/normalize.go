// Package normalize turns loosely shaped configuration documents into the
// canonical model. Every function here is total: malformed input is absorbed
// by defaulting field by field, never reported as an error, so partially
// authored documents still produce a usable configuration.
//
// Input is whatever encoding/json or gopkg.in/yaml.v3 decodes into an `any`:
// maps, slices, strings, numbers, booleans and nil.
package normalize

import (
	"github.com/goliatone/go-formdoc/pkg/model"
)

// UnnamedTemplate labels templates that do not carry a label of their own.
const UnnamedTemplate = "名称未設定"

// Configuration normalizes a whole document. The legacy single "template"
// key is promoted to a one-element template list when "templates" is absent.
func Configuration(raw any) model.Configuration {
	doc := asMap(raw)
	cfg := model.Configuration{
		Form:      Form(doc["form"]),
		Templates: []model.Template{},
	}
	templates, ok := asSlice(doc["templates"])
	if !ok {
		if legacy, found := doc["template"]; found && legacy != nil {
			templates = []any{legacy}
		}
	}
	for _, tpl := range templates {
		cfg.Templates = append(cfg.Templates, Template(tpl))
	}
	return cfg
}

// Form normalizes the form block.
func Form(raw any) model.Form {
	doc := asMap(raw)
	form := model.Form{Sections: []model.Section{}}
	sections, _ := asSlice(doc["sections"])
	for _, section := range sections {
		form.Sections = append(form.Sections, Section(section))
	}
	return form
}

// Section normalizes a form section, keeping row nesting intact.
func Section(raw any) model.Section {
	doc := asMap(raw)
	name, label := nameLabel(doc)
	section := model.Section{
		Name:      name,
		Label:     label,
		Condition: Condition(doc["condition"]),
		Fields:    []model.FieldItem{},
	}
	items, _ := asSlice(doc["fields"])
	for _, item := range items {
		if row, ok := asSlice(item); ok {
			fields := make([]model.Field, 0, len(row))
			for _, f := range row {
				fields = append(fields, Field(f))
			}
			section.Fields = append(section.Fields, model.Row(fields...))
			continue
		}
		section.Fields = append(section.Fields, model.Single(Field(item)))
	}
	return section
}

// Field normalizes one field.
func Field(raw any) model.Field {
	doc := asMap(raw)
	name, label := nameLabel(doc)
	fieldType := model.FieldTypeText
	if t := text(doc["type"]); t != "" {
		fieldType = model.FieldType(t)
	}
	field := model.Field{
		Name:      name,
		Label:     label,
		Type:      fieldType,
		Required:  truthy(doc["required"]),
		Options:   []model.Option{},
		Condition: Condition(doc["condition"]),
	}
	options, _ := asSlice(doc["options"])
	for _, opt := range options {
		field.Options = append(field.Options, Option(opt))
	}
	return field
}

// Option normalizes a bare string or a value/label object.
func Option(raw any) model.Option {
	if s, ok := raw.(string); ok {
		return model.Option{Value: s, Label: s}
	}
	doc := asMap(raw)
	label := text(doc["label"])
	value := text(doc["value"])
	if value == "" {
		value = label
	}
	return model.Option{Value: value, Label: label}
}

// TemplateSection normalizes one gated block of template text.
func TemplateSection(raw any) model.TemplateSection {
	doc := asMap(raw)
	name, label := nameLabel(doc)
	content, _ := doc["content"].(string)
	return model.TemplateSection{
		Name:      name,
		Label:     label,
		Condition: Condition(doc["condition"]),
		Content:   content,
	}
}

// Template normalizes a template and its sections.
func Template(raw any) model.Template {
	doc := asMap(raw)
	label := text(doc["label"])
	if label == "" {
		label = UnnamedTemplate
	}
	tpl := model.Template{Label: label, Sections: []model.TemplateSection{}}
	sections, _ := asSlice(doc["sections"])
	for _, section := range sections {
		tpl.Sections = append(tpl.Sections, TemplateSection(section))
	}
	return tpl
}

// nameLabel applies the mutual name/label fallback.
func nameLabel(doc map[string]any) (string, string) {
	name := text(doc["name"])
	label := text(doc["label"])
	if name == "" {
		name = label
	}
	if label == "" {
		label = name
	}
	return name, label
}
