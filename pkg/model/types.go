package model

// FieldType names the input kind of a field. Unknown kinds are preserved as-is
// and rendered by adapters as single-line text inputs.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeDate     FieldType = "date"
	FieldTypeTel      FieldType = "tel"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

// KnownFieldTypes lists the input kinds adapters render natively.
var KnownFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypeDate,
	FieldTypeTel,
	FieldTypeNumber,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeRadio,
	FieldTypeCheckbox,
}

// Known reports whether the type is one of KnownFieldTypes.
func (t FieldType) Known() bool {
	for _, known := range KnownFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Choice reports whether the type picks from a list of options.
func (t FieldType) Choice() bool {
	return t == FieldTypeSelect || t == FieldTypeRadio || t == FieldTypeCheckbox
}

// Option is a value/label pair offered by select, radio and checkbox fields.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one addressable input. Name keys the values snapshot, Label is what
// authors see and what template placeholders usually reference.
type Field struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Required  bool      `json:"required"`
	Options   []Option  `json:"options"`
	Condition Condition `json:"condition"`
}

// FieldItem is a single entry of Section.Fields: either one field or a row of
// fields laid out side by side.
type FieldItem struct {
	single *Field
	row    []Field
	isRow  bool
}

// Single wraps a field as a standalone FieldItem.
func Single(field Field) FieldItem {
	f := field
	return FieldItem{single: &f}
}

// Row groups fields into one layout row.
func Row(fields ...Field) FieldItem {
	return FieldItem{row: append([]Field{}, fields...), isRow: true}
}

// IsRow reports whether the item is a layout row.
func (i FieldItem) IsRow() bool {
	return i.isRow
}

// Fields returns the fields the item holds, one for a single item and every
// member for a row.
func (i FieldItem) Fields() []Field {
	if i.isRow {
		return append([]Field(nil), i.row...)
	}
	if i.single == nil {
		return nil
	}
	return []Field{*i.single}
}

// Section is a labeled group of fields sharing one visibility condition.
type Section struct {
	Name      string      `json:"name"`
	Label     string      `json:"label"`
	Condition Condition   `json:"condition"`
	Fields    []FieldItem `json:"fields"`
}

// FlatFields returns the section's fields with rows flattened in order.
func (s Section) FlatFields() []Field {
	var out []Field
	for _, item := range s.Fields {
		out = append(out, item.Fields()...)
	}
	return out
}

// Form is the ordered list of sections rendered as one data-entry form.
type Form struct {
	Sections []Section `json:"sections"`
}

// Fields returns every field of every section in declaration order, rows
// flattened.
func (f Form) Fields() []Field {
	var out []Field
	for _, section := range f.Sections {
		out = append(out, section.FlatFields()...)
	}
	return out
}

// TemplateSection is a block of literal text with {{placeholder}} tokens,
// emitted only when its condition holds.
type TemplateSection struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Condition Condition `json:"condition"`
	Content   string    `json:"content"`
}

// Template is a labeled document assembled from template sections.
type Template struct {
	Label    string            `json:"label"`
	Sections []TemplateSection `json:"sections"`
}

// Configuration is the aggregate owning the form and its templates.
type Configuration struct {
	Form      Form       `json:"form"`
	Templates []Template `json:"templates"`
}

// FieldOption is a unique field name paired with its label, used by editors
// to offer condition targets.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldOptions lists distinct, non-empty field names in declaration order.
// The first field using a name supplies its label.
func FieldOptions(form Form) []FieldOption {
	var out []FieldOption
	seen := make(map[string]struct{})
	for _, field := range form.Fields() {
		if field.Name == "" {
			continue
		}
		if _, ok := seen[field.Name]; ok {
			continue
		}
		seen[field.Name] = struct{}{}
		label := field.Label
		if label == "" {
			label = field.Name
		}
		out = append(out, FieldOption{Value: field.Name, Label: label})
	}
	return out
}
