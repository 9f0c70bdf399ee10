// Package document expands template placeholders against a values snapshot.
//
// A placeholder is any text between "{{" and the first following "}}". The
// trimmed token resolves through the form's label map first and falls back
// to being used as a field name. Unresolved tokens become empty strings.
package document

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/visibility"
)

var placeholderPattern = regexp.MustCompile(`\{\{(.+?)\}\}`)

// Document is the rendered text of one template.
type Document struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Result holds rendered documents in template order.
type Result []Document

// ByLabel maps template labels to texts. Templates sharing a label resolve to
// the last one rendered.
func (r Result) ByLabel() map[string]string {
	out := make(map[string]string, len(r))
	for _, doc := range r {
		out[doc.Label] = doc.Text
	}
	return out
}

// Lookup returns the first document with label.
func (r Result) Lookup(label string) (Document, bool) {
	for _, doc := range r {
		if doc.Label == label {
			return doc, true
		}
	}
	return Document{}, false
}

// LabelMap maps every field label of form to its name. A later field with a
// duplicate label replaces the earlier entry.
func LabelMap(form model.Form) map[string]string {
	labels := make(map[string]string)
	for _, field := range form.Fields() {
		labels[field.Label] = field.Name
	}
	return labels
}

// Render renders every template against values.
func Render(templates []model.Template, form model.Form, values model.Values) Result {
	labels := LabelMap(form)
	out := make(Result, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, Document{Label: tpl.Label, Text: renderWith(tpl, labels, values)})
	}
	return out
}

// RenderTemplate renders a single template.
func RenderTemplate(tpl model.Template, form model.Form, values model.Values) string {
	return renderWith(tpl, LabelMap(form), values)
}

// Expand substitutes the placeholders of one content string.
func Expand(content string, labels map[string]string, values model.Values) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		token := strings.TrimSpace(match[2 : len(match)-2])
		return Resolve(token, labels, values)
	})
}

// Resolve looks up the value a token refers to and formats it as text.
func Resolve(token string, labels map[string]string, values model.Values) string {
	name, ok := labels[token]
	if !ok {
		name = token
	}
	value, ok := values.Get(name)
	if !ok {
		return ""
	}
	return value.String()
}

// Tokens lists the trimmed placeholder tokens of content in order of
// appearance, duplicates included.
func Tokens(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}

func renderWith(tpl model.Template, labels map[string]string, values model.Values) string {
	var b strings.Builder
	for _, section := range tpl.Sections {
		if !visibility.Evaluate(section.Condition, values) {
			continue
		}
		b.WriteString(Expand(section.Content, labels, values))
	}
	return b.String()
}
