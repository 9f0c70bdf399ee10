package render

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ReservedPrefix marks form inputs that carry request metadata. Field names
// starting with it never reach the values snapshot.
const ReservedPrefix = "_"

// TemplateFieldName is the hidden input selecting which template a form
// submission renders.
const TemplateFieldName = ReservedPrefix + "template"

// HiddenField is one hidden input written next to the form fields.
type HiddenField struct {
	Name  string
	Value string
}

func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// TemplateField carries the selected template label through a submission.
func TemplateField(label string) HiddenField {
	return Hidden(TemplateFieldName, label)
}

// MergeHiddenFields copies base and applies fields over it. Blank names are
// dropped. The result is nil when nothing remains.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	merged := make(map[string]string, len(base)+len(fields))
	put := func(name, value string) {
		if name = strings.TrimSpace(name); name != "" {
			merged[name] = value
		}
	}
	for name, value := range base {
		put(name, value)
	}
	for _, f := range fields {
		put(f.Name, f.Value)
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// SortedHiddenFields lists fields by name so markup is stable.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	var out []HiddenField
	for name, value := range fields {
		if strings.TrimSpace(name) != "" {
			out = append(out, HiddenField{Name: name, Value: value})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SplitSubmission separates reserved metadata inputs from field values. Only
// the first entry of a repeated metadata input is kept.
func SplitSubmission(form url.Values) (fields url.Values, meta map[string]string) {
	fields = make(url.Values, len(form))
	meta = make(map[string]string)
	for key, entries := range form {
		if !strings.HasPrefix(key, ReservedPrefix) {
			fields[key] = entries
			continue
		}
		if len(entries) > 0 {
			meta[key] = entries[0]
		}
	}
	return fields, meta
}
