package normalize

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

func decode(t *testing.T, doc string) any {
	t.Helper()
	var raw any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return raw
}

func TestOption(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want model.Option
	}{
		{"bare string", "個人", model.Option{Value: "個人", Label: "個人"}},
		{"value and label", map[string]any{"value": "p", "label": "個人"}, model.Option{Value: "p", Label: "個人"}},
		{"label only", map[string]any{"label": "L"}, model.Option{Value: "L", Label: "L"}},
		{"value only", map[string]any{"value": "v"}, model.Option{Value: "v", Label: ""}},
		{"garbage", 42.0, model.Option{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, Option(tc.raw)); diff != "" {
				t.Fatalf("option mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldDefaults(t *testing.T) {
	got := Field(decode(t, `{"label":"メールアドレス"}`))
	want := model.Field{
		Name:    "メールアドレス",
		Label:   "メールアドレス",
		Type:    model.FieldTypeText,
		Options: []model.Option{},
	}
	if diff := cmp.Diff(want, got, testsupport.ModelOptions); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}

	got = Field(decode(t, `{"name":"email","type":"email","required":1,"options":["a",{"label":"b"}]}`))
	if got.Label != "email" || got.Type != model.FieldTypeEmail || !got.Required {
		t.Fatalf("unexpected field %+v", got)
	}
	if len(got.Options) != 2 || got.Options[1].Value != "b" {
		t.Fatalf("unexpected options %+v", got.Options)
	}

	if got := Field(nil); got.Name != "" || got.Type != model.FieldTypeText {
		t.Fatalf("nil field should default, got %+v", got)
	}
	if got := Field(decode(t, `{"name":{"x":1},"options":"nope"}`)); got.Name != "" || len(got.Options) != 0 {
		t.Fatalf("non-scalar name should be ignored, got %+v", got)
	}
}

func TestConditionShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want model.Condition
	}{
		{"null", `null`, model.Condition{}},
		{"array shorthand", `[{"field":"a","value":"1"}]`, model.All(model.Eq("a", "1"))},
		{"and", `{"and":[{"field":"a","value":"1"}]}`, model.All(model.Eq("a", "1"))},
		{"or", `{"or":[{"field":"a","value":"1"},{"field":"b","value":"2"}]}`, model.Any(model.Eq("a", "1"), model.Eq("b", "2"))},
		{"and wins", `{"and":[],"or":[{"field":"a","value":"1"}]}`, model.All()},
		{"and not array", `{"and":"x","or":[]}`, model.Any()},
		{"string", `"a == 1"`, model.Condition{}},
		{"object without keys", `{"x":1}`, model.Condition{}},
		{"missing value", `[{"field":"a"}]`, model.All(model.Expression{Field: "a", Unset: true})},
		{"numeric value", `[{"field":"a","value":3}]`, model.All(model.Eq("a", 3.0))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Condition(decode(t, tc.raw))
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("condition mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSectionPreservesRows(t *testing.T) {
	section := Section(decode(t, `{
		"label": "個人情報",
		"condition": [{"field":"種別","value":"個人"}],
		"fields": [[{"label":"姓"},{"label":"名"}], {"label":"電話番号","type":"tel"}]
	}`))
	if section.Name != "個人情報" {
		t.Fatalf("section name fallback failed: %q", section.Name)
	}
	if len(section.Fields) != 2 || !section.Fields[0].IsRow() || section.Fields[1].IsRow() {
		t.Fatalf("row nesting lost: %+v", section.Fields)
	}
	if n := len(section.FlatFields()); n != 3 {
		t.Fatalf("expected 3 flattened fields, got %d", n)
	}
}

func TestTemplateDefaults(t *testing.T) {
	tpl := Template(decode(t, `{"sections":[{"name":"s","condition":{"or":[]}}]}`))
	if tpl.Label != UnnamedTemplate {
		t.Fatalf("label = %q", tpl.Label)
	}
	want := model.TemplateSection{Name: "s", Label: "s", Condition: model.Any()}
	if diff := cmp.Diff(want, tpl.Sections[0], cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("section mismatch (-want +got):\n%s", diff)
	}
}

func TestLegacyTemplateEquivalence(t *testing.T) {
	form := `{"sections":[{"label":"S","fields":[{"label":"A"}]}]}`
	tpl := `{"label":"doc","sections":[{"label":"x","content":"{{A}}"}]}`

	legacy := Configuration(decode(t, `{"form":`+form+`,"template":`+tpl+`}`))
	current := Configuration(decode(t, `{"form":`+form+`,"templates":[`+tpl+`]}`))
	if diff := cmp.Diff(current, legacy, testsupport.ModelOptions); diff != "" {
		t.Fatalf("legacy mismatch (-want +got):\n%s", diff)
	}
	if len(legacy.Templates) != 1 {
		t.Fatalf("expected one template, got %d", len(legacy.Templates))
	}

	both := Configuration(decode(t, `{"form":`+form+`,"templates":[],"template":`+tpl+`}`))
	if len(both.Templates) != 0 {
		t.Fatalf("templates key must win over legacy template")
	}
}

func TestConfigurationIdempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`null`,
		`{"form":{"sections":[{"label":"S","condition":[{"field":"a"}],"fields":[[{"name":"x","required":true}],{"label":"y","options":["1",{"value":"2"},{"label":"3"}],"condition":{"or":[{"field":"x","value":null}]}}]}]},"template":{"sections":[{"content":"{{x}}","condition":{"and":[{"field":"x","value":7}]}}]}}`,
		`{"form":{"sections":"bad"},"templates":[null,{"label":5}]}`,
	}
	for _, in := range inputs {
		first := Configuration(decode(t, in))
		data, err := json.Marshal(first)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second := Configuration(decode(t, string(data)))
		if diff := cmp.Diff(first, second, testsupport.ModelOptions); diff != "" {
			t.Fatalf("normalize not idempotent for %s (-first +second):\n%s", in, diff)
		}
	}
}

func TestYAMLInput(t *testing.T) {
	var raw any
	src := []byte(`
form:
  sections:
    - label: S
      condition:
        - field: n
          value: 3
      fields:
        - label: A
          required: true
templates:
  - label: T
    sections:
      - label: x
        content: "{{A}}"
`)
	if err := yaml.Unmarshal(src, &raw); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	cfg := Configuration(raw)
	if len(cfg.Form.Sections) != 1 || len(cfg.Templates) != 1 {
		t.Fatalf("unexpected configuration %+v", cfg)
	}
	expr := cfg.Form.Sections[0].Condition.Expressions[0]
	if expr.Value != 3.0 {
		t.Fatalf("yaml int should canonicalize to float64, got %T", expr.Value)
	}
}

func TestYAMLCompositeValueSurvivesRoundTrip(t *testing.T) {
	var raw any
	src := []byte(`
form:
  sections:
    - label: S
      condition:
        - field: n
          value: [1, 2]
        - field: m
          value: {min: 3}
`)
	if err := yaml.Unmarshal(src, &raw); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	first := Configuration(raw)
	data, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second := Configuration(decode(t, string(data)))
	if diff := cmp.Diff(first, second, testsupport.ModelOptions); diff != "" {
		t.Fatalf("composite values changed across a JSON round trip (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]any{1.0, 2.0}, first.Form.Sections[0].Condition.Expressions[0].Value); diff != "" {
		t.Fatalf("list items should canonicalize to float64 (-want +got):\n%s", diff)
	}
}
