package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFormFieldsFlattensRows(t *testing.T) {
	form := Form{Sections: []Section{
		{Name: "a", Fields: []FieldItem{
			Single(Field{Name: "x"}),
			Row(Field{Name: "y"}, Field{Name: "z"}),
		}},
		{Name: "b", Fields: []FieldItem{Single(Field{Name: "w"})}},
	}}

	var names []string
	for _, f := range form.Fields() {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"x", "y", "z", "w"}, names); diff != "" {
		t.Fatalf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigurationJSONRoundTrip(t *testing.T) {
	cfg := Configuration{
		Form: Form{Sections: []Section{{
			Name:      "個人情報",
			Label:     "個人情報",
			Condition: All(Eq("種別", "個人")),
			Fields: []FieldItem{
				Row(
					Field{Name: "姓", Label: "姓", Type: FieldTypeText},
					Field{Name: "名", Label: "名", Type: FieldTypeText},
				),
				Single(Field{Name: "c", Label: "c", Type: FieldTypeCheckbox, Options: []Option{{Value: "a", Label: "A"}}}),
			},
		}}},
		Templates: []Template{{Label: "doc", Sections: []TemplateSection{{
			Name: "s", Label: "s", Condition: Any(), Content: "{{姓}}",
		}}}},
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Configuration
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	opts := cmp.Options{
		cmp.AllowUnexported(FieldItem{}),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(cfg, got, opts); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionJSONShapes(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
		want string
	}{
		{"none", Condition{}, `null`},
		{"empty and", All(), `{"and":[]}`},
		{"or", Any(Eq("a", "1")), `{"or":[{"field":"a","value":"1"}]}`},
		{"unset", All(Expression{Field: "a", Unset: true}), `{"and":[{"field":"a"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.cond)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Fatalf("got %s want %s", data, tc.want)
			}
		})
	}

	var c Condition
	if err := json.Unmarshal([]byte(`{"and":[{"field":"a"}]}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Mode != ModeAll || len(c.Expressions) != 1 || !c.Expressions[0].Unset {
		t.Fatalf("unexpected condition %+v", c)
	}
}

func TestValueJSONAndString(t *testing.T) {
	vals := Values{"a": Text("x"), "b": List("A", "B")}
	data, err := json.Marshal(vals)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":"x","b":["A","B"]}` {
		t.Fatalf("unexpected json %s", data)
	}
	var got Values
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["b"].String() != "A, B" {
		t.Fatalf("join = %q", got["b"].String())
	}
	if !got["b"].IsList() || got["a"].IsList() {
		t.Fatalf("unexpected shapes %+v", got)
	}
	if err := json.Unmarshal([]byte(`{"a":{"x":1}}`), &got); err == nil {
		t.Fatal("expected error for object value")
	}
}

func TestFieldOptionsDeduplicates(t *testing.T) {
	form := Form{Sections: []Section{{Fields: []FieldItem{
		Single(Field{Name: "a", Label: "A"}),
		Single(Field{Name: "a", Label: "A2"}),
		Single(Field{Name: ""}),
		Single(Field{Name: "b"}),
	}}}}
	want := []FieldOption{{Value: "a", Label: "A"}, {Value: "b", Label: "b"}}
	if diff := cmp.Diff(want, FieldOptions(form)); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldTypeHelpers(t *testing.T) {
	if !FieldTypeRadio.Choice() || FieldTypeText.Choice() {
		t.Fatal("choice classification wrong")
	}
	if FieldType("color").Known() {
		t.Fatal("color should be unknown")
	}
}
