package lint

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/normalize"
)

func codes(r Report) []Code {
	var out []Code
	for _, issue := range r.Issues {
		out = append(out, issue.Code)
	}
	return out
}

func TestCheckCleanConfiguration(t *testing.T) {
	cfg := normalize.Configuration(map[string]any{
		"form": map[string]any{"sections": []any{
			map[string]any{"label": "基本", "fields": []any{
				map[string]any{"label": "種別", "type": "select", "options": []any{"個人"}},
				map[string]any{"name": "email", "label": "メール"},
			}},
			map[string]any{"label": "個人", "condition": []any{map[string]any{"field": "種別", "value": "個人"}}},
		}},
		"templates": []any{map[string]any{"label": "t", "sections": []any{
			map[string]any{"content": "{{メール}} {{email}} {{種別}}"},
		}}},
	})
	report := Check(cfg)
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
	if report.Err() != nil || report.HasErrors() {
		t.Fatal("clean report should carry no errors")
	}
}

func TestCheckFindsProblems(t *testing.T) {
	cfg := model.Configuration{
		Form: model.Form{Sections: []model.Section{
			{Name: "dup", Label: "S", Fields: []model.FieldItem{
				model.Single(model.Field{}),
				model.Single(model.Field{Name: "dup", Label: "same", Type: model.FieldTypeText}),
				model.Row(
					model.Field{Name: "b", Label: "same", Type: "color"},
					model.Field{Name: "b", Label: "B", Type: model.FieldTypeRadio},
				),
			}},
			{Name: "s2", Condition: model.Any(model.Eq("same", "x"), model.Eq("ghost", "y"))},
		}},
		Templates: []model.Template{
			{Label: "t", Sections: []model.TemplateSection{{Content: "{{nope}}", Condition: model.Any()}}},
			{Label: "t"},
		},
	}
	report := Check(cfg)

	want := []Code{
		CodeUnaddressableField,
		CodeNameCollision,
		CodeUnknownType,
		CodeDuplicateName,
		CodeMissingOptions,
		CodeDuplicateLabel,
		CodeConditionByLabel,
		CodeUnknownCondition,
		CodeEmptyCombinator,
		CodeUnresolvedToken,
		CodeDuplicateTemplate,
	}
	if diff := cmp.Diff(sortCodes(want), sortCodes(codes(report))); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
	if !report.HasErrors() {
		t.Fatal("unaddressable field should be an error")
	}
	errs := Errors(report.Err())
	if len(errs) != 1 || errs[0].Code != CodeUnaddressableField {
		t.Fatalf("unexpected combined errors %+v", errs)
	}
}

func TestCheckLocationsAreSorted(t *testing.T) {
	cfg := model.Configuration{Form: model.Form{Sections: []model.Section{
		{Fields: []model.FieldItem{model.Single(model.Field{Name: "a", Type: "x"}), model.Single(model.Field{Name: "b", Type: "y"})}},
	}}}
	report := Check(cfg)
	for i := 1; i < len(report.Issues); i++ {
		if report.Issues[i-1].Location > report.Issues[i].Location {
			t.Fatalf("issues not sorted: %+v", report.Issues)
		}
	}
}

func sortCodes(in []Code) []Code {
	out := append([]Code(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
