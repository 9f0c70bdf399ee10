package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-formdoc/pkg/lint"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/storage"
)

func personalValues() model.Values {
	return model.Values{
		"種別":    model.Text("個人"),
		"email": model.Text("taro@example.com"),
		"姓":     model.Text("山田"),
		"名":     model.Text("太郎"),
	}
}

func TestGenerateDefaultConfiguration(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	o := orchestrator.New()

	out, err := o.Generate(context.Background(), orchestrator.Request{
		Configuration: &cfg,
		RenderOptions: render.RenderOptions{Values: personalValues()},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got := string(out)
	for _, want := range []string{
		"メールアドレス: taro@example.com\n",
		"種別: 個人\n",
		"お名前: 山田 太郎\n",
		"【追加情報】",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "【企業情報】") {
		t.Fatalf("company section should be gated out, got:\n%s", got)
	}
}

func TestGenerateResolvesSources(t *testing.T) {
	raw, err := storage.Default().Marshal()
	if err != nil {
		t.Fatalf("marshal default: %v", err)
	}
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	requests := map[string]orchestrator.Request{
		"document": {Document: storage.Default()},
		"source":   {Source: raw},
		"path":     {Path: path},
	}

	o := orchestrator.New()
	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			req.RenderOptions = render.RenderOptions{Values: personalValues()}
			out, err := o.Generate(context.Background(), req)
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if !strings.Contains(string(out), "お名前: 山田 太郎") {
				t.Fatalf("unexpected output:\n%s", out)
			}
		})
	}
}

func TestGenerateRequiresConfiguration(t *testing.T) {
	o := orchestrator.New()
	if _, err := o.Generate(context.Background(), orchestrator.Request{}); err == nil {
		t.Fatal("expected error for empty request")
	}
	if _, err := o.Generate(context.Background(), orchestrator.Request{Source: []byte(`{"form": 1}`)}); err == nil {
		t.Fatal("expected error for invalid document")
	}
}

func TestGenerateRendererSelection(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	o := orchestrator.New()

	names := o.Registry().List()
	for _, want := range []string{"html", "json", "text"} {
		if !o.Registry().Has(want) {
			t.Fatalf("expected renderer %q to be registered, got %v", want, names)
		}
	}

	out, err := o.Generate(context.Background(), orchestrator.Request{
		Configuration: &cfg,
		Renderer:      "json",
		RenderOptions: render.RenderOptions{Values: personalValues()},
	})
	if err != nil {
		t.Fatalf("generate json: %v", err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(out, &docs); err != nil {
		t.Fatalf("decode json output: %v\n%s", err, out)
	}
	if len(docs) != 1 {
		t.Fatalf("expected one document, got %d", len(docs))
	}

	if _, err := o.Generate(context.Background(), orchestrator.Request{
		Configuration: &cfg,
		Renderer:      "missing",
	}); err == nil {
		t.Fatal("expected error for unknown renderer")
	}
}

func TestGenerateTemplateNotFound(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	_, err := orchestrator.New().Generate(context.Background(), orchestrator.Request{
		Configuration: &cfg,
		RenderOptions: render.RenderOptions{Template: "missing"},
	})
	if !errors.Is(err, render.ErrTemplateNotFound) {
		t.Fatalf("expected template not found, got %v", err)
	}
}

func TestGenerateAppliesTransformer(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	called := false
	o := orchestrator.New(orchestrator.WithTransformer(orchestrator.TransformerFunc(
		func(_ context.Context, cfg *model.Configuration) error {
			called = true
			cfg.Templates[0].Sections = cfg.Templates[0].Sections[:1]
			return nil
		},
	)))

	out, err := o.Generate(context.Background(), orchestrator.Request{
		Configuration: &cfg,
		RenderOptions: render.RenderOptions{Values: personalValues()},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !called {
		t.Fatal("expected transformer to run")
	}
	if strings.Contains(string(out), "お名前") {
		t.Fatalf("expected trimmed template, got:\n%s", out)
	}
}

func TestGenerateTransformerError(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	boom := errors.New("boom")
	o := orchestrator.New(orchestrator.WithTransformer(orchestrator.TransformerFunc(
		func(context.Context, *model.Configuration) error { return boom },
	)))
	_, err := o.Generate(context.Background(), orchestrator.Request{Configuration: &cfg})
	if !errors.Is(err, boom) {
		t.Fatalf("expected transformer error, got %v", err)
	}
}

func TestGenerateStrictLint(t *testing.T) {
	cfg := model.Configuration{
		Form: model.Form{Sections: []model.Section{{
			Name:   "main",
			Label:  "main",
			Fields: []model.FieldItem{model.Single(model.Field{Type: model.FieldTypeText})},
		}}},
		Templates: []model.Template{{Label: "t"}},
	}

	if _, err := orchestrator.New().Generate(context.Background(), orchestrator.Request{Configuration: &cfg}); err != nil {
		t.Fatalf("lenient generate should succeed, got %v", err)
	}

	_, err := orchestrator.New(orchestrator.WithStrictLint()).Generate(context.Background(), orchestrator.Request{Configuration: &cfg})
	if err == nil {
		t.Fatal("expected strict lint failure")
	}
	issues := lint.Errors(errors.Unwrap(err))
	if len(issues) != 1 || issues[0].Code != lint.CodeUnaddressableField {
		t.Fatalf("expected one unaddressable field issue, got %v", issues)
	}
}

func TestStrictLintIgnoresWarnings(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	cfg.Templates[0].Sections = append(cfg.Templates[0].Sections, model.TemplateSection{
		Content: "{{unknown}}",
	})
	o := orchestrator.New(orchestrator.WithStrictLint())
	if _, err := o.Generate(context.Background(), orchestrator.Request{Configuration: &cfg}); err != nil {
		t.Fatalf("warnings must not fail strict lint: %v", err)
	}
}

func TestJSONPresetTransformer(t *testing.T) {
	preset, err := orchestrator.NewJSONPresetTransformerFromFS(os.DirFS("testdata"), "preset.json")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}
	cfg := storage.DefaultConfiguration()
	if err := preset.Transform(context.Background(), &cfg); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if got := cfg.Templates[0].Label; got != "Intake summary" {
		t.Fatalf("expected template label override, got %q", got)
	}
	var company model.Section
	for _, section := range cfg.Form.Sections {
		if section.Name == "企業情報" {
			company = section
		}
	}
	if company.Label != "Company" {
		t.Fatalf("expected section label override, got %q", company.Label)
	}
	for _, field := range cfg.Form.Fields() {
		if field.Name != "email" {
			continue
		}
		if field.Label != "E-mail" || field.Required {
			t.Fatalf("unexpected email field after patch: %+v", field)
		}
	}
}

func TestJSONPresetTransformerRowsAndMissing(t *testing.T) {
	preset, err := orchestrator.NewJSONPresetTransformer([]byte(`{"fields": {"名": {"label": "First name"}}}`))
	if err != nil {
		t.Fatalf("parse preset: %v", err)
	}
	cfg := storage.DefaultConfiguration()
	if err := preset.Transform(context.Background(), &cfg); err != nil {
		t.Fatalf("transform: %v", err)
	}
	row := cfg.Form.Sections[1].Fields[0]
	if !row.IsRow() || row.Fields()[1].Label != "First name" {
		t.Fatalf("expected row member patched, got %+v", row.Fields())
	}

	missing, err := orchestrator.NewJSONPresetTransformer([]byte(`{"fields": {"nope": {"label": "x"}}}`))
	if err != nil {
		t.Fatalf("parse preset: %v", err)
	}
	if err := missing.Transform(context.Background(), &cfg); err == nil {
		t.Fatal("expected error for unknown field")
	}

	if _, err := orchestrator.NewJSONPresetTransformer(nil); err == nil {
		t.Fatal("expected error for empty document")
	}
}

func TestChain(t *testing.T) {
	var order []string
	step := func(name string) orchestrator.Transformer {
		return orchestrator.TransformerFunc(func(context.Context, *model.Configuration) error {
			order = append(order, name)
			return nil
		})
	}
	cfg := storage.DefaultConfiguration()
	if err := orchestrator.Chain(step("a"), nil, step("b")).Transform(context.Background(), &cfg); err != nil {
		t.Fatalf("chain: %v", err)
	}
	if strings.Join(order, ",") != "a,b" {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestGenerateDefaultRendererAndLogging(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	core, logs := observer.New(zap.DebugLevel)
	o := orchestrator.New(
		orchestrator.WithDefaultRenderer("json"),
		orchestrator.WithLogger(zap.New(core)),
	)

	out, err := o.Generate(context.Background(), orchestrator.Request{
		Configuration: &cfg,
		RenderOptions: render.RenderOptions{Values: personalValues()},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !json.Valid(out) {
		t.Fatalf("expected json renderer output, got:\n%s", out)
	}

	rendered := logs.FilterMessage("rendered").All()
	if len(rendered) != 1 {
		t.Fatalf("expected one rendered log entry, got %d", len(rendered))
	}
	if got := rendered[0].ContextMap()["renderer"]; got != "json" {
		t.Fatalf("logged renderer = %v", got)
	}
}

func TestGenerateRunsTransformersInOrder(t *testing.T) {
	cfg := storage.DefaultConfiguration()
	var order []string
	step := func(name string) orchestrator.Transformer {
		return orchestrator.TransformerFunc(func(context.Context, *model.Configuration) error {
			order = append(order, name)
			return nil
		})
	}
	o := orchestrator.New(orchestrator.WithTransformer(step("a")), orchestrator.WithTransformer(step("b")))
	if _, err := o.Generate(context.Background(), orchestrator.Request{Configuration: &cfg}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.Join(order, ",") != "a,b" {
		t.Fatalf("transformer order = %v", order)
	}
}
