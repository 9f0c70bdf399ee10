package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formdoc/pkg/render/template/pongo"
	"github.com/goliatone/go-formdoc/pkg/testsupport"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func TestPongoEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.Capture(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "  Ada "}, w)
	})

	want := testsupport.ReadGolden(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestPongoEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, _ := testsupport.Capture(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-global", nil, w)
	})
	want := testsupport.ReadGolden(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestPongoEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatal("expected duplicate filter error")
	}

	result, _ := testsupport.Capture(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("use-filter", struct {
			Name string `json:"name"`
		}{Name: "Ada"}, w)
	})
	want := testsupport.ReadGolden(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestPongoEngine_RenderString(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString("{% for v in items %}[{{ v }}]{% endfor %}", map[string]any{"items": []string{"a", "b"}})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "[a][b]" {
		t.Fatalf("got %q", got)
	}
}

func TestPongoEngine_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatal("expected error without template source")
	}
}

func TestPongoEngine_DirShadowsBundle(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	dir := t.TempDir()
	override := filepath.Join(dir, "hello.tmpl")
	if err := os.WriteFile(override, []byte("Hi {{ name }}"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	engine, err := pongo.New(pongo.WithFS(templatesFS), pongo.WithDir(dir), pongo.WithoutCache())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"})
	if err != nil || got != "Hi Ada" {
		t.Fatalf("override render = %q, %v", got, err)
	}
	if got, err := engine.RenderTemplate("use-global", map[string]any{"settings": map[string]any{"env": "dev"}}); err != nil || !strings.Contains(got, "dev") {
		t.Fatalf("bundle fallback = %q, %v", got, err)
	}

	if err := os.WriteFile(override, []byte("Bye {{ name }}"), 0o644); err != nil {
		t.Fatalf("rewrite override: %v", err)
	}
	if got, _ := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}); got != "Bye Ada" {
		t.Fatalf("expected uncached re-read, got %q", got)
	}
}

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := pongo.New(pongo.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
