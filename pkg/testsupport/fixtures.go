// Package testsupport holds golden file and comparison helpers shared by
// package tests. Set UPDATE_GOLDENS=1 to rewrite golden files from the
// current output.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formdoc/pkg/model"
)

const updateEnv = "UPDATE_GOLDENS"

// ModelOptions compares canonical model values, looking through FieldItem
// internals and treating nil and empty slices alike.
var ModelOptions = cmp.Options{
	cmp.AllowUnexported(model.FieldItem{}),
	cmpopts.EquateEmpty(),
}

// AssertGolden compares got with the golden file at path, or rewrites the
// file when updating.
func AssertGolden(t testing.TB, path, got string) {
	t.Helper()
	if os.Getenv(updateEnv) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	if diff := cmp.Diff(ReadGolden(t, path), got); diff != "" {
		t.Fatalf("%s mismatch (-want +got):\n%s", filepath.Base(path), diff)
	}
}

func ReadGolden(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// Context is cancelled when the test finishes.
func Context(t testing.TB) context.Context {
	return t.Context()
}

// Capture runs a render that both returns and streams its output, and yields
// the returned string plus what reached the writer.
func Capture(t testing.TB, render func(io.Writer) (string, error)) (returned, written string) {
	t.Helper()
	var buf bytes.Buffer
	returned, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return returned, buf.String()
}
