// Package storage owns the persisted configuration document: import
// validation, the legacy "template" rename, the embedded default and the
// atomic replace, reset and export lifecycle built on a pluggable Store.
package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/normalize"
)

var (
	// ErrInvalidFormat reports a document lacking "form" or both "templates"
	// and "template".
	ErrInvalidFormat = errors.New("storage: invalid config format: missing form or templates")
	// ErrNotFound reports an empty store.
	ErrNotFound = errors.New("storage: document not found")
)

//go:embed defaults/default.json
var defaultDocument []byte

// Document is a raw configuration document exactly as authored, after the
// legacy rename. It is normalized on demand.
type Document map[string]any

// Configuration normalizes the document.
func (d Document) Configuration() model.Configuration {
	return normalize.Configuration(map[string]any(d))
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneValue(map[string]any(d)).(map[string]any))
}

// Marshal encodes the document as JSON indented by two spaces.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(map[string]any(d), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: encode document: %w", err)
	}
	return data, nil
}

// Default returns a fresh copy of the embedded default document with the
// legacy key already promoted.
func Default() Document {
	doc, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("storage: embedded default is invalid: %v", err))
	}
	return doc
}

// DefaultConfiguration returns the normalized default configuration.
func DefaultConfiguration() model.Configuration {
	return Default().Configuration()
}

// Parse decodes JSON, falling back to YAML, and validates the result with
// Validate.
func Parse(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrInvalidFormat)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		if yerr := yaml.Unmarshal(data, &raw); yerr != nil {
			return nil, fmt.Errorf("%w: invalid JSON or YAML", ErrInvalidFormat)
		}
		raw = plain(raw)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document must be an object", ErrInvalidFormat)
	}
	return Validate(Document(doc))
}

// Validate checks the import rules and promotes a legacy "template" object
// to a one-element "templates" list. The input is not modified.
func Validate(doc Document) (Document, error) {
	if doc == nil || !present(doc["form"]) {
		return nil, ErrInvalidFormat
	}
	out := doc.Clone()
	if _, ok := out["templates"].([]any); ok {
		return out, nil
	}
	legacy, ok := out["template"].(map[string]any)
	if !ok {
		return nil, ErrInvalidFormat
	}
	out["templates"] = []any{legacy}
	delete(out, "template")
	return out, nil
}

// FromConfiguration converts a canonical configuration back into a document.
func FromConfiguration(cfg model.Configuration) (Document, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: encode configuration: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode configuration: %w", err)
	}
	return Document(doc), nil
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

// plain rewrites YAML maps with non-string keys so the document encodes as
// JSON.
func plain(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = plain(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = plain(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = plain(t[i])
		}
		return t
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
