// Package values reads and writes values snapshots: JSON or YAML documents
// mapping field names to a string or a list of strings, and HTML form posts.
package values

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdoc/pkg/model"
)

// Decode parses a JSON object, falling back to YAML. Empty input yields an
// empty snapshot.
func Decode(data []byte) (model.Values, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.Values{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		if yerr := yaml.Unmarshal(data, &raw); yerr != nil {
			return nil, fmt.Errorf("values: invalid JSON or YAML: %w", err)
		}
	}
	return FromMap(raw)
}

// FromMap converts decoded data. Numbers and booleans become their text form,
// null becomes an empty string and arrays become list values. Nested objects
// are rejected.
func FromMap(raw map[string]any) (model.Values, error) {
	out := make(model.Values, len(raw))
	for name, v := range raw {
		value, err := convert(v)
		if err != nil {
			return nil, fmt.Errorf("values: field %q: %w", name, err)
		}
		out[name] = value
	}
	return out, nil
}

// FromForm converts a form post. A key submitted once is a single value, a
// key submitted several times becomes a list. Unchecked checkbox groups are
// simply absent.
func FromForm(form url.Values) model.Values {
	out := make(model.Values, len(form))
	for name, entries := range form {
		switch len(entries) {
		case 0:
			continue
		case 1:
			out[name] = model.Text(entries[0])
		default:
			out[name] = model.List(entries...)
		}
	}
	return out
}

// ToForm is the inverse of FromForm, used to prefill HTML forms.
func ToForm(vals model.Values) url.Values {
	out := make(url.Values, len(vals))
	for _, name := range vals.Names() {
		out[name] = vals[name].Items()
	}
	return out
}

// Encode writes the snapshot as two-space indented JSON with sorted keys.
func Encode(vals model.Values) ([]byte, error) {
	if vals == nil {
		vals = model.Values{}
	}
	data, err := json.MarshalIndent(vals, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("values: encode: %w", err)
	}
	return data, nil
}

func convert(v any) (model.Value, error) {
	switch t := v.(type) {
	case []any:
		items := make([]string, 0, len(t))
		for i, item := range t {
			s, err := scalar(item)
			if err != nil {
				return model.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, s)
		}
		return model.List(items...), nil
	case []string:
		return model.List(t...), nil
	default:
		s, err := scalar(v)
		if err != nil {
			return model.Value{}, err
		}
		return model.Text(s), nil
	}
}

func scalar(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		return strconv.FormatBool(t), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case json.Number:
		return t.String(), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
