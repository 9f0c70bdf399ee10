package normalize

import (
	"fmt"
	"math"
	"strconv"
)

func asMap(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[fmt.Sprint(key)] = value
		}
		return out
	default:
		return map[string]any{}
	}
}

func asSlice(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	default:
		return nil, false
	}
}

// text returns a truthy scalar as a string and "" for falsy or non-scalar
// input.
func text(raw any) string {
	if !truthy(raw) {
		return ""
	}
	return scalarText(raw)
}

// scalarText stringifies scalars and returns "" for nil, maps and slices.
func scalarText(raw any) string {
	switch v := canonicalScalar(raw).(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func truthy(raw any) bool {
	switch v := canonicalScalar(raw).(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}

// canonicalScalar maps every numeric kind onto float64 so values decoded from
// YAML compare like values decoded from JSON. Lists and objects are rewritten
// item by item.
func canonicalScalar(raw any) any {
	switch v := raw.(type) {
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = canonicalScalar(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = canonicalScalar(item)
		}
		return out
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return raw
	}
}
