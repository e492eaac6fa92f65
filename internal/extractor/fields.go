package extractor

import (
	"encoding/json"
	"strconv"
)

// lookup returns the first present value among the spelling variants.
func lookup(m map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(m map[string]any, names ...string) (string, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// addressField accepts a plain address string or a nested object
// carrying the address under "address" or "mint".
func addressField(m map[string]any, names ...string) (string, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case map[string]any:
		if s, ok := stringField(t, "address", "mint"); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func floatField(m map[string]any, names ...string) (float64, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

func intField(m map[string]any, names ...string) (int, bool) {
	f, ok := floatField(m, names...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func listField(m map[string]any, names ...string) []any {
	v, ok := lookup(m, names...)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

func mapField(m map[string]any, names ...string) (map[string]any, bool) {
	v, ok := lookup(m, names...)
	if !ok {
		return nil, false
	}
	mm, ok := v.(map[string]any)
	return mm, ok
}

// toFloat coerces the numeric shapes a decoded payload can carry.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}
