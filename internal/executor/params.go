package executor

import (
	"reflect"
	"sort"

	"github.com/mark3labs/openapi2sdk/internal/sdkerr"
)

// take removes key from p and returns its value.
func take(p map[string]any, key string) any {
	v, ok := p[key]
	if !ok {
		return nil
	}
	delete(p, key)
	return v
}

func takeString(p map[string]any, key string) (string, error) {
	switch v := take(p, key).(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", sdkerr.InvalidParams(key, "%s must be a string, got %T", key, v)
	}
}

// takeMap accepts any map keyed by strings.
func takeMap(p map[string]any, key string) (map[string]any, error) {
	raw := take(p, key)
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, sdkerr.InvalidParams(key, "%s must be an object, got %T", key, raw)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, nil
}

// isEmpty treats nil, empty strings and empty collections as no body.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
