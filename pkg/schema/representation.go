package schema

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is the blocking outcome of representation construction.
// It carries field-level errors plus any warnings gathered alongside them,
// so a caller can surface both in one round trip.
type ValidationError struct {
	Type     string
	Errors   map[string]string
	Warnings map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("invalid %s representation: %s", e.Type, strings.Join(keys, ", "))
}

// FromRepresentation validates attrs against the definition and, on
// success, returns a cleaned attribute mapping: values coerced to their
// canonical shapes, declared defaults applied, and undeclared or reserved
// keys dropped. Warnings alone never fail construction; they are returned
// for the caller to inspect.
func FromRepresentation(def Definition, attrs map[string]any, mode Severity) (map[string]any, Result, error) {
	res := Validate(def, attrs, mode)
	if !res.OK() {
		return nil, res, &ValidationError{Type: def.Type, Errors: res.Errors, Warnings: res.Warnings}
	}
	return cleanObject(def.Properties, attrs, mode), res, nil
}

func cleanObject(props map[string]Property, attrs map[string]any, mode Severity) map[string]any {
	out := make(map[string]any, len(attrs))
	for name, prop := range props {
		value, present := attrs[name]
		if !present || value == nil || isEmptyValue(value) {
			if prop.Default != nil {
				out[name] = cloneDefault(prop.Default)
			}
			continue
		}
		out[name] = cleanValue(prop, value, mode)
	}
	return out
}

func cleanValue(prop Property, value any, mode Severity) any {
	switch prop.Kind {
	case KindString, KindDate:
		if s, ok := coerceString(value, mode); ok {
			return s
		}
	case KindInteger:
		if n, ok := coerceInteger(value, mode); ok {
			return n
		}
	case KindBoolean:
		if b, ok := coerceBoolean(value, mode); ok {
			return b
		}
	case KindObject:
		if obj, ok := value.(map[string]any); ok {
			return cleanObject(prop.Properties, obj, mode)
		}
	case KindArray:
		items, ok := value.([]any)
		if !ok || prop.Items == nil {
			return value
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			out = append(out, cleanValue(*prop.Items, item, mode))
		}
		return out
	}
	return value
}

func cloneDefault(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneDefault(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneDefault(item)
		}
		return out
	default:
		return v
	}
}
