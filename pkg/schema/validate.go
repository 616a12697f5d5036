package schema

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Severity selects the validation mode. Strict is the default; Relaxed
// permits structural leniencies such as coercing loosely-typed input.
// Required-attribute absence is an error in both modes.
type Severity int

// Validation severity modes.
const (
	Strict Severity = iota
	Relaxed
)

func (s Severity) String() string {
	if s == Relaxed {
		return "relaxed"
	}
	return "strict"
}

// Result carries field-level validation outcomes keyed by attribute path.
// A non-empty Errors set always blocks persistence; Warnings never do.
type Result struct {
	Errors   map[string]string
	Warnings map[string]string
}

// OK reports whether the result carries no blocking errors.
func (r Result) OK() bool { return len(r.Errors) == 0 }

func (r *Result) addError(path, reason string) {
	if r.Errors == nil {
		r.Errors = map[string]string{}
	}
	if _, ok := r.Errors[path]; !ok {
		r.Errors[path] = reason
	}
}

func (r *Result) addWarning(path, reason string) {
	if r.Warnings == nil {
		r.Warnings = map[string]string{}
	}
	if _, ok := r.Warnings[path]; !ok {
		r.Warnings[path] = reason
	}
}

// ErrorKeys returns the sorted attribute paths carrying errors.
func (r Result) ErrorKeys() []string { return sortedKeys(r.Errors) }

// WarningKeys returns the sorted attribute paths carrying warnings.
func (r Result) WarningKeys() []string { return sortedKeys(r.Warnings) }

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// reservedKeys are representation envelope fields stamped by the store, not
// schema properties.
var reservedKeys = map[string]struct{}{
	"uri":          {},
	"lock_version": {},
	"suppressed":   {},
	"created_at":   {},
	"updated_at":   {},
}

// Validate checks a candidate attribute mapping against the definition.
// It is side-effect free and does not consult storage.
func Validate(def Definition, attrs map[string]any, mode Severity) Result {
	var res Result
	validateObject(&res, "", def.Properties, attrs, mode)
	return res
}

func validateObject(res *Result, prefix string, props map[string]Property, attrs map[string]any, mode Severity) {
	for _, name := range propertyOrder(props) {
		prop := props[name]
		path := joinPath(prefix, name)
		value, present := attrs[name]
		if !present || value == nil || isEmptyValue(value) {
			switch {
			case prop.Required:
				res.addError(path, "Property is required but was missing")
			case prop.Recommended:
				res.addWarning(path, "Property was missing")
			}
			continue
		}
		validateValue(res, path, prop, value, mode)
	}
	for name := range attrs {
		if _, ok := props[name]; ok {
			continue
		}
		if prefix == "" {
			if _, ok := reservedKeys[name]; ok {
				continue
			}
		}
		path := joinPath(prefix, name)
		if mode == Strict {
			res.addError(path, "Property not allowed")
		} else {
			res.addWarning(path, "Property not allowed")
		}
	}
}

func validateValue(res *Result, path string, prop Property, value any, mode Severity) {
	switch prop.Kind {
	case KindString:
		s, ok := coerceString(value, mode)
		if !ok {
			res.addError(path, "Must be a string")
			return
		}
		if len(prop.Enum) > 0 && !containsString(prop.Enum, s) {
			res.addError(path, fmt.Sprintf("Invalid value %q", s))
		}
	case KindInteger:
		if _, ok := coerceInteger(value, mode); !ok {
			res.addError(path, "Must be an integer")
		}
	case KindBoolean:
		if _, ok := coerceBoolean(value, mode); !ok {
			res.addError(path, "Must be a boolean")
		}
	case KindDate:
		s, ok := coerceString(value, mode)
		if !ok {
			res.addError(path, "Must be a date")
			return
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			res.addError(path, "Not a valid date")
		}
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			res.addError(path, "Must be an object")
			return
		}
		validateObject(res, path, prop.Properties, obj, mode)
	case KindArray:
		items, ok := value.([]any)
		if !ok {
			res.addError(path, "Must be an array")
			return
		}
		if prop.Items == nil {
			return
		}
		for i, item := range items {
			validateValue(res, fmt.Sprintf("%s/%d", path, i), *prop.Items, item, mode)
		}
	}
}

// propertyOrder keeps validation output deterministic.
func propertyOrder(props map[string]Property) []string {
	out := make([]string, 0, len(props))
	for name := range props {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	default:
		return false
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func coerceString(value any, mode Severity) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int, int64, float64:
		if mode == Relaxed {
			return fmt.Sprintf("%v", v), true
		}
	}
	return "", false
}

func coerceInteger(value any, mode Severity) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		if mode == Relaxed {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func coerceBoolean(value any, mode Severity) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		if mode == Relaxed {
			if b, err := strconv.ParseBool(v); err == nil {
				return b, true
			}
		}
	}
	return false, false
}
