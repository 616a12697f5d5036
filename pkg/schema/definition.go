// Package schema validates candidate record representations against named
// record-type definitions. Validation is a pure function of the definition,
// the input, and the severity mode; it never consults storage.
package schema

import "fmt"

// Kind enumerates the value shapes a property may declare.
type Kind string

// Property kinds supported by the validator.
const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	// KindDate expects an ISO-8601 calendar date (2012-05-03).
	KindDate   Kind = "date"
	KindObject Kind = "object"
	KindArray  Kind = "array"
)

// Property declares the constraints on a single attribute. Required absence
// is always an error; recommended absence is a warning. Nested structure is
// declared through Properties (objects) and Items (arrays).
type Property struct {
	Kind        Kind                `yaml:"kind" json:"kind"`
	Required    bool                `yaml:"required,omitempty" json:"required,omitempty"`
	Recommended bool                `yaml:"recommended,omitempty" json:"recommended,omitempty"`
	Default     any                 `yaml:"default,omitempty" json:"default,omitempty"`
	Enum        []string            `yaml:"enum,omitempty" json:"enum,omitempty"`
	Properties  map[string]Property `yaml:"properties,omitempty" json:"properties,omitempty"`
	Items       *Property           `yaml:"items,omitempty" json:"items,omitempty"`
}

// Definition is the schema for one record type.
type Definition struct {
	Type       string              `yaml:"type" json:"type"`
	Plural     string              `yaml:"plural" json:"plural"`
	Properties map[string]Property `yaml:"properties" json:"properties"`
}

// Check reports structural defects in the definition itself. It backs the
// schema-check command; a sound definition yields no findings.
func (d Definition) Check() []string {
	var findings []string
	if d.Type == "" {
		findings = append(findings, "definition missing type name")
	}
	if d.Plural == "" {
		findings = append(findings, fmt.Sprintf("definition %s missing plural path segment", d.Type))
	}
	if len(d.Properties) == 0 {
		findings = append(findings, fmt.Sprintf("definition %s declares no properties", d.Type))
	}
	for name, prop := range d.Properties {
		findings = append(findings, checkProperty(d.Type+"."+name, prop)...)
	}
	return findings
}

func checkProperty(path string, p Property) []string {
	var findings []string
	switch p.Kind {
	case KindString, KindInteger, KindBoolean, KindDate:
		if len(p.Properties) > 0 {
			findings = append(findings, fmt.Sprintf("%s: scalar kind %s cannot declare nested properties", path, p.Kind))
		}
		if p.Items != nil {
			findings = append(findings, fmt.Sprintf("%s: scalar kind %s cannot declare items", path, p.Kind))
		}
	case KindObject:
		if len(p.Properties) == 0 {
			findings = append(findings, fmt.Sprintf("%s: object declares no properties", path))
		}
		for name, nested := range p.Properties {
			findings = append(findings, checkProperty(path+"."+name, nested)...)
		}
	case KindArray:
		if p.Items == nil {
			findings = append(findings, fmt.Sprintf("%s: array declares no item shape", path))
		} else {
			findings = append(findings, checkProperty(path+"[]", *p.Items)...)
		}
	default:
		findings = append(findings, fmt.Sprintf("%s: unknown kind %q", path, p.Kind))
	}
	if p.Required && p.Recommended {
		findings = append(findings, fmt.Sprintf("%s: required and recommended are mutually exclusive", path))
	}
	if p.Required && p.Default != nil {
		findings = append(findings, fmt.Sprintf("%s: required property cannot carry a default", path))
	}
	if len(p.Enum) > 0 && p.Kind != KindString {
		findings = append(findings, fmt.Sprintf("%s: enum requires string kind", path))
	}
	return findings
}
