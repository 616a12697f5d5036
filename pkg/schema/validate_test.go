package schema

import (
	"errors"
	"reflect"
	"testing"
)

func minimalAccession() map[string]any {
	return map[string]any{
		"id_0":                  "1234",
		"title":                 "The accession title",
		"accession_date":        "2012-05-03",
		"content_description":   "The accession description",
		"condition_description": "The condition description",
	}
}

func TestValidateMissingRequiredAndRecommended(t *testing.T) {
	def := AccessionDefinition()
	res := Validate(def, map[string]any{"id_0": "abcdef"}, Strict)

	wantErrors := []string{"accession_date", "title"}
	wantWarnings := []string{"condition_description", "content_description"}
	if got := res.ErrorKeys(); !reflect.DeepEqual(got, wantErrors) {
		t.Fatalf("error keys = %v, want %v", got, wantErrors)
	}
	if got := res.WarningKeys(); !reflect.DeepEqual(got, wantWarnings) {
		t.Fatalf("warning keys = %v, want %v", got, wantWarnings)
	}

	// Required absence stays an error in relaxed mode.
	res = Validate(def, map[string]any{"id_0": "abcdef"}, Relaxed)
	if got := res.ErrorKeys(); !reflect.DeepEqual(got, wantErrors) {
		t.Fatalf("relaxed error keys = %v, want %v", got, wantErrors)
	}
}

func TestValidateNestedDatePath(t *testing.T) {
	def := AccessionDefinition()
	attrs := minimalAccession()
	attrs["deaccessions"] = []any{
		map[string]any{
			"whole_part":  false,
			"description": "A description of this deaccession",
			"date": map[string]any{
				"date_type": "single",
				"label":     "deaccession",
			},
		},
	}
	res := Validate(def, attrs, Strict)
	if _, ok := res.Errors["deaccessions/0/date/begin"]; !ok {
		t.Fatalf("expected error on nested date begin, got %v", res.Errors)
	}
}

func TestValidateModeControlsCoercion(t *testing.T) {
	def := Definition{
		Type:   "fixture",
		Plural: "fixtures",
		Properties: map[string]Property{
			"count": {Kind: KindInteger, Required: true},
		},
	}
	attrs := map[string]any{"count": "12"}

	if res := Validate(def, attrs, Strict); res.OK() {
		t.Fatal("strict mode must reject a numeric string")
	}
	if res := Validate(def, attrs, Relaxed); !res.OK() {
		t.Fatalf("relaxed mode must coerce a numeric string: %v", res.Errors)
	}
}

func TestValidateUnknownProperty(t *testing.T) {
	def := AccessionDefinition()
	attrs := minimalAccession()
	attrs["bogus"] = "x"

	if res := Validate(def, attrs, Strict); res.OK() {
		t.Fatal("strict mode must reject undeclared properties")
	}
	res := Validate(def, attrs, Relaxed)
	if !res.OK() {
		t.Fatalf("relaxed mode downgrades undeclared properties: %v", res.Errors)
	}
	if _, ok := res.Warnings["bogus"]; !ok {
		t.Fatal("relaxed mode should warn on undeclared properties")
	}
}

func TestValidateIgnoresEnvelopeFields(t *testing.T) {
	def := AccessionDefinition()
	attrs := minimalAccession()
	attrs["uri"] = "/repositories/2/accessions/1"
	attrs["lock_version"] = 3
	attrs["suppressed"] = false

	if res := Validate(def, attrs, Strict); !res.OK() {
		t.Fatalf("envelope fields are not schema properties: %v", res.Errors)
	}
}

func TestValidateEnum(t *testing.T) {
	def := AccessionDefinition()
	attrs := minimalAccession()
	attrs["acquisition_type"] = "theft"
	res := Validate(def, attrs, Strict)
	if _, ok := res.Errors["acquisition_type"]; !ok {
		t.Fatalf("expected enum violation, got %v", res.Errors)
	}
}

func TestFromRepresentationAppliesDefaults(t *testing.T) {
	def := AccessionDefinition()
	attrs := minimalAccession()
	attrs["rights_statements"] = []any{
		map[string]any{
			"identifier":   "abc123",
			"rights_type":  "intellectual_property",
			"ip_status":    "copyrighted",
			"jurisdiction": "AU",
		},
	}
	clean, res, err := FromRepresentation(def, attrs, Strict)
	if err != nil {
		t.Fatalf("from representation: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	statements, ok := clean["rights_statements"].([]any)
	if !ok || len(statements) != 1 {
		t.Fatalf("rights statements not retained: %v", clean["rights_statements"])
	}
	stmt := statements[0].(map[string]any)
	if stmt["active"] != true {
		t.Fatalf("active must default true, got %v", stmt["active"])
	}
}

func TestFromRepresentationFailsWithErrorsAndWarnings(t *testing.T) {
	def := AccessionDefinition()
	_, _, err := FromRepresentation(def, map[string]any{"id_0": "abcdef"}, Strict)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Errors["title"]; !ok {
		t.Fatalf("missing title error: %v", verr.Errors)
	}
	if _, ok := verr.Warnings["content_description"]; !ok {
		t.Fatalf("warnings must ride along: %v", verr.Warnings)
	}
}

func TestFromRepresentationWarningsDoNotFail(t *testing.T) {
	def := AccessionDefinition()
	attrs := map[string]any{
		"id_0":           "1234",
		"title":          "T",
		"accession_date": "2012-05-03",
	}
	clean, res, err := FromRepresentation(def, attrs, Strict)
	if err != nil {
		t.Fatalf("warnings alone must not fail construction: %v", err)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	if clean["title"] != "T" {
		t.Fatalf("clean map missing title: %v", clean)
	}
}

func TestRegistryLookupAndRegister(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"accession", "agent_person", "event"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Fatalf("builtin %s missing", name)
		}
	}
	if err := reg.Register(Definition{Type: "broken"}); err == nil {
		t.Fatal("structurally broken definition must be rejected")
	}
	def := Definition{
		Type:   "classification",
		Plural: "classifications",
		Properties: map[string]Property{
			"identifier": {Kind: KindString, Required: true},
		},
	}
	if err := reg.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := reg.Types(); len(got) != 4 {
		t.Fatalf("expected 4 registered types, got %v", got)
	}
}

func TestBuiltinDefinitionsAreSound(t *testing.T) {
	for _, def := range Builtins() {
		if findings := def.Check(); len(findings) > 0 {
			t.Fatalf("builtin %s has structural defects: %v", def.Type, findings)
		}
	}
}
