package schemasource_test

import (
	"context"
	"testing"

	"archivecore/internal/schemasource"
	"archivecore/internal/schemasource/memory"
	"archivecore/pkg/schema"
)

const accessionOverride = `
type: accession
plural: accessions
properties:
  title:
    kind: string
    required: true
  accession_date:
    kind: date
    required: true
  provenance:
    kind: string
`

func TestLoadRegistryParsesYAMLAndJSON(t *testing.T) {
	src := memory.New()
	src.Put("accession.yaml", []byte(accessionOverride))
	src.Put("custom_event.json", []byte(`{
		"type": "event",
		"plural": "events",
		"properties": {
			"event_type": {"kind": "string", "required": true}
		}
	}`))
	src.Put("README.md", []byte("not a definition"))

	reg := schema.NewRegistry()
	if err := schemasource.LoadRegistry(context.Background(), src, reg); err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	def, ok := reg.Lookup("accession")
	if !ok {
		t.Fatal("accession definition missing")
	}
	if _, ok := def.Properties["provenance"]; !ok {
		t.Fatal("override should add provenance property")
	}
	if def.Properties["content_description"].Recommended {
		t.Fatal("override should replace the built-in definition wholesale")
	}

	event, ok := reg.Lookup("event")
	if !ok {
		t.Fatal("event definition missing")
	}
	if !event.Properties["event_type"].Required {
		t.Fatal("json document lost required flag")
	}
}

func TestLoadRegistryRejectsMalformedDocument(t *testing.T) {
	src := memory.New()
	src.Put("broken.yaml", []byte("{type: [unterminated"))

	reg := schema.NewRegistry()
	if err := schemasource.LoadRegistry(context.Background(), src, reg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRegistryRejectsUncheckedDefinition(t *testing.T) {
	src := memory.New()
	// Missing type name fails the structural check.
	src.Put("anonymous.yaml", []byte("plural: things\nproperties: {}\n"))

	reg := schema.NewRegistry()
	if err := schemasource.LoadRegistry(context.Background(), src, reg); err == nil {
		t.Fatal("expected registration error")
	}
}

func TestParseDefinitionRejectsUnknownExtension(t *testing.T) {
	if _, err := schemasource.ParseDefinition("def.toml", []byte("type = 'x'")); err == nil {
		t.Fatal("expected unsupported document error")
	}
}
