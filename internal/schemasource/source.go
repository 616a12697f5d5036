// Package schemasource defines where record schema definitions are loaded
// from. A source yields named definition documents (YAML or JSON); the loader
// parses them and registers the result, so deployments can override or extend
// the built-in definitions without a rebuild.
package schemasource

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"archivecore/pkg/schema"
)

// Driver identifies a concrete definition source backend.
type Driver string

const (
	// DriverFilesystem reads definition documents from a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 reads definition documents from an S3-compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory serves definition documents from process memory (tests).
	DriverMemory Driver = "memory"
)

// Source lists and reads schema definition documents.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Driver() Driver
}

// ParseDefinition decodes a single definition document. Documents named
// *.json decode as JSON; *.yaml and *.yml decode as YAML.
func ParseDefinition(name string, body []byte) (schema.Definition, error) {
	var def schema.Definition
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		if err := json.Unmarshal(body, &def); err != nil {
			return schema.Definition{}, fmt.Errorf("decode %s: %w", name, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(body, &def); err != nil {
			return schema.Definition{}, fmt.Errorf("decode %s: %w", name, err)
		}
	default:
		return schema.Definition{}, fmt.Errorf("unsupported definition document %s", name)
	}
	return def, nil
}

// LoadRegistry reads every document the source lists, parses it, and
// registers the definitions. Registration is all-or-nothing per document:
// a document that fails to parse or register aborts the load.
func LoadRegistry(ctx context.Context, src Source, reg *schema.Registry) error {
	names, err := src.List(ctx)
	if err != nil {
		return fmt.Errorf("list definitions: %w", err)
	}
	for _, name := range names {
		if !isDefinitionDocument(name) {
			continue
		}
		body, err := src.Read(ctx, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		def, err := ParseDefinition(name, body)
		if err != nil {
			return err
		}
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

func isDefinitionDocument(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
