package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenPersistentStoreMemoryDriver(t *testing.T) {
	t.Setenv("ARCHIVECORE_STORAGE_DRIVER", string(StorageMemory))
	store, err := OpenPersistentStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store == nil {
		t.Fatal("expected store")
	}
}

func TestOpenPersistentStoreDefaultsToSQLite(t *testing.T) {
	t.Setenv("ARCHIVECORE_STORAGE_DRIVER", "")
	t.Setenv("ARCHIVECORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	store, err := OpenPersistentStore()
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if store == nil {
		t.Fatal("expected store")
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("ARCHIVECORE_STORAGE_DRIVER", "etcd")
	if _, err := OpenPersistentStore(); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestOpenSchemaRegistryDefaultsToBuiltins(t *testing.T) {
	t.Setenv("ARCHIVECORE_SCHEMA_SOURCE", "")
	reg, err := OpenSchemaRegistry(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, name := range []string{"accession", "agent_person", "event"} {
		if _, ok := reg.Lookup(name); !ok {
			t.Fatalf("missing built-in definition %s", name)
		}
	}
}

func TestOpenSchemaRegistryFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	doc := "type: accession\nplural: accessions\nproperties:\n  title: {kind: string, required: true}\n  provenance: {kind: string}\n"
	if err := os.WriteFile(filepath.Join(dir, "accession.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	t.Setenv("ARCHIVECORE_SCHEMA_SOURCE", "fs")
	t.Setenv("ARCHIVECORE_SCHEMA_DIR", dir)

	reg, err := OpenSchemaRegistry(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	def, ok := reg.Lookup("accession")
	if !ok {
		t.Fatal("accession definition missing")
	}
	if _, ok := def.Properties["provenance"]; !ok {
		t.Fatal("filesystem override not applied")
	}
}

func TestOpenSchemaRegistryUnknownSource(t *testing.T) {
	t.Setenv("ARCHIVECORE_SCHEMA_SOURCE", "ftp")
	if _, err := OpenSchemaRegistry(context.Background()); err == nil {
		t.Fatal("expected unknown source error")
	}
}
