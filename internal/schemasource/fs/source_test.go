package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"archivecore/internal/schemasource"
	"archivecore/pkg/schema"
)

func writeDoc(t *testing.T, root, name, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSourceListsAndReadsDocuments(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "accession.yaml", "type: accession\nplural: accessions\nproperties:\n  title: {kind: string, required: true}\n")
	writeDoc(t, root, "nested/event.yaml", "type: event\nplural: events\nproperties:\n  event_type: {kind: string, required: true}\n")

	src, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	names, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "accession.yaml" || names[1] != "nested/event.yaml" {
		t.Fatalf("unexpected names %v", names)
	}

	reg := schema.NewRegistry()
	if err := schemasource.LoadRegistry(context.Background(), src, reg); err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.Lookup("event"); !ok {
		t.Fatal("nested document not registered")
	}
}

func TestSourceRejectsTraversal(t *testing.T) {
	src, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := src.Read(context.Background(), "../escape.yaml"); err == nil {
		t.Fatal("expected traversal rejection")
	}
	if _, err := src.Read(context.Background(), "/abs.yaml"); err == nil {
		t.Fatal("expected absolute path rejection")
	}
}

func TestNewRequiresExistingDirectory(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
