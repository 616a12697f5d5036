package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCleanDirectoryPasses(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "accession.yaml", "type: accession\nplural: accessions\nproperties:\n  title: {kind: string, required: true}\n")

	out, err := runCommand(t, dir)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if !strings.Contains(out, "ok\taccession.yaml") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestDefectiveDocumentFails(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.yaml", "type: bad\nplural: bads\nproperties:\n  items: {kind: array}\n")

	out, err := runCommand(t, dir)
	if err == nil {
		t.Fatal("expected defect error")
	}
	if !strings.Contains(out, "defect\tbad.yaml") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "event.json", `{"type":"event","plural":"events","properties":{"event_type":{"kind":"string","required":true}}}`)

	out, err := runCommand(t, "--format", "json", dir)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	var reports []DocumentReport
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(reports) != 1 || reports[0].Type != "event" {
		t.Fatalf("unexpected reports: %+v", reports)
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	if _, err := runCommand(t, "--format", "xml", t.TempDir()); err == nil {
		t.Fatal("expected format error")
	}
}

func TestBuiltinsSound(t *testing.T) {
	if err := builtinsSound(); err != nil {
		t.Fatalf("built-in definitions must be sound: %v", err)
	}
}
