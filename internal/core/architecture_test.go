package core

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestPersistenceBackendsConfinedToStorageLayer ensures the concrete
// persistence packages are wired only through this package's storage
// selection (and the backends' own wrapping of the memory engine). Everything
// else depends on the domain.PersistentStore interface.
func TestPersistenceBackendsConfinedToStorageLayer(t *testing.T) {
	const infraPrefix = "archivecore/internal/infra/persistence"
	allowed := map[string]bool{
		"archivecore/internal/core": true,
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "archivecore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		path := strings.TrimSuffix(pkg.PkgPath, ".test")
		if allowed[path] || strings.HasPrefix(path, infraPrefix) {
			continue
		}
		// Test binaries of allowed packages show up under distinct paths.
		if strings.HasPrefix(path, "archivecore/internal/core") {
			continue
		}
		for importPath := range pkg.Imports {
			if importPath == infraPrefix || strings.HasPrefix(importPath, infraPrefix+"/") {
				seen[path+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of persistence backend: %s", v)
		}
		t.Fatalf("found %d forbidden imports of persistence backends", len(violations))
	}
}
