// Package fs implements a schema definition source backed by a local
// directory. Document names are slash-separated paths relative to the root.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"archivecore/internal/schemasource"
)

// Source reads definition documents from the local filesystem.
type Source struct {
	root string
}

// New returns a filesystem-backed definition source rooted at path.
func New(root string) (*Source, error) {
	if root == "" {
		root = "./schemas"
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("schema dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema dir %s is not a directory", root)
	}
	return &Source{root: root}, nil
}

// Driver returns the source driver identifier.
func (s *Source) Driver() schemasource.Driver { return schemasource.DriverFilesystem }

// List walks the root and returns every regular file as a document name.
func (s *Source) List(_ context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the contents of the named document.
func (s *Source) Read(_ context.Context, name string) ([]byte, error) {
	clean, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
}

// sanitizeName forbids traversal and absolute paths.
func sanitizeName(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("empty document name")
	}
	if strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("invalid absolute document name")
	}
	clean := filepath.ToSlash(filepath.Clean(name))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid document name traversal")
	}
	return clean, nil
}
