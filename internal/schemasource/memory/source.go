// Package memory implements an in-memory schema definition source for tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"archivecore/internal/schemasource"
)

// Source serves definition documents from process memory.
type Source struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New returns an empty in-memory definition source.
func New() *Source { return &Source{docs: make(map[string][]byte)} }

// Driver returns the source driver identifier.
func (s *Source) Driver() schemasource.Driver { return schemasource.DriverMemory }

// Put stores or replaces a definition document.
func (s *Source) Put(name string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), body...)
}

// List returns all document names sorted.
func (s *Source) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the contents of the named document.
func (s *Source) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("document %s not found", name)
	}
	return append([]byte(nil), body...), nil
}
