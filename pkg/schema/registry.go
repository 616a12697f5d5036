package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the schema-lookup service keyed by record type name. It is
// safe for concurrent readers; registration normally happens at startup.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns a registry seeded with the built-in definitions.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Definition)}
	for _, def := range Builtins() {
		r.defs[def.Type] = def
	}
	return r
}

// Register adds or replaces a definition after checking its structure.
func (r *Registry) Register(def Definition) error {
	if findings := def.Check(); len(findings) > 0 {
		return fmt.Errorf("definition %s rejected: %s", def.Type, findings[0])
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.Type] = def
	return nil
}

// Lookup returns the definition for the record type name.
func (r *Registry) Lookup(recordType string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[recordType]
	return def, ok
}

// Types returns the registered record type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
