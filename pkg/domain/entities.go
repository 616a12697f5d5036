// Package domain defines the core persistent entities, value types, and
// visibility primitives used by archivecore.
package domain

import "time"

// RecordType identifies the type of archival record stored in the core domain.
type RecordType string

// Supported record type identifiers used in Change records and persistence buckets.
const (
	// TypeAccession identifies an accession record.
	TypeAccession RecordType = "accession"
	// TypeAgentPerson identifies a person agent record.
	TypeAgentPerson RecordType = "agent_person"
	// TypeEvent identifies an event record describing a relationship between records.
	TypeEvent RecordType = "event"
)

// TypeDefinition describes the behavior of a record type: its URI path
// segment, whether it owns name sub-records, and whether its visibility
// cascades from the records it links to.
type TypeDefinition struct {
	Type              RecordType
	Plural            string
	OwnsNames         bool
	CascadesFromLinks bool
}

// typeDefinitions is the closed set of record type variants. Dispatch is by
// type tag; adding a type means adding an entry here and a schema definition.
var typeDefinitions = map[RecordType]TypeDefinition{
	TypeAccession:   {Type: TypeAccession, Plural: "accessions"},
	TypeAgentPerson: {Type: TypeAgentPerson, Plural: "agent_people", OwnsNames: true},
	TypeEvent:       {Type: TypeEvent, Plural: "events", CascadesFromLinks: true},
}

// pluralIndex resolves URI path segments back to record types.
var pluralIndex = func() map[string]RecordType {
	idx := make(map[string]RecordType, len(typeDefinitions))
	for t, def := range typeDefinitions {
		idx[def.Plural] = t
	}
	return idx
}()

// DefinitionFor returns the type definition for t.
func DefinitionFor(t RecordType) (TypeDefinition, bool) {
	def, ok := typeDefinitions[t]
	return def, ok
}

// Definitions returns the closed set of record type definitions in a fixed order.
func Definitions() []TypeDefinition {
	out := make([]TypeDefinition, 0, len(typeDefinitions))
	for _, t := range []RecordType{TypeAccession, TypeAgentPerson, TypeEvent} {
		out = append(out, typeDefinitions[t])
	}
	return out
}

// TypeForPlural resolves a URI path segment (e.g. "accessions") to its record type.
func TypeForPlural(plural string) (RecordType, bool) {
	t, ok := pluralIndex[plural]
	return t, ok
}

// Base contains common fields for all persisted records.
type Base struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link is a directed edge from the owning record to another record,
// addressed by URI. Refs are not referentially enforced at write time; a
// dangling ref is legal and resolves as suppressed at read time.
type Link struct {
	Ref  string `json:"ref"`
	Role string `json:"role"`
}

// Name is a sub-record owned exclusively by one agent record. Key is an
// opaque stable identity assigned at creation; it is not addressable by
// external callers and survives updates that keep the name in the submitted
// set.
type Name struct {
	Key         string `json:"key"`
	PrimaryName string `json:"primary_name"`
	RestOfName  string `json:"rest_of_name,omitempty"`
	SortName    string `json:"sort_name"`
	NameOrder   string `json:"name_order,omitempty"`
	Authorized  bool   `json:"authorized"`
}

// Record is a typed, versioned archival entity scoped to exactly one
// repository. Version starts at 1 and is incremented exactly once per
// successful write; the store owns both the version stamp and the persisted
// suppressed flag.
type Record struct {
	Base
	RepositoryID  int64          `json:"repository_id"`
	Type          RecordType     `json:"type"`
	Version       int            `json:"version"`
	Suppressed    bool           `json:"suppressed"`
	Attributes    map[string]any `json:"attributes"`
	LinkedRecords []Link         `json:"linked_records,omitempty"`
	LinkedAgents  []Link         `json:"linked_agents,omitempty"`
	Names         []Name         `json:"names,omitempty"`
}

// URI returns the canonical URI for the record.
func (r Record) URI() RecordURI {
	return RecordURI{RepositoryID: r.RepositoryID, Type: r.Type, ID: r.ID}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	cp := r
	if r.Attributes != nil {
		cp.Attributes = cloneAttributes(r.Attributes)
	}
	cp.LinkedRecords = append([]Link(nil), r.LinkedRecords...)
	cp.LinkedAgents = append([]Link(nil), r.LinkedAgents...)
	cp.Names = append([]Name(nil), r.Names...)
	return cp
}

func cloneAttributes(attrs map[string]any) map[string]any {
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = cloneAttributeValue(v)
	}
	return out
}

func cloneAttributeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneAttributes(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneAttributeValue(item)
		}
		return out
	default:
		return v
	}
}

// Repository is the scoping entity every record belongs to. Repositories are
// global; records never move between them.
type Repository struct {
	Base
	Code string `json:"code"`
	Name string `json:"name"`
}

// Change describes a mutation applied to a record during a transaction.
type Change struct {
	Type   RecordType
	Action Action
	URI    RecordURI
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported write operations captured per transaction.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated.
	ActionUpdate   Action = "update"
	ActionSuppress Action = "suppress"
)
