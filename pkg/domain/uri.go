package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordURI globally resolves a record. Equality is structural.
type RecordURI struct {
	RepositoryID int64
	Type         RecordType
	ID           int64
}

// String renders the canonical URI form, e.g. /repositories/2/accessions/17.
func (u RecordURI) String() string {
	def, ok := typeDefinitions[u.Type]
	if !ok {
		return fmt.Sprintf("/repositories/%d/%s/%d", u.RepositoryID, u.Type, u.ID)
	}
	return fmt.Sprintf("/repositories/%d/%s/%d", u.RepositoryID, def.Plural, u.ID)
}

// IsZero reports whether the URI is unset.
func (u RecordURI) IsZero() bool {
	return u.RepositoryID == 0 && u.Type == "" && u.ID == 0
}

// ParseURI parses a canonical record URI of the form
// /repositories/{repository_id}/{type_plural}/{id}.
func ParseURI(raw string) (RecordURI, error) {
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) != 4 || parts[0] != "repositories" {
		return RecordURI{}, fmt.Errorf("malformed record uri %q", raw)
	}
	repoID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || repoID <= 0 {
		return RecordURI{}, fmt.Errorf("malformed repository id in uri %q", raw)
	}
	recordType, ok := TypeForPlural(parts[2])
	if !ok {
		return RecordURI{}, fmt.Errorf("unknown record type %q in uri %q", parts[2], raw)
	}
	id, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil || id <= 0 {
		return RecordURI{}, fmt.Errorf("malformed record id in uri %q", raw)
	}
	return RecordURI{RepositoryID: repoID, Type: recordType, ID: id}, nil
}
