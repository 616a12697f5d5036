package core

import (
	"time"

	"archivecore/pkg/domain"
)

// Envelope keys the server owns. They are injected on read and stripped by
// the validator on write.
const (
	keyURI         = "uri"
	keyLockVersion = "lock_version"
	keySuppressed  = "suppressed"
	keyCreatedAt   = "created_at"
	keyUpdatedAt   = "updated_at"

	keyNames         = "names"
	keyLinkedRecords = "linked_records"
	keyLinkedAgents  = "linked_agents"
)

// toRepresentation renders a record as its wire shape: cleaned attributes,
// typed sub-records, and the server-owned envelope.
func toRepresentation(rec Record) Representation {
	rep := make(Representation, len(rec.Attributes)+8)
	for k, v := range rec.Attributes {
		rep[k] = v
	}
	if def, ok := domain.DefinitionFor(rec.Type); ok && def.OwnsNames {
		rep[keyNames] = namesToAny(rec.Names)
	}
	if len(rec.LinkedRecords) > 0 {
		rep[keyLinkedRecords] = linksToAny(rec.LinkedRecords)
	}
	if len(rec.LinkedAgents) > 0 {
		rep[keyLinkedAgents] = linksToAny(rec.LinkedAgents)
	}
	rep[keyURI] = rec.URI().String()
	rep[keyLockVersion] = rec.Version
	rep[keySuppressed] = rec.Suppressed
	rep[keyCreatedAt] = rec.CreatedAt.UTC().Format(time.RFC3339)
	rep[keyUpdatedAt] = rec.UpdatedAt.UTC().Format(time.RFC3339)
	return rep
}

// splitAttributes pops the typed sub-record arrays out of a cleaned
// attribute mapping, leaving only plain attributes behind.
func splitAttributes(attrs map[string]any) (plain map[string]any, names []domain.Name, linkedRecords, linkedAgents []domain.Link) {
	plain = make(map[string]any, len(attrs))
	for k, v := range attrs {
		switch k {
		case keyNames:
			names = namesFromAny(v)
		case keyLinkedRecords:
			linkedRecords = linksFromAny(v)
		case keyLinkedAgents:
			linkedAgents = linksFromAny(v)
		default:
			plain[k] = v
		}
	}
	return plain, names, linkedRecords, linkedAgents
}

func namesFromAny(v any) []domain.Name {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Name, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := domain.Name{
			Key:         stringAt(m, "key"),
			PrimaryName: stringAt(m, "primary_name"),
			RestOfName:  stringAt(m, "rest_of_name"),
			SortName:    stringAt(m, "sort_name"),
			NameOrder:   stringAt(m, "name_order"),
		}
		if b, ok := m["authorized"].(bool); ok {
			name.Authorized = b
		}
		out = append(out, name)
	}
	return out
}

func namesToAny(names []domain.Name) []any {
	out := make([]any, 0, len(names))
	for _, name := range names {
		m := map[string]any{
			"key":          name.Key,
			"primary_name": name.PrimaryName,
			"sort_name":    name.SortName,
			"authorized":   name.Authorized,
		}
		if name.RestOfName != "" {
			m["rest_of_name"] = name.RestOfName
		}
		if name.NameOrder != "" {
			m["name_order"] = name.NameOrder
		}
		out = append(out, m)
	}
	return out
}

func linksFromAny(v any) []domain.Link {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.Link, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.Link{Ref: stringAt(m, "ref"), Role: stringAt(m, "role")})
	}
	return out
}

func linksToAny(links []domain.Link) []any {
	out := make([]any, 0, len(links))
	for _, link := range links {
		out = append(out, map[string]any{"ref": link.Ref, "role": link.Role})
	}
	return out
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// lockVersionOf extracts the client-submitted lock version. A missing or
// malformed value reads as version 0, which can never match a stored record
// and therefore fails the optimistic check as a conflict.
func lockVersionOf(rep Representation) int {
	switch v := rep[keyLockVersion].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
