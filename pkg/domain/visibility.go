package domain

// RefResolver resolves a linked-record URI within the reader's repository
// scope. ok is false when the ref is dangling or addresses another
// repository; the cascade treats both as suppressed.
type RefResolver func(RecordURI) (Record, bool)

// EffectiveSuppressed computes the derived visibility state of a record.
// A record is effectively suppressed when its own flag is set, or — for
// types whose visibility cascades from their links — when it links to at
// least one record and every linked record resolves to a suppressed one.
// LinkedAgents never participates: an event stays hidden even when a
// non-suppressed agent is attached, and stays visible on the strength of a
// single non-suppressed linked record.
//
// The state is computed at read time and never stored, so suppressing a
// primary record needs no fan-out writes to its dependent events.
func EffectiveSuppressed(rec Record, resolve RefResolver) bool {
	if rec.Suppressed {
		return true
	}
	def, ok := typeDefinitions[rec.Type]
	if !ok || !def.CascadesFromLinks {
		return false
	}
	if len(rec.LinkedRecords) == 0 {
		return false
	}
	for _, link := range rec.LinkedRecords {
		uri, err := ParseURI(link.Ref)
		if err != nil {
			// Unresolvable ref: fail safe toward hiding.
			continue
		}
		target, found := resolve(uri)
		if !found {
			continue
		}
		if !target.Suppressed {
			return false
		}
	}
	return true
}

// Visible reports whether the principal may see the record. Principals
// holding the view-suppressed capability see everything; all other callers
// are filtered by effective suppression. Single-record lookup and bulk
// listing both route through this predicate.
func Visible(rec Record, principal Principal, resolve RefResolver) bool {
	if principal.Can(CapabilityViewSuppressed) {
		return true
	}
	return !EffectiveSuppressed(rec, resolve)
}
