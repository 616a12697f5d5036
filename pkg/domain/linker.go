package domain

import "github.com/google/uuid"

// ReconcileOwned diffs a submitted set of owned sub-records against the
// existing set by stable key. Entries present only in existing are dropped,
// entries without a key (or with an unmatched key) are created via adopt,
// and matched entries are replaced in place, keeping their key. The result
// follows submission order, not creation order.
//
// The routine is invoked inside the owning record's transaction, so the
// whole set replacement commits or rolls back with the parent write.
func ReconcileOwned[T any](submitted, existing []T, key func(T) string, adopt func(*T)) []T {
	known := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		if k := key(item); k != "" {
			known[k] = struct{}{}
		}
	}
	out := make([]T, 0, len(submitted))
	for _, item := range submitted {
		if k := key(item); k == "" {
			adopt(&item)
		} else if _, ok := known[k]; !ok {
			adopt(&item)
		}
		out = append(out, item)
	}
	return out
}

// NewSubRecordKey mints the opaque stable key bound to a sub-record at
// creation time.
func NewSubRecordKey() string {
	return uuid.NewString()
}

// AdoptName binds a submitted name to its owner by assigning a fresh key.
func AdoptName(n *Name) {
	n.Key = NewSubRecordKey()
}

// NameKey extracts the stable key of a name sub-record.
func NameKey(n Name) string { return n.Key }
