package domain

import "context"

// ListFilter narrows a record listing. A record is returned only when every
// supplied filter accepts it; listings keep their id order regardless.
type ListFilter func(Record) bool

// FilterSuppressed keeps records whose stored suppression flag matches want.
// It reads the flag only; cascade-derived visibility stays a read-path concern.
func FilterSuppressed(want bool) ListFilter {
	return func(rec Record) bool { return rec.Suppressed == want }
}

// FilterAttribute keeps records whose named attribute equals want.
func FilterAttribute(name string, want any) ListFilter {
	return func(rec Record) bool { return rec.Attributes[name] == want }
}

// Transaction exposes the domain operations a persistence implementation
// must support within one atomic scope. Either every mutation applied
// through a transaction commits, or none does; sub-record reconciliation
// rides inside the same boundary as the parent write.
type Transaction interface {
	Snapshot() TransactionView
	CreateRepository(Repository) (Repository, error)
	// CreateRecord assigns a repository-scoped id, stamps Version 1, and
	// adopts submitted name sub-records.
	CreateRecord(repositoryID int64, rec Record) (Record, error)
	// UpdateRecord fails with ConflictError unless expectedVersion matches
	// the stored version; on success the version is incremented exactly
	// once and the submitted name set replaces the stored one.
	UpdateRecord(uri RecordURI, expectedVersion int, apply func(*Record) error) (Record, error)
	// SetSuppressed flips the persisted suppression flag.
	SetSuppressed(uri RecordURI, suppressed bool) (Record, error)
	FindRecord(scopeRepositoryID int64, uri RecordURI) (Record, error)
	ListRecords(scopeRepositoryID int64, t RecordType, filters ...ListFilter) []Record
	FindRepository(id int64) (Repository, bool)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	FindRecord(scopeRepositoryID int64, uri RecordURI) (Record, error)
	ListRecords(scopeRepositoryID int64, t RecordType, filters ...ListFilter) []Record
	FindRepository(id int64) (Repository, bool)
	ListRepositories() []Repository
	// Resolver returns a RefResolver confined to the given repository
	// scope, for suppression cascade computation.
	Resolver(scopeRepositoryID int64) RefResolver
}

// PersistentStore is a minimal abstraction over durable backends. It
// mirrors the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Change, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetRecord(scopeRepositoryID int64, uri RecordURI) (Record, error)
	ListRecords(scopeRepositoryID int64, t RecordType, filters ...ListFilter) []Record
	GetRepository(id int64) (Repository, bool)
	ListRepositories() []Repository
}
