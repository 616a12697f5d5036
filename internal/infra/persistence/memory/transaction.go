package memory

import (
	"fmt"
	"time"

	"archivecore/pkg/domain"
)

// transaction is a mutation set applied to a cloned copy of the store state.
type transaction struct {
	state   memoryState
	changes []Change
	now     time.Time
}

var _ domain.Transaction = (*transaction)(nil)

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state read-only.
func (tx *transaction) Snapshot() TransactionView {
	return transactionView{state: &tx.state}
}

// CreateRepository persists a new repository with the next global id.
func (tx *transaction) CreateRepository(repo Repository) (Repository, error) {
	if repo.Code == "" {
		return Repository{}, fmt.Errorf("repository code is required")
	}
	for _, existing := range tx.state.repositories {
		if existing.Code == repo.Code {
			return Repository{}, fmt.Errorf("repository code %q already in use", repo.Code)
		}
	}
	tx.state.repoSeq++
	repo.ID = tx.state.repoSeq
	repo.CreatedAt = tx.now
	repo.UpdatedAt = tx.now
	tx.state.repositories[repo.ID] = repo
	return repo, nil
}

// FindRepository retrieves a repository from the transactional state.
func (tx *transaction) FindRepository(id int64) (Repository, bool) {
	repo, ok := tx.state.repositories[id]
	return repo, ok
}

// CreateRecord assigns a repository-scoped id, stamps version 1, and adopts
// submitted name sub-records for owning types.
func (tx *transaction) CreateRecord(repositoryID int64, rec Record) (Record, error) {
	def, ok := domain.DefinitionFor(rec.Type)
	if !ok {
		return Record{}, fmt.Errorf("unknown record type %q", rec.Type)
	}
	if _, ok := tx.state.repositories[repositoryID]; !ok {
		return Record{}, fmt.Errorf("repository %d does not exist", repositoryID)
	}

	key := seqKey(repositoryID, rec.Type)
	tx.state.recordSeq[key]++

	rec = rec.Clone()
	rec.ID = tx.state.recordSeq[key]
	rec.RepositoryID = repositoryID
	rec.Version = 1
	rec.Suppressed = false
	rec.CreatedAt = tx.now
	rec.UpdatedAt = tx.now
	if def.OwnsNames {
		rec.Names = domain.ReconcileOwned(rec.Names, nil, domain.NameKey, domain.AdoptName)
	} else {
		rec.Names = nil
	}

	tx.state.records[rec.Type][recordKey{repositoryID, rec.ID}] = rec
	tx.recordChange(Change{Type: rec.Type, Action: domain.ActionCreate, URI: rec.URI()})
	return rec.Clone(), nil
}

// UpdateRecord applies the mutator under an optimistic version check. The
// stored version must equal expectedVersion or the update fails with
// ConflictError; on success the version is incremented exactly once and the
// submitted name set is reconciled against the stored one.
func (tx *transaction) UpdateRecord(uri RecordURI, expectedVersion int, apply func(*Record) error) (Record, error) {
	stored, err := findRecord(&tx.state, uri.RepositoryID, uri)
	if err != nil {
		return Record{}, err
	}
	if stored.Version != expectedVersion {
		return Record{}, domain.ConflictError{URI: uri, Expected: expectedVersion, Actual: stored.Version}
	}

	def, _ := domain.DefinitionFor(uri.Type)
	existingNames := append([]domain.Name(nil), stored.Names...)

	rec := stored.Clone()
	if err := apply(&rec); err != nil {
		return Record{}, err
	}

	// Identity and store-owned fields are not caller-writable.
	rec.ID = stored.ID
	rec.RepositoryID = stored.RepositoryID
	rec.Type = stored.Type
	rec.Suppressed = stored.Suppressed
	rec.CreatedAt = stored.CreatedAt
	rec.Version = stored.Version + 1
	rec.UpdatedAt = tx.now
	if def.OwnsNames {
		rec.Names = domain.ReconcileOwned(rec.Names, existingNames, domain.NameKey, domain.AdoptName)
	} else {
		rec.Names = nil
	}

	tx.state.records[rec.Type][recordKey{rec.RepositoryID, rec.ID}] = rec
	tx.recordChange(Change{Type: rec.Type, Action: domain.ActionUpdate, URI: rec.URI()})
	return rec.Clone(), nil
}

// SetSuppressed flips the persisted suppression flag. The flag is owned by
// the store; it does not ride through UpdateRecord's mutator.
func (tx *transaction) SetSuppressed(uri RecordURI, suppressed bool) (Record, error) {
	rec, err := findRecord(&tx.state, uri.RepositoryID, uri)
	if err != nil {
		return Record{}, err
	}
	if rec.Suppressed == suppressed {
		return rec, nil
	}
	rec.Suppressed = suppressed
	rec.Version++
	rec.UpdatedAt = tx.now
	tx.state.records[rec.Type][recordKey{rec.RepositoryID, rec.ID}] = rec
	tx.recordChange(Change{Type: rec.Type, Action: domain.ActionSuppress, URI: rec.URI()})
	return rec.Clone(), nil
}

// FindRecord retrieves a record within the transactional state.
func (tx *transaction) FindRecord(scopeRepositoryID int64, uri RecordURI) (Record, error) {
	return findRecord(&tx.state, scopeRepositoryID, uri)
}

// ListRecords returns records of the given type within the scope repository.
func (tx *transaction) ListRecords(scopeRepositoryID int64, t domain.RecordType, filters ...domain.ListFilter) []Record {
	return listRecords(&tx.state, scopeRepositoryID, t, filters)
}

// transactionView exposes a read-only snapshot of store state.
type transactionView struct {
	state *memoryState
}

var _ domain.TransactionView = transactionView{}

func (v transactionView) FindRecord(scopeRepositoryID int64, uri RecordURI) (Record, error) {
	return findRecord(v.state, scopeRepositoryID, uri)
}

func (v transactionView) ListRecords(scopeRepositoryID int64, t domain.RecordType, filters ...domain.ListFilter) []Record {
	return listRecords(v.state, scopeRepositoryID, t, filters)
}

func (v transactionView) FindRepository(id int64) (Repository, bool) {
	repo, ok := v.state.repositories[id]
	return repo, ok
}

func (v transactionView) ListRepositories() []Repository {
	return listRepositories(v.state)
}

// Resolver returns a ref resolver confined to the given repository scope.
// Cross-repository and dangling refs report not-found, which the cascade
// treats as suppressed.
func (v transactionView) Resolver(scopeRepositoryID int64) domain.RefResolver {
	return func(uri RecordURI) (Record, bool) {
		rec, err := findRecord(v.state, scopeRepositoryID, uri)
		if err != nil {
			return Record{}, false
		}
		return rec, true
	}
}
