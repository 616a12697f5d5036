// Package memory provides an in-memory implementation of the core
// persistence store used for tests and ephemeral environments. It is also
// the transactional engine the durable backends wrap.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"archivecore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Record aliases domain.Record for in-memory persistence operations.
	Record = domain.Record
	// Repository aliases domain.Repository.
	Repository = domain.Repository
	// RecordURI aliases domain.RecordURI.
	RecordURI = domain.RecordURI
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// recordKey addresses a record inside one type bucket.
type recordKey struct {
	RepositoryID int64
	ID           int64
}

type memoryState struct {
	repositories map[int64]Repository
	records      map[domain.RecordType]map[recordKey]Record
	recordSeq    map[string]int64
	repoSeq      int64
}

func newMemoryState() memoryState {
	state := memoryState{
		repositories: make(map[int64]Repository),
		records:      make(map[domain.RecordType]map[recordKey]Record),
		recordSeq:    make(map[string]int64),
	}
	for _, def := range domain.Definitions() {
		state.records[def.Type] = make(map[recordKey]Record)
	}
	return state
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for id, repo := range s.repositories {
		cloned.repositories[id] = repo
	}
	for t, bucket := range s.records {
		target := cloned.records[t]
		if target == nil {
			target = make(map[recordKey]Record, len(bucket))
			cloned.records[t] = target
		}
		for k, rec := range bucket {
			target[k] = rec.Clone()
		}
	}
	for k, v := range s.recordSeq {
		cloned.recordSeq[k] = v
	}
	cloned.repoSeq = s.repoSeq
	return cloned
}

func seqKey(repositoryID int64, t domain.RecordType) string {
	return fmt.Sprintf("%d/%s", repositoryID, t)
}

// Snapshot captures a point-in-time clone of the store state for durable
// backends. Sequences are re-derived on import, so the shape stays a plain
// record dump.
type Snapshot struct {
	Repositories []Repository                   `json:"repositories"`
	Records      map[domain.RecordType][]Record `json:"records"`
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	snap := Snapshot{Records: make(map[domain.RecordType][]Record, len(state.records))}
	for _, repo := range state.repositories {
		snap.Repositories = append(snap.Repositories, repo)
	}
	sort.Slice(snap.Repositories, func(i, j int) bool { return snap.Repositories[i].ID < snap.Repositories[j].ID })
	for t, bucket := range state.records {
		records := make([]Record, 0, len(bucket))
		for _, rec := range bucket {
			records = append(records, rec.Clone())
		}
		sort.Slice(records, func(i, j int) bool {
			if records[i].RepositoryID != records[j].RepositoryID {
				return records[i].RepositoryID < records[j].RepositoryID
			}
			return records[i].ID < records[j].ID
		})
		snap.Records[t] = records
	}
	return snap
}

func memoryStateFromSnapshot(snap Snapshot) memoryState {
	state := newMemoryState()
	for _, repo := range snap.Repositories {
		state.repositories[repo.ID] = repo
		if repo.ID > state.repoSeq {
			state.repoSeq = repo.ID
		}
	}
	for t, records := range snap.Records {
		bucket := state.records[t]
		if bucket == nil {
			// Unknown buckets in older snapshots are dropped.
			continue
		}
		for _, rec := range records {
			if _, ok := state.repositories[rec.RepositoryID]; !ok {
				continue
			}
			bucket[recordKey{rec.RepositoryID, rec.ID}] = rec.Clone()
			key := seqKey(rec.RepositoryID, t)
			if rec.ID > state.recordSeq[key] {
				state.recordSeq[key] = rec.ID
			}
		}
	}
	return state
}

// Store provides an in-memory transactional store for archival records.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: newMemoryState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the time provider; tests use it for deterministic stamps.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = now
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snap)
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The copy is swapped in only when fn succeeds, so partial effects —
// a reconciled name set without its parent write, a passed version check
// without the increment — are never observable. The store mutex makes the
// version check-and-increment on update a single indivisible step with
// respect to other writers.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx Transaction) error) ([]Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.changes, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

// GetRecord retrieves a record from committed state, confined to the scope repository.
func (s *Store) GetRecord(scopeRepositoryID int64, uri RecordURI) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findRecord(&s.state, scopeRepositoryID, uri)
}

// ListRecords returns committed records of the given type within the scope
// repository, narrowed by any supplied filters.
func (s *Store) ListRecords(scopeRepositoryID int64, t domain.RecordType, filters ...domain.ListFilter) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRecords(&s.state, scopeRepositoryID, t, filters)
}

// GetRepository retrieves a repository by id from committed state.
func (s *Store) GetRepository(id int64) (Repository, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	repo, ok := s.state.repositories[id]
	return repo, ok
}

// ListRepositories returns all repositories sorted by id.
func (s *Store) ListRepositories() []Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRepositories(&s.state)
}

func findRecord(state *memoryState, scopeRepositoryID int64, uri RecordURI) (Record, error) {
	if uri.RepositoryID != scopeRepositoryID {
		return Record{}, domain.CrossRepositoryError{URI: uri, Scope: scopeRepositoryID}
	}
	bucket, ok := state.records[uri.Type]
	if !ok {
		return Record{}, domain.NotFoundError{URI: uri}
	}
	rec, ok := bucket[recordKey{uri.RepositoryID, uri.ID}]
	if !ok {
		return Record{}, domain.NotFoundError{URI: uri}
	}
	return rec.Clone(), nil
}

func acceptedByFilters(rec Record, filters []domain.ListFilter) bool {
	for _, filter := range filters {
		if !filter(rec) {
			return false
		}
	}
	return true
}

func listRecords(state *memoryState, scopeRepositoryID int64, t domain.RecordType, filters []domain.ListFilter) []Record {
	bucket := state.records[t]
	out := make([]Record, 0, len(bucket))
	for key, rec := range bucket {
		if key.RepositoryID != scopeRepositoryID {
			continue
		}
		if !acceptedByFilters(rec, filters) {
			continue
		}
		out = append(out, rec.Clone())
	}
	// Stable for a fixed snapshot of the store.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func listRepositories(state *memoryState) []Repository {
	out := make([]Repository, 0, len(state.repositories))
	for _, repo := range state.repositories {
		out = append(out, repo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
