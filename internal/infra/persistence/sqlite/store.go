// Package sqlite provides a SQLite-backed persistent store. It wraps the
// in-memory transactional engine and snapshots the full state to a single
// table as JSON payloads after every successful transaction.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"archivecore/internal/infra/persistence/memory"
	"archivecore/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const repositoriesBucket = "repositories"

// Store persists the in-memory state to SQLite. One bucket row holds the
// repositories, one row per record type holds that type's records.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) a snapshotting SQLite-backed store at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "archivecore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	payloads := map[string][]byte{}
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state: %w", err)
		}
		payloads[bucket] = payload
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if len(payloads) == 0 {
		return nil
	}

	snapshot := memory.Snapshot{Records: make(map[domain.RecordType][]memory.Record)}
	if payload, ok := payloads[repositoriesBucket]; ok && len(payload) > 0 {
		if err := json.Unmarshal(payload, &snapshot.Repositories); err != nil {
			return fmt.Errorf("decode %s: %w", repositoriesBucket, err)
		}
	}
	for _, def := range domain.Definitions() {
		payload, ok := payloads[def.Plural]
		if !ok || len(payload) == 0 {
			continue
		}
		var records []memory.Record
		if err := json.Unmarshal(payload, &records); err != nil {
			return fmt.Errorf("decode %s: %w", def.Plural, err)
		}
		snapshot.Records[def.Type] = records
	}
	s.ImportState(snapshot)
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	upsert := func(bucket string, value any) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
		return nil
	}

	if retErr = upsert(repositoriesBucket, snapshot.Repositories); retErr != nil {
		return retErr
	}
	for _, def := range domain.Definitions() {
		if retErr = upsert(def.Plural, snapshot.Records[def.Type]); retErr != nil {
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		retErr = fmt.Errorf("commit: %w", err)
	}
	return retErr
}

// RunInTransaction applies fn within an in-memory transaction, then snapshots
// the committed state to SQLite.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx domain.Transaction) error) ([]domain.Change, error) {
	changes, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return nil, err
	}
	if pErr := s.persist(); pErr != nil {
		return changes, domain.StorageError{Op: "persist", Err: pErr}
	}
	return changes, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
