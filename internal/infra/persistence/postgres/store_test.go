package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"archivecore/internal/infra/persistence/memory"
	"archivecore/internal/infra/persistence/postgres/testutil"
	"archivecore/pkg/domain"
)

func TestNewStoreEnsuresStateTableAndLoadsSnapshot(t *testing.T) {
	db, conn := testutil.NewStubDB()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := memory.Snapshot{
		Repositories: []domain.Repository{{
			Base: domain.Base{ID: 1, CreatedAt: now, UpdatedAt: now},
			Code: "pg",
			Name: "Postgres Test",
		}},
		Records: map[domain.RecordType][]domain.Record{
			domain.TypeAccession: {{
				Base:         domain.Base{ID: 4, CreatedAt: now, UpdatedAt: now},
				RepositoryID: 1,
				Type:         domain.TypeAccession,
				Version:      3,
				Attributes:   map[string]any{"title": "Loaded"},
			}},
		},
	}
	repoPayload, err := json.Marshal(seed.Repositories)
	if err != nil {
		t.Fatalf("marshal repositories: %v", err)
	}
	recPayload, err := json.Marshal(seed.Records[domain.TypeAccession])
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	conn.Buckets[repositoriesBucket] = repoPayload
	conn.Buckets["accessions"] = recPayload

	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}

	uri := domain.RecordURI{RepositoryID: 1, Type: domain.TypeAccession, ID: 4}
	rec, err := store.GetRecord(1, uri)
	if err != nil {
		t.Fatalf("get loaded record: %v", err)
	}
	if rec.Version != 3 || rec.Attributes["title"] != "Loaded" {
		t.Fatalf("unexpected loaded record: %+v", rec)
	}
}

func TestRunInTransactionPersistsBuckets(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("ignored")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var repo domain.Repository
	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		created, err := tx.CreateRepository(domain.Repository{Code: "pg", Name: "Postgres"})
		if err != nil {
			return err
		}
		repo = created
		_, err = tx.CreateRecord(repo.ID, domain.Record{
			Type:       domain.TypeAccession,
			Attributes: map[string]any{"title": "Persisted"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	var repos []domain.Repository
	if err := json.Unmarshal(conn.Buckets[repositoriesBucket], &repos); err != nil {
		t.Fatalf("decode repositories bucket: %v", err)
	}
	if len(repos) != 1 || repos[0].Code != "pg" {
		t.Fatalf("unexpected repositories bucket: %+v", repos)
	}

	var records []domain.Record
	if err := json.Unmarshal(conn.Buckets["accessions"], &records); err != nil {
		t.Fatalf("decode accessions bucket: %v", err)
	}
	if len(records) != 1 || records[0].Attributes["title"] != "Persisted" {
		t.Fatalf("unexpected accessions bucket: %+v", records)
	}

	// Every known type gets a bucket row, populated or not.
	for _, def := range domain.Definitions() {
		if _, ok := conn.Buckets[def.Plural]; !ok {
			t.Fatalf("missing bucket %q", def.Plural)
		}
	}
}

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, fmt.Errorf("open fail")
	})
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "open fail") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "ping") {
		t.Fatalf("expected ping error, got %v", err)
	}
	if conn.Closes == 0 {
		t.Fatal("failed open must close the database handle")
	}
}

func TestNewStoreClosesHandleOnLoadError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailQuery = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(""); err == nil || !strings.Contains(err.Error(), "select state") {
		t.Fatalf("expected snapshot load error, got %v", err)
	}
	if conn.Closes == 0 {
		t.Fatal("failed open must close the database handle")
	}
}

func TestRunInTransactionCommitFailureSurfaces(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	conn.FailCommit = true

	_, err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateRepository(domain.Repository{Code: "pg", Name: "Postgres"})
		return err
	})
	if err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit error, got %v", err)
	}
}
