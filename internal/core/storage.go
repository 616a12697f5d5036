package core

import (
	"context"
	"fmt"
	"os"

	"archivecore/internal/infra/persistence/memory"
	"archivecore/internal/infra/persistence/postgres"
	"archivecore/internal/infra/persistence/sqlite"
	"archivecore/internal/schemasource"
	schemafs "archivecore/internal/schemasource/fs"
	schemas3 "archivecore/internal/schemasource/s3"
	"archivecore/pkg/schema"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

// Supported storage drivers.
const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	ARCHIVECORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	ARCHIVECORE_SQLITE_PATH: path to sqlite file (default ./archivecore.db)
//	ARCHIVECORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore() (PersistentStore, error) {
	driver := os.Getenv("ARCHIVECORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("ARCHIVECORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("ARCHIVECORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenSchemaRegistry builds the schema registry: the built-in definitions,
// optionally extended or overridden by an external definition source.
//
//	ARCHIVECORE_SCHEMA_SOURCE: fs|s3 (default: built-ins only)
//	ARCHIVECORE_SCHEMA_DIR: definition directory when source=fs
func OpenSchemaRegistry(ctx context.Context) (*schema.Registry, error) {
	reg := schema.NewRegistry()
	sourceDriver := os.Getenv("ARCHIVECORE_SCHEMA_SOURCE")
	if sourceDriver == "" {
		return reg, nil
	}

	var src schemasource.Source
	var err error
	switch schemasource.Driver(sourceDriver) {
	case schemasource.DriverFilesystem:
		src, err = schemafs.New(os.Getenv("ARCHIVECORE_SCHEMA_DIR"))
	case schemasource.DriverS3:
		src, err = schemas3.OpenFromEnv(ctx)
	default:
		return nil, fmt.Errorf("unknown schema source %s", sourceDriver)
	}
	if err != nil {
		return nil, err
	}
	if err := schemasource.LoadRegistry(ctx, src, reg); err != nil {
		return nil, err
	}
	return reg, nil
}
