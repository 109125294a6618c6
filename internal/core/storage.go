package core

import (
	"context"
	"fmt"
	"os"

	"ctcore/internal/infra/persistence/memory"
	"ctcore/internal/infra/persistence/postgres"
	"ctcore/internal/infra/persistence/sqlite"
	"ctcore/pkg/record"
)

// StorageDriver identifies a concrete setup-library backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// ErrSetupNotFound is re-exported so callers need not import the backend
// packages.
var ErrSetupNotFound = memory.ErrSetupNotFound

// SetupStore is the setup-library contract the service depends on. All
// backends share the in-memory semantics; the persistent ones add
// durability.
type SetupStore interface {
	SaveSetup(ctx context.Context, name string, rec record.Record) error
	LoadSetup(ctx context.Context, name string) (record.Record, error)
	ListSetups(ctx context.Context) ([]string, error)
	DeleteSetup(ctx context.Context, name string) error
	Close() error
}

// OpenSetupStore selects a backend using environment variables. Defaults to
// sqlite when unset.
//
//	CTCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	CTCORE_SQLITE_PATH: path to sqlite file (default ./ctcore.db)
//	CTCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenSetupStore() (SetupStore, error) {
	driver := os.Getenv("CTCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("CTCORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(os.Getenv("CTCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

var (
	_ SetupStore = (*memory.Store)(nil)
	_ SetupStore = (*sqlite.Store)(nil)
	_ SetupStore = (*postgres.Store)(nil)
)
