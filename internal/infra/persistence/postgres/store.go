// Package postgres provides a Postgres-backed setup library that mirrors the
// in-memory semantics, one row per setup with a JSONB payload.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"ctcore/internal/infra/persistence/memory"
	"ctcore/pkg/record"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/ctcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a Postgres-backed setup library.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the setups table exists and hydrates the in-memory
// library from any stored rows.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS setups (
		name TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure setups table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, payload FROM setups`)
	if err != nil {
		return fmt.Errorf("select setups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := memory.Snapshot{Setups: map[string]record.Record{}}
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return fmt.Errorf("scan setup: %w", err)
		}
		rec, err := record.Unmarshal(payload)
		if err != nil {
			return fmt.Errorf("decode setup %q: %w", name, err)
		}
		snapshot.Setups[name] = rec
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate setups: %w", err)
	}
	s.ImportState(snapshot)
	return nil
}

// SaveSetup stores the record in memory, then upserts the row.
func (s *Store) SaveSetup(ctx context.Context, name string, rec record.Record) error {
	if err := s.Store.SaveSetup(ctx, name, rec); err != nil {
		return err
	}
	payload, err := record.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode setup %q: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO setups(name,payload) VALUES($1,$2) ON CONFLICT(name) DO UPDATE SET payload=EXCLUDED.payload`,
		name, payload); err != nil {
		return fmt.Errorf("upsert setup %q: %w", name, err)
	}
	return nil
}

// DeleteSetup removes the record from memory, then from the table.
func (s *Store) DeleteSetup(ctx context.Context, name string) error {
	if err := s.Store.DeleteSetup(ctx, name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM setups WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete setup %q: %w", name, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
