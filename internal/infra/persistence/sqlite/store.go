// Package sqlite persists the setup library to an embedded SQLite file, one
// row per setup with the serialized system record as a JSON payload. It
// reuses the in-memory store for the read path and writes through on every
// mutation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ctcore/internal/infra/persistence/memory"
	"ctcore/pkg/record"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const defaultPath = "ctcore.db"

// Store is a SQLite-backed setup library.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path and hydrates the
// in-memory library from the stored rows.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
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
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS setups (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create setups table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT name, payload FROM setups`)
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
		`INSERT INTO setups(name,payload) VALUES(?,?) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`,
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
	if _, err := s.db.ExecContext(ctx, `DELETE FROM setups WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete setup %q: %w", name, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
