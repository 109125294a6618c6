// Package memory implements the setup library on plain process memory. It
// carries the canonical semantics every persistent backend must preserve;
// the sqlite and postgres stores embed it and add durability.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"ctcore/pkg/record"
)

// ErrSetupNotFound marks a lookup or delete of a setup name the library does
// not hold.
var ErrSetupNotFound = errors.New("persistence: setup not found")

// Snapshot is the full exported library state: setup name to serialized
// system record.
type Snapshot struct {
	Setups map[string]record.Record `json:"setups"`
}

// Store is a concurrency-safe in-memory setup library.
type Store struct {
	mu     sync.RWMutex
	setups map[string]record.Record
}

// NewStore constructs an empty library.
func NewStore() *Store {
	return &Store{setups: make(map[string]record.Record)}
}

// SaveSetup stores the serialized system record under name, replacing any
// previous record of that name. The record is deep-copied on the way in so
// later caller mutations cannot alias library state.
func (s *Store) SaveSetup(_ context.Context, name string, rec record.Record) error {
	if name == "" {
		return fmt.Errorf("persistence: setup name must not be empty")
	}
	if rec == nil {
		return fmt.Errorf("persistence: setup %q has no record", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setups[name] = rec.Clone()
	return nil
}

// LoadSetup returns a deep copy of the record stored under name.
func (s *Store) LoadSetup(_ context.Context, name string) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.setups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetupNotFound, name)
	}
	return rec.Clone(), nil
}

// ListSetups returns the stored setup names in ascending order.
func (s *Store) ListSetups(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.setups))
	for name := range s.setups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteSetup removes the record stored under name.
func (s *Store) DeleteSetup(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.setups[name]; !ok {
		return fmt.Errorf("%w: %q", ErrSetupNotFound, name)
	}
	delete(s.setups, name)
	return nil
}

// ExportState returns a deep copy of the full library state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Snapshot{Setups: make(map[string]record.Record, len(s.setups))}
	for name, rec := range s.setups {
		out.Setups[name] = rec.Clone()
	}
	return out
}

// ImportState replaces the library state with the snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setups = make(map[string]record.Record, len(snapshot.Setups))
	for name, rec := range snapshot.Setups {
		s.setups[name] = rec.Clone()
	}
}

// Close implements the store contract; an in-memory library holds nothing.
func (s *Store) Close() error { return nil }
