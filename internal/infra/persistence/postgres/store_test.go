package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestOpenErrorSurfaces(t *testing.T) {
	boom := errors.New("boom")
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		if driver != defaultDriver {
			t.Fatalf("driver %q, want %q", driver, defaultDriver)
		}
		return nil, boom
	})
	defer restore()

	if _, err := NewStore("postgres://example/ctcore"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestEmptyDSNFallsBackToDefault(t *testing.T) {
	var seen string
	restore := OverrideSQLOpen(func(_, dsn string) (*sql.DB, error) {
		seen = dsn
		return nil, errors.New("stop before ping")
	})
	defer restore()

	_, _ = NewStore("")
	if !strings.Contains(seen, "ctcore") {
		t.Fatalf("default DSN not applied, got %q", seen)
	}
}
