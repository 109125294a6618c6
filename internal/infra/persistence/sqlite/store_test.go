package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ctcore/internal/infra/persistence/memory"
	"ctcore/pkg/record"
)

func setupRecord(name string) record.Record {
	return record.New().
		Set(record.FieldName, name).
		Set("components", []any{})
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SaveSetup(ctx, "bench", setupRecord("bench")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveSetup(ctx, "doomed", setupRecord("doomed")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.DeleteSetup(ctx, "doomed"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	names, err := reopened.ListSetups(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 1 || names[0] != "bench" {
		t.Fatalf("list after reopen %v, want [bench]", names)
	}
	loaded, err := reopened.LoadSetup(ctx, "bench")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !record.Equal(loaded, setupRecord("bench")) {
		t.Fatalf("record changed across reopen")
	}
	if _, err := reopened.LoadSetup(ctx, "doomed"); !errors.Is(err, memory.ErrSetupNotFound) {
		t.Fatalf("deleted setup resurfaced: %v", err)
	}
}

func TestUpsertKeepsLatestPayload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "library.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.SaveSetup(ctx, "bench", setupRecord("v1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveSetup(ctx, "bench", setupRecord("v2")); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	loaded, err := reopened.LoadSetup(ctx, "bench")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if name, _ := loaded.String(record.FieldName); name != "v2" {
		t.Fatalf("stale payload survived the upsert: %q", name)
	}
}

func TestCreatesNestedDirectories(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "dir", "library.db"))
	if err != nil {
		t.Fatalf("open with nested dirs: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() == "" {
		t.Fatalf("path accessor must report the configured path")
	}
	if store.DB() == nil {
		t.Fatalf("db accessor must expose the handle")
	}
}
