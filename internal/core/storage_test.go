package core

import (
	"context"
	"path/filepath"
	"testing"

	"ctcore/internal/parts"
	"ctcore/pkg/rig"
)

func TestOpenSetupStoreSelectsDriver(t *testing.T) {
	t.Setenv("CTCORE_STORAGE_DRIVER", "memory")
	store, err := OpenSetupStore()
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	defer func() { _ = store.Close() }()

	t.Setenv("CTCORE_STORAGE_DRIVER", "bogus")
	if _, err := OpenSetupStore(); err == nil {
		t.Fatalf("unknown driver must error")
	}
}

func TestServiceOverSQLiteStore(t *testing.T) {
	t.Setenv("CTCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("CTCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "library.db"))

	store, err := OpenSetupStore()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	svc := NewService(store)
	if _, err := svc.SaveSetup(ctx, rig.FromBlueprint(parts.TableTopBlueprint{})); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, report, err := svc.LoadSetup(ctx, "table-top")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if report.Degraded() || !loaded.IsSimple() {
		t.Fatalf("setup degraded through sqlite: %+v", report)
	}
}
