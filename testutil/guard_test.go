package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGoFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolationsFlagsForbiddenImports(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "bad.go", "package sample\n\nimport _ \"ctcore/internal/core\"\n")
	writeGoFile(t, dir, "ok.go", "package sample\n\nimport _ \"ctcore/pkg/rig\"\n")
	writeGoFile(t, dir, "skipped_test.go", "package sample\n\nimport _ \"ctcore/internal/core\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("expected one violation, got %v", viols)
	}
	if viols[0] != "ctcore/internal/core (in bad.go)" {
		t.Fatalf("unexpected violation %q", viols[0])
	}
}

func TestDirectImportViolationsCleanDir(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "ok.go", "package sample\n\nimport _ \"ctcore/pkg/model\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 0 {
		t.Fatalf("expected no violations, got %v", viols)
	}
}

func TestInternalImportForbidden(t *testing.T) {
	if !InternalImportForbidden("ctcore/internal/parts") {
		t.Fatalf("internal import must be forbidden")
	}
	if InternalImportForbidden("ctcore/pkg/serial") {
		t.Fatalf("public import must be allowed")
	}
	if InternalImportForbidden("github.com/prometheus/client_golang/prometheus") {
		t.Fatalf("third party import must be allowed")
	}
}
