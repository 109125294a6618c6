package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"ctcore/internal/blob"
	"ctcore/internal/parts"
	"ctcore/pkg/rig"
)

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.log("error", msg) }

func (l *captureLogger) has(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

type observation struct {
	operation string
	success   bool
}

type captureMetrics struct {
	mu  sync.Mutex
	obs []observation
}

func (c *captureMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.obs = append(c.obs, observation{operation: operation, success: success})
}

func (c *captureMetrics) has(operation string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, o := range c.obs {
		if o.operation == operation && o.success == success {
			return true
		}
	}
	return false
}

type captureTracer struct {
	mu    sync.Mutex
	spans []string
}

func (c *captureTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, captureSpan{tracer: c, operation: operation}
}

type captureSpan struct {
	tracer    *captureTracer
	operation string
}

func (s captureSpan) End(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	status := "success"
	if err != nil {
		status = "error"
	}
	s.tracer.spans = append(s.tracer.spans, s.operation+"/"+status)
}

func (c *captureTracer) has(span string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.spans {
		if s == span {
			return true
		}
	}
	return false
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	original := rig.FromBlueprint(parts.TableTopBlueprint{})
	report, err := svc.SaveSetup(ctx, original)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !report.Valid || !report.Simple || report.HasErrors() {
		t.Fatalf("blueprint setup must validate cleanly, got %+v", report)
	}

	loaded, decodeReport, err := svc.LoadSetup(ctx, "table-top")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if decodeReport.Degraded() {
		t.Fatalf("registered parts must decode exactly, got %+v", decodeReport)
	}
	if loaded.Name() != original.Name() || !loaded.IsSimple() {
		t.Fatalf("loaded setup differs: name=%q simple=%v", loaded.Name(), loaded.IsSimple())
	}
}

func TestSaveRejectsNamelessAndNil(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	if _, err := svc.SaveSetup(ctx, nil); err == nil {
		t.Fatalf("nil system must be rejected")
	}
	if _, err := svc.SaveSetup(ctx, rig.NewSystem("")); err == nil {
		t.Fatalf("nameless system must be rejected")
	}
}

func TestListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	for _, name := range []string{"beta", "alpha"} {
		system := rig.FromBlueprint(parts.TableTopBlueprint{})
		system.Rename(name)
		if _, err := svc.SaveSetup(ctx, system); err != nil {
			t.Fatalf("save %q: %v", name, err)
		}
	}
	names, err := svc.ListSetups(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("list %v, want [alpha beta]", names)
	}

	if err := svc.DeleteSetup(ctx, "alpha"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteSetup(ctx, "alpha"); !errors.Is(err, ErrSetupNotFound) {
		t.Fatalf("second delete: expected ErrSetupNotFound, got %v", err)
	}
}

func TestValidationFindingsAreLogged(t *testing.T) {
	ctx := context.Background()
	logger := &captureLogger{}
	svc := NewInMemoryService(WithLogger(logger))

	incomplete := rig.NewSystem("half-built")
	incomplete.Add(parts.NewXRayTube("tube", 120, 100, nil))
	report, err := svc.SaveSetup(ctx, incomplete)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if report.Valid || !report.HasErrors() {
		t.Fatalf("incomplete setup must report errors, got %+v", report)
	}
	if !logger.has("warn: setup validation finding") {
		t.Fatalf("validation findings must be logged, got %v", logger.entries)
	}
}

func TestObservabilityHooksFire(t *testing.T) {
	ctx := context.Background()
	metrics := &captureMetrics{}
	tracer := &captureTracer{}
	base := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	var ticks int
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Millisecond)
	}
	svc := NewInMemoryService(WithMetricsRecorder(metrics), WithTracer(tracer), WithClock(clock))

	if _, err := svc.SaveSetup(ctx, rig.FromBlueprint(parts.TableTopBlueprint{})); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := svc.LoadSetup(ctx, "missing"); err == nil {
		t.Fatalf("expected load failure")
	}

	if !metrics.has("save_setup", true) {
		t.Fatalf("missing success observation, got %+v", metrics.obs)
	}
	if !metrics.has("load_setup", false) {
		t.Fatalf("missing error observation, got %+v", metrics.obs)
	}
	if !tracer.has("save_setup/success") || !tracer.has("load_setup/error") {
		t.Fatalf("missing spans, got %v", tracer.spans)
	}
}

func TestComputeBeamOverStoredSetup(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	if _, err := svc.SaveSetup(ctx, rig.FromBlueprint(parts.TableTopBlueprint{})); err != nil {
		t.Fatalf("save: %v", err)
	}
	quantities, err := svc.ComputeBeam(ctx, "table-top")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if quantities.Spectrum.Len() == 0 || quantities.PhotonFlux <= 0 {
		t.Fatalf("empty beam quantities: %+v", quantities)
	}
	if quantities.QuantumEfficiency <= 0 || quantities.QuantumEfficiency > 1 {
		t.Fatalf("quantum efficiency %g out of range", quantities.QuantumEfficiency)
	}
	if quantities.DetectiveMeanEnergy <= 0 || quantities.DetectiveMeanEnergy >= 120 {
		t.Fatalf("mean energy %g outside the tube range", quantities.DetectiveMeanEnergy)
	}
}

func TestExportsLandInArchive(t *testing.T) {
	ctx := context.Background()
	archive := blob.NewMemory()
	clock := func() time.Time { return time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC) }
	svc := NewInMemoryService(WithArchive(archive), WithClock(clock))

	if _, err := svc.SaveSetup(ctx, rig.FromBlueprint(parts.TableTopBlueprint{})); err != nil {
		t.Fatalf("save: %v", err)
	}

	setupInfo, err := svc.ExportSetup(ctx, "table-top")
	if err != nil {
		t.Fatalf("export setup: %v", err)
	}
	if !strings.HasPrefix(setupInfo.Key, "exports/table-top/setup-") {
		t.Fatalf("unexpected setup key %q", setupInfo.Key)
	}

	spectrumInfo, err := svc.ExportSpectrum(ctx, "table-top")
	if err != nil {
		t.Fatalf("export spectrum: %v", err)
	}
	if !strings.HasPrefix(spectrumInfo.Key, "exports/table-top/spectrum-") {
		t.Fatalf("unexpected spectrum key %q", spectrumInfo.Key)
	}

	infos, err := archive.List(ctx, "exports/table-top/")
	if err != nil {
		t.Fatalf("list archive: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("archive must hold both artifacts, got %+v", infos)
	}
}

func TestExportWithoutArchiveFails(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()
	if _, err := svc.SaveSetup(ctx, rig.FromBlueprint(parts.TableTopBlueprint{})); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := svc.ExportSetup(ctx, "table-top"); err == nil {
		t.Fatalf("export without archive must fail")
	}
}
