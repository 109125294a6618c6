package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorderExports(t *testing.T) {
	recorder := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	recorder.Observe(ctx, "save_setup", true, 20*time.Millisecond)
	recorder.Observe(ctx, "save_setup", false, 5*time.Millisecond)
	recorder.Observe(ctx, "", true, time.Millisecond)

	snapshot := recorder.Snapshot()
	if snapshot.DurationsMS["save_setup"] != 25 {
		t.Fatalf("duration total %g, want 25", snapshot.DurationsMS["save_setup"])
	}
	if snapshot.Results["save_setup"]["success"] != 1 || snapshot.Results["save_setup"]["error"] != 1 {
		t.Fatalf("unexpected result counters %+v", snapshot.Results)
	}
	if recorder.Name() == "" {
		t.Fatalf("generated name must not be empty")
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	ctx := context.Background()

	_, span := tracer.Start(ctx, "compute_beam")
	span.End(nil)
	_, span = tracer.Start(ctx, "load_setup")
	span.End(errors.New("missing"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Operation != "compute_beam" || entries[0].Status != "success" {
		t.Fatalf("first span %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "missing" {
		t.Fatalf("second span %+v", entries[1])
	}
	if !strings.Contains(buf.String(), `"operation":"compute_beam"`) {
		t.Fatalf("spans must stream as JSON lines, got %q", buf.String())
	}
}

func TestPrometheusRecorderRegistersAndCounts(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder, err := NewPrometheusMetricsRecorder(registry)
	if err != nil {
		t.Fatalf("construct: %v", err)
	}
	ctx := context.Background()

	recorder.Observe(ctx, "save_setup", true, 10*time.Millisecond)
	recorder.Observe(ctx, "save_setup", false, time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sawCounter, sawHistogram bool
	for _, fam := range families {
		switch fam.GetName() {
		case "ctcore_service_operations_total":
			sawCounter = true
			var total float64
			for _, metric := range fam.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
			if total != 2 {
				t.Fatalf("counter total %g, want 2", total)
			}
		case "ctcore_service_operation_duration_seconds":
			sawHistogram = true
		}
	}
	if !sawCounter || !sawHistogram {
		t.Fatalf("collectors missing: counter=%v histogram=%v", sawCounter, sawHistogram)
	}

	// Double registration of the same collectors must surface the error.
	if _, err := NewPrometheusMetricsRecorder(registry); err == nil {
		t.Fatalf("duplicate registration must fail")
	}
}
