package rig

import (
	"sync"
	"testing"

	"ctcore/pkg/record"
)

var registerOnce sync.Once

func ensureRegistered() {
	registerOnce.Do(RegisterBuiltins)
}

func simpleSystem() *System {
	s := NewSystem("table-top")
	s.Add(NewGenericSource("tube"))
	s.Add(NewGenericBeamModifier("filter"))
	s.Add(NewGenericGantry("ring"))
	s.Add(NewGenericDetector("panel"))
	return s
}

func TestValidityPredicates(t *testing.T) {
	empty := NewSystem("empty")
	if !empty.IsEmpty() || empty.IsValid() || empty.IsSimple() {
		t.Fatalf("empty system misclassified: empty=%v valid=%v simple=%v",
			empty.IsEmpty(), empty.IsValid(), empty.IsSimple())
	}

	partial := NewSystem("partial")
	partial.Add(NewGenericDetector("panel"))
	partial.Add(NewGenericGantry("ring"))
	if partial.IsValid() {
		t.Fatalf("system without a source must not be valid")
	}

	simple := simpleSystem()
	if !simple.IsValid() || !simple.IsSimple() || simple.IsEmpty() {
		t.Fatalf("simple system misclassified: empty=%v valid=%v simple=%v",
			simple.IsEmpty(), simple.IsValid(), simple.IsSimple())
	}

	simple.Add(NewGenericDetector("second panel"))
	if !simple.IsValid() || simple.IsSimple() {
		t.Fatalf("two detectors: system stays valid but is no longer simple")
	}
}

func TestFiltersPreserveInsertionOrder(t *testing.T) {
	s := NewSystem("ordered")
	first := NewGenericBeamModifier("first")
	second := NewGenericBeamModifier("second")
	s.Add(first)
	s.Add(NewGenericSource("tube"))
	s.Add(second)

	modifiers := s.Modifiers()
	if len(modifiers) != 2 || modifiers[0] != Component(first) || modifiers[1] != Component(second) {
		t.Fatalf("modifier filter must keep insertion order, got %v", modifiers)
	}
	if len(s.Sources()) != 1 || len(s.Detectors()) != 0 {
		t.Fatalf("unexpected filter counts")
	}
}

func TestRemoveMatchesByIdentity(t *testing.T) {
	s := NewSystem("identity")
	kept := NewGenericDetector("twin")
	removed := NewGenericDetector("twin")
	s.Add(kept)
	s.Add(removed)

	if !s.Remove(removed) {
		t.Fatalf("expected removal of the second twin")
	}
	remaining := s.Detectors()
	if len(remaining) != 1 || remaining[0] != Component(kept) {
		t.Fatalf("wrong component removed")
	}
	if s.Remove(removed) {
		t.Fatalf("removing an absent component must be a no-op")
	}
}

func TestCloneIsDeepAndFieldIdentical(t *testing.T) {
	original := simpleSystem()
	clone := original.Clone()

	origComponents := original.Components()
	cloneComponents := clone.Components()
	if len(cloneComponents) != len(origComponents) {
		t.Fatalf("clone component count %d, want %d", len(cloneComponents), len(origComponents))
	}
	for i := range origComponents {
		if cloneComponents[i] == origComponents[i] {
			t.Fatalf("component %d shares identity with the original", i)
		}
		if !record.Equal(cloneComponents[i].ToRecord(), origComponents[i].ToRecord()) {
			t.Fatalf("component %d record differs after clone", i)
		}
	}

	cloneComponents[0].SetName("renamed")
	if origComponents[0].Name() == "renamed" {
		t.Fatalf("renaming a cloned component leaked into the original")
	}
}

func TestSystemRecordRoundTrip(t *testing.T) {
	ensureRegistered()
	original := simpleSystem()

	decoded, report, err := SystemFromRecord(original.ToRecord())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Degraded() {
		t.Fatalf("registered placeholders must decode exactly, report %+v", report)
	}
	if decoded.Name() != "table-top" {
		t.Fatalf("system name %q after round trip", decoded.Name())
	}
	if !record.Equal(decoded.ToRecord(), original.ToRecord()) {
		t.Fatalf("system record changed across round trip")
	}
}

func TestSystemDecodeDegradesUnknownTags(t *testing.T) {
	ensureRegistered()
	rec := record.New().
		Set(record.FieldName, "exotic").
		Set("components", []any{
			// Unknown tag with a known elemental family degrades to a
			// generic placeholder that keeps the name.
			record.New().
				Set(record.FieldTypeID, 999).
				Set(record.FieldElemental, int(ElementalDetector)).
				Set(record.FieldName, "prototype panel").
				Set("pixel count", 4096),
			// Unknown tag without an elemental family is skipped.
			record.New().Set(record.FieldTypeID, 998).Set(record.FieldName, "mystery"),
		})

	system, report, err := SystemFromRecord(rec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Exact != 0 || report.Fallback != 1 || report.Skipped != 1 {
		t.Fatalf("unexpected decode report %+v", report)
	}
	detectors := system.Detectors()
	if len(detectors) != 1 {
		t.Fatalf("expected one degraded detector, got %d", len(detectors))
	}
	placeholder, ok := detectors[0].(*GenericDetector)
	if !ok {
		t.Fatalf("expected GenericDetector placeholder, got %T", detectors[0])
	}
	if placeholder.Name() != "prototype panel" {
		t.Fatalf("placeholder must keep the original name, got %q", placeholder.Name())
	}
	if placeholder.ToRecord().Has("pixel count") {
		t.Fatalf("placeholder must discard subtype-specific fields")
	}
}

type testBlueprint struct{}

func (testBlueprint) Name() string { return "bench" }

func (testBlueprint) Components() []Component {
	return []Component{
		NewGenericSource("tube"),
		NewGenericGantry("ring"),
		NewGenericDetector("panel"),
	}
}

func TestFromBlueprint(t *testing.T) {
	system := FromBlueprint(testBlueprint{})
	if system.Name() != "bench" || !system.IsSimple() {
		t.Fatalf("blueprint assembly failed: name=%q simple=%v", system.Name(), system.IsSimple())
	}
}

func TestPixelSolidAngle(t *testing.T) {
	module := DetectorModule{PixelWidth: 1, PixelHeight: 1, Distance: 1000}
	if got, want := module.PixelSolidAngle(), 1e-6; got != want {
		t.Fatalf("solid angle %g, want %g", got, want)
	}
	if got := (DetectorModule{PixelWidth: 1, PixelHeight: 1}).PixelSolidAngle(); got != 0 {
		t.Fatalf("zero distance must yield zero solid angle, got %g", got)
	}
}
