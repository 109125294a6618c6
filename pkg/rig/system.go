package rig

import (
	"fmt"

	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// System is the ordered, exclusively owned collection of components forming
// one acquisition device. It is created empty, from a blueprint, or by
// deserialization, and copied only through deep per-component Clone.
type System struct {
	name       string
	components []Component
}

// NewSystem returns an empty system with the given name.
func NewSystem(name string) *System {
	return &System{name: name}
}

// Name returns the system name.
func (s *System) Name() string { return s.name }

// Rename sets the system name.
func (s *System) Rename(name string) { s.name = name }

// Add transfers exclusive ownership of the component to the system,
// preserving insertion order. Adding nil is a no-op.
func (s *System) Add(c Component) {
	if c == nil {
		return
	}
	s.components = append(s.components, c)
}

// Remove removes the first component matching the given identity. Removing
// an absent component is a no-op; the return reports whether a component
// was removed.
func (s *System) Remove(c Component) bool {
	for i, owned := range s.components {
		if owned == c {
			s.components = append(s.components[:i], s.components[i+1:]...)
			return true
		}
	}
	return false
}

// Components returns the owned components in insertion order. The slice is
// a copy; the references remain owned by the system.
func (s *System) Components() []Component {
	return append([]Component(nil), s.components...)
}

// filter returns non-owning references to components of one elemental
// family, in original insertion order.
func (s *System) filter(e Elemental) []Component {
	var out []Component
	for _, c := range s.components {
		if c.Elemental() == e {
			out = append(out, c)
		}
	}
	return out
}

// Detectors returns the detector components in insertion order.
func (s *System) Detectors() []Component { return s.filter(ElementalDetector) }

// Gantries returns the gantry components in insertion order.
func (s *System) Gantries() []Component { return s.filter(ElementalGantry) }

// Sources returns the source components in insertion order.
func (s *System) Sources() []Component { return s.filter(ElementalSource) }

// Modifiers returns the beam-modifier components in insertion order.
func (s *System) Modifiers() []Component { return s.filter(ElementalBeamModifier) }

// IsEmpty reports whether the system owns no components.
func (s *System) IsEmpty() bool { return len(s.components) == 0 }

// IsValid reports whether the system owns at least one detector, one gantry
// and one source.
func (s *System) IsValid() bool {
	return len(s.Detectors()) >= 1 && len(s.Gantries()) >= 1 && len(s.Sources()) >= 1
}

// IsSimple reports whether the system owns exactly one detector, one gantry
// and one source.
func (s *System) IsSimple() bool {
	return len(s.Detectors()) == 1 && len(s.Gantries()) == 1 && len(s.Sources()) == 1
}

// Clone returns a deep copy: every owned component supplies its own
// polymorphic clone, so the copy shares no component identities with the
// original.
func (s *System) Clone() *System {
	clone := &System{name: s.name}
	clone.components = make([]Component, len(s.components))
	for i, c := range s.components {
		clone.components[i] = c.Clone()
	}
	return clone
}

// ToRecord serializes the system name plus the ordered list of each
// component's own record, each embedding its type tag for later dispatch.
func (s *System) ToRecord() record.Record {
	components := make([]any, len(s.components))
	for i, c := range s.components {
		components[i] = c.ToRecord()
	}
	return record.New().
		Set(record.FieldName, s.name).
		Set("components", components)
}

// DecodeReport summarizes how the components of a serialized system were
// resolved against the registry.
type DecodeReport struct {
	Exact    int // decoded as their concrete type
	Fallback int // degraded to a generic elemental placeholder
	Skipped  int // unresolvable entries dropped from the system
}

// Degraded reports whether any component lost information during decoding.
func (r DecodeReport) Degraded() bool { return r.Fallback > 0 || r.Skipped > 0 }

// SystemFromRecord reconstructs a system from its record. Components with
// unregistered tags degrade to generic placeholders when their elemental
// family is known; entries resolvable by neither tier are skipped and
// counted rather than failing the whole system. Malformed component
// payloads abort with an error.
func SystemFromRecord(rec record.Record) (*System, DecodeReport, error) {
	name, _ := rec.String(record.FieldName)
	system := NewSystem(name)
	var report DecodeReport

	entries, ok := rec.List("components")
	if !ok {
		return system, report, nil
	}
	for i, entry := range entries {
		child, ok := entryRecord(entry)
		if !ok {
			return nil, report, fmt.Errorf("rig: system component %d is not a record", i)
		}
		component, outcome, err := DecodeComponent(child)
		if err != nil {
			return nil, report, fmt.Errorf("rig: system component %d: %w", i, err)
		}
		switch outcome {
		case serial.DecodeExact:
			report.Exact++
			system.Add(component)
		case serial.DecodeFallback:
			report.Fallback++
			system.Add(component)
		default:
			report.Skipped++
		}
	}
	return system, report, nil
}

func entryRecord(entry any) (record.Record, bool) {
	switch typed := entry.(type) {
	case record.Record:
		return typed, true
	case map[string]any:
		return record.Record(typed), true
	default:
		return nil, false
	}
}
