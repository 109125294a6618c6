// Package rig models a configurable CT acquisition device as a graph of
// swappable, polymorphic parts: sources, detectors, gantries and beam
// modifiers, collected into a System aggregate that owns them exclusively.
package rig

import (
	"errors"
	"fmt"

	"ctcore/pkg/model"
	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// Elemental is the coarse capability classification of a component,
// independent of its concrete type tag.
type Elemental int

// Elemental families.
const (
	ElementalDetector Elemental = iota + 1
	ElementalGantry
	ElementalSource
	ElementalBeamModifier
)

// String returns the family name used in diagnostics and reports.
func (e Elemental) String() string {
	switch e {
	case ElementalDetector:
		return "detector"
	case ElementalGantry:
		return "gantry"
	case ElementalSource:
		return "source"
	case ElementalBeamModifier:
		return "beam modifier"
	default:
		return fmt.Sprintf("elemental(%d)", int(e))
	}
}

// ErrNearZeroNormalization marks a recoverable numeric condition: a flux or
// spectrum normalization denominator too close to zero. Callers substitute a
// neutral ratio and warn instead of propagating an invalid result.
var ErrNearZeroNormalization = errors.New("rig: near-zero normalization denominator")

// Component is a named, typed part of an acquisition system. Once added to a
// System the aggregate owns it exclusively; sharing a component between
// systems requires Clone.
type Component interface {
	serial.Serializable
	Name() string
	SetName(string)
	Elemental() Elemental
	Clone() Component
}

// Base carries the name/tag/elemental plumbing every component embeds.
// ToRecord of a concrete type extends BaseRecord so the final record
// accumulates the fields of every hierarchy level.
type Base struct {
	name      string
	tag       serial.Tag
	elemental Elemental
}

// NewBase constructs the embedded base of a concrete component.
func NewBase(name string, tag serial.Tag, elemental Elemental) Base {
	return Base{name: name, tag: tag, elemental: elemental}
}

// Name returns the component's display name.
func (b *Base) Name() string { return b.name }

// SetName sets the component's display name.
func (b *Base) SetName(name string) { b.name = name }

// Tag implements serial.Serializable.
func (b *Base) Tag() serial.Tag { return b.tag }

// Elemental returns the coarse family of the component.
func (b *Base) Elemental() Elemental { return b.elemental }

// BaseRecord emits the fields common to every component: name, concrete
// type tag and the elemental code consumed by the registry fallback tier.
func (b *Base) BaseRecord() record.Record {
	return record.New().
		Set(record.FieldTypeID, int(b.tag)).
		Set(record.FieldElemental, int(b.elemental)).
		Set(record.FieldName, b.name)
}

// DecodeBase restores the base-level fields from a record. Tag validation is
// the concrete type's responsibility (leaf-only validation point).
func (b *Base) DecodeBase(rec record.Record) {
	if name, ok := rec.String(record.FieldName); ok {
		b.name = name
	}
}

// Source is the capability of components that emit radiation.
type Source interface {
	Component
	// Spectrum returns the source's native emission spectrum discretized
	// into the given number of energy bins over the source's energy range.
	Spectrum(bins int) model.Spectrum
	// PhotonFlux returns the emitted photon flux in photons per cm² at the
	// 1 m reference distance.
	PhotonFlux() float64
}

// DetectorModule describes one detector module's pixel geometry.
type DetectorModule struct {
	PixelWidth  float64 // mm
	PixelHeight float64 // mm
	Distance    float64 // mm, source-to-module distance
}

// PixelSolidAngle returns the effective solid angle one pixel subtends as
// seen from the source, in steradian.
func (m DetectorModule) PixelSolidAngle() float64 {
	if m.Distance <= 0 {
		return 0
	}
	return m.PixelWidth * m.PixelHeight / (m.Distance * m.Distance)
}

// Detector is the capability of components that register radiation.
type Detector interface {
	Component
	// SpectralResponse returns the detector's response curve, or nil when
	// the detector has none.
	SpectralResponse() model.DataModel
	// Modules lists the detector's modules in layout order.
	Modules() []DetectorModule
}

// BeamModifier is the capability of components placed in the beam path.
// Modifiers transform the running spectrum and flux stage by stage; a
// modifier's flux attenuation may depend on the spectrum at its stage.
type BeamModifier interface {
	Component
	ModifySpectrum(model.Spectrum) (model.Spectrum, error)
	// ModifyFlux returns the flux after this modifier. A near-zero
	// normalization denominator is reported by wrapping
	// ErrNearZeroNormalization around the neutral (unscaled) result.
	ModifyFlux(flux float64, spectrum model.Spectrum) (float64, error)
}

// Gantry is the capability of components that position source and detector.
type Gantry interface {
	Component
}

// DecodeComponent reconstructs a component from its record through the
// process-wide registry, degrading to a generic elemental placeholder when
// the exact tag is unknown. The outcome distinguishes exact decode, fallback
// and total miss.
func DecodeComponent(rec record.Record) (Component, serial.DecodeOutcome, error) {
	obj, outcome, err := serial.Default.Decode(serial.FamilyComponent, rec)
	if err != nil {
		return nil, outcome, err
	}
	if outcome == serial.DecodeMiss {
		return nil, serial.DecodeMiss, nil
	}
	component, ok := obj.(Component)
	if !ok {
		return nil, serial.DecodeMiss, nil
	}
	return component, outcome, nil
}
