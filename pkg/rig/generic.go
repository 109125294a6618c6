package rig

import (
	"ctcore/pkg/model"
	"ctcore/pkg/record"
	"ctcore/pkg/serial"
)

// Generic placeholder tags sit at the base of each component tag range.
const (
	TagGenericDetector     serial.Tag = serial.TagRangeDetector
	TagGenericGantry       serial.Tag = serial.TagRangeGantry
	TagGenericSource       serial.Tag = serial.TagRangeSource
	TagGenericBeamModifier serial.Tag = serial.TagRangeModifier
)

// genericBase is the shared body of the elemental placeholders. A generic
// component keeps only the name of the record it was decoded from; subtype
// specific fields are discarded. Its FromRecord accepts any tag because the
// fallback tier is reached precisely when the tag is unknown.
type genericBase struct {
	Base
}

func (g *genericBase) ToRecord() record.Record {
	return g.BaseRecord()
}

func (g *genericBase) FromRecord(rec record.Record) error {
	g.DecodeBase(rec)
	return nil
}

// GenericDetector is the fallback placeholder satisfying only the detector
// elemental capability: no spectral response, no modules.
type GenericDetector struct {
	genericBase
}

// NewGenericDetector constructs a named generic detector.
func NewGenericDetector(name string) *GenericDetector {
	d := &GenericDetector{}
	d.Base = NewBase(name, TagGenericDetector, ElementalDetector)
	return d
}

// SpectralResponse implements Detector; a generic detector has none.
func (d *GenericDetector) SpectralResponse() model.DataModel { return nil }

// Modules implements Detector.
func (d *GenericDetector) Modules() []DetectorModule { return nil }

// Clone implements Component.
func (d *GenericDetector) Clone() Component {
	clone := *d
	return &clone
}

// GenericGantry is the fallback placeholder for the gantry family.
type GenericGantry struct {
	genericBase
}

// NewGenericGantry constructs a named generic gantry.
func NewGenericGantry(name string) *GenericGantry {
	g := &GenericGantry{}
	g.Base = NewBase(name, TagGenericGantry, ElementalGantry)
	return g
}

// Clone implements Component.
func (g *GenericGantry) Clone() Component {
	clone := *g
	return &clone
}

// GenericSource is the fallback placeholder for the source family. It emits
// nothing: an empty spectrum and zero flux.
type GenericSource struct {
	genericBase
}

// NewGenericSource constructs a named generic source.
func NewGenericSource(name string) *GenericSource {
	s := &GenericSource{}
	s.Base = NewBase(name, TagGenericSource, ElementalSource)
	return s
}

// Spectrum implements Source.
func (s *GenericSource) Spectrum(int) model.Spectrum { return model.Spectrum{} }

// PhotonFlux implements Source.
func (s *GenericSource) PhotonFlux() float64 { return 0 }

// Clone implements Component.
func (s *GenericSource) Clone() Component {
	clone := *s
	return &clone
}

// GenericBeamModifier is the fallback placeholder for the modifier family.
// It is transparent: spectrum and flux pass through unchanged.
type GenericBeamModifier struct {
	genericBase
}

// NewGenericBeamModifier constructs a named generic beam modifier.
func NewGenericBeamModifier(name string) *GenericBeamModifier {
	m := &GenericBeamModifier{}
	m.Base = NewBase(name, TagGenericBeamModifier, ElementalBeamModifier)
	return m
}

// ModifySpectrum implements BeamModifier.
func (m *GenericBeamModifier) ModifySpectrum(s model.Spectrum) (model.Spectrum, error) {
	return s, nil
}

// ModifyFlux implements BeamModifier.
func (m *GenericBeamModifier) ModifyFlux(flux float64, _ model.Spectrum) (float64, error) {
	return flux, nil
}

// Clone implements Component.
func (m *GenericBeamModifier) Clone() Component {
	clone := *m
	return &clone
}

// Interface conformance of the placeholders.
var (
	_ Detector     = (*GenericDetector)(nil)
	_ Gantry       = (*GenericGantry)(nil)
	_ Source       = (*GenericSource)(nil)
	_ BeamModifier = (*GenericBeamModifier)(nil)
)

// RegisterBuiltins binds the generic placeholders to the process-wide
// registry: primary entries under their own tags plus the coarse fallback
// tier keyed by elemental code. Part of the explicit startup registration
// pass; must run exactly once.
func RegisterBuiltins() {
	serial.Default.Register(serial.FamilyComponent, TagGenericDetector, func() serial.Serializable { return NewGenericDetector("") })
	serial.Default.Register(serial.FamilyComponent, TagGenericGantry, func() serial.Serializable { return NewGenericGantry("") })
	serial.Default.Register(serial.FamilyComponent, TagGenericSource, func() serial.Serializable { return NewGenericSource("") })
	serial.Default.Register(serial.FamilyComponent, TagGenericBeamModifier, func() serial.Serializable { return NewGenericBeamModifier("") })

	serial.Default.RegisterFallback(serial.FamilyComponent, int(ElementalDetector), func() serial.Serializable { return NewGenericDetector("") })
	serial.Default.RegisterFallback(serial.FamilyComponent, int(ElementalGantry), func() serial.Serializable { return NewGenericGantry("") })
	serial.Default.RegisterFallback(serial.FamilyComponent, int(ElementalSource), func() serial.Serializable { return NewGenericSource("") })
	serial.Default.RegisterFallback(serial.FamilyComponent, int(ElementalBeamModifier), func() serial.Serializable { return NewGenericBeamModifier("") })
}
