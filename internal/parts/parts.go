// Package parts provides the built-in concrete component set: an x-ray tube
// source, a flat-panel detector, a tubular gantry and a spectral filter.
// Together with the generic placeholders in pkg/rig they form the component
// catalog registered during startup.
package parts

import (
	"ctcore/pkg/rig"
	"ctcore/pkg/serial"
)

// Concrete component tags, one per range defined by the serialization
// protocol (detectors 100s, gantries 200s, sources 300s, modifiers 400s).
const (
	TagFlatPanelDetector serial.Tag = serial.TagRangeDetector + 1
	TagTubularGantry     serial.Tag = serial.TagRangeGantry + 1
	TagXRayTube          serial.Tag = serial.TagRangeSource + 1
	TagSpectralFilter    serial.Tag = serial.TagRangeModifier + 1
)

// RegisterBuiltins binds the concrete parts to the process-wide registry.
// Part of the explicit startup registration pass; must run exactly once,
// after rig.RegisterBuiltins and model.RegisterBuiltins.
func RegisterBuiltins() {
	serial.Default.Register(serial.FamilyComponent, TagFlatPanelDetector, func() serial.Serializable { return &FlatPanelDetector{Base: rig.NewBase("", TagFlatPanelDetector, rig.ElementalDetector)} })
	serial.Default.Register(serial.FamilyComponent, TagTubularGantry, func() serial.Serializable { return &TubularGantry{Base: rig.NewBase("", TagTubularGantry, rig.ElementalGantry)} })
	serial.Default.Register(serial.FamilyComponent, TagXRayTube, func() serial.Serializable { return &XRayTube{Base: rig.NewBase("", TagXRayTube, rig.ElementalSource)} })
	serial.Default.Register(serial.FamilyComponent, TagSpectralFilter, func() serial.Serializable { return &SpectralFilter{Base: rig.NewBase("", TagSpectralFilter, rig.ElementalBeamModifier)} })
}
