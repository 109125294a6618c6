package parts

import (
	"fmt"

	"ctcore/pkg/record"
	"ctcore/pkg/rig"
	"ctcore/pkg/serial"
)

// TubularGantry is a closed-ring gantry that carries source and detector on
// opposite sides of the isocenter.
type TubularGantry struct {
	rig.Base
	sourceToIso   float64 // mm
	detectorToIso float64 // mm
}

// NewTubularGantry constructs a gantry with the given source-to-isocenter
// and detector-to-isocenter distances in mm.
func NewTubularGantry(name string, sourceToIso, detectorToIso float64) *TubularGantry {
	return &TubularGantry{
		Base:          rig.NewBase(name, TagTubularGantry, rig.ElementalGantry),
		sourceToIso:   sourceToIso,
		detectorToIso: detectorToIso,
	}
}

// SourceToIso returns the source-to-isocenter distance in mm.
func (g *TubularGantry) SourceToIso() float64 { return g.sourceToIso }

// DetectorToIso returns the detector-to-isocenter distance in mm.
func (g *TubularGantry) DetectorToIso() float64 { return g.detectorToIso }

// SourceToDetector returns the full source-to-detector distance in mm.
func (g *TubularGantry) SourceToDetector() float64 { return g.sourceToIso + g.detectorToIso }

// Clone implements rig.Component.
func (g *TubularGantry) Clone() rig.Component {
	clone := *g
	return &clone
}

// ToRecord implements serial.Serializable.
func (g *TubularGantry) ToRecord() record.Record {
	return g.BaseRecord().
		Set("source to iso", g.sourceToIso).
		Set("detector to iso", g.detectorToIso)
}

// FromRecord implements serial.Serializable. The receiver is left unmutated
// on any failure.
func (g *TubularGantry) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyComponent, TagTubularGantry); err != nil {
		return err
	}
	sourceToIso, ok := rec.Float("source to iso")
	if !ok {
		return fmt.Errorf("parts: tubular gantry record lacks source to iso")
	}
	detectorToIso, ok := rec.Float("detector to iso")
	if !ok {
		return fmt.Errorf("parts: tubular gantry record lacks detector to iso")
	}
	g.DecodeBase(rec)
	g.sourceToIso = sourceToIso
	g.detectorToIso = detectorToIso
	return nil
}

var _ rig.Gantry = (*TubularGantry)(nil)
