package parts

import (
	"fmt"

	"ctcore/pkg/model"
	"ctcore/pkg/record"
	"ctcore/pkg/rig"
	"ctcore/pkg/serial"
)

// fluxPerMAsAt1M is the tube calibration constant: emitted photons per cm²
// at the 1 m reference distance, per mAs of exposure.
const fluxPerMAsAt1M = 3.5e5

// XRayTube is a vacuum-tube x-ray source. Its native emission spectrum is a
// data model over [0, tube voltage] keV and its photon flux scales linearly
// with the exposure in milliampere seconds.
type XRayTube struct {
	rig.Base
	voltage  float64 // kVp
	exposure float64 // mAs
	emission model.DataModel
}

// NewXRayTube constructs a tube with the given peak voltage in kVp, exposure
// in mAs and emission spectrum model. A nil emission model yields an empty
// spectrum, which downstream computations surface as a warning condition.
func NewXRayTube(name string, voltage, exposure float64, emission model.DataModel) *XRayTube {
	return &XRayTube{
		Base:     rig.NewBase(name, TagXRayTube, rig.ElementalSource),
		voltage:  voltage,
		exposure: exposure,
		emission: emission,
	}
}

// Voltage returns the peak tube voltage in kVp.
func (t *XRayTube) Voltage() float64 { return t.voltage }

// Exposure returns the tube exposure in mAs.
func (t *XRayTube) Exposure() float64 { return t.exposure }

// EmissionModel returns the tube's emission spectrum model, or nil.
func (t *XRayTube) EmissionModel() model.DataModel { return t.emission }

// Spectrum implements rig.Source by sampling the emission model over
// [0, voltage] keV.
func (t *XRayTube) Spectrum(bins int) model.Spectrum {
	if t.emission == nil || t.voltage <= 0 {
		return model.Spectrum{}
	}
	return model.Sample(t.emission, 0, t.voltage, bins)
}

// PhotonFlux implements rig.Source.
func (t *XRayTube) PhotonFlux() float64 {
	return t.exposure * fluxPerMAsAt1M
}

// Clone implements rig.Component.
func (t *XRayTube) Clone() rig.Component {
	clone := *t
	if t.emission != nil {
		clone.emission = t.emission.Clone()
	}
	return &clone
}

// ToRecord implements serial.Serializable.
func (t *XRayTube) ToRecord() record.Record {
	rec := t.BaseRecord().
		Set("tube voltage", t.voltage).
		Set("exposure", t.exposure)
	if t.emission != nil {
		rec.Set("emission model", t.emission.ToRecord())
	}
	return rec
}

// FromRecord implements serial.Serializable. The receiver is left unmutated
// on any failure.
func (t *XRayTube) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyComponent, TagXRayTube); err != nil {
		return err
	}
	voltage, ok := rec.Float("tube voltage")
	if !ok {
		return fmt.Errorf("parts: x-ray tube record lacks tube voltage")
	}
	exposure, ok := rec.Float("exposure")
	if !ok {
		return fmt.Errorf("parts: x-ray tube record lacks exposure")
	}
	var emission model.DataModel
	if child, ok := rec.Child("emission model"); ok {
		decoded, known, err := model.Decode(child)
		if err != nil {
			return fmt.Errorf("parts: x-ray tube emission model: %w", err)
		}
		if !known {
			return fmt.Errorf("parts: x-ray tube emission model has unknown type")
		}
		emission = decoded
	}
	t.DecodeBase(rec)
	t.voltage = voltage
	t.exposure = exposure
	t.emission = emission
	return nil
}

var _ rig.Source = (*XRayTube)(nil)
