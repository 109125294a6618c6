package parts

import (
	"errors"
	"fmt"
	"math"

	"ctcore/pkg/model"
	"ctcore/pkg/record"
	"ctcore/pkg/rig"
	"ctcore/pkg/serial"
)

// ErrMissingAttenuationModel marks a spectral filter asked to transform the
// beam without an attenuation model. The condition is fatal for the
// requesting computation, not for the system holding the filter.
var ErrMissingAttenuationModel = errors.New("parts: spectral filter has no attenuation model")

// SpectralFilter is an attenuating slab in the beam path. Its attenuation
// model gives the linear attenuation coefficient per mm as a function of
// photon energy; transmission follows the exponential attenuation law.
type SpectralFilter struct {
	rig.Base
	thickness   float64 // mm
	attenuation model.DataModel
}

// NewSpectralFilter constructs a filter of the given thickness in mm backed
// by an attenuation coefficient model.
func NewSpectralFilter(name string, thickness float64, attenuation model.DataModel) *SpectralFilter {
	return &SpectralFilter{
		Base:        rig.NewBase(name, TagSpectralFilter, rig.ElementalBeamModifier),
		thickness:   thickness,
		attenuation: attenuation,
	}
}

// Thickness returns the filter thickness in mm.
func (f *SpectralFilter) Thickness() float64 { return f.thickness }

// AttenuationModel returns the filter's attenuation model, or nil.
func (f *SpectralFilter) AttenuationModel() model.DataModel { return f.attenuation }

// Transmission returns the fraction of photons at the given energy that pass
// the filter.
func (f *SpectralFilter) Transmission(energy float64) float64 {
	return math.Exp(-f.attenuation.Value(energy) * f.thickness)
}

// ModifySpectrum implements rig.BeamModifier by attenuating each bin with
// the energy-dependent transmission.
func (f *SpectralFilter) ModifySpectrum(s model.Spectrum) (model.Spectrum, error) {
	if f.attenuation == nil {
		return model.Spectrum{}, fmt.Errorf("%w: %q", ErrMissingAttenuationModel, f.Name())
	}
	return s.Map(func(energy, intensity float64) float64 {
		return intensity * f.Transmission(energy)
	}), nil
}

// ModifyFlux implements rig.BeamModifier. The flux attenuation is the
// spectrum-weighted transmission ratio at this stage. A near-zero incident
// integral cannot be normalized; the neutral flux is returned together with
// ErrNearZeroNormalization so the caller can warn and continue.
func (f *SpectralFilter) ModifyFlux(flux float64, spectrum model.Spectrum) (float64, error) {
	if f.attenuation == nil {
		return 0, fmt.Errorf("%w: %q", ErrMissingAttenuationModel, f.Name())
	}
	incident := spectrum.Integral()
	if incident < model.NormalizationEpsilon {
		return flux, rig.ErrNearZeroNormalization
	}
	transmitted, err := f.ModifySpectrum(spectrum)
	if err != nil {
		return 0, err
	}
	return flux * transmitted.Integral() / incident, nil
}

// Clone implements rig.Component.
func (f *SpectralFilter) Clone() rig.Component {
	clone := *f
	if f.attenuation != nil {
		clone.attenuation = f.attenuation.Clone()
	}
	return &clone
}

// ToRecord implements serial.Serializable.
func (f *SpectralFilter) ToRecord() record.Record {
	rec := f.BaseRecord().Set("thickness", f.thickness)
	if f.attenuation != nil {
		rec.Set("attenuation model", f.attenuation.ToRecord())
	}
	return rec
}

// FromRecord implements serial.Serializable. The receiver is left unmutated
// on any failure.
func (f *SpectralFilter) FromRecord(rec record.Record) error {
	if err := serial.ValidateTag(rec, serial.FamilyComponent, TagSpectralFilter); err != nil {
		return err
	}
	thickness, ok := rec.Float("thickness")
	if !ok {
		return fmt.Errorf("parts: spectral filter record lacks thickness")
	}
	var attenuation model.DataModel
	if child, ok := rec.Child("attenuation model"); ok {
		decoded, known, err := model.Decode(child)
		if err != nil {
			return fmt.Errorf("parts: spectral filter attenuation model: %w", err)
		}
		if !known {
			return fmt.Errorf("parts: spectral filter attenuation model has unknown type")
		}
		attenuation = decoded
	}
	f.DecodeBase(rec)
	f.thickness = thickness
	f.attenuation = attenuation
	return nil
}

var _ rig.BeamModifier = (*SpectralFilter)(nil)
