// Package beam computes the radiation actually delivered to the detector of
// a configured acquisition system: the final spectrum and photon flux after
// the source output has passed every beam modifier, and the detector-side
// quantities derived from them.
package beam

import (
	"errors"
	"fmt"

	"ctcore/pkg/model"
	"ctcore/pkg/rig"
)

// DefaultSpectrumBins is the discretization used when a derived quantity
// needs a spectrum and the caller did not pick a resolution.
const DefaultSpectrumBins = 64

// referenceDistanceMM is the flux reference distance: photon flux is
// specified per cm² at 1 m.
const referenceDistanceMM = 1000.0

// areaCMToMM converts a per-cm² density to per-mm². Applied exactly once in
// the pixel conversion.
const areaCMToMM = 1e-2

// Logger is the minimal warning sink the pipeline needs; *slog.Logger
// satisfies it.
type Logger interface {
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any) {}

// Pipeline is a non-owning, stateless view over one system snapshot. It
// must not outlive the system it references.
//
// The pipeline trusts its caller to supply a simple system (exactly one
// source and one detector), and it assumes component insertion order equals
// physical beam-path order; ordering is never derived from geometry.
type Pipeline struct {
	system *rig.System
	logger Logger
	bins   int
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithLogger routes pipeline warnings to l.
func WithLogger(l Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithSpectrumBins sets the spectrum resolution used by derived quantities.
func WithSpectrumBins(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.bins = n
		}
	}
}

// New constructs a pipeline over the given system.
func New(system *rig.System, opts ...Option) *Pipeline {
	p := &Pipeline{system: system, logger: noopLogger{}, bins: DefaultSpectrumBins}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) source() (rig.Source, error) {
	sources := p.system.Sources()
	if len(sources) == 0 {
		return nil, errors.New("beam: system has no source")
	}
	src, ok := sources[0].(rig.Source)
	if !ok {
		return nil, fmt.Errorf("beam: source component %q lacks the source capability", sources[0].Name())
	}
	return src, nil
}

func (p *Pipeline) detector() (rig.Detector, error) {
	detectors := p.system.Detectors()
	if len(detectors) == 0 {
		return nil, errors.New("beam: system has no detector")
	}
	det, ok := detectors[0].(rig.Detector)
	if !ok {
		return nil, fmt.Errorf("beam: detector component %q lacks the detector capability", detectors[0].Name())
	}
	return det, nil
}

func (p *Pipeline) modifiers() ([]rig.BeamModifier, error) {
	components := p.system.Modifiers()
	out := make([]rig.BeamModifier, 0, len(components))
	for _, c := range components {
		m, ok := c.(rig.BeamModifier)
		if !ok {
			return nil, fmt.Errorf("beam: modifier component %q lacks the beam-modifier capability", c.Name())
		}
		out = append(out, m)
	}
	return out, nil
}

// FinalSpectrum starts from the source's native spectrum discretized at
// bins samples and replaces it with each modifier's transformed spectrum,
// in component insertion order. With zero modifiers the source spectrum is
// returned unchanged.
func (p *Pipeline) FinalSpectrum(bins int) (model.Spectrum, error) {
	src, err := p.source()
	if err != nil {
		return model.Spectrum{}, err
	}
	spectrum := src.Spectrum(bins)
	modifiers, err := p.modifiers()
	if err != nil {
		return model.Spectrum{}, err
	}
	for _, m := range modifiers {
		spectrum, err = m.ModifySpectrum(spectrum)
		if err != nil {
			return model.Spectrum{}, fmt.Errorf("beam: modifier %q: %w", m.Name(), err)
		}
	}
	return spectrum, nil
}

// FinalPhotonFlux advances flux and spectrum together through the modifier
// chain, one stage at a time: a modifier's flux attenuation may depend on
// the spectrum at its stage, so the two cannot be computed independently.
// The result keeps the source's units: photons per cm² at the reference
// distance. A near-zero normalization denominator inside a modifier is
// recoverable: the neutral (unscaled) flux is kept and a warning emitted.
func (p *Pipeline) FinalPhotonFlux() (float64, error) {
	src, err := p.source()
	if err != nil {
		return 0, err
	}
	flux := src.PhotonFlux()
	spectrum := src.Spectrum(p.bins)
	modifiers, err := p.modifiers()
	if err != nil {
		return 0, err
	}
	for _, m := range modifiers {
		next, err := m.ModifyFlux(flux, spectrum)
		switch {
		case err == nil:
			flux = next
		case errors.Is(err, rig.ErrNearZeroNormalization):
			p.logger.Warn("near-zero flux normalization, keeping flux unscaled",
				"modifier", m.Name(), "flux", flux)
			flux = next
		default:
			return 0, fmt.Errorf("beam: modifier %q: %w", m.Name(), err)
		}
		spectrum, err = m.ModifySpectrum(spectrum)
		if err != nil {
			return 0, fmt.Errorf("beam: modifier %q: %w", m.Name(), err)
		}
	}
	return flux, nil
}

// PhotonsPerPixel converts the final flux from per-cm²-at-reference-distance
// units into photons per detector pixel of the given module, using the
// module's effective pixel solid angle. The cm²→mm² conversion is applied
// exactly once.
func (p *Pipeline) PhotonsPerPixel(module rig.DetectorModule) (float64, error) {
	flux, err := p.FinalPhotonFlux()
	if err != nil {
		return 0, err
	}
	effectivePixelArea := module.PixelSolidAngle() * referenceDistanceMM * referenceDistanceMM
	return flux * areaCMToMM * effectivePixelArea, nil
}

// DetectiveQuantumEfficiency returns the fraction of the incident,
// spectrum-weighted flux the detector actually registers: 1.0 when the
// detector has no spectral response model, otherwise the response-weighted
// integral of the final spectrum.
func (p *Pipeline) DetectiveQuantumEfficiency() (float64, error) {
	det, err := p.detector()
	if err != nil {
		return 0, err
	}
	response := det.SpectralResponse()
	if response == nil {
		return 1.0, nil
	}
	spectrum, err := p.FinalSpectrum(p.bins)
	if err != nil {
		return 0, err
	}
	total := spectrum.Integral()
	if total < model.NormalizationEpsilon {
		p.logger.Warn("near-zero spectrum integral, detective quantum efficiency defaults to neutral")
		return 1.0, nil
	}
	var registered float64
	for _, b := range spectrum.Bins() {
		registered += response.Value(b.Energy) * b.Intensity
	}
	return registered / total, nil
}

// DetectiveMeanEnergy returns the expectation of photon energy under the
// final spectrum, additionally weighted by the detector response when one
// exists.
func (p *Pipeline) DetectiveMeanEnergy() (float64, error) {
	det, err := p.detector()
	if err != nil {
		return 0, err
	}
	spectrum, err := p.FinalSpectrum(p.bins)
	if err != nil {
		return 0, err
	}
	response := det.SpectralResponse()
	if response == nil {
		if spectrum.Integral() < model.NormalizationEpsilon {
			p.logger.Warn("near-zero spectrum integral, detective mean energy defaults to zero")
		}
		return spectrum.MeanEnergy(), nil
	}
	var weighted, norm float64
	for _, b := range spectrum.Bins() {
		w := response.Value(b.Energy) * b.Intensity
		weighted += b.Energy * w
		norm += w
	}
	if norm < model.NormalizationEpsilon {
		p.logger.Warn("near-zero response-weighted integral, falling back to plain spectrum mean")
		return spectrum.MeanEnergy(), nil
	}
	return weighted / norm, nil
}
