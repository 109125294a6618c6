package model

// SpectrumBin is one energy bin of a discretized spectrum: the bin midpoint
// energy in keV and the intensity attributed to the whole bin.
type SpectrumBin struct {
	Energy    float64
	Intensity float64
}

// Spectrum is an energy-binned intensity distribution with uniform bin
// width and ascending bin midpoints.
type Spectrum struct {
	bins  []SpectrumBin
	width float64
}

// NewSpectrum builds a spectrum from explicit bins. Bins are copied.
func NewSpectrum(bins []SpectrumBin, width float64) Spectrum {
	return Spectrum{bins: append([]SpectrumBin(nil), bins...), width: width}
}

// Sample discretizes a data model over [from, to] into n uniform bins.
// Integrable models contribute their exact bin integrals; other models fall
// back to the midpoint approximation.
func Sample(m DataModel, from, to float64, n int) Spectrum {
	if n <= 0 || to <= from {
		return Spectrum{}
	}
	width := (to - from) / float64(n)
	bins := make([]SpectrumBin, n)
	for i := range bins {
		center := from + (float64(i)+0.5)*width
		bins[i] = SpectrumBin{Energy: center, Intensity: BinValue(m, center, width)}
	}
	return Spectrum{bins: bins, width: width}
}

// Len returns the number of bins.
func (s Spectrum) Len() int { return len(s.bins) }

// BinWidth returns the uniform bin width in keV.
func (s Spectrum) BinWidth() float64 { return s.width }

// Bins returns a copy of the bin series.
func (s Spectrum) Bins() []SpectrumBin {
	return append([]SpectrumBin(nil), s.bins...)
}

// Bin returns the bin at index i.
func (s Spectrum) Bin(i int) SpectrumBin { return s.bins[i] }

// Integral sums the intensities of all bins.
func (s Spectrum) Integral() float64 {
	var total float64
	for _, b := range s.bins {
		total += b.Intensity
	}
	return total
}

// Scaled returns a copy with every intensity multiplied by factor.
func (s Spectrum) Scaled(factor float64) Spectrum {
	bins := make([]SpectrumBin, len(s.bins))
	for i, b := range s.bins {
		bins[i] = SpectrumBin{Energy: b.Energy, Intensity: b.Intensity * factor}
	}
	return Spectrum{bins: bins, width: s.width}
}

// Map returns a copy with each bin intensity replaced by fn(energy,
// intensity). It is the primitive beam modifiers build their spectral
// transformations on.
func (s Spectrum) Map(fn func(energy, intensity float64) float64) Spectrum {
	bins := make([]SpectrumBin, len(s.bins))
	for i, b := range s.bins {
		bins[i] = SpectrumBin{Energy: b.Energy, Intensity: fn(b.Energy, b.Intensity)}
	}
	return Spectrum{bins: bins, width: s.width}
}

// Normalized returns a copy scaled to unit integral. Normalizing an empty or
// zero spectrum returns the spectrum unchanged and reports false, letting
// the caller substitute a neutral result and warn.
func (s Spectrum) Normalized() (Spectrum, bool) {
	total := s.Integral()
	if total < NormalizationEpsilon {
		return s, false
	}
	return s.Scaled(1 / total), true
}

// MeanEnergy returns the expectation of bin energy under the spectrum.
// A near-zero integral yields zero.
func (s Spectrum) MeanEnergy() float64 {
	total := s.Integral()
	if total < NormalizationEpsilon {
		return 0
	}
	var weighted float64
	for _, b := range s.bins {
		weighted += b.Energy * b.Intensity
	}
	return weighted / total
}

// NormalizationEpsilon is the threshold below which a normalization
// denominator is treated as effectively zero, a recoverable condition per
// the pipeline failure semantics.
const NormalizationEpsilon = 1e-12
