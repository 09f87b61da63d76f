// Package spectrum computes summary metrics of a sampled extinction spectrum.
package spectrum

import (
	"errors"
	"math"
)

var (
	ErrEmptySeries    = errors.New("spectrum is empty")
	ErrLengthMismatch = errors.New("wavelengths and spectrum differ in length")
	ErrNotIncreasing  = errors.New("wavelengths are not strictly increasing")
)

// Metrics summarises a sampled spectrum.
type Metrics struct {
	PeakIndex      int
	PeakWavelength float64
	MaxIntensity   float64
	// FWHM is the width between the half-maximum crossings around the peak,
	// in the units of the wavelength axis.
	FWHM float64
}

// Validate checks that the two series describe a spectrum.
func Validate(wavelengths, values []float64) error {
	if len(wavelengths) == 0 || len(values) == 0 {
		return ErrEmptySeries
	}
	if len(wavelengths) != len(values) {
		return ErrLengthMismatch
	}
	for i := 1; i < len(wavelengths); i++ {
		if !(wavelengths[i] > wavelengths[i-1]) {
			return ErrNotIncreasing
		}
	}
	return nil
}

// Analyze locates the spectral peak and measures its full width at half
// maximum. Crossings are interpolated linearly between samples; a side that
// never drops below half maximum extends to the end of the axis.
func Analyze(wavelengths, values []float64) (Metrics, error) {
	if err := Validate(wavelengths, values); err != nil {
		return Metrics{}, err
	}

	peak := 0
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
	}

	m := Metrics{
		PeakIndex:      peak,
		PeakWavelength: wavelengths[peak],
		MaxIntensity:   values[peak],
	}
	if m.MaxIntensity <= 0 {
		return m, nil
	}

	half := m.MaxIntensity / 2
	n := len(values)

	lower := wavelengths[0]
	for i := peak; i >= 1; i-- {
		if values[i-1] <= half && values[i] > half {
			lower = interpolate(wavelengths[i-1], wavelengths[i], values[i-1], values[i], half)
			break
		}
	}

	upper := wavelengths[n-1]
	for i := peak; i < n-1; i++ {
		if values[i+1] <= half && values[i] > half {
			upper = interpolate(wavelengths[i], wavelengths[i+1], values[i], values[i+1], half)
			break
		}
	}

	m.FWHM = math.Max(0, upper-lower)
	return m, nil
}

// interpolate returns the x where the segment (x0,y0)-(x1,y1) reaches y.
func interpolate(x0, x1, y0, y1, y float64) float64 {
	dy := y1 - y0
	if dy == 0 {
		return (x0 + x1) / 2
	}
	return x0 + (y-y0)/dy*(x1-x0)
}
