// Package simulator produces synthetic plasmon absorption spectra for sample
// catalog items. It stands in for model inference when no image analysis is
// available: the curve is a Lorentzian centred on the nominal resonance with
// per-point amplitude jitter and additive noise.
package simulator

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/RMahshie/nanooptics/pkg/models"
)

// Wavelength grid in nm, inclusive on both ends.
const (
	MinWavelength  = 400
	MaxWavelength  = 900
	WavelengthStep = 2
	PointCount     = (MaxWavelength-MinWavelength)/WavelengthStep + 1
)

const (
	baseGamma       = 20.0
	gammaPerNm      = 0.5
	baseAmplitude   = 0.8
	amplitudeJitter = 0.1
	noiseSpan       = 0.002
	baselineOffset  = 0.001

	baseConfidence   = 75.0
	confidenceJitter = 10.0
	sizeBonusDivisor = 5.0
	maxSizeBonus     = 10.0
	goldBonus        = 3.0
	maxConfidence    = 98
)

// GoldMaterial is the material label that earns the confidence bonus.
const GoldMaterial = "Gold"

// Generate simulates the spectrum of a catalog item. The peak and size fields
// are parsed leniently (see ParseValue); values that do not parse become NaN
// and propagate through every output value.
func Generate(item models.DatasetItem, rng RandomSource) *models.SpectrumResult {
	return GenerateFromValues(ParseValue(item.Peak), ParseValue(item.Size), item.Material, rng)
}

// GenerateFromValues simulates a spectrum for a resonance at peakNm from
// particles of diameter sizeNm.
func GenerateFromValues(peakNm, sizeNm float64, material string, rng RandomSource) *models.SpectrumResult {
	if rng == nil {
		rng = GlobalSource
	}

	gamma := Gamma(sizeNm)
	wavelengths := Wavelengths()
	spectrum := make([]float64, len(wavelengths))

	for i, w := range wavelengths {
		amplitude := baseAmplitude + rng.Float64()*amplitudeJitter
		noise := (rng.Float64() - 0.5) * noiseSpan
		spectrum[i] = math.Max(0, Lorentzian(w, peakNm, gamma, amplitude)+noise+baselineOffset)
	}

	confidence := Confidence(sizeNm, material, rng)

	return &models.SpectrumResult{
		Wavelengths: wavelengths,
		Spectrum:    spectrum,
		Peak:        peakNm,
		FWHM:        roundTo(2*gamma, 1),
		Confidence:  &confidence,
		Features: map[string]interface{}{
			"size":     formatNanometers(sizeNm),
			"material": material,
		},
	}
}

// Wavelengths returns a fresh copy of the simulation grid.
func Wavelengths() []float64 {
	out := make([]float64, 0, PointCount)
	for w := MinWavelength; w <= MaxWavelength; w += WavelengthStep {
		out = append(out, float64(w))
	}
	return out
}

// Gamma is the Lorentzian half width for particles of the given diameter.
func Gamma(sizeNm float64) float64 {
	return baseGamma + gammaPerNm*sizeNm
}

// Lorentzian evaluates amplitude·γ²/((w−center)²+γ²).
func Lorentzian(w, center, gamma, amplitude float64) float64 {
	d := w - center
	g2 := gamma * gamma
	return amplitude * g2 / (d*d + g2)
}

// Confidence derives the displayed confidence score. It never exceeds 98 and
// does not decrease with particle size or when the material is gold.
func Confidence(sizeNm float64, material string, rng RandomSource) int {
	base := baseConfidence + rng.Float64()*confidenceJitter
	sizeBonus := math.Min(sizeNm/sizeBonusDivisor, maxSizeBonus)
	materialBonus := 0.0
	if material == GoldMaterial {
		materialBonus = goldBonus
	}

	score := roundHalfUp(base + sizeBonus + materialBonus)
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Max(0, math.Min(maxConfidence, score)))
}

var leadingNumber = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)

// ParseValue reads the leading decimal number of s, ignoring leading
// whitespace and any trailing unit ("40 nm" -> 40). It returns NaN when s does
// not start with a number.
func ParseValue(s string) float64 {
	s = trimLeftSpace(s)
	m := leadingNumber.FindString(s)
	if m == "" {
		return math.NaN()
	}
	switch m {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// on ErrRange ParseFloat still returns ±Inf or 0
	v, _ := strconv.ParseFloat(m, 64)
	return v
}

func trimLeftSpace(s string) string {
	return strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// roundHalfUp rounds to the nearest integer, halves towards +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return roundHalfUp(v*p) / p
}

func formatNanometers(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " nm"
}
