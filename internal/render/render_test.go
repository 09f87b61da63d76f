package render

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/nanooptics/internal/simulator"
	"github.com/RMahshie/nanooptics/internal/spectrum"
	"github.com/RMahshie/nanooptics/pkg/models"
)

func TestSpectrumPNG(t *testing.T) {
	res := simulator.GenerateFromValues(532, 40, "Gold", simulator.NewSeededSource(1))

	var buf bytes.Buffer
	require.NoError(t, SpectrumPNG(&buf, res, "Au_40nm_sample1.tif"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, width, img.Bounds().Dx())
	assert.Equal(t, height, img.Bounds().Dy())
}

func TestSpectrumPNG_FlatSpectrum(t *testing.T) {
	res := &models.SpectrumResult{
		Wavelengths: []float64{400, 402, 404},
		Spectrum:    []float64{0.5, 0.5, 0.5},
	}

	var buf bytes.Buffer
	assert.NoError(t, SpectrumPNG(&buf, res, "flat"))
	assert.NotZero(t, buf.Len())
}

func TestSpectrumPNG_Rejects(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorIs(t, SpectrumPNG(&buf, nil, ""), spectrum.ErrEmptySeries)
	assert.ErrorIs(t, SpectrumPNG(&buf, &models.SpectrumResult{}, ""), spectrum.ErrEmptySeries)
	assert.ErrorIs(t, SpectrumPNG(&buf, &models.SpectrumResult{
		Wavelengths: []float64{1, 2},
		Spectrum:    []float64{1},
	}, ""), spectrum.ErrLengthMismatch)
	assert.ErrorIs(t, SpectrumPNG(&buf, &models.SpectrumResult{
		Wavelengths: []float64{1, 2},
		Spectrum:    []float64{1, math.NaN()},
	}, ""), ErrNonFinite)
	assert.Zero(t, buf.Len())
}
