package simulator

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/RMahshie/nanooptics/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fixedSource always returns the same value
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

var goldSample = models.DatasetItem{ID: 1, Name: "Au_40nm_sample1.tif", Material: "Gold", Size: "40 nm", Peak: "532 nm"}

func TestGenerate_WavelengthGrid(t *testing.T) {
	inputs := []struct{ peak, size float64 }{
		{532, 40}, {410, 30}, {565, 80}, {0, 0}, {1200, 500},
	}

	for _, in := range inputs {
		res := GenerateFromValues(in.peak, in.size, "Silver", NewSeededSource(1))

		require.Len(t, res.Wavelengths, 251)
		assert.Equal(t, 400.0, res.Wavelengths[0])
		assert.Equal(t, 900.0, res.Wavelengths[250])
		for i := 1; i < len(res.Wavelengths); i++ {
			assert.Equal(t, 2.0, res.Wavelengths[i]-res.Wavelengths[i-1])
		}
		assert.Len(t, res.Spectrum, len(res.Wavelengths))
	}
}

func TestGenerate_SpectrumNeverNegative(t *testing.T) {
	rng := NewSeededSource(42)
	for _, peak := range []float64{300, 532, 700, 2000} {
		for _, size := range []float64{0, 20, 80, 400} {
			res := GenerateFromValues(peak, size, "Gold", rng)
			for i, v := range res.Spectrum {
				assert.GreaterOrEqual(t, v, 0.0, "peak=%v size=%v index=%d", peak, size, i)
			}
		}
	}
}

func TestGenerate_WorstCaseNoiseStillPositive(t *testing.T) {
	// 0 pushes the noise to its most negative value
	res := GenerateFromValues(-10000, 0, "Silver", fixedSource(0))
	for _, v := range res.Spectrum {
		assert.GreaterOrEqual(t, v, 0.0)
	}

	// 0.5 means no noise at all: far from the peak only the offset remains
	res = GenerateFromValues(-10000, 0, "Silver", fixedSource(0.5))
	for _, v := range res.Spectrum {
		assert.GreaterOrEqual(t, v, 0.001)
	}
}

func TestGenerate_FWHMClosedForm(t *testing.T) {
	tests := []struct {
		size float64
		want float64
	}{
		{0, 40},
		{20, 60},
		{40, 80},
		{33.3, 73.3},
		{0.07, 40.1},
		{100, 140},
	}

	for _, tt := range tests {
		for seed := uint64(0); seed < 3; seed++ {
			res := GenerateFromValues(532, tt.size, "Gold", NewSeededSource(seed))
			assert.InDelta(t, tt.want, res.FWHM, 1e-9, "size=%v", tt.size)
			assert.Equal(t, roundTo(2*(20+0.5*tt.size), 1), res.FWHM)
		}
	}
}

func TestGenerate_ConfidenceBounds(t *testing.T) {
	rng := NewSeededSource(7)
	for i := 0; i < 500; i++ {
		size := float64(i % 120)
		material := "Silver"
		if i%2 == 0 {
			material = "Gold"
		}
		res := GenerateFromValues(500, size, material, rng)
		require.NotNil(t, res.Confidence)
		assert.GreaterOrEqual(t, *res.Confidence, 75)
		assert.LessOrEqual(t, *res.Confidence, 98)
	}
}

func TestGenerate_ConfidenceSmallSilver(t *testing.T) {
	rng := NewSeededSource(9)
	for i := 0; i < 500; i++ {
		res := GenerateFromValues(410, 0, "Silver", rng)
		assert.GreaterOrEqual(t, *res.Confidence, 75)
		assert.LessOrEqual(t, *res.Confidence, 85)
	}
}

func TestGenerate_ConfidenceCappedForLargeGold(t *testing.T) {
	rng := NewSeededSource(11)
	for i := 0; i < 200; i++ {
		res := GenerateFromValues(565, 100, "Gold", rng)
		assert.GreaterOrEqual(t, *res.Confidence, 88)
		assert.LessOrEqual(t, *res.Confidence, 98)
	}

	assert.Equal(t, 98, Confidence(100, "Gold", fixedSource(0.999999)))
	assert.Equal(t, 98, Confidence(500, "Gold", fixedSource(0.96)))
}

func TestConfidence_Extremes(t *testing.T) {
	assert.Equal(t, 75, Confidence(0, "Silver", fixedSource(0)))
	assert.Equal(t, 85, Confidence(0, "Silver", fixedSource(0.999999)))
	// 75 + 5 + 8 + 3
	assert.Equal(t, 91, Confidence(40, "Gold", fixedSource(0.5)))
	// halves round up
	assert.Equal(t, 76, Confidence(2.5, "Silver", fixedSource(0)))
	assert.Equal(t, 98, Confidence(1000, "Gold", fixedSource(0.999999)))
	assert.Equal(t, 0, Confidence(-1000, "Silver", fixedSource(0)))
	assert.Equal(t, 0, Confidence(math.NaN(), "Gold", fixedSource(0.5)))
}

func TestConfidence_MonotonicInSizeAndGold(t *testing.T) {
	prev := 0
	for size := 0.0; size <= 100; size += 5 {
		silver := Confidence(size, "Silver", fixedSource(0.3))
		gold := Confidence(size, "Gold", fixedSource(0.3))
		assert.GreaterOrEqual(t, silver, prev)
		assert.GreaterOrEqual(t, gold, silver)
		prev = silver
	}
}

func TestGenerate_PeakEcho(t *testing.T) {
	for _, peak := range []float64{410, 532.5, 565, 899.99} {
		res := GenerateFromValues(peak, 40, "Gold", NewSeededSource(3))
		assert.Equal(t, peak, res.Peak)
	}
}

func TestGenerate_LineshapeLocation(t *testing.T) {
	idx := (532 - MinWavelength) / WavelengthStep
	rng := NewSeededSource(5)

	for trial := 0; trial < 100; trial++ {
		res := GenerateFromValues(532, 40, "Gold", rng)
		center := res.Spectrum[idx]
		assert.Greater(t, center, res.Spectrum[0])
		assert.Greater(t, center, res.Spectrum[len(res.Spectrum)-1])

		// jitter is at most 0.1 of the amplitude, so nothing beats the centre by much
		for _, v := range res.Spectrum {
			assert.LessOrEqual(t, v, center*1.2)
		}
	}
}

func TestGenerate_ShapeStableValuesVary(t *testing.T) {
	a := Generate(goldSample, GlobalSource)
	b := Generate(goldSample, GlobalSource)

	assert.Equal(t, a.Wavelengths, b.Wavelengths)
	assert.Equal(t, len(a.Spectrum), len(b.Spectrum))
	assert.Equal(t, a.Peak, b.Peak)
	assert.Equal(t, a.FWHM, b.FWHM)
	assert.NotEqual(t, a.Spectrum, b.Spectrum)
}

func TestGenerate_SeededSourceIsReproducible(t *testing.T) {
	a := Generate(goldSample, NewSeededSource(99))
	b := Generate(goldSample, NewSeededSource(99))
	assert.Equal(t, a, b)
}

func TestGenerate_GoldSampleScenario(t *testing.T) {
	for i := 0; i < 100; i++ {
		res := Generate(goldSample, nil)

		assert.Equal(t, 400.0, res.Wavelengths[0])
		assert.Equal(t, 900.0, res.Wavelengths[250])
		assert.Equal(t, 80.0, res.FWHM)
		assert.Equal(t, 532.0, res.Peak)
		require.NotNil(t, res.Confidence)
		// 75..85 base, +8 for size, +3 for gold
		assert.GreaterOrEqual(t, *res.Confidence, 86)
		assert.LessOrEqual(t, *res.Confidence, 96)
		assert.Equal(t, map[string]interface{}{"size": "40 nm", "material": "Gold"}, res.Features)
	}
}

func TestGenerate_DeterministicValues(t *testing.T) {
	res := GenerateFromValues(532, 40, "Gold", fixedSource(0.5))

	// amplitude 0.85, no noise, offset 0.001
	idx := (532 - MinWavelength) / WavelengthStep
	assert.InDelta(t, 0.851, res.Spectrum[idx], 1e-12)
	assert.InDelta(t, 0.85*1600.0/(132*132+1600)+0.001, res.Spectrum[0], 1e-12)
	assert.InDelta(t, 0.85*0.5+0.001, res.Spectrum[(572-MinWavelength)/WavelengthStep], 1e-12)
}

func TestGenerate_NonNumericPropagatesNaN(t *testing.T) {
	item := models.DatasetItem{Material: "Gold", Size: "unknown", Peak: "532 nm"}
	res := Generate(item, NewSeededSource(1))

	assert.True(t, math.IsNaN(res.FWHM))
	for _, v := range res.Spectrum {
		assert.True(t, math.IsNaN(v))
	}
	assert.Len(t, res.Wavelengths, PointCount)
	assert.Equal(t, "NaN nm", res.Features["size"])
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"40 nm", 40},
		{"532 nm", 532},
		{"  12.5nm", 12.5},
		{"-3e2 units", -300},
		{".5", 0.5},
		{"7.", 7},
		{"+8", 8},
		{"1e", 1},
		{"Infinity nm", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseValue(tt.in))
		})
	}

	for _, bad := range []string{"", "nm 40", "abc", "-", ".", "e5"} {
		assert.True(t, math.IsNaN(ParseValue(bad)), "input %q", bad)
	}
}

func TestGenerate_ConcurrentCallsAreIndependent(t *testing.T) {
	const workers = 16
	results := make([]*models.SpectrumResult, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Generate(goldSample, GlobalSource)
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Len(t, results[i].Spectrum, PointCount)
		assert.NotEqual(t, results[0].Spectrum, results[i].Spectrum)
	}
}

func TestGenerateAll(t *testing.T) {
	items := []models.DatasetItem{
		goldSample,
		{ID: 3, Name: "Ag_30nm_sample1.tif", Material: "Silver", Size: "30 nm", Peak: "410 nm"},
		{ID: 6, Name: "Au_80nm_sample4.tif", Material: "Gold", Size: "80 nm", Peak: "565 nm"},
	}

	results, err := GenerateAll(context.Background(), items, NewSourceFunc(1), 2)
	require.NoError(t, err)
	require.Len(t, results, len(items))

	assert.Equal(t, 532.0, results[0].Peak)
	assert.Equal(t, 410.0, results[1].Peak)
	assert.Equal(t, 565.0, results[2].Peak)
	assert.Equal(t, 120.0, results[2].FWHM)

	again, err := GenerateAll(context.Background(), items, NewSourceFunc(1), 1)
	require.NoError(t, err)
	assert.Equal(t, results, again)
}

func TestGenerateAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateAll(ctx, []models.DatasetItem{goldSample, goldSample}, nil, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
