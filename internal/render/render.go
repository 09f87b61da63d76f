// Package render draws spectra as PNG charts.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/RMahshie/nanooptics/internal/spectrum"
	"github.com/RMahshie/nanooptics/pkg/models"
)

const (
	width  = 1000
	height = 400
)

var (
	curveColor = drawing.ColorFromHex("00d4c0")
	peakColor  = drawing.ColorFromHex("7c5cff")
)

// ErrNonFinite is returned when a spectrum holds NaN or infinite samples
var ErrNonFinite = errors.New("spectrum contains non-finite values")

// SpectrumPNG writes a line chart of the spectrum with its peak marked.
func SpectrumPNG(w io.Writer, result *models.SpectrumResult, title string) error {
	if result == nil {
		return spectrum.ErrEmptySeries
	}
	if err := spectrum.Validate(result.Wavelengths, result.Spectrum); err != nil {
		return err
	}

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i, v := range result.Spectrum {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(result.Wavelengths[i]) || math.IsInf(result.Wavelengths[i], 0) {
			return ErrNonFinite
		}
		yMin = math.Min(yMin, v)
		yMax = math.Max(yMax, v)
	}
	if yMax == yMin {
		yMin, yMax = yMin-1, yMax+1
	}

	yLow := math.Min(0, yMin)
	yHigh := yMax + 0.05*(yMax-yLow)

	xMin := result.Wavelengths[0]
	xMax := result.Wavelengths[len(result.Wavelengths)-1]
	if xMax == xMin {
		xMin, xMax = xMin-1, xMax+1
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Spectrum",
			XValues: result.Wavelengths,
			YValues: result.Spectrum,
			Style: chart.Style{
				StrokeColor: curveColor,
				StrokeWidth: 2,
			},
		},
	}

	if metrics, err := spectrum.Analyze(result.Wavelengths, result.Spectrum); err == nil {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Peak %.0f nm", peakOr(result.Peak, metrics.PeakWavelength)),
			XValues: []float64{metrics.PeakWavelength},
			YValues: []float64{metrics.MaxIntensity},
			Style: chart.Style{
				StrokeWidth: 0,
				DotWidth:    5,
				DotColor:    peakColor,
			},
		})
	}

	graph := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "Wavelength (nm)",
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  "Extinction (a.u.)",
			Range: &chart.ContinuousRange{Min: yLow, Max: yHigh},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func peakOr(nominal, measured float64) float64 {
	if nominal > 0 {
		return nominal
	}
	return measured
}
