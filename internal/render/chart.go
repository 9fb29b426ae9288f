package render

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"adhesim/internal/model"
)

// AttachmentChart plots attached bacteria per step and, when fit has a
// positive tau, the fitted saturation curve.
func AttachmentChart(w io.Writer, attached []int, fit model.EquilibriumFit) error {
	if len(attached) == 0 {
		return fmt.Errorf("attachment chart: no data")
	}

	steps := make([]float64, len(attached))
	counts := make([]float64, len(attached))
	yMax := 1.0
	for i, n := range attached {
		steps[i] = float64(i + 1)
		counts[i] = float64(n)
		yMax = max(yMax, counts[i])
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "attached",
			XValues: steps,
			YValues: counts,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 2.0,
			},
		},
	}
	if fit.Tau > 0 {
		curve := make([]float64, len(steps))
		for i, t := range steps {
			curve[i] = fit.Equilibrium * (1 - math.Exp(-t/fit.Tau))
			yMax = max(yMax, curve[i])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "fit",
			XValues: steps,
			YValues: curve,
			Style: chart.Style{
				StrokeColor:     drawing.Color{R: 255, G: 165, B: 0, A: 255},
				StrokeWidth:     2.0,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		})
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		XAxis: chart.XAxis{
			Name:  "step",
			Range: &chart.ContinuousRange{Min: 1, Max: math.Max(float64(len(attached)), 2)},
		},
		YAxis: chart.YAxis{
			Name:  "attached",
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(yMax * 1.1)},
		},
		Series: series,
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("attachment chart: %w", err)
	}
	return nil
}
