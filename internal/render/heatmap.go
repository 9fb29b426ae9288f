package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"adhesim/internal/energy"
)

// landscapeGrid adapts an energy landscape to plotter.GridXYZ.
type landscapeGrid struct {
	l energy.Landscape
}

func (g landscapeGrid) Dims() (c, r int)   { return len(g.l.Xs), len(g.l.Ys) }
func (g landscapeGrid) Z(c, r int) float64 { return g.l.Energy[c][r] }
func (g landscapeGrid) X(c int) float64    { return float64(g.l.Xs[c]) }
func (g landscapeGrid) Y(r int) float64    { return float64(g.l.Ys[r]) }

// EnergyHeatmap writes the scan landscape as a PNG heatmap, origin x on the
// horizontal axis.
func EnergyHeatmap(w io.Writer, l energy.Landscape, title string) error {
	if len(l.Xs) == 0 || len(l.Ys) == 0 {
		return fmt.Errorf("energy heatmap: empty landscape")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x offset"
	p.Y.Label.Text = "y offset"

	h := plotter.NewHeatMap(landscapeGrid{l: l}, palette.Heat(64, 1))
	if h.Max == h.Min {
		h.Max = h.Min + 1
	}
	p.Add(h)

	writer, err := p.WriterTo(6*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("energy heatmap: %w", err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("energy heatmap: %w", err)
	}
	return nil
}
