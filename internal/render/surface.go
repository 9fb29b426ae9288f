// Package render draws surfaces, scan landscapes and dynamic runs to images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/exp/constraints"

	"adhesim/internal/surface"
)

const MaxScale = 32

var chargeColors = map[surface.Charge]color.RGBA{
	surface.Negative: {40, 80, 220, 255},
	surface.Neutral:  {60, 180, 75, 255},
	surface.Positive: {220, 50, 50, 255},
	surface.Outside:  {0, 0, 0, 255},
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

// TopView projects s onto its (x, y) plane as one scale x scale block per
// column, coloured by the first on-surface cell from z=0 upward.
func TopView(s *surface.Surface, scale int) *image.RGBA {
	scale = clamp(scale, 1, MaxScale)
	img := image.NewRGBA(image.Rect(0, 0, s.Length()*scale, s.Width()*scale))
	for x := 0; x < s.Length(); x++ {
		for y := 0; y < s.Width(); y++ {
			fillBlock(img, x*scale, y*scale, scale, scale, chargeColors[columnCharge(s, x, y)])
		}
	}
	return img
}

// SurfacePNG writes TopView(s, scale) as PNG.
func SurfacePNG(w io.Writer, s *surface.Surface, scale int) error {
	if err := png.Encode(w, TopView(s, scale)); err != nil {
		return fmt.Errorf("encode surface png: %w", err)
	}
	return nil
}

func columnCharge(s *surface.Surface, x, y int) surface.Charge {
	for z := 0; z < s.Height(); z++ {
		if c := s.At(surface.Point{X: x, Y: y, Z: z}); c != surface.Outside {
			return c
		}
	}
	return surface.Outside
}

func fillBlock(img *image.RGBA, x0, y0, w, h int, c color.RGBA) {
	b := img.Bounds()
	for x := max(x0, b.Min.X); x < min(x0+w, b.Max.X); x++ {
		for y := max(y0, b.Min.Y); y < min(y0+h, b.Max.Y); y++ {
			img.SetRGBA(x, y, c)
		}
	}
}
