package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"github.com/icza/mjpeg"

	"adhesim/internal/dynamics"
	"adhesim/internal/surface"
)

var (
	stuckColor = color.RGBA{255, 220, 0, 255}
	freeColor  = color.RGBA{255, 255, 255, 255}
)

type VideoOptions struct {
	Scale int
	FPS   int
	// Quality is the JPEG quality of each frame, 1 to 100.
	Quality int
}

// Video writes one MJPEG frame per sampled dynamic frame to an AVI file at
// path. Each frame shows the film top view with bacterium footprints drawn
// filled when stuck and outlined when free.
func Video(path string, film, bacterium *surface.Surface, frames []dynamics.Frame, opts VideoOptions) error {
	if len(frames) == 0 {
		return fmt.Errorf("video: no frames")
	}
	scale := clamp(opts.Scale, 1, MaxScale)
	fps := clamp(opts.FPS, 1, 60)
	quality := clamp(opts.Quality, 1, 100)
	if opts.Quality == 0 {
		quality = 90
	}

	background := TopView(film, scale)
	bounds := background.Bounds()
	aw, err := mjpeg.New(path, int32(bounds.Dx()), int32(bounds.Dy()), int32(fps))
	if err != nil {
		return fmt.Errorf("video: %w", err)
	}

	bw, bh := bacterium.Length()*scale, bacterium.Width()*scale
	frame := image.NewRGBA(bounds)
	var buf bytes.Buffer
	for _, f := range frames {
		draw.Draw(frame, bounds, background, image.Point{}, draw.Src)
		for _, b := range f.Bacteria {
			x0, y0 := b.X*scale, b.Y*scale
			if b.Stuck {
				fillBlock(frame, x0, y0, bw, bh, stuckColor)
				continue
			}
			outline(frame, x0, y0, bw, bh, freeColor)
		}

		buf.Reset()
		if err := jpeg.Encode(&buf, frame, &jpeg.Options{Quality: quality}); err != nil {
			_ = aw.Close()
			return fmt.Errorf("video: encode frame %d: %w", f.Step, err)
		}
		if err := aw.AddFrame(buf.Bytes()); err != nil {
			_ = aw.Close()
			return fmt.Errorf("video: add frame %d: %w", f.Step, err)
		}
	}
	return aw.Close()
}

func outline(img *image.RGBA, x0, y0, w, h int, c color.RGBA) {
	fillBlock(img, x0, y0, w, 1, c)
	fillBlock(img, x0, y0+h-1, w, 1, c)
	fillBlock(img, x0, y0, 1, h, c)
	fillBlock(img, x0+w-1, y0, 1, h, c)
}
