package adhesim

import (
	"context"
	"os"
	"path/filepath"

	"adhesim/internal/dynamics"
	"adhesim/internal/energy"
	"adhesim/internal/model"
	"adhesim/internal/render"
	"adhesim/internal/surface"
)

const surfaceImageScale = 4

func renderScan(ctx context.Context, runDir string, scanner *energy.Scanner, film, bact *surface.Surface) error {
	if err := writeFile(filepath.Join(runDir, "film.png"), func(f *os.File) error {
		return render.SurfacePNG(f, film, surfaceImageScale)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(runDir, "bacterium.png"), func(f *os.File) error {
		return render.SurfacePNG(f, bact, surfaceImageScale)
	}); err != nil {
		return err
	}
	landscape, err := scanner.Landscape(ctx, film, bact)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(runDir, "energy.png"), func(f *os.File) error {
		return render.EnergyHeatmap(f, landscape, "interaction energy")
	})
}

func renderSimulation(runDir string, film, bact *surface.Surface, res dynamics.Result, fit model.EquilibriumFit) error {
	if err := writeFile(filepath.Join(runDir, "attachment.png"), func(f *os.File) error {
		return render.AttachmentChart(f, res.Attached, fit)
	}); err != nil {
		return err
	}
	if len(res.Frames) == 0 {
		return nil
	}
	return render.Video(filepath.Join(runDir, "dynamic.avi"), film, bact, res.Frames, render.VideoOptions{Scale: surfaceImageScale, FPS: 10})
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
