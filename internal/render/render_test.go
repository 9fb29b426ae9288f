package render

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"adhesim/internal/dynamics"
	"adhesim/internal/energy"
	"adhesim/internal/model"
	"adhesim/internal/surface"
)

func flat(t *testing.T, length, width int, base surface.Charge) *surface.Surface {
	t.Helper()
	s, err := surface.New(surface.Spec{Shape: surface.Rectangle, Length: length, Width: width, Charge: base})
	if err != nil {
		t.Fatalf("new surface: %v", err)
	}
	return s
}

func TestClamp(t *testing.T) {
	if clamp(0, 1, 5) != 1 || clamp(9, 1, 5) != 5 || clamp(3, 1, 5) != 3 {
		t.Fatal("unexpected integer clamp")
	}
	if clamp(1.5, 0.0, 1.0) != 1.0 {
		t.Fatal("unexpected float clamp")
	}
}

func TestSurfacePNGColoursDomains(t *testing.T) {
	s := flat(t, 4, 3, surface.Positive)
	s.Paint(surface.Point{X: 1, Y: 2}, surface.Negative)

	var buf bytes.Buffer
	if err := SurfacePNG(&buf, s, 2); err != nil {
		t.Fatalf("surface png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
	want := chargeColors[surface.Negative]
	r, g, bl, _ := img.At(3, 5).RGBA()
	if uint8(r>>8) != want.R || uint8(g>>8) != want.G || uint8(bl>>8) != want.B {
		t.Fatalf("domain pixel not painted negative")
	}
}

func TestTopViewShowsShellOfCuboid(t *testing.T) {
	s, err := surface.New(surface.Spec{Shape: surface.Cuboid, Length: 2, Width: 2, Height: 2, Charge: surface.Neutral})
	if err != nil {
		t.Fatalf("cuboid: %v", err)
	}
	img := TopView(s, 1)
	if img.RGBAAt(0, 0) != chargeColors[surface.Outside] {
		t.Fatal("padding column should render as outside")
	}
	if img.RGBAAt(1, 1) != chargeColors[surface.Neutral] {
		t.Fatal("body column should render as the base charge")
	}
}

func TestEnergyHeatmap(t *testing.T) {
	film := flat(t, 12, 10, surface.Negative)
	for x := 0; x < 6; x++ {
		film.Paint(surface.Point{X: x, Y: 4}, surface.Positive)
	}
	sc, err := energy.NewScanner(energy.Config{Type: energy.Dot, StrideX: 1, StrideY: 1})
	if err != nil {
		t.Fatalf("scanner: %v", err)
	}
	l, err := sc.Landscape(context.Background(), film, flat(t, 3, 3, surface.Positive))
	if err != nil {
		t.Fatalf("landscape: %v", err)
	}

	var buf bytes.Buffer
	if err := EnergyHeatmap(&buf, l, "energy"); err != nil {
		t.Fatalf("heatmap: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode heatmap: %v", err)
	}
	if err := EnergyHeatmap(&buf, energy.Landscape{}, ""); err == nil {
		t.Fatal("expected empty landscape error")
	}
}

func TestAttachmentChart(t *testing.T) {
	var buf bytes.Buffer
	fit := model.EquilibriumFit{Equilibrium: 8, Tau: 3}
	if err := AttachmentChart(&buf, []int{0, 2, 4, 6, 7, 8, 8}, fit); err != nil {
		t.Fatalf("chart: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	buf.Reset()
	if err := AttachmentChart(&buf, []int{0, 0, 0}, model.EquilibriumFit{}); err != nil {
		t.Fatalf("flat chart: %v", err)
	}
	if err := AttachmentChart(&buf, nil, fit); err == nil {
		t.Fatal("expected no data error")
	}
}

func TestVideoWritesAVI(t *testing.T) {
	film, bact := flat(t, 16, 16, surface.Negative), flat(t, 3, 2, surface.Positive)
	res, err := dynamics.Simulate(context.Background(), dynamics.Config{
		Bacteria: 4, Steps: 12, Lambda: 1, StickProbability: 0.5, SampleEvery: 3, Seed: 2,
	}, film, bact)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dynamic.avi")
	if err := Video(path, film, bact, res.Frames, VideoOptions{Scale: 4, FPS: 5}); err != nil {
		t.Fatalf("video: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat video: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("empty video file")
	}
	if err := Video(path, film, bact, nil, VideoOptions{}); err == nil {
		t.Fatal("expected no frames error")
	}
}
