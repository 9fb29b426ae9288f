package surface

import (
	"errors"
	"testing"

	"adhesim/internal/model"
)

func TestParseShape(t *testing.T) {
	for _, name := range []string{"rectangle", "Cuboid", "SPHERE", " cylinder ", "rod"} {
		if _, err := ParseShape(name); err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
	}
	if _, err := ParseShape("torus"); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRectangleIsFlatAndFullyCharged(t *testing.T) {
	s, err := New(Spec{Shape: Rectangle, Length: 10, Width: 8, Height: 5, Charge: Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Height() != 1 || s.Dim() != 2 {
		t.Fatalf("expected flat surface, got height=%d dim=%d", s.Height(), s.Dim())
	}
	if s.OnSurface() != 80 || s.Count(Positive) != 80 {
		t.Fatalf("expected 80 charged cells, got on=%d positive=%d", s.OnSurface(), s.Count(Positive))
	}
}

func TestCuboidIsPaddedHollowShell(t *testing.T) {
	s, err := New(Spec{Shape: Cuboid, Length: 3, Width: 3, Height: 3, Charge: Negative})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Length() != 5 || s.Width() != 5 || s.Height() != 5 {
		t.Fatalf("expected 5x5x5 grid, got %dx%dx%d", s.Length(), s.Width(), s.Height())
	}
	if s.OnSurface() != 26 {
		t.Fatalf("expected 26 shell cells, got %d", s.OnSurface())
	}
	if s.IsSurface(Point{2, 2, 2}) {
		t.Fatal("expected hollow centre")
	}
	if s.IsSurface(Point{0, 2, 2}) {
		t.Fatal("expected sentinel padding")
	}
	want := Box{Min: Point{1, 1, 1}, Max: Point{3, 3, 3}}
	if s.Bounds() != want {
		t.Fatalf("unexpected bounds %+v", s.Bounds())
	}
}

func TestCurvedShellsHaveNoInteriorCells(t *testing.T) {
	cases := []Spec{
		{Shape: Sphere, Length: 11, Width: 11, Height: 11, Charge: Positive},
		{Shape: Cylinder, Length: 12, Width: 9, Height: 9, Charge: Positive},
		{Shape: Rod, Length: 15, Width: 9, Height: 9, Charge: Positive},
	}
	for _, spec := range cases {
		s, err := New(spec)
		if err != nil {
			t.Fatalf("%s: %v", spec.Shape, err)
		}
		cx, cy, cz := s.Length()/2, s.Width()/2, s.Height()/2
		if s.IsSurface(Point{cx, cy, cz}) {
			t.Fatalf("%s: centre cell should be hollow", spec.Shape)
		}
		if s.IsSurface(Point{0, 0, 0}) {
			t.Fatalf("%s: corner cell should be outside", spec.Shape)
		}
		if s.OnSurface() == 0 || s.OnSurface() == s.Length()*s.Width()*s.Height() {
			t.Fatalf("%s: unexpected shell size %d", spec.Shape, s.OnSurface())
		}
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	cases := []Spec{
		{Shape: Shape("TORUS"), Length: 4, Width: 4, Height: 4},
		{Shape: Rectangle, Length: 0, Width: 4},
		{Shape: Sphere, Length: 2, Width: 2, Height: 2},
		{Shape: Cuboid, Length: 3, Width: 3, Height: 3, Charge: 5},
	}
	for _, spec := range cases {
		if _, err := New(spec); !errors.Is(err, model.ErrConfiguration) {
			t.Fatalf("%+v: expected configuration error, got %v", spec, err)
		}
	}
}

func TestPaintNeverWritesSentinel(t *testing.T) {
	s, err := New(Spec{Shape: Sphere, Length: 7, Width: 7, Height: 7, Charge: Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Paint(Point{0, 0, 0}, Negative) {
		t.Fatal("expected sentinel cell to reject paint")
	}
	if s.At(Point{0, 0, 0}) != Outside {
		t.Fatal("sentinel cell changed")
	}
}

func TestCloneAndReset(t *testing.T) {
	s, err := New(Spec{Shape: Rectangle, Length: 4, Width: 4, Charge: Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	c := s.Clone()
	c.Paint(Point{1, 1, 0}, Negative)
	if s.At(Point{1, 1, 0}) != Positive {
		t.Fatal("clone shares painted cells")
	}
	if !c.Occupied(Point{1, 1, 0}) {
		t.Fatal("expected painted cell to be occupied")
	}
	s.CopyRegion(c, Box{Min: Point{0, 0, 0}, Max: Point{1, 1, 0}})
	if s.At(Point{1, 1, 0}) != Negative {
		t.Fatal("expected region copy")
	}
	s.Reset()
	if s.Count(Negative) != 0 {
		t.Fatal("expected reset to clear domains")
	}
}

func TestFaceOfAndPlanes(t *testing.T) {
	b := Box{Min: Point{1, 1, 1}, Max: Point{3, 3, 3}}
	cases := map[Point]Face{
		{1, 2, 2}: FaceX0,
		{3, 2, 2}: FaceXMax,
		{2, 1, 2}: FaceY0,
		{2, 3, 2}: FaceYMax,
		{2, 2, 1}: FaceZ0,
		{2, 2, 3}: FaceZMax,
		{1, 1, 1}: FaceX0,
	}
	for p, want := range cases {
		if got := b.FaceOf(p); got != want {
			t.Fatalf("face of %+v: got %s want %s", p, got, want)
		}
	}
	if u, v := FaceZ0.Plane(); u != 0 || v != 1 {
		t.Fatalf("unexpected z plane axes %d,%d", u, v)
	}
	if FaceXMax.Normal() != 0 || FaceXMax.Outward() != 1 || FaceY0.Outward() != -1 {
		t.Fatal("unexpected face orientation")
	}
}

func TestFlattenWeightsByHeight(t *testing.T) {
	s, err := New(Spec{Shape: Cuboid, Length: 2, Width: 2, Height: 2, Charge: Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	f := s.Flatten()
	if f.Length != 4 || f.Width != 4 {
		t.Fatalf("unexpected footprint size %dx%d", f.Length, f.Width)
	}
	if got := f.At(1, 1); got != 0.5 {
		t.Fatalf("expected 1/(z+1)=0.5 at body column, got %v", got)
	}
	if got := f.At(0, 0); got != 0 {
		t.Fatalf("expected empty column to contribute 0, got %v", got)
	}
}

func TestPalette(t *testing.T) {
	if p := Palette(Positive); p != [2]Charge{Negative, Neutral} {
		t.Fatalf("unexpected palette %v", p)
	}
	if p := Palette(Neutral); p != [2]Charge{Positive, Negative} {
		t.Fatalf("unexpected palette %v", p)
	}
}
