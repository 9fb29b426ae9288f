package domain

import (
	"errors"
	"testing"

	"adhesim/internal/model"
	"adhesim/internal/surface"
)

func TestShapeAreas(t *testing.T) {
	cases := []struct {
		shape Shape
		size  Size
		area  int
		reach int
	}{
		{Diamond{}, Size{2, 2}, 13, 2},
		{Diamond{}, Size{1, 1}, 5, 1},
		{Diamond{}, Size{3, 1}, 9, 3},
		{Cross{}, Size{5, 3}, 7, 2},
		{Cross{}, Size{4, 4}, 7, 2},
		{Octagon{}, Size{3, 3}, 5, 1},
		{Octagon{}, Size{6, 6}, 24, 3},
		{Single{}, Size{}, 1, 0},
	}
	for _, tc := range cases {
		r, err := NewRasterizer(tc.shape, tc.size)
		if err != nil {
			t.Fatalf("%s %v: %v", tc.shape.Name(), tc.size, err)
		}
		if r.Area() != tc.area {
			t.Fatalf("%s %v: area got %d want %d", tc.shape.Name(), tc.size, r.Area(), tc.area)
		}
		if r.Extent().Reach() != tc.reach {
			t.Fatalf("%s %v: reach got %d want %d", tc.shape.Name(), tc.size, r.Extent().Reach(), tc.reach)
		}
	}
}

func TestParseShapeAndSizeValidation(t *testing.T) {
	for _, name := range []string{"diamond", "Cross", "OCTAGON", "single"} {
		if _, err := ParseShape(name); err != nil {
			t.Fatalf("parse %q: %v", name, err)
		}
	}
	if _, err := ParseShape("hexagon"); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewRasterizer(Cross{}, Size{0, 3}); !errors.Is(err, model.ErrConfiguration) {
		t.Fatalf("expected size error, got %v", err)
	}
	if _, err := NewRasterizer(Single{}, Size{}); err != nil {
		t.Fatalf("single ignores size: %v", err)
	}
}

func TestStampThenIsEmptyIsFalse(t *testing.T) {
	surfaces := []surface.Spec{
		{Shape: surface.Rectangle, Length: 20, Width: 20, Charge: surface.Positive},
		{Shape: surface.Sphere, Length: 15, Width: 15, Height: 15, Charge: surface.Negative},
		{Shape: surface.Cylinder, Length: 20, Width: 11, Height: 11, Charge: surface.Neutral},
		{Shape: surface.Rod, Length: 21, Width: 11, Height: 11, Charge: surface.Positive},
		{Shape: surface.Cuboid, Length: 8, Width: 8, Height: 8, Charge: surface.Positive},
	}
	shapes := []struct {
		shape Shape
		size  Size
	}{
		{Diamond{}, Size{2, 2}},
		{Cross{}, Size{3, 4}},
		{Octagon{}, Size{4, 4}},
		{Single{}, Size{}},
	}
	for _, spec := range surfaces {
		for _, sh := range shapes {
			s, err := surface.New(spec)
			if err != nil {
				t.Fatalf("new %s: %v", spec.Shape, err)
			}
			r, err := NewRasterizer(sh.shape, sh.size)
			if err != nil {
				t.Fatalf("rasterizer: %v", err)
			}
			anchors, err := Anchors(s, r)
			if err != nil {
				t.Fatalf("%s on %s: %v", sh.shape.Name(), spec.Shape, err)
			}
			charge := surface.Palette(s.Base())[0]
			for i := 0; i < len(anchors); i += max(len(anchors)/25, 1) {
				s.Reset()
				a := anchors[i]
				if !r.IsEmpty(s, a) {
					t.Fatalf("%s on %s at %+v: anchor not placeable on a fresh surface", sh.shape.Name(), spec.Shape, a)
				}
				if n := r.Stamp(s, a, charge); n == 0 {
					t.Fatalf("%s on %s at %+v: stamp wrote nothing", sh.shape.Name(), spec.Shape, a)
				}
				if r.IsEmpty(s, a) {
					t.Fatalf("%s on %s at %+v: empty after stamp", sh.shape.Name(), spec.Shape, a)
				}
			}
		}
	}
}

func TestFlatFootprintMatchesOffsets(t *testing.T) {
	s, err := surface.New(surface.Spec{Shape: surface.Rectangle, Length: 11, Width: 11, Charge: surface.Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r, err := NewRasterizer(Diamond{}, Size{2, 2})
	if err != nil {
		t.Fatalf("rasterizer: %v", err)
	}
	if n := r.Stamp(s, surface.Point{X: 5, Y: 5}, surface.Negative); n != 13 {
		t.Fatalf("expected 13 cells, got %d", n)
	}
	for _, p := range []surface.Point{{5, 3, 0}, {5, 7, 0}, {3, 5, 0}, {7, 5, 0}, {4, 4, 0}} {
		if s.At(p) != surface.Negative {
			t.Fatalf("expected %+v painted", p)
		}
	}
	if s.At(surface.Point{X: 3, Y: 3}) != surface.Positive {
		t.Fatal("corner outside the rhombus was painted")
	}
}

func TestCorrectionSnapsOntoShell(t *testing.T) {
	s, err := surface.New(surface.Spec{Shape: surface.Sphere, Length: 11, Width: 11, Height: 11, Charge: surface.Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// bottom pole of the sphere
	anchor := surface.Point{X: 5, Y: 5, Z: 0}
	if !s.IsSurface(anchor) {
		t.Fatal("expected pole on shell")
	}
	r, err := NewRasterizer(Octagon{}, Size{3, 3})
	if err != nil {
		t.Fatalf("rasterizer: %v", err)
	}
	for p, ok := range r.Cells(s, anchor) {
		if !ok {
			t.Fatalf("offset mapped off the shell at %+v", p)
		}
		if !s.IsSurface(p) {
			t.Fatalf("corrected cell %+v is not on the shell", p)
		}
	}
}

func TestAnchorsRejectOversizedDomain(t *testing.T) {
	s, err := surface.New(surface.Spec{Shape: surface.Rectangle, Length: 3, Width: 3, Charge: surface.Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r, err := NewRasterizer(Diamond{}, Size{2, 2})
	if err != nil {
		t.Fatalf("rasterizer: %v", err)
	}
	if _, err := Anchors(s, r); !errors.Is(err, model.ErrGeometry) {
		t.Fatalf("expected geometry error, got %v", err)
	}
}

func TestAnchorsExcludeCellsOffTheShell(t *testing.T) {
	cases := []struct {
		spec  surface.Spec
		shape Shape
		size  Size
	}{
		{surface.Spec{Shape: surface.Cylinder, Length: 12, Width: 9, Height: 9, Charge: surface.Positive}, Diamond{}, Size{2, 2}},
		{surface.Spec{Shape: surface.Cylinder, Length: 12, Width: 9, Height: 9, Charge: surface.Positive}, Cross{}, Size{3, 3}},
		{surface.Spec{Shape: surface.Sphere, Length: 11, Width: 11, Height: 11, Charge: surface.Negative}, Octagon{}, Size{3, 3}},
	}
	for _, tc := range cases {
		s, err := surface.New(tc.spec)
		if err != nil {
			t.Fatalf("new %s: %v", tc.spec.Shape, err)
		}
		r, err := NewRasterizer(tc.shape, tc.size)
		if err != nil {
			t.Fatalf("rasterizer: %v", err)
		}
		anchors, err := Anchors(s, r)
		if err != nil {
			t.Fatalf("%s on %s: %v", tc.shape.Name(), tc.spec.Shape, err)
		}
		for _, a := range anchors {
			if !r.IsEmpty(s, a) {
				t.Fatalf("%s on %s: anchor %+v cannot be placed on a fresh surface", tc.shape.Name(), tc.spec.Shape, a)
			}
		}
	}
}

func TestAnchorsRejectDomainTooLargeForCurvedBody(t *testing.T) {
	s, err := surface.New(surface.Spec{Shape: surface.Sphere, Length: 5, Width: 5, Height: 5, Charge: surface.Positive})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r, err := NewRasterizer(Octagon{}, Size{4, 4})
	if err != nil {
		t.Fatalf("rasterizer: %v", err)
	}
	if _, err := Anchors(s, r); !errors.Is(err, model.ErrGeometry) {
		t.Fatalf("expected geometry error, got %v", err)
	}
}
