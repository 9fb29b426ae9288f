package surface

import (
	"fmt"
	"iter"
	"math"

	"adhesim/internal/model"
)

// Spec holds surface construction parameters. For CUBOID the sizes describe the
// body; the grid adds one sentinel layer on every side.
type Spec struct {
	Shape  Shape
	Length int
	Width  int
	Height int
	Charge Charge
}

// Surface is a voxel grid holding the post-shape original state and the
// mutable post-domain state.
type Surface struct {
	shape  Shape
	base   Charge
	length int
	width  int
	height int

	original []Charge
	cells    []Charge

	bounds    Box
	onSurface int
}

// New rasterizes the requested shape into a fresh surface.
func New(spec Spec) (*Surface, error) {
	if spec.Charge < Negative || spec.Charge > Positive {
		return nil, fmt.Errorf("%w: base charge %d", model.ErrConfiguration, spec.Charge)
	}
	if spec.Length <= 0 || spec.Width <= 0 {
		return nil, fmt.Errorf("%w: surface size must be positive, got %dx%d", model.ErrConfiguration, spec.Length, spec.Width)
	}
	if spec.Shape.Dim() == 3 && spec.Height <= 0 {
		return nil, fmt.Errorf("%w: %s height must be positive", model.ErrConfiguration, spec.Shape)
	}

	var inside func(x, y, z int) bool
	l, w, h := spec.Length, spec.Width, spec.Height
	switch spec.Shape {
	case Rectangle:
		h = 1
		inside = func(int, int, int) bool { return true }
	case Cuboid:
		bl, bw, bh := l, w, h
		l, w, h = l+2, w+2, h+2
		inside = func(x, y, z int) bool {
			if x < 1 || x > bl || y < 1 || y > bw || z < 1 || z > bh {
				return false
			}
			return x == 1 || x == bl || y == 1 || y == bw || z == 1 || z == bh
		}
	case Sphere:
		r := float64(min(l, w, h)-1) / 2
		if r < 1 {
			return nil, fmt.Errorf("%w: sphere needs every side >= 3", model.ErrConfiguration)
		}
		inside = sphereShell(l, w, h, r)
	case Cylinder:
		r := float64(min(w, h)-1) / 2
		if r < 1 {
			return nil, fmt.Errorf("%w: cylinder cross-section needs sides >= 3", model.ErrConfiguration)
		}
		inside = cylinderShell(l, w, h, r)
	case Rod:
		r := float64(min(w, h)-1) / 2
		if r < 1 {
			return nil, fmt.Errorf("%w: rod cross-section needs sides >= 3", model.ErrConfiguration)
		}
		inside = rodShell(l, w, h, r)
	default:
		return nil, fmt.Errorf("%w: unknown surface shape %q", model.ErrConfiguration, spec.Shape)
	}

	s := &Surface{
		shape:    spec.Shape,
		base:     spec.Charge,
		length:   l,
		width:    w,
		height:   h,
		original: make([]Charge, l*w*h),
	}
	first := true
	for x := 0; x < l; x++ {
		for y := 0; y < w; y++ {
			for z := 0; z < h; z++ {
				idx := s.index(x, y, z)
				if !inside(x, y, z) {
					s.original[idx] = Outside
					continue
				}
				s.original[idx] = spec.Charge
				s.onSurface++
				p := Point{x, y, z}
				if first {
					s.bounds = Box{Min: p, Max: p}
					first = false
					continue
				}
				s.bounds.Min = Point{min(s.bounds.Min.X, x), min(s.bounds.Min.Y, y), min(s.bounds.Min.Z, z)}
				s.bounds.Max = Point{max(s.bounds.Max.X, x), max(s.bounds.Max.Y, y), max(s.bounds.Max.Z, z)}
			}
		}
	}
	if s.onSurface == 0 {
		return nil, fmt.Errorf("%w: %s of %dx%dx%d has no surface cells", model.ErrGeometry, spec.Shape, spec.Length, spec.Width, spec.Height)
	}
	s.cells = append([]Charge(nil), s.original...)
	return s, nil
}

const shellEps = 1e-9

func center(n int) float64 {
	return float64(n-1) / 2
}

// shell keeps cells inside the outer solid and outside the inner one.
func shell(outer, inner float64, d2 float64) bool {
	return d2 <= outer*outer+shellEps && (inner < 0 || d2 > inner*inner+shellEps)
}

func sphereShell(l, w, h int, r float64) func(x, y, z int) bool {
	cx, cy, cz := center(l), center(w), center(h)
	return func(x, y, z int) bool {
		dx, dy, dz := float64(x)-cx, float64(y)-cy, float64(z)-cz
		return shell(r, r-1, dx*dx+dy*dy+dz*dz)
	}
}

// cylinderShell builds the shell along x from an outer solid spanning the full
// length and an inner solid one cell shorter at each end. Odd widths put the
// axis on a cell centre, even widths between two cells.
func cylinderShell(l, w, h int, r float64) func(x, y, z int) bool {
	cy, cz := center(w), center(h)
	return func(x, y, z int) bool {
		dy, dz := float64(y)-cy, float64(z)-cz
		d2 := dy*dy + dz*dz
		if d2 > r*r+shellEps {
			return false
		}
		if x == 0 || x == l-1 {
			return true
		}
		return d2 > (r-1)*(r-1)+shellEps
	}
}

// rodShell is a capsule: a cylindrical shaft between x=r and x=l-1-r with
// hemispherical caps.
func rodShell(l, w, h int, r float64) func(x, y, z int) bool {
	cy, cz := center(w), center(h)
	a, b := r, float64(l-1)-r
	if b < a {
		a, b = center(l), center(l)
	}
	return func(x, y, z int) bool {
		fx := float64(x)
		dx := math.Max(0, math.Max(a-fx, fx-b))
		dy, dz := float64(y)-cy, float64(z)-cz
		return shell(r, r-1, dx*dx+dy*dy+dz*dz)
	}
}

func (s *Surface) index(x, y, z int) int {
	return (x*s.width+y)*s.height + z
}

func (s *Surface) Shape() Shape   { return s.shape }
func (s *Surface) Base() Charge   { return s.base }
func (s *Surface) Length() int    { return s.length }
func (s *Surface) Width() int     { return s.width }
func (s *Surface) Height() int    { return s.height }
func (s *Surface) Dim() int       { return s.shape.Dim() }
func (s *Surface) Bounds() Box    { return s.bounds }
func (s *Surface) OnSurface() int { return s.onSurface }

// Size returns the grid extent along axis.
func (s *Surface) Size(axis int) int {
	switch axis {
	case 0:
		return s.length
	case 1:
		return s.width
	default:
		return s.height
	}
}

func (s *Surface) InBounds(p Point) bool {
	return p.X >= 0 && p.X < s.length && p.Y >= 0 && p.Y < s.width && p.Z >= 0 && p.Z < s.height
}

// At returns the current charge at p, or Outside when p is off the grid.
func (s *Surface) At(p Point) Charge {
	if !s.InBounds(p) {
		return Outside
	}
	return s.cells[s.index(p.X, p.Y, p.Z)]
}

// Original returns the pre-domain charge at p.
func (s *Surface) Original(p Point) Charge {
	if !s.InBounds(p) {
		return Outside
	}
	return s.original[s.index(p.X, p.Y, p.Z)]
}

// IsSurface reports whether p is an addressable (non-sentinel) cell.
func (s *Surface) IsSurface(p Point) bool {
	return s.Original(p) != Outside
}

// Occupied reports whether p already carries a domain charge.
func (s *Surface) Occupied(p Point) bool {
	c := s.At(p)
	return c != Outside && c != s.base
}

// Paint writes c into p. Sentinel cells are never written.
func (s *Surface) Paint(p Point, c Charge) bool {
	if c == Outside || !s.IsSurface(p) {
		return false
	}
	s.cells[s.index(p.X, p.Y, p.Z)] = c
	return true
}

// Count returns how many cells currently hold c.
func (s *Surface) Count(c Charge) int {
	n := 0
	for _, v := range s.cells {
		if v == c {
			n++
		}
	}
	return n
}

// Points yields every on-surface cell in x, y, z order.
func (s *Surface) Points() iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for x := 0; x < s.length; x++ {
			for y := 0; y < s.width; y++ {
				for z := 0; z < s.height; z++ {
					if s.original[s.index(x, y, z)] == Outside {
						continue
					}
					if !yield(Point{x, y, z}) {
						return
					}
				}
			}
		}
	}
}

// Reset discards all painted domains.
func (s *Surface) Reset() {
	copy(s.cells, s.original)
}

func (s *Surface) Clone() *Surface {
	c := *s
	c.original = s.original
	c.cells = append([]Charge(nil), s.cells...)
	return &c
}

// CopyRegion copies the cells of src inside box into s. Both surfaces must
// share a grid.
func (s *Surface) CopyRegion(src *Surface, box Box) {
	for x := max(box.Min.X, 0); x <= min(box.Max.X, s.length-1); x++ {
		for y := max(box.Min.Y, 0); y <= min(box.Max.Y, s.width-1); y++ {
			for z := max(box.Min.Z, 0); z <= min(box.Max.Z, s.height-1); z++ {
				idx := s.index(x, y, z)
				s.cells[idx] = src.cells[idx]
			}
		}
	}
}

// Cells returns a copy of the painted grid in (x, y, z) order.
func (s *Surface) Cells() []Charge {
	return append([]Charge(nil), s.cells...)
}
