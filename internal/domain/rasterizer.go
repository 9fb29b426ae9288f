package domain

import (
	"fmt"
	"iter"

	"adhesim/internal/model"
	"adhesim/internal/surface"
)

// Rasterizer binds a shape to a size and maps its offsets onto a surface.
// IsEmpty and Stamp share one traversal so the collision footprint always
// matches the painted cells.
type Rasterizer struct {
	Shape  Shape
	Size   Size
	extent Extent
}

func NewRasterizer(shape Shape, size Size) (Rasterizer, error) {
	if shape == nil {
		return Rasterizer{}, fmt.Errorf("%w: domain shape is required", model.ErrConfiguration)
	}
	if _, single := shape.(Single); !single && (size.Length < 1 || size.Width < 1) {
		return Rasterizer{}, fmt.Errorf("%w: %s size must be at least 1x1, got %dx%d",
			model.ErrConfiguration, shape.Name(), size.Length, size.Width)
	}
	return Rasterizer{Shape: shape, Size: size, extent: measure(shape, size)}, nil
}

func (r Rasterizer) Extent() Extent { return r.extent }

// Area is the number of cells one domain covers on a flat plane.
func (r Rasterizer) Area() int { return r.extent.Area }

// Cells yields the surface cells covered by a domain rooted at anchor. ok is
// false for offsets that cannot be mapped onto the surface.
func (r Rasterizer) Cells(s *surface.Surface, anchor surface.Point) iter.Seq2[surface.Point, bool] {
	face := faceFor(s, anchor)
	u, v := face.Plane()
	normal, outward := face.Normal(), face.Outward()
	return func(yield func(surface.Point, bool) bool) {
		for off := range r.Shape.Offsets(r.Size) {
			p := anchor.With(u, anchor.Coord(u)+off.U)
			p = p.With(v, p.Coord(v)+off.V)
			q, ok := correct(s, p, normal, outward)
			if !yield(q, ok) {
				return
			}
		}
	}
}

// IsEmpty reports whether every cell of the domain maps onto the surface and
// none of them already carries a domain charge.
func (r Rasterizer) IsEmpty(s *surface.Surface, anchor surface.Point) bool {
	for p, ok := range r.Cells(s, anchor) {
		if !ok || s.Occupied(p) {
			return false
		}
	}
	return true
}

// Fits reports whether every cell of the domain maps onto the shell,
// ignoring any domains already painted.
func (r Rasterizer) Fits(s *surface.Surface, anchor surface.Point) bool {
	for _, ok := range r.Cells(s, anchor) {
		if !ok {
			return false
		}
	}
	return true
}

// Stamp writes charge into every mappable cell of the domain and returns the
// number of cells written.
func (r Rasterizer) Stamp(s *surface.Surface, anchor surface.Point, charge surface.Charge) int {
	n := 0
	for p, ok := range r.Cells(s, anchor) {
		if ok && s.Paint(p, charge) {
			n++
		}
	}
	return n
}

// faceFor picks the shell face an anchor stamps onto. Flat surfaces always
// stamp in the xy plane.
func faceFor(s *surface.Surface, anchor surface.Point) surface.Face {
	if s.Dim() == 2 {
		return surface.FaceZ0
	}
	return s.Bounds().FaceOf(anchor)
}

// correct snaps p onto the shell by walking along the face normal, outward
// first, until an on-surface cell is found.
func correct(s *surface.Surface, p surface.Point, normal, outward int) (surface.Point, bool) {
	for axis := 0; axis < 3; axis++ {
		if axis == normal {
			continue
		}
		if c := p.Coord(axis); c < 0 || c >= s.Size(axis) {
			return p, false
		}
	}
	base := p.Coord(normal)
	for d := 0; d < s.Size(normal); d++ {
		for _, dir := range [2]int{outward, -outward} {
			q := p.With(normal, base+dir*d)
			if s.IsSurface(q) {
				return q, true
			}
			if d == 0 {
				break
			}
		}
	}
	return p, false
}
