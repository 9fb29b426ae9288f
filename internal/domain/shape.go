package domain

import (
	"fmt"
	"iter"
	"strings"

	"adhesim/internal/model"
)

// Size is a domain footprint: Length runs along the first in-plane axis,
// Width along the second.
type Size struct {
	Length int
	Width  int
}

// Offset is an in-plane displacement from the anchor.
type Offset struct {
	U, V int
}

// Shape generates the in-plane offsets of a domain. The same sequence drives
// both the emptiness test and the stamp.
type Shape interface {
	Name() string
	Offsets(size Size) iter.Seq[Offset]
}

type Diamond struct{}

func (Diamond) Name() string { return "DIAMOND" }

// Offsets covers the rhombus |du|*w + |dv|*l <= l*w, four triangular wedges
// meeting at the anchor.
func (Diamond) Offsets(size Size) iter.Seq[Offset] {
	l, w := size.Length, size.Width
	return func(yield func(Offset) bool) {
		for du := -l; du <= l; du++ {
			for dv := -w; dv <= w; dv++ {
				if abs(du)*w+abs(dv)*l > l*w {
					continue
				}
				if !yield(Offset{du, dv}) {
					return
				}
			}
		}
	}
}

type Cross struct{}

func (Cross) Name() string { return "CROSS" }

// Offsets lays a horizontal arm of Length cells and a vertical arm of Width
// cells through the anchor. Even arms extend one cell further on the positive side.
func (Cross) Offsets(size Size) iter.Seq[Offset] {
	return func(yield func(Offset) bool) {
		for du := -(size.Length - 1) / 2; du <= size.Length/2; du++ {
			if !yield(Offset{du, 0}) {
				return
			}
		}
		for dv := -(size.Width - 1) / 2; dv <= size.Width/2; dv++ {
			if dv == 0 {
				continue
			}
			if !yield(Offset{0, dv}) {
				return
			}
		}
	}
}

type Octagon struct{}

func (Octagon) Name() string { return "OCTAGON" }

// Offsets fills a Length x Width box around the anchor and drops the four
// corner triangles with legs of min(Length, Width)/3. Even sides put the
// centre half a cell off the anchor.
func (Octagon) Offsets(size Size) iter.Seq[Offset] {
	l, w := size.Length, size.Width
	cut := min(l, w) / 3
	u0, v0 := -(l-1)/2, -(w-1)/2
	return func(yield func(Offset) bool) {
		for i := 0; i < l; i++ {
			for j := 0; j < w; j++ {
				if min(i, l-1-i)+min(j, w-1-j) < cut {
					continue
				}
				if !yield(Offset{u0 + i, v0 + j}) {
					return
				}
			}
		}
	}
}

type Single struct{}

func (Single) Name() string { return "SINGLE" }

func (Single) Offsets(Size) iter.Seq[Offset] {
	return func(yield func(Offset) bool) {
		yield(Offset{})
	}
}

// ParseShape accepts domain shape tags case-insensitively.
func ParseShape(name string) (Shape, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DIAMOND":
		return Diamond{}, nil
	case "CROSS":
		return Cross{}, nil
	case "OCTAGON":
		return Octagon{}, nil
	case "SINGLE":
		return Single{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown domain shape %q", model.ErrConfiguration, name)
	}
}

// Extent is the in-plane bounding box and cell count of a shape.
type Extent struct {
	MinU, MaxU int
	MinV, MaxV int
	Area       int
}

// Reach is the largest Chebyshev distance from the anchor to a shape cell.
func (e Extent) Reach() int {
	return max(-e.MinU, e.MaxU, -e.MinV, e.MaxV)
}

func measure(shape Shape, size Size) Extent {
	var e Extent
	for off := range shape.Offsets(size) {
		e.MinU, e.MaxU = min(e.MinU, off.U), max(e.MaxU, off.U)
		e.MinV, e.MaxV = min(e.MinV, off.V), max(e.MaxV, off.V)
		e.Area++
	}
	return e
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
