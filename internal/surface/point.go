package surface

// Point is a voxel coordinate along (length, width, height).
type Point struct {
	X, Y, Z int
}

// Coord returns the coordinate along axis 0 (x), 1 (y) or 2 (z).
func (p Point) Coord(axis int) int {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// With returns p with the coordinate along axis replaced by v.
func (p Point) With(axis, v int) Point {
	switch axis {
	case 0:
		p.X = v
	case 1:
		p.Y = v
	default:
		p.Z = v
	}
	return p
}

// Face names one of the six planes of a surface bounding box.
type Face int

const (
	FaceX0 Face = iota
	FaceXMax
	FaceY0
	FaceYMax
	FaceZ0
	FaceZMax
)

// Faces lists faces in tie-break order.
var Faces = [6]Face{FaceX0, FaceXMax, FaceY0, FaceYMax, FaceZ0, FaceZMax}

func (f Face) String() string {
	switch f {
	case FaceX0:
		return "x0"
	case FaceXMax:
		return "xmax"
	case FaceY0:
		return "y0"
	case FaceYMax:
		return "ymax"
	case FaceZ0:
		return "z0"
	case FaceZMax:
		return "zmax"
	default:
		return "face?"
	}
}

// Normal is the axis perpendicular to the face.
func (f Face) Normal() int {
	return int(f) / 2
}

// Outward is -1 for the low face on an axis and +1 for the high face.
func (f Face) Outward() int {
	if int(f)%2 == 0 {
		return -1
	}
	return 1
}

// Plane returns the in-plane (length, width) axes for stamping on the face.
func (f Face) Plane() (u, v int) {
	switch f.Normal() {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// Box is an inclusive axis-aligned bounding box.
type Box struct {
	Min, Max Point
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// FaceOf returns the face whose plane p is nearest to. Ties resolve in Faces order.
func (b Box) FaceOf(p Point) Face {
	best := FaceX0
	bestDist := -1
	for _, f := range Faces {
		axis := f.Normal()
		var d int
		if f.Outward() < 0 {
			d = p.Coord(axis) - b.Min.Coord(axis)
		} else {
			d = b.Max.Coord(axis) - p.Coord(axis)
		}
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = f, d
		}
	}
	return best
}
