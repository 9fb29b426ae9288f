package domain

import (
	"fmt"
	"math"

	"adhesim/internal/model"
	"adhesim/internal/surface"
)

// Anchors enumerates every legal anchor for r on s: on-surface cells whose
// in-plane footprint box stays inside the surface bounds on their face and
// whose every cell maps onto the shell.
func Anchors(s *surface.Surface, r Rasterizer) ([]surface.Point, error) {
	b := s.Bounds()
	e := r.Extent()
	anchors := make([]surface.Point, 0, s.OnSurface())
	for p := range s.Points() {
		u, v := faceFor(s, p).Plane()
		pu, pv := p.Coord(u), p.Coord(v)
		if pu+e.MinU < b.Min.Coord(u) || pu+e.MaxU > b.Max.Coord(u) {
			continue
		}
		if pv+e.MinV < b.Min.Coord(v) || pv+e.MaxV > b.Max.Coord(v) {
			continue
		}
		if !r.Fits(s, p) {
			continue
		}
		anchors = append(anchors, p)
	}
	if len(anchors) == 0 {
		return nil, fmt.Errorf("%w: %s domain of %dx%d is too large for %s surface",
			model.ErrGeometry, r.Shape.Name(), r.Size.Length, r.Size.Width, s.Shape())
	}
	return anchors, nil
}

// BucketByFace groups anchors by the shell face they are nearest to.
func BucketByFace(s *surface.Surface, anchors []surface.Point) [6][]surface.Point {
	var buckets [6][]surface.Point
	for _, p := range anchors {
		f := faceFor(s, p)
		buckets[f] = append(buckets[f], p)
	}
	return buckets
}

// Quota is the number of domains of footprint cells needed to cover
// concentration of area.
func Quota(area, footprint int, concentration float64) int {
	if footprint <= 0 || area <= 0 || concentration <= 0 {
		return 0
	}
	return int(math.Floor(float64(area)*concentration/float64(footprint) + 1e-9))
}

// SplitQuota divides q between the two palette charges. Without neutral
// mixing everything goes to the first charge.
func SplitQuota(q int, neutral bool, chargeConcentration float64) [2]int {
	if !neutral {
		return [2]int{q, 0}
	}
	first := int(math.Ceil(float64(q)*chargeConcentration - 1e-9))
	first = min(max(first, 0), q)
	return [2]int{first, q - first}
}
