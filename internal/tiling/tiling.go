// Package tiling splits work across a worker grid.
package tiling

import "math"

// Factor splits n workers into a rows x cols grid as close to square as exact
// factorisation allows. rows <= cols.
func Factor(n int) (rows, cols int) {
	if n <= 1 {
		return 1, 1
	}
	for a := int(math.Sqrt(float64(n))); a >= 1; a-- {
		if n%a == 0 {
			return a, n / a
		}
	}
	return 1, n
}

// Span is a half-open index range [Lo, Hi).
type Span struct {
	Lo, Hi int
}

func (s Span) Len() int { return s.Hi - s.Lo }

// Contains reports whether v lies inside the span shrunk by margin on both ends.
func (s Span) Contains(v, margin int) bool {
	return v >= s.Lo+margin && v < s.Hi-margin
}

// Bands cuts [0, length) into parts equal bands. Bands may be empty when
// parts exceeds length.
func Bands(length, parts int) []Span {
	if parts < 1 {
		parts = 1
	}
	out := make([]Span, parts)
	for i := range out {
		out[i] = Span{Lo: i * length / parts, Hi: (i + 1) * length / parts}
	}
	return out
}

// Chunk cuts items into at most parts contiguous, non-empty pieces.
func Chunk[T any](items []T, parts int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > len(items) {
		parts = len(items)
	}
	out := make([][]T, 0, parts)
	for _, span := range Bands(len(items), parts) {
		out = append(out, items[span.Lo:span.Hi])
	}
	return out
}
