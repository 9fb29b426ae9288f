package surface

// Footprint is the (length x width) charge map a surface presents to the
// energy scanner, stored row-major: Values[x*Width+y].
type Footprint struct {
	Length int
	Width  int
	Values []float64
}

// At returns the projected charge of column (x, y).
func (f Footprint) At(x, y int) float64 {
	return f.Values[x*f.Width+y]
}

// Row returns the slice of columns x, [y, y+n).
func (f Footprint) Row(x, y, n int) []float64 {
	start := x*f.Width + y
	return f.Values[start : start+n]
}

// Flatten projects the painted surface onto its (x, y) plane. Each column
// contributes the charge of its first on-surface cell from z=0 upward divided
// by that cell's 1-based height. This is a depth weighting approximation, not a
// field model. Columns without surface cells contribute 0.
func (s *Surface) Flatten() Footprint {
	f := Footprint{
		Length: s.length,
		Width:  s.width,
		Values: make([]float64, s.length*s.width),
	}
	for x := 0; x < s.length; x++ {
		for y := 0; y < s.width; y++ {
			for z := 0; z < s.height; z++ {
				c := s.cells[s.index(x, y, z)]
				if c == Outside {
					continue
				}
				f.Values[x*s.width+y] = float64(c) / float64(z+1)
				break
			}
		}
	}
	return f
}
