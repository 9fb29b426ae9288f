package energy

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/floats"

	"adhesim/internal/surface"
)

// DotAt is the interaction energy of the bacterium footprint placed with its
// origin at film column (x, y): the dot product of the overlapping charges.
// The caller guarantees the window fits.
func DotAt(film, bact surface.Footprint, x, y int) float64 {
	e := 0.0
	for i := 0; i < bact.Length; i++ {
		e += floats.Dot(film.Row(x+i, y, bact.Width), bact.Row(i, 0, bact.Width))
	}
	return e
}

// NetCharge sums the film charges under a window by counting each distinct
// value once and adding value*count in ascending value order.
func NetCharge(film surface.Footprint, x, y, length, width int) float64 {
	counts := make(map[float64]int, 4)
	for i := 0; i < length; i++ {
		for _, v := range film.Row(x+i, y, width) {
			counts[v]++
		}
	}
	total := 0.0
	for _, v := range slices.Sorted(maps.Keys(counts)) {
		total += v * float64(counts[v])
	}
	return total
}

// window evaluates scan positions for one film/bacterium pair. It memoises
// DOT energies so CUTOFF averages do not recompute shared neighbours.
type window struct {
	film, bact surface.Footprint
	maxX, maxY int
	cfg        Config
	dots       map[[2]int]float64
}

func newWindow(film, bact surface.Footprint, cfg Config) *window {
	return &window{
		film: film,
		bact: bact,
		maxX: film.Length - bact.Length,
		maxY: film.Width - bact.Width,
		cfg:  cfg,
		dots: make(map[[2]int]float64),
	}
}

func (w *window) fits(x, y int) bool {
	return x >= 0 && y >= 0 && x <= w.maxX && y <= w.maxY
}

func (w *window) dot(x, y int) float64 {
	key := [2]int{x, y}
	if e, ok := w.dots[key]; ok {
		return e
	}
	e := DotAt(w.film, w.bact, x, y)
	w.dots[key] = e
	return e
}

// energy scores position (x, y). CUTOFF takes the mean DOT energy over every
// fitting window origin within Chebyshev distance Cutoff, summed in x-major order.
func (w *window) energy(x, y int) float64 {
	if w.cfg.Type != Cutoff {
		return DotAt(w.film, w.bact, x, y)
	}
	c := *w.cfg.Cutoff
	sum, n := 0.0, 0
	for qx := x - c; qx <= x+c; qx++ {
		for qy := y - c; qy <= y+c; qy++ {
			if !w.fits(qx, qy) {
				continue
			}
			sum += w.dot(qx, qy)
			n++
		}
	}
	return sum / float64(n)
}

func (w *window) netCharge(x, y int) float64 {
	return NetCharge(w.film, x, y, w.bact.Length, w.bact.Width)
}

// origins lists window origins 0, stride, 2*stride... up to limit.
func origins(limit, stride int) []int {
	if limit < 0 {
		return nil
	}
	out := make([]int, 0, limit/stride+1)
	for v := 0; v <= limit; v += stride {
		out = append(out, v)
	}
	return out
}
