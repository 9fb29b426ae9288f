package energy

import (
	"context"

	"adhesim/internal/surface"
)

// Landscape holds the score of every scanned window origin.
type Landscape struct {
	Xs, Ys []int
	// Energy[i][j] is the score at origin (Xs[i], Ys[j]).
	Energy [][]float64
}

// Landscape scores every window origin on the stride grid. Blocks are filled
// in parallel; each block writes only its own cells.
func (s *Scanner) Landscape(ctx context.Context, film, bacterium *surface.Surface) (Landscape, error) {
	filmFP, bactFP := film.Flatten(), bacterium.Flatten()
	blocks, err := s.blocks(filmFP, bactFP)
	if err != nil {
		return Landscape{}, err
	}

	l := Landscape{
		Xs: origins(filmFP.Length-bactFP.Length, s.cfg.StrideX),
		Ys: origins(filmFP.Width-bactFP.Width, s.cfg.StrideY),
	}
	l.Energy = make([][]float64, len(l.Xs))
	for i := range l.Energy {
		l.Energy[i] = make([]float64, len(l.Ys))
	}

	_, err = s.runBlocks(ctx, blocks, func(b block) blockResult {
		w := newWindow(filmFP, bactFP, s.cfg)
		for _, x := range b.xs {
			if err := ctx.Err(); err != nil {
				return blockResult{err: err}
			}
			for _, y := range b.ys {
				l.Energy[x/s.cfg.StrideX][y/s.cfg.StrideY] = w.energy(x, y)
			}
		}
		return blockResult{}
	})
	if err != nil {
		return Landscape{}, err
	}
	return l, nil
}

// Min returns the lowest score and its origin, first in x-major order on ties.
func (l Landscape) Min() (float64, int, int) {
	best, bx, by := 0.0, -1, -1
	for i, row := range l.Energy {
		for j, e := range row {
			if bx < 0 || e < best {
				best, bx, by = e, l.Xs[i], l.Ys[j]
			}
		}
	}
	return best, bx, by
}
