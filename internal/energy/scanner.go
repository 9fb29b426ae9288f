package energy

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"adhesim/internal/model"
	"adhesim/internal/surface"
	"adhesim/internal/tiling"
)

type Scanner struct {
	cfg Config
}

func NewScanner(cfg Config) (*Scanner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Cutoff != nil {
		cfg.Cutoff = Radius(*cfg.Cutoff)
	}
	return &Scanner{cfg: cfg}, nil
}

// candidate is a block-local minimum.
type candidate struct {
	value float64
	x, y  int
	// charge is the film net charge at the position, kept with energy minima.
	charge float64
	ok     bool
}

func (c candidate) better(o candidate) bool {
	if !o.ok {
		return c.ok
	}
	return c.ok && c.value < o.value
}

type block struct {
	xs, ys []int
}

type blockResult struct {
	energy candidate
	charge candidate
	err    error
}

// Scan slides the bacterium footprint across the film and returns the
// minimum-energy alignment and, independently, the minimum net-charge window.
// Ties go to the earliest position in x-major scan order for any worker count.
func (s *Scanner) Scan(ctx context.Context, film, bacterium *surface.Surface) (model.InteractionResult, error) {
	filmFP, bactFP := film.Flatten(), bacterium.Flatten()
	blocks, err := s.blocks(filmFP, bactFP)
	if err != nil {
		return model.InteractionResult{}, err
	}

	results, err := s.runBlocks(ctx, blocks, func(b block) blockResult {
		return scanBlock(ctx, newWindow(filmFP, bactFP, s.cfg), b)
	})
	if err != nil {
		return model.InteractionResult{}, err
	}

	energies := make([]candidate, 0, len(results))
	charges := make([]candidate, 0, len(results))
	for _, r := range results {
		energies = append(energies, r.energy)
		charges = append(charges, r.charge)
	}
	e, c := reduce(energies), reduce(charges)
	return model.InteractionResult{
		MinEnergy:         e.value,
		MinX:              e.x,
		MinY:              e.y,
		ChargeAtMinEnergy: e.charge,
		MinCharge:         c.value,
		MinChargeX:        c.x,
		MinChargeY:        c.y,
	}, nil
}

// blocks cuts the stride grid into rows x cols blocks from tiling.Factor.
func (s *Scanner) blocks(film, bact surface.Footprint) ([]block, error) {
	xs := origins(film.Length-bact.Length, s.cfg.StrideX)
	ys := origins(film.Width-bact.Width, s.cfg.StrideY)
	if len(xs) == 0 || len(ys) == 0 {
		return nil, fmt.Errorf("%w: bacterium footprint %dx%d does not fit film %dx%d",
			model.ErrGeometry, bact.Length, bact.Width, film.Length, film.Width)
	}
	rows, cols := tiling.Factor(s.cfg.Workers)
	var out []block
	for _, bx := range tiling.Chunk(xs, rows) {
		for _, by := range tiling.Chunk(ys, cols) {
			out = append(out, block{xs: bx, ys: by})
		}
	}
	return out, nil
}

// runBlocks fans blocks out to the worker pool and collects results by index.
func (s *Scanner) runBlocks(ctx context.Context, blocks []block, fn func(block) blockResult) ([]blockResult, error) {
	type job struct {
		idx int
		b   block
	}
	jobs := make(chan job)
	results := make([]blockResult, len(blocks))

	workerCount := min(s.cfg.Workers, len(blocks))
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results[j.idx] = blockResult{err: err}
					continue
				}
				results[j.idx] = fn(j.b)
			}
		}()
	}
	for i, b := range blocks {
		jobs <- job{idx: i, b: b}
	}
	close(jobs)
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
	}
	return results, nil
}

func scanBlock(ctx context.Context, w *window, b block) blockResult {
	var res blockResult
	for _, x := range b.xs {
		if err := ctx.Err(); err != nil {
			return blockResult{err: err}
		}
		for _, y := range b.ys {
			charge := w.netCharge(x, y)
			e := candidate{value: w.energy(x, y), x: x, y: y, charge: charge, ok: true}
			if e.better(res.energy) {
				res.energy = e
			}
			c := candidate{value: charge, x: x, y: y, charge: charge, ok: true}
			if c.better(res.charge) {
				res.charge = c
			}
		}
	}
	return res
}

// reduce picks the global minimum by (value, x, y), which matches the first
// position a sequential x-major scan would keep.
func reduce(parts []candidate) candidate {
	parts = slices.DeleteFunc(slices.Clone(parts), func(c candidate) bool { return !c.ok })
	slices.SortFunc(parts, func(a, b candidate) int {
		return cmp.Or(cmp.Compare(a.value, b.value), cmp.Compare(a.x, b.x), cmp.Compare(a.y, b.y))
	})
	if len(parts) == 0 {
		return candidate{}
	}
	return parts[0]
}
