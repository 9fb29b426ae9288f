package domain

import (
	"context"
	"math/rand"
	"sync"

	"adhesim/internal/surface"
	"adhesim/internal/tiling"
)

// Region is one worker's share of a flat surface.
type Region struct {
	X, Y    tiling.Span
	Anchors []surface.Point
}

// Box returns the grid cells owned by the region.
func (r Region) Box(height int) surface.Box {
	return surface.Box{
		Min: surface.Point{X: r.X.Lo, Y: r.Y.Lo, Z: 0},
		Max: surface.Point{X: r.X.Hi - 1, Y: r.Y.Hi - 1, Z: height - 1},
	}
}

// Partition is the worker layout for a flat surface.
type Partition struct {
	Regions  []Region
	Boundary []surface.Point
	// Coverage is the fraction of anchors handed to workers.
	Coverage float64
}

// Partitioner spreads rejection sampling on large flat surfaces over Workers
// goroutines, each owning a disjoint band of the grid.
type Partitioner struct {
	Workers int
	Seed    int64
}

// Plan cuts the surface into a rows x cols grid of regions with more bands on
// the longer axis. Anchors closer than margin to a region edge are held back
// for the sequential top-up pass.
func (pt Partitioner) Plan(s *surface.Surface, anchors []surface.Point, margin int) Partition {
	n := max(pt.Workers, 1)
	rows, cols := tiling.Factor(n)
	xParts, yParts := cols, rows
	if s.Length() < s.Width() {
		xParts, yParts = rows, cols
	}
	xBands := tiling.Bands(s.Length(), xParts)
	yBands := tiling.Bands(s.Width(), yParts)

	regions := make([]Region, 0, n)
	for _, xb := range xBands {
		for _, yb := range yBands {
			regions = append(regions, Region{X: xb, Y: yb})
		}
	}

	var boundary []surface.Point
	for _, p := range anchors {
		i, j := bandOf(xBands, p.X), bandOf(yBands, p.Y)
		if i < 0 || j < 0 || !xBands[i].Contains(p.X, margin) || !yBands[j].Contains(p.Y, margin) {
			boundary = append(boundary, p)
			continue
		}
		r := &regions[i*len(yBands)+j]
		r.Anchors = append(r.Anchors, p)
	}

	coverage := 0.0
	if len(anchors) > 0 {
		coverage = 1 - float64(len(boundary))/float64(len(anchors))
	}
	return Partition{Regions: regions, Boundary: boundary, Coverage: coverage}
}

func bandOf(bands []tiling.Span, v int) int {
	for i, b := range bands {
		if v >= b.Lo && v < b.Hi {
			return i
		}
	}
	return -1
}

type workerResult struct {
	painted *surface.Surface
	result  passResult
}

// run places quotas on base.surface in parallel and reconciles any shortfall
// with one sequential pass over the held-back anchors.
func (pt Partitioner) run(ctx context.Context, base pass, anchors []surface.Point) passResult {
	s := base.surface
	plan := pt.Plan(s, anchors, base.raster.Extent().Reach())
	n := len(plan.Regions)

	var perWorker [2]int
	for k := range perWorker {
		perWorker[k] = int(float64(base.quotas[k]) * plan.Coverage / float64(n))
	}

	results := make([]workerResult, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range plan.Regions {
		go func(i int) {
			defer wg.Done()
			w := base
			w.surface = s.Clone()
			w.quotas = perWorker
			w.rng = rand.New(rand.NewSource(pt.Seed + int64(i) + 1))
			results[i] = workerResult{painted: w.surface, result: w.run(ctx, plan.Regions[i].Anchors)}
		}(i)
	}
	wg.Wait()

	var merged passResult
	for i, r := range results {
		s.CopyRegion(r.painted, plan.Regions[i].Box(s.Height()))
		for k := range merged.placed {
			merged.placed[k] += r.result.placed[k]
		}
		merged.placements = append(merged.placements, r.result.placements...)
	}

	var remaining [2]int
	for k := range remaining {
		remaining[k] = max(base.quotas[k]-merged.placed[k], 0)
	}
	if remaining == [2]int{} {
		merged.stop = StopQuotaMet
		return merged
	}

	// Shapes with no reach leave no held-back anchors; fall back to the full pool.
	pool := plan.Boundary
	if n == 1 || len(pool) == 0 {
		pool = anchors
	}
	topUp := base
	topUp.quotas = remaining
	topUp.rng = rand.New(rand.NewSource(pt.Seed))
	extra := topUp.run(ctx, pool)
	for k := range merged.placed {
		merged.placed[k] += extra.placed[k]
	}
	merged.placements = append(merged.placements, extra.placements...)
	merged.stop = extra.stop
	return merged
}
