package domain

import (
	"context"
	"math/rand"
	"time"

	"adhesim/internal/surface"
)

type StopReason string

const (
	StopQuotaMet      StopReason = "quota_met"
	StopPoolExhausted StopReason = "pool_exhausted"
	StopIdle          StopReason = "idle_timeout"
	StopCanceled      StopReason = "canceled"
)

// Placement records one stamped domain.
type Placement struct {
	Anchor surface.Point
	Face   surface.Face
	Charge surface.Charge
	Cells  int
}

type pass struct {
	surface *surface.Surface
	raster  Rasterizer
	charges [2]surface.Charge
	quotas  [2]int
	rng     *rand.Rand
	idle    time.Duration
	now     func() time.Time
}

type passResult struct {
	placed     [2]int
	placements []Placement
	stop       StopReason
}

// run samples anchors from pool without replacement until both quotas are
// met, the pool empties, or idle elapses without a successful stamp. The
// first charge is exhausted before the second is attempted. pool is not modified.
func (p pass) run(ctx context.Context, pool []surface.Point) passResult {
	pool = append([]surface.Point(nil), pool...)
	now := p.now
	if now == nil {
		now = time.Now
	}
	var res passResult
	last := now()
	for k := 0; k < 2; k++ {
		for res.placed[k] < p.quotas[k] {
			if ctx.Err() != nil {
				res.stop = StopCanceled
				return res
			}
			if len(pool) == 0 {
				res.stop = StopPoolExhausted
				return res
			}
			if p.idle > 0 && now().Sub(last) >= p.idle {
				res.stop = StopIdle
				return res
			}

			i := p.rng.Intn(len(pool))
			anchor := pool[i]
			pool[i] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]

			if !p.raster.IsEmpty(p.surface, anchor) {
				continue
			}
			cells := p.raster.Stamp(p.surface, anchor, p.charges[k])
			res.placed[k]++
			res.placements = append(res.placements, Placement{
				Anchor: anchor,
				Face:   faceFor(p.surface, anchor),
				Charge: p.charges[k],
				Cells:  cells,
			})
			last = now()
		}
	}
	res.stop = StopQuotaMet
	return res
}
