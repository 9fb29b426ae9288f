package domain

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"adhesim/internal/model"
	"adhesim/internal/surface"
)

const DefaultIdleTimeout = 10 * time.Second

type Config struct {
	Shape               string
	Length              int
	Width               int
	Concentration       float64
	ChargeConcentration float64
	// Neutral splits domains between both palette charges by ChargeConcentration.
	Neutral     bool
	Workers     int
	Seed        int64
	IdleTimeout time.Duration
	Logger      *log.Logger
}

// FaceOutcome reports placement on one shell face of a thick body.
type FaceOutcome struct {
	Face      surface.Face
	Anchors   int
	Requested [2]int
	Placed    [2]int
	Stop      StopReason
}

// Result describes a finished placement. Placed may fall short of Requested
// when the anchor pool empties or the idle deadline passes; that is reported,
// not treated as an error.
type Result struct {
	Charges    [2]surface.Charge
	Requested  [2]int
	Placed     [2]int
	Realized   [2]float64
	Stop       StopReason
	Anchors    int
	Placements []Placement
	Faces      []FaceOutcome
}

// Shortfall returns how many domains of each charge were not placed.
func (r Result) Shortfall() [2]int {
	return [2]int{max(r.Requested[0]-r.Placed[0], 0), max(r.Requested[1]-r.Placed[1], 0)}
}

func (r Result) Summary() model.PlacementSummary {
	return model.PlacementSummary{
		Charges:   [2]int{int(r.Charges[0]), int(r.Charges[1])},
		Requested: r.Requested,
		Placed:    r.Placed,
		Realized:  r.Realized,
		Stop:      string(r.Stop),
	}
}

type Placer struct {
	cfg    Config
	raster Rasterizer
	now    func() time.Time
}

func NewPlacer(cfg Config) (*Placer, error) {
	shape, err := ParseShape(cfg.Shape)
	if err != nil {
		return nil, err
	}
	raster, err := NewRasterizer(shape, Size{Length: cfg.Length, Width: cfg.Width})
	if err != nil {
		return nil, err
	}
	if cfg.Concentration < 0 || cfg.Concentration > 1 {
		return nil, fmt.Errorf("%w: concentration must be in [0,1], got %v", model.ErrConfiguration, cfg.Concentration)
	}
	if cfg.ChargeConcentration < 0 || cfg.ChargeConcentration > 1 {
		return nil, fmt.Errorf("%w: charge concentration must be in [0,1], got %v", model.ErrConfiguration, cfg.ChargeConcentration)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Placer{cfg: cfg, raster: raster, now: time.Now}, nil
}

// GenerateDomain paints domains described by cfg onto s.
func GenerateDomain(ctx context.Context, s *surface.Surface, cfg Config) (Result, error) {
	p, err := NewPlacer(cfg)
	if err != nil {
		return Result{}, err
	}
	return p.Generate(ctx, s)
}

// Generate paints domains onto s in place.
func (p *Placer) Generate(ctx context.Context, s *surface.Surface) (Result, error) {
	anchors, err := Anchors(s, p.raster)
	if err != nil {
		return Result{}, err
	}

	res := Result{Charges: surface.Palette(s.Base()), Anchors: len(anchors)}
	base := pass{
		surface: s,
		raster:  p.raster,
		charges: res.Charges,
		idle:    p.cfg.IdleTimeout,
		now:     p.now,
	}

	var out passResult
	switch h := s.Height(); {
	case h <= 2:
		res.Requested = SplitQuota(Quota(s.OnSurface(), p.raster.Area(), p.cfg.Concentration), p.cfg.Neutral, p.cfg.ChargeConcentration)
		base.quotas = res.Requested
		out = Partitioner{Workers: p.cfg.Workers, Seed: p.cfg.Seed}.run(ctx, base, anchors)
	case h < 4:
		res.Requested = SplitQuota(Quota(s.OnSurface(), p.raster.Area(), p.cfg.Concentration), p.cfg.Neutral, p.cfg.ChargeConcentration)
		base.quotas = res.Requested
		base.rng = rand.New(rand.NewSource(p.cfg.Seed))
		out = base.run(ctx, anchors)
	default:
		out, res.Requested, res.Faces = p.generateByFace(ctx, base, anchors)
	}

	res.Placed = out.placed
	res.Placements = out.placements
	res.Stop = out.stop
	for k, c := range res.Charges {
		res.Realized[k] = float64(s.Count(c)) / float64(s.OnSurface())
	}
	if p.cfg.Logger != nil && res.Shortfall() != [2]int{} {
		p.cfg.Logger.Printf("domain placement short on %s: requested=%v placed=%v stop=%s",
			s.Shape(), res.Requested, res.Placed, res.Stop)
	}
	return res, nil
}

// generateByFace runs one pass per shell face. Each face gets a quota from its
// own anchor count; the charge split is clamped so the running totals never
// exceed the global targets.
func (p *Placer) generateByFace(ctx context.Context, base pass, anchors []surface.Point) (passResult, [2]int, []FaceOutcome) {
	buckets := BucketByFace(base.surface, anchors)
	area := p.raster.Area()

	var faceQuota [6]int
	total := 0
	for f, bucket := range buckets {
		faceQuota[f] = Quota(len(bucket), area, p.cfg.Concentration)
		total += faceQuota[f]
	}
	targets := SplitQuota(total, p.cfg.Neutral, p.cfg.ChargeConcentration)

	base.rng = rand.New(rand.NewSource(p.cfg.Seed))
	var out passResult
	out.stop = StopQuotaMet
	faces := make([]FaceOutcome, 0, len(buckets))
	for _, f := range surface.Faces {
		bucket := buckets[f]
		if len(bucket) == 0 {
			continue
		}
		sub := SplitQuota(faceQuota[f], p.cfg.Neutral, p.cfg.ChargeConcentration)
		if over := out.placed[0] + sub[0] - targets[0]; over > 0 {
			move := min(over, sub[0])
			sub[0] -= move
			sub[1] += move
		}
		if over := out.placed[1] + sub[1] - targets[1]; over > 0 {
			sub[1] = max(sub[1]-over, 0)
		}

		fp := base
		fp.quotas = sub
		r := fp.run(ctx, bucket)
		for k := range out.placed {
			out.placed[k] += r.placed[k]
		}
		out.placements = append(out.placements, r.placements...)
		if r.stop != StopQuotaMet {
			out.stop = r.stop
		}
		faces = append(faces, FaceOutcome{
			Face:      f,
			Anchors:   len(bucket),
			Requested: sub,
			Placed:    r.placed,
			Stop:      r.stop,
		})
		if r.stop == StopCanceled {
			break
		}
	}
	return out, targets, faces
}
