// Package dynamics runs the stochastic attachment mode: free bacteria take
// biased random walks over a film and stick or unstick depending on the local
// interaction energy.
package dynamics

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"

	"adhesim/internal/energy"
	"adhesim/internal/model"
	"adhesim/internal/surface"
)

type Config struct {
	Bacteria int
	Steps    int
	// Lambda is the thermal energy scale dividing every energy difference.
	Lambda           float64
	StickProbability float64
	// Bias scales how strongly walks follow the energy gradient. Zero is an
	// unbiased walk.
	Bias     float64
	StepSize int
	// SampleEvery records a frame every n steps; zero disables frames.
	SampleEvery int
	Seed        int64
	Logger      *log.Logger
}

func (c Config) validate() error {
	if c.Bacteria < 1 || c.Steps < 1 {
		return fmt.Errorf("%w: bacteria and steps must be >= 1, got %d,%d", model.ErrConfiguration, c.Bacteria, c.Steps)
	}
	if !(c.Lambda > 0) {
		return fmt.Errorf("%w: lambda must be > 0, got %v", model.ErrConfiguration, c.Lambda)
	}
	if c.StickProbability < 0 || c.StickProbability > 1 {
		return fmt.Errorf("%w: stick probability must be in [0,1], got %v", model.ErrConfiguration, c.StickProbability)
	}
	if c.Bias < 0 {
		return fmt.Errorf("%w: bias must be >= 0, got %v", model.ErrConfiguration, c.Bias)
	}
	if c.StepSize < 0 || c.SampleEvery < 0 {
		return fmt.Errorf("%w: step size and sample interval must be >= 0", model.ErrConfiguration)
	}
	return nil
}

// Bacterium is one walker. X, Y is the film origin of its footprint.
type Bacterium struct {
	X, Y  int
	Stuck bool
}

type Frame struct {
	Step       int
	Bacteria   []Bacterium
	Attached   int
	MeanEnergy float64
}

type Result struct {
	// Attached[t] is the number of stuck bacteria after step t+1.
	Attached []int
	Frames   []Frame
	// MaxX and MaxY bound the walk: origins range over [0,MaxX]x[0,MaxY].
	MaxX, MaxY int
}

var moves = [5][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}

type Simulator struct {
	cfg  Config
	film surface.Footprint
	bact surface.Footprint
	maxX int
	maxY int
	rng  *rand.Rand

	// energies memoises DOT energies by origin.
	energies map[[2]int]float64
}

func NewSimulator(cfg Config, film, bacterium *surface.Surface) (*Simulator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.StepSize == 0 {
		cfg.StepSize = 1
	}
	s := &Simulator{
		cfg:      cfg,
		film:     film.Flatten(),
		bact:     bacterium.Flatten(),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		energies: make(map[[2]int]float64),
	}
	s.maxX = s.film.Length - s.bact.Length
	s.maxY = s.film.Width - s.bact.Width
	if s.maxX < 0 || s.maxY < 0 {
		return nil, fmt.Errorf("%w: bacterium footprint %dx%d does not fit film %dx%d",
			model.ErrGeometry, s.bact.Length, s.bact.Width, s.film.Length, s.film.Width)
	}
	return s, nil
}

// Simulate runs one dynamic simulation with a fresh simulator.
func Simulate(ctx context.Context, cfg Config, film, bacterium *surface.Surface) (Result, error) {
	s, err := NewSimulator(cfg, film, bacterium)
	if err != nil {
		return Result{}, err
	}
	return s.Run(ctx)
}

// Energy returns the interaction energy of a bacterium at origin (x, y).
func (s *Simulator) Energy(x, y int) float64 {
	key := [2]int{x, y}
	if e, ok := s.energies[key]; ok {
		return e
	}
	e := energy.DotAt(s.film, s.bact, x, y)
	s.energies[key] = e
	return e
}

func (s *Simulator) Run(ctx context.Context) (Result, error) {
	res := Result{Attached: make([]int, 0, s.cfg.Steps), MaxX: s.maxX, MaxY: s.maxY}
	pop := make([]Bacterium, s.cfg.Bacteria)
	for i := range pop {
		pop[i] = Bacterium{X: s.rng.Intn(s.maxX + 1), Y: s.rng.Intn(s.maxY + 1)}
	}

	for step := 1; step <= s.cfg.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		attached := 0
		for i := range pop {
			s.advance(&pop[i])
			if pop[i].Stuck {
				attached++
			}
		}
		res.Attached = append(res.Attached, attached)
		if s.cfg.SampleEvery > 0 && step%s.cfg.SampleEvery == 0 {
			res.Frames = append(res.Frames, s.frame(step, pop, attached))
		}
		if s.cfg.Logger != nil && step%max(s.cfg.Steps/10, 1) == 0 {
			s.cfg.Logger.Printf("dynamic step=%d/%d attached=%d", step, s.cfg.Steps, attached)
		}
	}
	return res, nil
}

// advance applies one Markov step: stuck bacteria may release, free ones
// walk and then may stick at their new site.
func (s *Simulator) advance(b *Bacterium) {
	lambda := s.cfg.Lambda
	if b.Stuck {
		e := s.Energy(b.X, b.Y)
		if s.rng.Float64() < (1-s.cfg.StickProbability)*sigmoid(e/lambda) {
			b.Stuck = false
		}
		return
	}

	m := moves[s.rng.Intn(len(moves))]
	nx, ny := b.X+m[0]*s.cfg.StepSize, b.Y+m[1]*s.cfg.StepSize
	if nx >= 0 && ny >= 0 && nx <= s.maxX && ny <= s.maxY {
		delta := s.Energy(nx, ny) - s.Energy(b.X, b.Y)
		if delta <= 0 || s.rng.Float64() < math.Exp(-s.cfg.Bias*delta/lambda) {
			b.X, b.Y = nx, ny
		}
	}

	e := s.Energy(b.X, b.Y)
	if s.rng.Float64() < s.cfg.StickProbability*sigmoid(-e/lambda) {
		b.Stuck = true
	}
}

func (s *Simulator) frame(step int, pop []Bacterium, attached int) Frame {
	f := Frame{Step: step, Bacteria: make([]Bacterium, len(pop)), Attached: attached}
	copy(f.Bacteria, pop)
	sum := 0.0
	for _, b := range pop {
		sum += s.Energy(b.X, b.Y)
	}
	f.MeanEnergy = sum / float64(len(pop))
	return f
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
