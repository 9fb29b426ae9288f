package energy

import (
	"fmt"
	"strings"

	"adhesim/internal/model"
)

type InteractType int

const (
	Dot InteractType = iota
	Cutoff
)

func (t InteractType) String() string {
	switch t {
	case Dot:
		return "DOT"
	case Cutoff:
		return "CUTOFF"
	default:
		return fmt.Sprintf("interact(%d)", int(t))
	}
}

// ParseInteractType accepts DOT, CUTOFF and CUT-OFF in any case.
func ParseInteractType(name string) (InteractType, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DOT":
		return Dot, nil
	case "CUTOFF", "CUT-OFF":
		return Cutoff, nil
	default:
		return 0, fmt.Errorf("%w: unknown interact type %q", model.ErrConfiguration, name)
	}
}

type Config struct {
	Type    InteractType
	StrideX int
	StrideY int
	// Cutoff is the Chebyshev radius averaged over by CUTOFF scans. Nil means
	// unset; DOT scans ignore it.
	Cutoff  *int
	Workers int
}

// Radius returns a cutoff radius for Config.Cutoff.
func Radius(r int) *int { return &r }

func (c Config) validate() error {
	switch c.Type {
	case Dot:
	case Cutoff:
		if c.Cutoff == nil {
			return fmt.Errorf("%w: CUTOFF scan requires a cutoff", model.ErrConfiguration)
		}
		if *c.Cutoff < 0 {
			return fmt.Errorf("%w: cutoff must be >= 0, got %d", model.ErrConfiguration, *c.Cutoff)
		}
	default:
		return fmt.Errorf("%w: unknown interact type %d", model.ErrConfiguration, int(c.Type))
	}
	if c.StrideX < 1 || c.StrideY < 1 {
		return fmt.Errorf("%w: strides must be >= 1, got %d,%d", model.ErrConfiguration, c.StrideX, c.StrideY)
	}
	return nil
}
