package surface

import (
	"fmt"

	"adhesim/internal/model"
)

// Charge is the state of a single voxel.
type Charge int8

const (
	Negative Charge = -1
	Neutral  Charge = 0
	Positive Charge = 1
	// Outside marks cells that are not part of the body.
	Outside Charge = 2
)

func (c Charge) String() string {
	switch c {
	case Negative:
		return "negative"
	case Neutral:
		return "neutral"
	case Positive:
		return "positive"
	case Outside:
		return "outside"
	default:
		return fmt.Sprintf("charge(%d)", int8(c))
	}
}

// ParseCharge converts an integer base charge into a Charge.
func ParseCharge(v int) (Charge, error) {
	switch v {
	case -1, 0, 1:
		return Charge(v), nil
	default:
		return 0, fmt.Errorf("%w: charge must be -1, 0 or 1, got %d", model.ErrConfiguration, v)
	}
}

// Palette returns the two charges available to domains on a surface whose
// base charge is base. The first entry is the primary domain charge.
func Palette(base Charge) [2]Charge {
	switch base {
	case Positive:
		return [2]Charge{Negative, Neutral}
	case Negative:
		return [2]Charge{Positive, Neutral}
	default:
		return [2]Charge{Positive, Negative}
	}
}
