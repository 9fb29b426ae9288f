package surface

import (
	"fmt"
	"strings"

	"adhesim/internal/model"
)

type Shape string

const (
	Rectangle Shape = "RECTANGLE"
	Cuboid    Shape = "CUBOID"
	Sphere    Shape = "SPHERE"
	Cylinder  Shape = "CYLINDER"
	Rod       Shape = "ROD"
)

// ParseShape accepts shape tags case-insensitively.
func ParseShape(name string) (Shape, error) {
	switch s := Shape(strings.ToUpper(strings.TrimSpace(name))); s {
	case Rectangle, Cuboid, Sphere, Cylinder, Rod:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown surface shape %q", model.ErrConfiguration, name)
	}
}

// Dim is 2 for flat rectangles and 3 for bodies.
func (s Shape) Dim() int {
	if s == Rectangle {
		return 2
	}
	return 3
}
