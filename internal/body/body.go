package body

import (
	"errors"
	"math"

	"github.com/mpetrov/gravlab/internal/vec"
)

// ErrInvalidMass indicates a body with non-positive (or non-finite) mass.
// Mass is divided by during acceleration computation, so the constructor
// is the boundary that keeps such bodies out of the simulated set.
var ErrInvalidMass = errors.New("body: mass must be positive and finite")

// Body is one point mass. Radius and Color are rendering attributes
// with no physical effect.
type Body struct {
	Mass   float64
	Pos    vec.Vec3
	Vel    vec.Vec3
	Radius float64
	Color  string
}

// New validates mass at construction time; a Body that clears this
// boundary always has Mass > 0.
func New(mass float64, pos, vel vec.Vec3, radius float64, color string) (Body, error) {
	if !(mass > 0) || math.IsInf(mass, 1) {
		return Body{}, ErrInvalidMass
	}
	return Body{
		Mass:   mass,
		Pos:    pos,
		Vel:    vel,
		Radius: radius,
		Color:  color,
	}, nil
}

func (b Body) Momentum() vec.Vec3 {
	return b.Vel.Scale(b.Mass)
}

func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Vel.Dot(b.Vel)
}

// Clone copies a body slice, for snapshots and frame recording.
func Clone(bodies []Body) []Body {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return c
}
