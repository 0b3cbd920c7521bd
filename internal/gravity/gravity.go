// Package gravity implements mutual Newtonian gravity over a small set
// of point masses, advanced one fixed step at a time by an external
// frame loop. The force pass always reads a consistent snapshot of the
// pre-step state, so results do not depend on body ordering.
package gravity

import (
	"errors"
	"fmt"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/vec"
)

// DefaultG is the Newtonian gravitational constant in SI units.
const DefaultG = 6.67430e-11

var (
	// ErrNegativeTimestep indicates dt < 0; time does not run backward.
	ErrNegativeTimestep = errors.New("gravity: negative timestep")

	// ErrDegenerateConfiguration indicates two bodies closer than the
	// minimum separation, making the force computation singular. The
	// step is refused rather than clamped: clamping would silently
	// change the force law, while the caller can skip the frame.
	ErrDegenerateConfiguration = errors.New("gravity: bodies closer than minimum separation")
)

// Field holds the force-law parameters shared by every pairwise
// interaction. It retains no body state between calls.
type Field struct {
	G             float64
	MinSeparation float64
}

func New() *Field {
	return &Field{
		G:             DefaultG,
		MinSeparation: 1e-9,
	}
}

// Force returns the force on a due to b, pointing from a toward b.
// Force(a, b) is the exact negation of Force(b, a).
func (f *Field) Force(a, b body.Body) (vec.Vec3, error) {
	d := b.Pos.Sub(a.Pos)
	r := d.Norm()
	if r < f.MinSeparation {
		return vec.Vec3{}, ErrDegenerateConfiguration
	}
	mag := f.G * a.Mass * b.Mass / (r * r)
	return d.Scale(mag / r), nil
}

// Accelerations computes the net acceleration on every body from a
// single snapshot of positions. The inner loop runs over j > i and
// applies each pairwise force with both signs, so Newton's third law
// holds exactly. O(n²); fine for the handful of bodies this models.
func (f *Field) Accelerations(bodies []body.Body) ([]vec.Vec3, error) {
	n := len(bodies)
	acc := make([]vec.Vec3, n)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := bodies[j].Pos.Sub(bodies[i].Pos)
			r := d.Norm()
			if r < f.MinSeparation {
				return nil, fmt.Errorf("bodies %d and %d: %w", i, j, ErrDegenerateConfiguration)
			}

			rInv3 := 1.0 / (r * r * r)
			acc[i] = acc[i].Add(d.Scale(f.G * bodies[j].Mass * rInv3))
			acc[j] = acc[j].Add(d.Scale(-f.G * bodies[i].Mass * rInv3))
		}
	}

	return acc, nil
}

// Step advances bodies in place by one semi-implicit Euler step:
// velocity is updated from the snapshot acceleration first, then
// position is updated with the new velocity. On any error the slice is
// left exactly as it was; all accelerations are computed before the
// first write.
func (f *Field) Step(bodies []body.Body, dt float64) error {
	if dt < 0 {
		return ErrNegativeTimestep
	}

	acc, err := f.Accelerations(bodies)
	if err != nil {
		return err
	}

	for i := range bodies {
		bodies[i].Vel = bodies[i].Vel.Add(acc[i].Scale(dt))
		bodies[i].Pos = bodies[i].Pos.Add(bodies[i].Vel.Scale(dt))
	}

	return nil
}

// Energy returns total kinetic plus pairwise potential energy.
func (f *Field) Energy(bodies []body.Body) float64 {
	e := 0.0
	for i := range bodies {
		e += bodies[i].KineticEnergy()
		for j := i + 1; j < len(bodies); j++ {
			r := bodies[j].Pos.Sub(bodies[i].Pos).Norm()
			if r > 0 {
				e -= f.G * bodies[i].Mass * bodies[j].Mass / r
			}
		}
	}
	return e
}

// Momentum returns the total linear momentum.
func Momentum(bodies []body.Body) vec.Vec3 {
	var p vec.Vec3
	for i := range bodies {
		p = p.Add(bodies[i].Momentum())
	}
	return p
}

// AngularMomentum returns the total angular momentum about the origin.
func AngularMomentum(bodies []body.Body) vec.Vec3 {
	var l vec.Vec3
	for i := range bodies {
		l = l.Add(bodies[i].Pos.Cross(bodies[i].Momentum()))
	}
	return l
}

// StepError wraps a step failure with frame context.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
