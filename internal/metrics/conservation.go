// Package metrics provides conservation-law diagnostics observed over a
// simulation run. With gravity as the only force both quantities should
// hold to numerical tolerance; drift beyond that points at the stepper.
package metrics

import (
	"math"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/gravity"
	"github.com/mpetrov/gravlab/internal/vec"
)

// Momentum tracks the maximum drift of total linear momentum relative
// to the momentum scale of the initial state.
type Momentum struct {
	name     string
	initial  vec.Vec3
	scale    float64
	maxDrift float64
	samples  int
}

func NewMomentum() *Momentum {
	return &Momentum{name: "momentum_drift"}
}

func (m *Momentum) Name() string { return m.name }

func (m *Momentum) Observe(bodies []body.Body, t float64) {
	p := gravity.Momentum(bodies)

	if m.samples == 0 {
		m.initial = p
		// Relative to the sum of |m*v|, not |p|: symmetric systems
		// start at exactly zero net momentum.
		for i := range bodies {
			m.scale += bodies[i].Mass * bodies[i].Vel.Norm()
		}
		if m.scale == 0 {
			m.scale = 1
		}
	}
	m.samples++

	drift := p.Sub(m.initial).Norm() / m.scale
	m.maxDrift = math.Max(m.maxDrift, drift)
}

func (m *Momentum) Value() float64 { return m.maxDrift }

func (m *Momentum) Reset() {
	m.initial = vec.Vec3{}
	m.scale = 0
	m.maxDrift = 0
	m.samples = 0
}

// EnergyDrift tracks the maximum relative drift of total energy.
type EnergyDrift struct {
	name     string
	field    *gravity.Field
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(field *gravity.Field) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", field: field}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []body.Body, t float64) {
	energy := e.field.Energy(bodies)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
