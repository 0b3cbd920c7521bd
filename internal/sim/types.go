package sim

import "github.com/mpetrov/gravlab/internal/body"

// Metric observes the body set before every step and reduces the run to
// one scalar.
type Metric interface {
	Name() string
	Observe(bodies []body.Body, t float64)
	Value() float64
	Reset()
}

// Observer is notified after metrics, once per step, with the pre-step
// state.
type Observer interface {
	OnStep(bodies []body.Body, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
	// MaxDt clamps the effective timestep. The step function itself
	// accepts any non-negative dt; clamping frame hitches is the
	// caller's job, and in headless runs this is the caller.
	MaxDt float64
}

type Result struct {
	Frames      [][]body.Body
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}
