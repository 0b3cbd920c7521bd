package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/gravity"
)

// Simulator drives a caller-owned body slice through fixed-dt steps.
// It does not retain the slice between calls; ownership stays with the
// caller, which reads positions back after each step.
type Simulator struct {
	field     *gravity.Field
	stepper   gravity.Stepper
	metrics   []Metric
	observers []Observer
}

func New(field *gravity.Field, stepper gravity.Stepper) *Simulator {
	return &Simulator{
		field:     field,
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances bodies for cfg.Duration in increments of cfg.Dt. A step
// error is recorded and stops the run, leaving bodies at their last
// valid state; the partial result is still returned.
func (s *Simulator) Run(ctx context.Context, bodies []body.Body, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	dt := cfg.Dt
	if cfg.MaxDt > 0 && dt > cfg.MaxDt {
		dt = cfg.MaxDt
	}

	steps := int(cfg.Duration / dt)
	result := &Result{
		Frames:  make([][]body.Body, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Frames = append(result.Frames, body.Clone(bodies))
	result.Times = append(result.Times, t)

	initialEnergy := s.field.Energy(bodies)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(bodies, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(bodies, t)
		}

		if err := s.stepper.Step(s.field, bodies, dt); err != nil {
			result.Errors = append(result.Errors, &gravity.StepError{Step: i, Time: t, Wrapped: err})
			break
		}

		t += dt
		result.StepsTaken++
		result.Frames = append(result.Frames, body.Clone(bodies))
		result.Times = append(result.Times, t)
	}

	finalEnergy := s.field.Energy(bodies)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("sim: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("sim: duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
