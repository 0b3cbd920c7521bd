package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/gravity"
	"github.com/mpetrov/gravlab/internal/vec"
)

func testBodies(t *testing.T) []body.Body {
	t.Helper()
	specs := []struct {
		pos, vel vec.Vec3
	}{
		{vec.New(0, 0, 0), vec.New(0, 0, 0)},
		{vec.New(2, 0, 0), vec.New(0, 0.5, 0)},
		{vec.New(0, 2, 0), vec.New(0, -0.5, 0)},
	}
	bodies := make([]body.Body, 0, len(specs))
	for _, s := range specs {
		b, err := body.New(1e10, s.pos, s.vel, 0.1, "#ffffff")
		if err != nil {
			t.Fatalf("body.New failed: %v", err)
		}
		bodies = append(bodies, b)
	}
	return bodies
}

func TestSimulatorRun(t *testing.T) {
	s := New(gravity.New(), gravity.NewSymplecticEuler())
	bodies := testBodies(t)

	result, err := s.Run(context.Background(), bodies, Config{Dt: 0.01, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Frames) != 101 || len(result.Times) != 101 {
		t.Errorf("expected 101 frames/times, got %d/%d", len(result.Frames), len(result.Times))
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected step errors: %v", result.Errors)
	}

	// Frames are snapshots, not aliases of the live slice.
	if &result.Frames[0][0] == &bodies[0] {
		t.Error("frame aliases the caller's slice")
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	s := New(gravity.New(), gravity.NewSymplecticEuler())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), testBodies(t), tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSimulatorMaxDtClamp(t *testing.T) {
	s := New(gravity.New(), gravity.NewSymplecticEuler())

	result, err := s.Run(context.Background(), testBodies(t), Config{Dt: 1.0, Duration: 1.0, MaxDt: 0.1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected dt clamped to 0.1 (10 steps), got %d steps", result.StepsTaken)
	}
}

func TestSimulatorStopsOnDegenerateStep(t *testing.T) {
	s := New(gravity.New(), gravity.NewSymplecticEuler())

	b1, _ := body.New(1, vec.New(0, 0, 0), vec.Vec3{}, 0.1, "")
	b2, _ := body.New(1, vec.New(0, 0, 0), vec.Vec3{}, 0.1, "")
	bodies := []body.Body{b1, b2}

	result, err := s.Run(context.Background(), bodies, Config{Dt: 0.01, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 0 {
		t.Errorf("expected run to stop at step 0, took %d steps", result.StepsTaken)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %d", len(result.Errors))
	}
	if !errors.Is(result.Errors[0], gravity.ErrDegenerateConfiguration) {
		t.Errorf("recorded error = %v, want ErrDegenerateConfiguration", result.Errors[0])
	}

	var stepErr *gravity.StepError
	if !errors.As(result.Errors[0], &stepErr) {
		t.Error("recorded error is not a StepError")
	}
}

type countingMetric struct {
	count int
}

func (m *countingMetric) Name() string                        { return "count" }
func (m *countingMetric) Observe(bodies []body.Body, t float64) { m.count++ }
func (m *countingMetric) Value() float64                      { return float64(m.count) }
func (m *countingMetric) Reset()                              { m.count = 0 }

func TestSimulatorMetrics(t *testing.T) {
	s := New(gravity.New(), gravity.NewSymplecticEuler())
	metric := &countingMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), testBodies(t), Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["count"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestSimulatorContextCancel(t *testing.T) {
	s := New(gravity.New(), gravity.NewSymplecticEuler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx, testBodies(t), Config{Dt: 0.01, Duration: 10.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Error("expected partial result on cancellation")
	}
}
