package gravity

import (
	"errors"
	"math"
	"testing"

	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/vec"
)

func mustBody(t *testing.T, mass float64, pos, vel vec.Vec3) body.Body {
	t.Helper()
	b, err := body.New(mass, pos, vel, 0.1, "#ffffff")
	if err != nil {
		t.Fatalf("body.New failed: %v", err)
	}
	return b
}

// referenceBodies reproduces the default three-body scenario.
func referenceBodies(t *testing.T) []body.Body {
	return []body.Body{
		mustBody(t, 1e10, vec.New(0, 0, 0), vec.New(0, 0, 0)),
		mustBody(t, 1e10, vec.New(2, 0, 0), vec.New(0, 0.5, 0)),
		mustBody(t, 1e10, vec.New(0, 2, 0), vec.New(0, -0.5, 0)),
	}
}

func TestForce_Symmetry(t *testing.T) {
	f := New()
	a := mustBody(t, 1e10, vec.New(0.3, -1.2, 0.7), vec.Vec3{})
	b := mustBody(t, 2e10, vec.New(-2.1, 0.4, 1.9), vec.Vec3{})

	fab, err := f.Force(a, b)
	if err != nil {
		t.Fatalf("Force(a,b) failed: %v", err)
	}
	fba, err := f.Force(b, a)
	if err != nil {
		t.Fatalf("Force(b,a) failed: %v", err)
	}

	if fab != fba.Neg() {
		t.Errorf("Force(a,b) = %v, want exact negation of Force(b,a) = %v", fab, fba)
	}
}

func TestForce_PointsTowardOther(t *testing.T) {
	f := &Field{G: 1, MinSeparation: 1e-9}
	a := mustBody(t, 1, vec.New(0, 0, 0), vec.Vec3{})
	b := mustBody(t, 1, vec.New(3, 0, 0), vec.Vec3{})

	got, err := f.Force(a, b)
	if err != nil {
		t.Fatalf("Force failed: %v", err)
	}
	// G*m*m/r^2 = 1/9 along +x.
	want := vec.New(1.0/9.0, 0, 0)
	if got.Sub(want).Norm() > 1e-15 {
		t.Errorf("Force = %v, want %v", got, want)
	}
}

func TestStep_NegativeTimestep(t *testing.T) {
	f := New()
	bodies := referenceBodies(t)
	before := body.Clone(bodies)

	err := f.Step(bodies, -0.01)
	if !errors.Is(err, ErrNegativeTimestep) {
		t.Fatalf("Step(dt=-0.01) error = %v, want ErrNegativeTimestep", err)
	}
	for i := range bodies {
		if bodies[i] != before[i] {
			t.Errorf("body %d mutated on rejected step", i)
		}
	}
}

func TestStep_ZeroDtIdempotent(t *testing.T) {
	f := New()
	bodies := referenceBodies(t)
	before := body.Clone(bodies)

	if err := f.Step(bodies, 0); err != nil {
		t.Fatalf("Step(dt=0) failed: %v", err)
	}
	for i := range bodies {
		if bodies[i].Pos != before[i].Pos || bodies[i].Vel != before[i].Vel {
			t.Errorf("body %d changed on zero-dt step: %+v", i, bodies[i])
		}
	}
}

func TestStep_DegenerateConfiguration(t *testing.T) {
	f := New()
	bodies := []body.Body{
		mustBody(t, 1, vec.New(0, 0, 0), vec.Vec3{}),
		mustBody(t, 1, vec.New(0, 0, 0), vec.Vec3{}),
	}
	before := body.Clone(bodies)

	err := f.Step(bodies, 0.01)
	if !errors.Is(err, ErrDegenerateConfiguration) {
		t.Fatalf("Step on coincident bodies error = %v, want ErrDegenerateConfiguration", err)
	}
	for i := range bodies {
		if bodies[i] != before[i] {
			t.Errorf("body %d mutated on refused step", i)
		}
		if !bodies[i].Pos.IsValid() || !bodies[i].Vel.IsValid() {
			t.Errorf("body %d holds NaN/Inf after refused step", i)
		}
	}
}

func TestStep_SingleBodyStasis(t *testing.T) {
	f := New()
	v0 := vec.New(1, -2, 0.5)
	bodies := []body.Body{mustBody(t, 5, vec.New(1, 1, 1), v0)}

	dt := 0.01
	for i := 0; i < 100; i++ {
		if err := f.Step(bodies, dt); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	if bodies[0].Vel != v0 {
		t.Errorf("single body changed velocity: %v", bodies[0].Vel)
	}
	want := vec.New(1, 1, 1).Add(v0.Scale(1.0))
	if bodies[0].Pos.Sub(want).Norm() > 1e-9 {
		t.Errorf("single body position = %v, want linear drift to %v", bodies[0].Pos, want)
	}
}

func TestStep_MomentumConserved(t *testing.T) {
	f := &Field{G: 1, MinSeparation: 1e-9}
	// Figure-eight initial conditions, three unit masses.
	bodies := []body.Body{
		mustBody(t, 1, vec.New(-1, 0, 0), vec.New(0.347, 0.532, 0)),
		mustBody(t, 1, vec.New(1, 0, 0), vec.New(0.347, 0.532, 0)),
		mustBody(t, 1, vec.New(0, 0, 0), vec.New(-0.694, -1.064, 0)),
	}

	scale := 0.0
	for i := range bodies {
		scale += bodies[i].Mass * bodies[i].Vel.Norm()
	}
	p0 := Momentum(bodies)

	for i := 0; i < 2000; i++ {
		if err := f.Step(bodies, 0.001); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	drift := Momentum(bodies).Sub(p0).Norm() / scale
	if drift > 1e-9 {
		t.Errorf("relative momentum drift %v after 2000 steps", drift)
	}
}

func TestStep_SnapshotOrderIndependent(t *testing.T) {
	f := New()
	a := referenceBodies(t)
	b := []body.Body{a[2], a[1], a[0]}
	b = body.Clone(b)

	if err := f.Step(a, 0.01); err != nil {
		t.Fatalf("step failed: %v", err)
	}
	if err := f.Step(b, 0.01); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	pairs := [][2]int{{0, 2}, {1, 1}, {2, 0}}
	for _, p := range pairs {
		if a[p[0]].Pos.Sub(b[p[1]].Pos).Norm() > 1e-9 {
			t.Errorf("body %d position depends on slice order: %v vs %v", p[0], a[p[0]].Pos, b[p[1]].Pos)
		}
	}
}

func TestStep_TwoBodyCircularOrbit(t *testing.T) {
	// Equal masses m on a circular orbit: separation r, speed
	// v = sqrt(G*m/(2r)) perpendicular to the separation.
	f := &Field{G: 1, MinSeparation: 1e-9}
	m, sep := 1.0, 2.0
	v := math.Sqrt(f.G * m / (2 * sep))

	bodies := []body.Body{
		mustBody(t, m, vec.New(-1, 0, 0), vec.New(0, -v, 0)),
		mustBody(t, m, vec.New(1, 0, 0), vec.New(0, v, 0)),
	}
	start := body.Clone(bodies)

	orbitRadius := sep / 2
	period := 2 * math.Pi * orbitRadius / v
	dt := 0.001
	steps := int(period / dt)

	for i := 0; i < steps; i++ {
		if err := f.Step(bodies, dt); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		for j := range bodies {
			r := bodies[j].Pos.Norm()
			if math.Abs(r-orbitRadius) > 0.02*orbitRadius {
				t.Fatalf("step %d: body %d at radius %v, want ~%v", i, j, r, orbitRadius)
			}
		}
	}

	for j := range bodies {
		if d := bodies[j].Pos.Sub(start[j].Pos).Norm(); d > 0.05 {
			t.Errorf("body %d ended %v away from its start after one period", j, d)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	f := &Field{G: 1, MinSeparation: 1e-9}
	bodies := []body.Body{
		mustBody(t, 2, vec.New(0, 0, 0), vec.New(1, 0, 0)),
		mustBody(t, 3, vec.New(4, 0, 0), vec.New(0, 1, 0)),
	}

	// KE = 0.5*2*1 + 0.5*3*1 = 2.5; PE = -1*2*3/4 = -1.5.
	if got := f.Energy(bodies); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("Energy = %v, want 1.0", got)
	}

	if got := Momentum(bodies); got != vec.New(2, 3, 0) {
		t.Errorf("Momentum = %v, want (2,3,0)", got)
	}

	// Only body 1 contributes: (4,0,0) x (0,3,0) = (0,0,12).
	if got := AngularMomentum(bodies); got != vec.New(0, 0, 12) {
		t.Errorf("AngularMomentum = %v, want (0,0,12)", got)
	}
}

func TestStepError_Unwrap(t *testing.T) {
	err := &StepError{Step: 7, Time: 0.07, Wrapped: ErrDegenerateConfiguration}
	if !errors.Is(err, ErrDegenerateConfiguration) {
		t.Error("StepError does not unwrap to its cause")
	}
	want := "step 7 (t=0.0700): gravity: bodies closer than minimum separation"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
