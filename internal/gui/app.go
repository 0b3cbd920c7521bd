package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/mpetrov/gravlab/internal/audio"
	"github.com/mpetrov/gravlab/internal/body"
	"github.com/mpetrov/gravlab/internal/config"
	"github.com/mpetrov/gravlab/internal/gravity"
	"github.com/mpetrov/gravlab/internal/vec"
)

// Theme colors.
var (
	colBg     = rl.NewColor(10, 10, 10, 255)
	colText   = rl.NewColor(140, 140, 140, 255)
	colAccent = rl.NewColor(255, 80, 80, 255)
	colTrail  = rl.NewColor(60, 60, 60, 255)
)

// maxFrameDt clamps wall-clock frame deltas before stepping so a frame
// hitch cannot destabilize the integration.
const maxFrameDt = 0.05

type App struct {
	Field   *gravity.Field
	Stepper gravity.Stepper
	Bodies  []body.Body
	initial []body.Body

	Time    float64
	Running bool
	StepErr error

	Camera       rl.Camera3D
	camPosTarget rl.Vector3

	History    [][]vec.Vec3 // position trails, ring buffer
	MaxHistory int

	initialKE float64
	Sonifier  *audio.Sonifier
}

func initWindow(title string) {
	rl.InitWindow(1280, 720, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the simulation window for a scenario and blocks until it
// is closed.
func Run(cfg *config.Config, withAudio bool) error {
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return err
	}
	stepper, err := gravity.ByName(cfg.Stepper)
	if err != nil {
		return err
	}

	app := &App{
		Field:      cfg.Field(),
		Stepper:    stepper,
		Bodies:     bodies,
		initial:    body.Clone(bodies),
		Running:    true,
		MaxHistory: 200,
		History:    make([][]vec.Vec3, 0, 200),
		Camera: rl.NewCamera3D(
			rl.NewVector3(0, 0, 6),
			rl.NewVector3(0, 0, 0),
			rl.NewVector3(0, 1, 0),
			45.0,
			rl.CameraPerspective,
		),
	}
	app.camPosTarget = app.Camera.Position
	app.initialKE = kinetic(bodies)

	if withAudio {
		son := audio.NewSonifier()
		if err := son.Start(); err == nil {
			app.Sonifier = son
			defer son.Stop()
		}
	}

	initWindow("gravlab")
	defer rl.CloseWindow()

	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reset()
	}

	// Camera input moves the target; the camera eases toward it.
	if rl.IsKeyDown(rl.KeyW) {
		a.camPosTarget.Y += 0.1
	}
	if rl.IsKeyDown(rl.KeyS) {
		a.camPosTarget.Y -= 0.1
	}
	if rl.IsKeyDown(rl.KeyA) {
		a.camPosTarget.X -= 0.1
	}
	if rl.IsKeyDown(rl.KeyD) {
		a.camPosTarget.X += 0.1
	}
	a.camPosTarget.Z -= rl.GetMouseWheelMove() * 0.5
	if a.camPosTarget.Z < 1 {
		a.camPosTarget.Z = 1
	}

	a.Camera.Position.X += (a.camPosTarget.X - a.Camera.Position.X) * 0.1
	a.Camera.Position.Y += (a.camPosTarget.Y - a.Camera.Position.Y) * 0.1
	a.Camera.Position.Z += (a.camPosTarget.Z - a.Camera.Position.Z) * 0.1

	if !a.Running || a.StepErr != nil {
		return
	}

	dt := float64(rl.GetFrameTime())
	if dt > maxFrameDt {
		dt = maxFrameDt
	}

	if err := a.Stepper.Step(a.Field, a.Bodies, dt); err != nil {
		// Refuse the frame: prior state is kept, the error shown.
		a.StepErr = err
		a.Running = false
		return
	}
	a.Time += dt

	positions := make([]vec.Vec3, len(a.Bodies))
	for i := range a.Bodies {
		positions[i] = a.Bodies[i].Pos
	}
	a.History = append(a.History, positions)
	if len(a.History) > a.MaxHistory {
		a.History = a.History[1:]
	}

	if a.Sonifier != nil && a.initialKE > 0 {
		a.Sonifier.SetEnergy(kinetic(a.Bodies) / a.initialKE)
	}
}

func (a *App) reset() {
	a.Bodies = body.Clone(a.initial)
	a.Time = 0
	a.StepErr = nil
	a.Running = true
	a.History = a.History[:0]
}

func kinetic(bodies []body.Body) float64 {
	ke := 0.0
	for i := range bodies {
		ke += bodies[i].KineticEnergy()
	}
	return ke
}

func bodyColor(b body.Body) rl.Color {
	if b.Color == "" {
		return rl.White
	}
	c, err := colorful.Hex(b.Color)
	if err != nil {
		return rl.White
	}
	return rl.NewColor(uint8(c.R*255), uint8(c.G*255), uint8(c.B*255), 255)
}
