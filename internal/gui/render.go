package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(colBg)

	rl.BeginMode3D(a.Camera)
	a.renderTrails()
	a.renderBodies()
	rl.EndMode3D()

	a.drawHUD()
	rl.EndDrawing()
}

func (a *App) renderBodies() {
	for i := range a.Bodies {
		b := a.Bodies[i]
		pos := rl.NewVector3(float32(b.Pos.X), float32(b.Pos.Y), float32(b.Pos.Z))
		rl.DrawSphere(pos, float32(b.Radius), bodyColor(b))
	}
}

func (a *App) renderTrails() {
	if len(a.History) < 2 {
		return
	}
	for i := range a.Bodies {
		for f := 1; f < len(a.History); f++ {
			p0 := a.History[f-1][i]
			p1 := a.History[f][i]
			rl.DrawLine3D(
				rl.NewVector3(float32(p0.X), float32(p0.Y), float32(p0.Z)),
				rl.NewVector3(float32(p1.X), float32(p1.Y), float32(p1.Z)),
				colTrail,
			)
		}
	}
}

func (a *App) drawHUD() {
	rl.DrawText(fmt.Sprintf("t = %.2fs", a.Time), 20, 20, 20, colText)
	rl.DrawText(fmt.Sprintf("bodies: %d", len(a.Bodies)), 20, 45, 20, colText)
	rl.DrawText(fmt.Sprintf("E = %.3e", a.Field.Energy(a.Bodies)), 20, 70, 20, colText)

	if a.StepErr != nil {
		rl.DrawText(a.StepErr.Error(), 20, 110, 20, colAccent)
		rl.DrawText("R to reset", 20, 135, 20, colText)
	} else if !a.Running {
		rl.DrawText("paused (space to resume)", 20, 110, 20, colText)
	}

	rl.DrawText("space pause  r reset  wasd/wheel camera", 20, int32(rl.GetScreenHeight())-35, 18, colTrail)
}
