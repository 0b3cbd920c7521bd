package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Circle-fan demo constants, in a normalized space where the window
// height spans [-1, 1].
const (
	circleSegments = 100
	circleRadius   = 0.5
)

var (
	circleFill = rl.NewColor(255, 128, 51, 255) // orange
	circleBg   = rl.NewColor(51, 77, 77, 255)   // teal
)

// circleFan returns triangle-fan vertices: the center first, then
// segments+1 rim points (the first rim point repeated to close the fan).
func circleFan(cx, cy, r float64, segments int) [][2]float64 {
	verts := make([][2]float64, 0, segments+2)
	verts = append(verts, [2]float64{cx, cy})
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		verts = append(verts, [2]float64{
			cx + r*math.Cos(angle),
			cy + r*math.Sin(angle),
		})
	}
	return verts
}

// RunCircle opens the standalone circle-fan window and blocks until it
// is closed (Esc or window close).
func RunCircle() {
	rl.InitWindow(1280, 720, "circle fan")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		w := float64(rl.GetScreenWidth())
		h := float64(rl.GetScreenHeight())

		// Normalized-to-pixel mapping, aspect-correct: the unit scale
		// follows the window height.
		scale := h / 2
		verts := circleFan(0, 0, circleRadius, circleSegments)
		points := make([]rl.Vector2, len(verts))
		for i, v := range verts {
			points[i] = rl.NewVector2(
				float32(w/2+v[0]*scale),
				float32(h/2-v[1]*scale),
			)
		}

		rl.BeginDrawing()
		rl.ClearBackground(circleBg)
		rl.DrawTriangleFan(points, circleFill)
		rl.EndDrawing()
	}
}
