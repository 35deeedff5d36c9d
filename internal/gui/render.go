package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawCloth()
	a.DrawHUD()
	a.DrawPanel()

	rl.EndDrawing()
}

// drawCloth renders the latest published vertices: every constraint as a
// line and every pin as a small sphere.
func (a *App) drawCloth() {
	a.verts, _ = a.Buffer.Consume(a.verts)

	rl.BeginMode3D(a.Camera)
	for _, t := range a.Tris {
		v0, v1, v2 := a.verts[t[0]], a.verts[t[1]], a.verts[t[2]]
		p0 := rl.NewVector3(v0.X, v0.Y, v0.Z)
		p1 := rl.NewVector3(v1.X, v1.Y, v1.Z)
		p2 := rl.NewVector3(v2.X, v2.Y, v2.Z)
		// both windings, so the cloth is visible from behind
		rl.DrawTriangle3D(p0, p1, p2, ColFill)
		rl.DrawTriangle3D(p0, p2, p1, ColFill)
	}
	for _, c := range a.Sim.Constraints() {
		va, vb := a.verts[c.A], a.verts[c.B]
		rl.DrawLine3D(rl.NewVector3(va.X, va.Y, va.Z), rl.NewVector3(vb.X, vb.Y, vb.Z), ColCloth)
	}
	for _, p := range a.Sim.Pins() {
		v := a.verts[p.Index]
		rl.DrawSphere(rl.NewVector3(v.X, v.Y, v.Z), 0.15, ColPin)
	}
	if a.grabbed >= 0 {
		v := a.verts[a.grabbed]
		rl.DrawSphere(rl.NewVector3(v.X, v.Y, v.Z), 0.2, ColSelect)
	}
	if a.cursor.Z > 0 {
		pos := rl.NewVector3(a.cursor.X, a.cursor.Y, 0)
		rl.DrawCircle3D(pos, grabRadius, rl.NewVector3(0, 0, 1), 0, rl.NewColor(255, 255, 255, 80))
	}
	rl.EndMode3D()
}

func (a *App) DrawHUD() {
	drawText("clothsim", 30, 30, 24, ColSelect)
	drawText(fmt.Sprintf(":: %s %dx%d", a.Cfg.Name, a.Cfg.Width, a.Cfg.Height), 160, 34, 16, ColText)

	a.DrawTelemetry()

	status, col := "RUNNING", ColSelect
	switch {
	case a.lastErr != nil:
		status, col = "HALTED", ColPin
	case !a.Running:
		status, col = "PAUSED", ColTextDim
	}
	drawText(status, panelX, 30, 16, col)

	sum := a.Metrics.Summary(a.Sim.StepCount(), a.Sim.Time())
	drawText(fmt.Sprintf("step %d  t %.2f  skipped %d", sum.Steps, sum.Time, a.Sim.Skipped()), 30, 70, 14, ColText)
	drawText(fmt.Sprintf("strain %.4f  max %.4f  ke %.3g", sum.Strain.Mean, sum.Strain.Max, sum.Kinetic), 30, 90, 14, ColText)
	if a.lastErr != nil {
		drawText(a.lastErr.Error(), 30, 110, 14, ColPin)
	}

	drawText("[SPACE] PAUSE  [R] RESET  [G] GUST  [P] SVG  [MOUSE] DRAG  [Q] QUIT", 700, 680, 14, ColTextDim)
	drawText(fmt.Sprintf("%d FPS", rl.GetFPS()), 30, 680, 14, ColTextDim)
}

func drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawText(text, int32(x), int32(y), int32(size), color)
}

// DrawTelemetry plots recent mean strain as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.telemetry[0], a.telemetry[0]
	for _, v := range a.telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.telemetry))
	for i, val := range a.telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	drawText(fmt.Sprintf("strain %.2e", a.telemetry[len(a.telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
