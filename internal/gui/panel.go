package gui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panelX     = 1000
	panelY     = 80
	panelWidth = 250
)

// slider binds one simulator parameter to a raygui slider.
type slider struct {
	param    string
	label    string
	min, max float32
	integer  bool
}

// newSliders picks ranges around the starting parameters so the presets
// with physical gravity and the ones with per-step gravity both get a
// usable slider.
func newSliders(params map[string]float64) []slider {
	g := float32(params["gravity"])
	if g <= 0 {
		g = 0.001
	}
	return []slider{
		{param: "gravity", label: "Gravity", min: 0, max: 4 * g},
		{param: "iterations", label: "Iterations", min: 1, max: 16, integer: true},
		{param: "relaxation", label: "Relaxation", min: 0.05, max: 1},
	}
}

func panelBounds() rl.Rectangle {
	return rl.Rectangle{X: panelX - 10, Y: panelY - 10, Width: panelWidth + 20, Height: 240}
}

// DrawPanel draws the parameter sliders and applies any change to the
// running simulator. Out-of-range values are rejected by the simulator and
// shown as the last error.
func (a *App) DrawPanel() {
	x, y := float32(panelX), float32(panelY)
	params := a.Sim.GetParams()

	drawText("Parameters", panelX, int(y), 18, ColAccent)
	y += 30

	for _, s := range a.sliders {
		cur := float32(params[s.param])
		drawText(s.label, int(x), int(y), 14, ColText)
		y += 18

		next := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: panelWidth - 70, Height: 20},
			"", "",
			cur, s.min, s.max,
		)
		val := fmt.Sprintf("%.4g", cur)
		if s.integer {
			next = float32(math.Round(float64(next)))
			val = fmt.Sprintf("%d", int(cur))
		}
		drawText(val, int(x)+panelWidth-60, int(y)+2, 14, ColSelect)

		if next != cur {
			if err := a.Sim.SetParam(s.param, float64(next)); err != nil {
				a.lastErr = err
			}
		}
		y += 35
	}

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: 110, Height: 28}, toggleText(a.Running, "Pause", "Resume")) {
		a.Running = !a.Running
	}
	if gui.Button(rl.Rectangle{X: x + 120, Y: y, Width: 110, Height: 28}, "Reset") {
		a.reset()
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
