package config

import "sort"

var Presets = map[string]*Config{
	"reference": DefaultConfig(),
	"earth": {
		Name: "earth", Width: 20, Height: 10, Gravity: 9.81, Dt: 1.0 / 60,
		Iterations: 2, Relaxation: 0.51, Solver: "gauss-seidel",
		Pins: PinsConfig{Mode: PinCorners}, Steps: 600, RecordEvery: 10, FPS: 60,
	},
	"stiff": {
		Name: "stiff", Width: 20, Height: 10, Gravity: 0.001, Dt: 1.0,
		Iterations: 8, Relaxation: 0.51, Solver: "gauss-seidel",
		Pins: PinsConfig{Mode: PinCorners}, Steps: 600, RecordEvery: 10, FPS: 60,
	},
	"banner": {
		Name: "banner", Width: 40, Height: 12, Gravity: 0.001, Dt: 1.0,
		Iterations: 4, Relaxation: 0.51, Solver: "gauss-seidel",
		Pins: PinsConfig{Mode: PinTopRow}, Steps: 900, RecordEvery: 15, FPS: 60,
	},
	"jacobi": {
		Name: "jacobi", Width: 20, Height: 10, Gravity: 0.001, Dt: 1.0,
		Iterations: 4, Relaxation: 0.51, Solver: "jacobi",
		Pins: PinsConfig{Mode: PinCorners}, Steps: 600, RecordEvery: 10, FPS: 60,
	},
	"damped": {
		Name: "damped", Width: 20, Height: 10, Gravity: 0.001, Dt: 1.0,
		Iterations: 2, Relaxation: 0.51, Solver: "gauss-seidel", Damping: 0.02,
		Pins: PinsConfig{Mode: PinCorners}, Steps: 600, RecordEvery: 10, FPS: 60,
	},
	"hammock": {
		Name: "hammock", Width: 24, Height: 8, Gravity: 0.001, Dt: 1.0,
		Iterations: 3, Relaxation: 0.51, Solver: "gauss-seidel",
		Pins: PinsConfig{Mode: PinCustom, Points: []PinPoint{
			{X: 0, Y: 0}, {X: 0, Y: 7}, {X: 23, Y: 0}, {X: 23, Y: 7},
		}},
		Steps: 600, RecordEvery: 10, FPS: 60,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
