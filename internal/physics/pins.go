package physics

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// ApplyPins overwrites position and previous position of every pinned
// particle, so anchors carry no velocity into the next step.
func ApplyPins(g *Grid, pins []dynamo.Pin) error {
	for _, p := range pins {
		if p.Index < 0 || p.Index >= len(g.Particles) {
			return fmt.Errorf("%w: %d (grid has %d particles)", dynamo.ErrPinOutOfRange, p.Index, len(g.Particles))
		}
		g.Particles[p.Index] = dynamo.Particle{Pos: p.Pos, Old: p.Pos}
	}
	return nil
}

// ValidatePins checks every index without touching the grid.
func ValidatePins(g *Grid, pins []dynamo.Pin) error {
	for _, p := range pins {
		if p.Index < 0 || p.Index >= len(g.Particles) {
			return fmt.Errorf("%w: %d (grid has %d particles)", dynamo.ErrPinOutOfRange, p.Index, len(g.Particles))
		}
		if !p.Pos.IsFinite() {
			return fmt.Errorf("%w: pin %d has non-finite position", dynamo.ErrParameterBounds, p.Index)
		}
	}
	return nil
}

// PinAt pins grid cell (x, y) at its rest position.
func PinAt(g *Grid, x, y int) (dynamo.Pin, error) {
	if !g.InBounds(x, y) {
		return dynamo.Pin{}, fmt.Errorf("%w: (%d, %d) outside %dx%d grid", dynamo.ErrPinOutOfRange, x, y, g.Width, g.Height)
	}
	return dynamo.Pin{Index: g.Index(x, y), Pos: g.RestPosition(x, y)}, nil
}

// CornerPins anchors the two top-row corners where they rest.
func CornerPins(g *Grid) []dynamo.Pin {
	left, _ := PinAt(g, 0, 0)
	if g.Width == 1 {
		return []dynamo.Pin{left}
	}
	right, _ := PinAt(g, g.Width-1, 0)
	return []dynamo.Pin{left, right}
}

// RowPins anchors every particle of row y.
func RowPins(g *Grid, y int) []dynamo.Pin {
	if y < 0 || y >= g.Height {
		return nil
	}
	pins := make([]dynamo.Pin, 0, g.Width)
	for x := 0; x < g.Width; x++ {
		p, _ := PinAt(g, x, y)
		pins = append(pins, p)
	}
	return pins
}
