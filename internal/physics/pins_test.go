package physics

import (
	"errors"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
)

func TestCornerPins_Reference(t *testing.T) {
	g, _ := NewGrid(20, 10)
	pins := CornerPins(g)

	want := []dynamo.Pin{
		{Index: 0, Pos: dynamo.Vec2{X: -10, Y: 5}},
		{Index: 19, Pos: dynamo.Vec2{X: 9, Y: 5}},
	}
	if len(pins) != len(want) {
		t.Fatalf("got %d pins, want %d", len(pins), len(want))
	}
	for i := range want {
		if pins[i] != want[i] {
			t.Errorf("pin %d = %+v, want %+v", i, pins[i], want[i])
		}
	}
}

func TestCornerPins_SingleColumn(t *testing.T) {
	g, _ := NewGrid(1, 4)
	if pins := CornerPins(g); len(pins) != 1 {
		t.Errorf("expected one pin on a 1-wide grid, got %d", len(pins))
	}
}

func TestApplyPins_ResetsPositionAndVelocity(t *testing.T) {
	g, _ := NewGrid(4, 4)
	pin := dynamo.Pin{Index: 3, Pos: dynamo.Vec2{X: 7, Y: 8}}
	g.Particles[3] = dynamo.Particle{Pos: dynamo.Vec2{X: 1, Y: 1}, Old: dynamo.Vec2{X: 0, Y: 2}}

	if err := ApplyPins(g, []dynamo.Pin{pin}); err != nil {
		t.Fatalf("ApplyPins: %v", err)
	}

	p := g.Particles[3]
	if p.Pos != pin.Pos || p.Old != pin.Pos {
		t.Errorf("pinned particle = %+v, want pos and old at %v", p, pin.Pos)
	}
}

func TestApplyPins_OutOfRange(t *testing.T) {
	g, _ := NewGrid(2, 2)
	for _, idx := range []int{-1, 4, 100} {
		err := ApplyPins(g, []dynamo.Pin{{Index: idx}})
		if !errors.Is(err, dynamo.ErrPinOutOfRange) {
			t.Errorf("index %d: expected ErrPinOutOfRange, got %v", idx, err)
		}
	}
}

func TestPinAt(t *testing.T) {
	g, _ := NewGrid(5, 3)

	p, err := PinAt(g, 4, 2)
	if err != nil {
		t.Fatalf("PinAt: %v", err)
	}
	if p.Index != 14 || p.Pos != g.RestPosition(4, 2) {
		t.Errorf("PinAt(4,2) = %+v", p)
	}

	if _, err := PinAt(g, 5, 0); !errors.Is(err, dynamo.ErrPinOutOfRange) {
		t.Errorf("expected ErrPinOutOfRange, got %v", err)
	}
}

func TestRowPins(t *testing.T) {
	g, _ := NewGrid(6, 3)
	pins := RowPins(g, 0)
	if len(pins) != 6 {
		t.Fatalf("got %d pins, want 6", len(pins))
	}
	for x, p := range pins {
		if p.Index != x {
			t.Errorf("pin %d has index %d", x, p.Index)
		}
	}
	if RowPins(g, 3) != nil {
		t.Error("expected nil for a row outside the grid")
	}
}

func TestValidatePins(t *testing.T) {
	g, _ := NewGrid(2, 2)
	if err := ValidatePins(g, CornerPins(g)); err != nil {
		t.Errorf("corner pins rejected: %v", err)
	}
	bad := []dynamo.Pin{{Index: 0, Pos: dynamo.Vec2{X: nan()}}}
	if err := ValidatePins(g, bad); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}
