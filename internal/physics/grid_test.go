package physics

import (
	"errors"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
)

func TestNewGrid_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 5},
		{"zero height", 5, 0},
		{"negative", -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.w, tt.h)
			if !errors.Is(err, dynamo.ErrInvalidDimensions) {
				t.Errorf("expected ErrInvalidDimensions, got %v", err)
			}
			if g != nil {
				t.Error("expected nil grid")
			}
		})
	}
}

func TestNewGrid_RestLattice(t *testing.T) {
	g, err := NewGrid(20, 10)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}

	if g.Len() != 200 {
		t.Fatalf("expected 200 particles, got %d", g.Len())
	}

	tests := []struct {
		x, y int
		want dynamo.Vec2
	}{
		{0, 0, dynamo.Vec2{X: -10, Y: 5}},
		{19, 0, dynamo.Vec2{X: 9, Y: 5}},
		{0, 9, dynamo.Vec2{X: -10, Y: -4}},
		{10, 5, dynamo.Vec2{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		p := g.Particles[g.Index(tt.x, tt.y)]
		if p.Pos != tt.want {
			t.Errorf("particle (%d,%d) at %v, want %v", tt.x, tt.y, p.Pos, tt.want)
		}
		if p.Old != p.Pos {
			t.Errorf("particle (%d,%d) starts with velocity %v", tt.x, tt.y, p.Velocity())
		}
	}
}

func TestNewGrid_OddDimensionsUseFloatCentre(t *testing.T) {
	g, _ := NewGrid(3, 3)
	if got := g.Particles[0].Pos; got != (dynamo.Vec2{X: -1.5, Y: 1.5}) {
		t.Errorf("corner at %v, want {-1.5 1.5}", got)
	}
}

func TestGrid_IndexCoordBijection(t *testing.T) {
	g, _ := NewGrid(7, 4)
	seen := make(map[int]bool)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := g.Index(x, y)
			if seen[i] {
				t.Fatalf("index %d produced twice", i)
			}
			seen[i] = true
			if cx, cy := g.Coord(i); cx != x || cy != y {
				t.Errorf("Coord(%d) = (%d,%d), want (%d,%d)", i, cx, cy, x, y)
			}
		}
	}
	if len(seen) != g.Len() {
		t.Errorf("mapped %d indices, want %d", len(seen), g.Len())
	}
}

func TestGrid_ResetAndClone(t *testing.T) {
	g, _ := NewGrid(4, 3)
	c := g.Clone()

	g.Particles[5].Pos.X += 3
	if c.Particles[5] == g.Particles[5] {
		t.Error("Clone shares particle storage")
	}

	g.Reset()
	if g.Particles[5] != c.Particles[5] {
		t.Errorf("Reset gave %+v, want %+v", g.Particles[5], c.Particles[5])
	}
}

func TestGrid_IsValid(t *testing.T) {
	g, _ := NewGrid(3, 3)
	if ok, _ := g.IsValid(); !ok {
		t.Fatal("fresh grid reported invalid")
	}

	g.Particles[4].Pos.Y = nan()
	ok, idx := g.IsValid()
	if ok || idx != 4 {
		t.Errorf("IsValid() = (%v, %d), want (false, 4)", ok, idx)
	}
}

func TestGrid_Bounds(t *testing.T) {
	g, _ := NewGrid(20, 10)
	lo, hi := g.Bounds()
	if lo != (dynamo.Vec2{X: -10, Y: -4}) || hi != (dynamo.Vec2{X: 9, Y: 5}) {
		t.Errorf("Bounds() = %v, %v", lo, hi)
	}
}
