package physics

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Grid owns every particle of the cloth. Particle (x, y) is stored at
// y*Width + x for the whole lifetime of the grid.
type Grid struct {
	Width     int
	Height    int
	Particles []dynamo.Particle
}

// NewGrid places width*height particles on the rest lattice with zero
// velocity.
func NewGrid(width, height int) (*Grid, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", dynamo.ErrInvalidDimensions, width, height)
	}

	g := &Grid{
		Width:     width,
		Height:    height,
		Particles: make([]dynamo.Particle, width*height),
	}
	g.Reset()
	return g, nil
}

func (g *Grid) Len() int { return len(g.Particles) }

func (g *Grid) Index(x, y int) int { return y*g.Width + x }

func (g *Grid) Coord(i int) (x, y int) { return i % g.Width, i / g.Width }

func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// RestPosition returns the undeformed world position of particle (x, y).
func (g *Grid) RestPosition(x, y int) dynamo.Vec2 {
	return dynamo.Vec2{
		X: float64(x) - float64(g.Width)/2,
		Y: float64(g.Height)/2 - float64(y),
	}
}

// Reset puts every particle back on the rest lattice, at rest.
func (g *Grid) Reset() {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := g.RestPosition(x, y)
			g.Particles[g.Index(x, y)] = dynamo.Particle{Pos: p, Old: p}
		}
	}
}

func (g *Grid) Clone() *Grid {
	c := &Grid{
		Width:     g.Width,
		Height:    g.Height,
		Particles: make([]dynamo.Particle, len(g.Particles)),
	}
	copy(c.Particles, g.Particles)
	return c
}

// Positions copies current positions into dst, growing it if needed.
func (g *Grid) Positions(dst []dynamo.Vec2) []dynamo.Vec2 {
	if cap(dst) < len(g.Particles) {
		dst = make([]dynamo.Vec2, len(g.Particles))
	}
	dst = dst[:len(g.Particles)]
	for i, p := range g.Particles {
		dst[i] = p.Pos
	}
	return dst
}

// IsValid reports whether every position is finite. It returns the first
// offending index otherwise.
func (g *Grid) IsValid() (bool, int) {
	for i, p := range g.Particles {
		if !p.Pos.IsFinite() || !p.Old.IsFinite() {
			return false, i
		}
	}
	return true, -1
}

// Bounds returns the axis-aligned box around current positions.
func (g *Grid) Bounds() (lo, hi dynamo.Vec2) {
	if len(g.Particles) == 0 {
		return
	}
	lo, hi = g.Particles[0].Pos, g.Particles[0].Pos
	for _, p := range g.Particles[1:] {
		if p.Pos.X < lo.X {
			lo.X = p.Pos.X
		}
		if p.Pos.Y < lo.Y {
			lo.Y = p.Pos.Y
		}
		if p.Pos.X > hi.X {
			hi.X = p.Pos.X
		}
		if p.Pos.Y > hi.Y {
			hi.Y = p.Pos.Y
		}
	}
	return
}
