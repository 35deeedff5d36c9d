package integrators

import (
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

// Particles per worker below which Step stays on the calling goroutine.
const parallelMinChunk = 2048

// Verlet advances particles by position Verlet. Velocity is never stored;
// it is whatever Pos - Old was after the previous step.
type Verlet struct {
	// Damping removes this fraction of the implicit velocity each step.
	// Zero keeps the undamped scheme.
	Damping float64
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func NewDampedVerlet(damping float64) *Verlet {
	return &Verlet{Damping: damping}
}

// Step moves every particle once. Gravity is folded into the position
// first, so the displacement of this step already carries it:
//
//	pos.y -= gravity * dt²
//	pos, old = pos + (pos - old), pos
//
// With dt = 1 gravity is a plain per-step decrement. Call once per step.
func (v *Verlet) Step(g *physics.Grid, gravity, dt float64) {
	drop := gravity * dt * dt
	keep := 1 - v.Damping
	ps := g.Particles

	dynamo.ParallelFor(len(ps), parallelMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			p := &ps[i]
			p.Pos.Y -= drop

			cur := p.Pos
			if keep == 1 {
				p.Pos.X += p.Pos.X - p.Old.X
				p.Pos.Y += p.Pos.Y - p.Old.Y
			} else {
				p.Pos.X += (p.Pos.X - p.Old.X) * keep
				p.Pos.Y += (p.Pos.Y - p.Old.Y) * keep
			}
			p.Old = cur
		}
	})
}
