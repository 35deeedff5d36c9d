package physics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	// DefaultRelaxation is the share of the length error each endpoint
	// takes per correction. Slightly above 0.5 so repeated passes settle
	// faster; lowering it to 0.5 noticeably softens the cloth.
	DefaultRelaxation = 0.51

	DefaultIterations = 2

	// MinDistance is the separation at or below which a constraint has no
	// usable direction and is skipped for the pass.
	MinDistance = 1e-12
)

// RelaxStats reports what a solver call did.
type RelaxStats struct {
	Passes  int
	Skipped int
}

// Solver relaxes a constraint list against a grid.
type Solver interface {
	Relax(g *Grid, cs []dynamo.Constraint, iterations int, factor float64) RelaxStats
}

// GaussSeidel is the sequential solver; see [Relax].
type GaussSeidel struct{}

func (GaussSeidel) Relax(g *Grid, cs []dynamo.Constraint, iterations int, factor float64) RelaxStats {
	return Relax(g, cs, iterations, factor)
}

// Relax runs iterations passes over cs in list order. Each constraint moves
// its two endpoints by equal and opposite amounts toward the rest length,
// and later constraints in the same pass see those updated positions.
//
// Coincident endpoints are skipped and counted in RelaxStats.Skipped.
func Relax(g *Grid, cs []dynamo.Constraint, iterations int, factor float64) RelaxStats {
	var stats RelaxStats
	ps := g.Particles

	for it := 0; it < iterations; it++ {
		for _, c := range cs {
			if !relaxOne(ps, c, factor) {
				stats.Skipped++
			}
		}
		stats.Passes++
	}

	return stats
}

func relaxOne(ps []dynamo.Particle, c dynamo.Constraint, factor float64) bool {
	a := &ps[c.A]
	b := &ps[c.B]

	dx := b.Pos.X - a.Pos.X
	dy := b.Pos.Y - a.Pos.Y
	d := math.Sqrt(dx*dx + dy*dy)
	if d <= MinDistance {
		return false
	}

	difference := c.Rest - d
	tx := (difference * dx / d) * factor
	ty := (difference * dy / d) * factor

	a.Pos.X -= tx
	a.Pos.Y -= ty
	b.Pos.X += tx
	b.Pos.Y += ty
	return true
}
