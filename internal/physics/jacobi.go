package physics

import (
	"math"
	"sync/atomic"

	"github.com/san-kum/clothsim/internal/dynamo"
)

const jacobiMinChunk = 256

// JacobiSolver computes every correction of a pass from the positions at
// the start of that pass, then applies them all at once. Each particle sums
// the corrections of its own constraints, so workers never write the same
// particle.
//
// Each particle moves by the mean of its constraints' corrections rather
// than their sum. Summed corrections from one snapshot overshoot on the
// highest-frequency modes and grow without bound once a particle has more
// than one neighbour.
//
// The result differs from [Relax]: a pass here is softer, since no
// constraint sees another's correction until the next pass.
type JacobiSolver struct {
	incidence [][]int
	snapshot  []dynamo.Vec2
	ncs       int
}

func NewJacobiSolver() *JacobiSolver {
	return &JacobiSolver{}
}

func (s *JacobiSolver) prepare(g *Grid, cs []dynamo.Constraint) {
	if len(s.incidence) != g.Len() || s.ncs != len(cs) {
		s.incidence = Incidence(g.Len(), cs)
		s.ncs = len(cs)
	}
}

func (s *JacobiSolver) Relax(g *Grid, cs []dynamo.Constraint, iterations int, factor float64) RelaxStats {
	s.prepare(g, cs)

	var stats RelaxStats
	for it := 0; it < iterations; it++ {
		s.snapshot = g.Positions(s.snapshot)
		snap := s.snapshot

		var skipped int64
		dynamo.ParallelFor(g.Len(), jacobiMinChunk, func(start, end int) {
			var local int64
			for i := start; i < end; i++ {
				inc := s.incidence[i]
				if len(inc) == 0 {
					g.Particles[i].Pos = snap[i]
					continue
				}
				var acc dynamo.Vec2
				for _, ci := range inc {
					c := cs[ci]
					pa, pb := snap[c.A], snap[c.B]

					dx := pb.X - pa.X
					dy := pb.Y - pa.Y
					d := math.Sqrt(dx*dx + dy*dy)
					if d <= MinDistance {
						if i == c.A {
							local++
						}
						continue
					}

					difference := c.Rest - d
					t := dynamo.Vec2{
						X: (difference * dx / d) * factor,
						Y: (difference * dy / d) * factor,
					}
					if i == c.A {
						acc = acc.Sub(t)
					} else {
						acc = acc.Add(t)
					}
				}
				g.Particles[i].Pos = snap[i].Add(acc.Scale(1 / float64(len(inc))))
			}
			atomic.AddInt64(&skipped, local)
		})

		stats.Skipped += int(skipped)
		stats.Passes++
	}

	return stats
}
