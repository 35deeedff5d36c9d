package physics

import (
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
)

func pair(a, b dynamo.Vec2) *Grid {
	return &Grid{
		Width:  2,
		Height: 1,
		Particles: []dynamo.Particle{
			{Pos: a, Old: a},
			{Pos: b, Old: b},
		},
	}
}

var solvers = []struct {
	name   string
	solver Solver
}{
	{"gauss-seidel", GaussSeidel{}},
	{"jacobi", NewJacobiSolver()},
}

func TestRelax_MidpointInvariant(t *testing.T) {
	cases := []struct {
		name string
		a, b dynamo.Vec2
	}{
		{"stretched", dynamo.Vec2{X: 0, Y: 0}, dynamo.Vec2{X: 3, Y: 0}},
		{"compressed", dynamo.Vec2{X: 1, Y: 1}, dynamo.Vec2{X: 1.2, Y: 1.3}},
		{"diagonal", dynamo.Vec2{X: -2, Y: 5}, dynamo.Vec2{X: 4, Y: -1}},
	}

	for _, s := range solvers {
		for _, tc := range cases {
			t.Run(s.name+"/"+tc.name, func(t *testing.T) {
				g := pair(tc.a, tc.b)
				cs := []dynamo.Constraint{{A: 0, B: 1, Rest: 1}}
				before := tc.a.Midpoint(tc.b)

				s.solver.Relax(g, cs, 3, DefaultRelaxation)

				after := g.Particles[0].Pos.Midpoint(g.Particles[1].Pos)
				if !after.ApproxEqual(before, 1e-12) {
					t.Errorf("midpoint moved from %v to %v", before, after)
				}
			})
		}
	}
}

func TestRelax_SingleCorrection(t *testing.T) {
	g := pair(dynamo.Vec2{X: 0, Y: 0}, dynamo.Vec2{X: 3, Y: 0})
	cs := []dynamo.Constraint{{A: 0, B: 1, Rest: 1}}

	Relax(g, cs, 1, DefaultRelaxation)

	// error is -2, each end moves 2*0.51 inward
	if math.Abs(g.Particles[0].Pos.X-1.02) > 1e-12 {
		t.Errorf("A.x = %v, want 1.02", g.Particles[0].Pos.X)
	}
	if math.Abs(g.Particles[1].Pos.X-1.98) > 1e-12 {
		t.Errorf("B.x = %v, want 1.98", g.Particles[1].Pos.X)
	}
	if g.Particles[0].Old.X != 0 {
		t.Error("relaxation must not touch previous positions")
	}
}

func TestRelax_ConvergesTowardRest(t *testing.T) {
	g := pair(dynamo.Vec2{X: 0, Y: 0}, dynamo.Vec2{X: 0, Y: 2.5})
	cs := []dynamo.Constraint{{A: 0, B: 1, Rest: 1}}

	prevErr := math.Abs(g.Particles[0].Pos.Dist(g.Particles[1].Pos) - 1)
	for i := 0; i < 5; i++ {
		Relax(g, cs, 1, DefaultRelaxation)
		e := math.Abs(g.Particles[0].Pos.Dist(g.Particles[1].Pos) - 1)
		if e >= prevErr {
			t.Fatalf("pass %d: error %v did not shrink from %v", i, e, prevErr)
		}
		prevErr = e
	}
	if prevErr > 1e-6 {
		t.Errorf("residual %v after 5 passes", prevErr)
	}
}

func TestRelax_DegeneratePairSkipped(t *testing.T) {
	for _, s := range solvers {
		t.Run(s.name, func(t *testing.T) {
			p := dynamo.Vec2{X: 0.5, Y: 0.5}
			g := pair(p, p)
			cs := []dynamo.Constraint{{A: 0, B: 1, Rest: 1}}

			stats := s.solver.Relax(g, cs, 2, DefaultRelaxation)

			if stats.Skipped != 2 {
				t.Errorf("Skipped = %d, want 2", stats.Skipped)
			}
			if stats.Passes != 2 {
				t.Errorf("Passes = %d, want 2", stats.Passes)
			}
			if ok, _ := g.IsValid(); !ok {
				t.Fatal("degenerate pair produced non-finite positions")
			}
			if g.Particles[0].Pos != p || g.Particles[1].Pos != p {
				t.Error("skipped constraint moved its particles")
			}
		})
	}
}

func TestRelax_RestClothUnchanged(t *testing.T) {
	for _, s := range solvers {
		t.Run(s.name, func(t *testing.T) {
			g, _ := NewGrid(20, 10)
			want := g.Clone()
			cs := BuildConstraints(g)

			s.solver.Relax(g, cs, DefaultIterations, DefaultRelaxation)

			for i := range g.Particles {
				if !g.Particles[i].Pos.ApproxEqual(want.Particles[i].Pos, 1e-12) {
					t.Fatalf("particle %d moved from %v to %v", i, want.Particles[i].Pos, g.Particles[i].Pos)
				}
			}
		})
	}
}

func TestJacobi_ReducesStrain(t *testing.T) {
	g, _ := NewGrid(16, 16)
	cs := BuildConstraints(g)
	for i := range g.Particles {
		g.Particles[i].Pos = g.Particles[i].Pos.Scale(1.3)
	}

	strain := func() float64 {
		var sum float64
		for _, c := range cs {
			sum += math.Abs(g.Particles[c.A].Pos.Dist(g.Particles[c.B].Pos) - c.Rest)
		}
		return sum
	}

	before := strain()
	NewJacobiSolver().Relax(g, cs, 4, DefaultRelaxation)
	after := strain()

	if after >= before {
		t.Errorf("strain went from %v to %v", before, after)
	}
}

func TestJacobi_DampsCheckerboard(t *testing.T) {
	g, _ := NewGrid(16, 16)
	cs := BuildConstraints(g)
	for i := range g.Particles {
		x, y := g.Coord(i)
		if (x+y)%2 == 0 {
			g.Particles[i].Pos.X += 0.05
		} else {
			g.Particles[i].Pos.X -= 0.05
		}
	}

	worst := func() float64 {
		var m float64
		for _, c := range cs {
			m = max(m, math.Abs(g.Particles[c.A].Pos.Dist(g.Particles[c.B].Pos)-c.Rest))
		}
		return m
	}

	before := worst()
	NewJacobiSolver().Relax(g, cs, 200, DefaultRelaxation)
	after := worst()

	if ok, _ := g.IsValid(); !ok {
		t.Fatal("positions went non-finite")
	}
	if after > before/10 {
		t.Errorf("max strain went from %v to %v, want at least a tenfold drop", before, after)
	}
}
