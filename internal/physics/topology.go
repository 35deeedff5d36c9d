package physics

import "github.com/san-kum/clothsim/internal/dynamo"

// BuildConstraints derives the structural constraints of g: for each cell in
// row-major order, a vertical edge to the particle below and then a
// horizontal edge to the particle on the right.
//
// Diagonal shear edges are left out; they make the cloth too stiff.
func BuildConstraints(g *Grid) []dynamo.Constraint {
	cs := make([]dynamo.Constraint, 0, ConstraintCount(g.Width, g.Height))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			i := g.Index(x, y)
			if y+1 < g.Height {
				cs = append(cs, dynamo.Constraint{A: i, B: g.Index(x, y+1), Rest: 1})
			}
			if x+1 < g.Width {
				cs = append(cs, dynamo.Constraint{A: i, B: g.Index(x+1, y), Rest: 1})
			}
		}
	}

	return cs
}

// ConstraintCount is (w-1)*h + w*(h-1).
func ConstraintCount(w, h int) int {
	if w < 1 || h < 1 {
		return 0
	}
	return (w-1)*h + w*(h-1)
}

// Incidence lists, for each of n particles, the constraints touching it.
func Incidence(n int, cs []dynamo.Constraint) [][]int {
	inc := make([][]int, n)
	for ci, c := range cs {
		inc[c.A] = append(inc[c.A], ci)
		inc[c.B] = append(inc[c.B], ci)
	}
	return inc
}
