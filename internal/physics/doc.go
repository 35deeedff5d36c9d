// Package physics holds the cloth's particle grid and the operations that
// act on it directly:
//
//   - [NewGrid]: rest lattice of W*H particles, row-major
//   - [BuildConstraints]: structural distance constraints from grid adjacency
//   - [Relax]: sequential Gauss-Seidel projection of all constraints
//   - [JacobiSolver]: double-buffered parallel variant of Relax
//   - [ApplyPins]: rigid anchors
//
// Integration lives in package integrators; stepping order is owned by
// package sim.
//
// # Coordinates
//
// The grid is stored screen-style (row 0 at the top) and placed in world
// space with y up, centred on the origin:
//
//	particle(x, y) = (x - W/2, H/2 - y)
//
// Neighbouring particles are one unit apart, so every constraint has rest
// length 1.
package physics
