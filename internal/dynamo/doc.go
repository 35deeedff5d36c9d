// Package dynamo provides the core types shared by the cloth simulator.
//
// The package defines the data model every other package works on:
//
//   - [Vec2]: 2D world-space vector (y up)
//   - [Particle]: point mass stored as current and previous position
//   - [Constraint]: distance constraint between two particle indices
//   - [Pin]: particle index forced to a fixed coordinate every step
//   - [Config]: fixed simulation parameters
//   - [Metric], [Observer]: per-step hooks used by the simulator
//
// Particle velocity is never stored. It is implied by Pos - Old, as in any
// position-based Verlet scheme.
//
// # Example
//
//	s, _ := sim.New(dynamo.DefaultConfig())
//	for i := 0; i < 600; i++ {
//	    s.Step()
//	}
//
// # Thread Safety
//
// A simulator and the particles it owns must be stepped from one goroutine.
// Parallel work inside a step is partitioned with [ParallelFor] so that no
// two workers write the same particle.
package dynamo
