package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidDimensions indicates a grid width or height below 1.
	ErrInvalidDimensions = errors.New("dynamo: grid dimensions must be at least 1x1")

	// ErrPinOutOfRange indicates a pin that does not address a grid particle.
	ErrPinOutOfRange = errors.New("dynamo: pin index out of range")

	// ErrParticleOutOfRange indicates a particle index outside the grid.
	ErrParticleOutOfRange = errors.New("dynamo: particle index out of range")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidState indicates a particle position became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrSinkTooSmall indicates a mesh sink with fewer vertices than particles.
	ErrSinkTooSmall = errors.New("dynamo: mesh sink smaller than particle count")
)

// SimulationError wraps an error with the step it was detected on.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
