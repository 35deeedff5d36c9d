package sim

import "time"

const DefaultMaxStepsPerFrame = 8

// Clock converts variable wall-clock frame intervals into a whole number of
// fixed simulation steps, so the cloth behaves the same at 30Hz or 144Hz.
// Leftover time carries into the next frame.
type Clock struct {
	StepDuration time.Duration
	// MaxStepsPerFrame caps catch-up after a stall; the backlog beyond it
	// is dropped.
	MaxStepsPerFrame int

	acc time.Duration
}

func NewClock(stepDuration time.Duration) *Clock {
	return &Clock{StepDuration: stepDuration, MaxStepsPerFrame: DefaultMaxStepsPerFrame}
}

// Advance adds elapsed and returns how many steps are due.
func (c *Clock) Advance(elapsed time.Duration) int {
	if c.StepDuration <= 0 || elapsed < 0 {
		return 0
	}
	c.acc += elapsed

	n := int(c.acc / c.StepDuration)
	if c.MaxStepsPerFrame > 0 && n > c.MaxStepsPerFrame {
		c.acc = 0
		return c.MaxStepsPerFrame
	}
	c.acc -= time.Duration(n) * c.StepDuration
	return n
}

// Drive advances the clock and runs the due steps on s.
func (c *Clock) Drive(s *Simulator, elapsed time.Duration) (int, error) {
	n := c.Advance(elapsed)
	for i := 0; i < n; i++ {
		if err := s.Step(); err != nil {
			return i, err
		}
	}
	return n, nil
}
