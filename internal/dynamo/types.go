package dynamo

import "math"

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Len() float64         { return math.Sqrt(v.X*v.X + v.Y*v.Y) }
func (v Vec2) Dist(o Vec2) float64  { return v.Sub(o).Len() }
func (v Vec2) IsFinite() bool       { return isFinite(v.X) && isFinite(v.Y) }
func (v Vec2) Midpoint(o Vec2) Vec2 { return Vec2{(v.X + o.X) / 2, (v.Y + o.Y) / 2} }
func (v Vec2) ApproxEqual(o Vec2, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Particle is a point mass. Old is the position one step ago.
type Particle struct {
	Pos Vec2
	Old Vec2
}

// Velocity returns the implicit per-step displacement.
func (p Particle) Velocity() Vec2 { return p.Pos.Sub(p.Old) }

// Constraint keeps particles A and B at Rest distance apart.
type Constraint struct {
	A, B int
	Rest float64
}

// Pin forces particle Index to Pos, with zero velocity, every step.
type Pin struct {
	Index int
	Pos   Vec2
}

type SolverKind string

const (
	SolverGaussSeidel SolverKind = "gauss-seidel"
	SolverJacobi      SolverKind = "jacobi"
)

type Metric interface {
	Name() string
	Observe(ps []Particle, cs []Constraint, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, t float64, ps []Particle)
}

type Config struct {
	Width      int
	Height     int
	Gravity    float64
	Dt         float64
	Iterations int
	Relaxation float64
	Solver     SolverKind
	// Pins replaces the default top-corner anchors when non-nil.
	Pins          []Pin
	ValidateState bool
	// RecordEvery captures a frame every N steps during Run. Zero disables.
	RecordEvery int
}

func DefaultConfig() Config {
	return Config{
		Width:         20,
		Height:        10,
		Gravity:       0.001,
		Dt:            1.0,
		Iterations:    2,
		Relaxation:    0.51,
		Solver:        SolverGaussSeidel,
		ValidateState: true,
	}
}

// Frame is a captured copy of every particle position.
type Frame struct {
	Step      int
	Time      float64
	Positions []Vec2
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	StepsTaken int
	Skipped    int
	Errors     []error
}
