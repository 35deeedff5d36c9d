package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/physics"
)

type Integrator interface {
	Step(g *physics.Grid, gravity, dt float64)
}

// Simulator owns one cloth: its grid, constraint list and pins. Every phase
// of a step works on that state and nothing else.
type Simulator struct {
	cfg         dynamo.Config
	grid        *physics.Grid
	constraints []dynamo.Constraint
	pins        []dynamo.Pin
	integrator  Integrator
	solver      physics.Solver
	sink        mesh.Sink
	metrics     []dynamo.Metric
	observers   []dynamo.Observer
	logger      *slog.Logger

	step    int
	t       float64
	skipped int
}

type Option func(*Simulator)

func WithIntegrator(i Integrator) Option      { return func(s *Simulator) { s.integrator = i } }
func WithSolver(solver physics.Solver) Option { return func(s *Simulator) { s.solver = solver } }
func WithSink(sink mesh.Sink) Option          { return func(s *Simulator) { s.sink = sink } }

// WithLogger routes step diagnostics to l. A nil logger keeps the default
// discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(cfg dynamo.Config, opts ...Option) (*Simulator, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	grid, err := physics.NewGrid(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	pins := cfg.Pins
	if pins == nil {
		pins = physics.CornerPins(grid)
	}
	if err := physics.ValidatePins(grid, pins); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:         cfg,
		grid:        grid,
		constraints: physics.BuildConstraints(grid),
		pins:        append([]dynamo.Pin(nil), pins...),
		integrator:  integrators.NewVerlet(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	switch cfg.Solver {
	case dynamo.SolverJacobi:
		s.solver = physics.NewJacobiSolver()
	default:
		s.solver = physics.GaussSeidel{}
	}

	for _, o := range opts {
		o(s)
	}

	if s.sink != nil {
		if err := mesh.Sync(s.grid, s.sink); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func validateConfig(cfg dynamo.Config) error {
	if cfg.Width < 1 || cfg.Height < 1 {
		return fmt.Errorf("%w: got %dx%d", dynamo.ErrInvalidDimensions, cfg.Width, cfg.Height)
	}
	if cfg.Dt <= 0 || math.IsInf(cfg.Dt, 0) || math.IsNaN(cfg.Dt) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if math.IsNaN(cfg.Gravity) || math.IsInf(cfg.Gravity, 0) {
		return fmt.Errorf("%w: gravity must be finite", dynamo.ErrParameterBounds)
	}
	if cfg.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative, got %d", dynamo.ErrParameterBounds, cfg.Iterations)
	}
	if cfg.Relaxation <= 0 || cfg.Relaxation > 1 {
		return fmt.Errorf("%w: relaxation must be in (0, 1], got %f", dynamo.ErrParameterBounds, cfg.Relaxation)
	}
	switch cfg.Solver {
	case "", dynamo.SolverGaussSeidel, dynamo.SolverJacobi:
	default:
		return fmt.Errorf("%w: unknown solver %q", dynamo.ErrParameterBounds, cfg.Solver)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must be non-negative", dynamo.ErrParameterBounds)
	}
	return nil
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Step advances the cloth by one fixed step:
// integrate, pin, relax, pin, export.
func (s *Simulator) Step() error {
	s.integrator.Step(s.grid, s.cfg.Gravity, s.cfg.Dt)

	if err := physics.ApplyPins(s.grid, s.pins); err != nil {
		return err
	}

	stats := s.solver.Relax(s.grid, s.constraints, s.cfg.Iterations, s.cfg.Relaxation)

	// the last pass drags anchors slightly; put them back before export
	if err := physics.ApplyPins(s.grid, s.pins); err != nil {
		return err
	}

	s.step++
	s.t += s.cfg.Dt

	if stats.Skipped > 0 {
		s.skipped += stats.Skipped
		s.logger.Debug("skipped degenerate constraints", "step", s.step, "count", stats.Skipped)
	}

	if s.cfg.ValidateState {
		if ok, idx := s.grid.IsValid(); !ok {
			s.logger.Warn("cloth state diverged", "step", s.step, "particle", idx)
			return &dynamo.SimulationError{
				Step:    s.step,
				Time:    s.t,
				Wrapped: fmt.Errorf("%w: particle %d", dynamo.ErrInvalidState, idx),
			}
		}
	}

	if s.sink != nil {
		if err := mesh.Sync(s.grid, s.sink); err != nil {
			return err
		}
	}

	for _, m := range s.metrics {
		m.Observe(s.grid.Particles, s.constraints, s.t)
	}
	for _, o := range s.observers {
		o.OnStep(s.step, s.t, s.grid.Particles)
	}

	return nil
}

// Run performs steps fixed steps and collects metrics and, when
// Config.RecordEvery is set, frames. A step that leaves the cloth in an
// invalid state ends the run; the error is kept in Result.Errors.
func (s *Simulator) Run(ctx context.Context, steps int) (*dynamo.Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("%w: steps must be non-negative, got %d", dynamo.ErrParameterBounds, steps)
	}

	result := &dynamo.Result{
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	if s.cfg.RecordEvery > 0 {
		result.Frames = make([]dynamo.Frame, 0, steps/s.cfg.RecordEvery+1)
		result.Frames = append(result.Frames, s.frame())
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	skippedBefore := s.skipped

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++

		if s.cfg.RecordEvery > 0 && s.step%s.cfg.RecordEvery == 0 {
			result.Frames = append(result.Frames, s.frame())
		}
	}

	result.Skipped = s.skipped - skippedBefore
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps until callback returns false, ctx is done, or
// steps have been taken. steps <= 0 means no limit.
func (s *Simulator) RunWithCallback(ctx context.Context, steps int, callback func(step int, t float64, g *physics.Grid) bool) error {
	for i := 0; steps <= 0 || i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.Step(); err != nil {
			return err
		}
		if !callback(s.step, s.t, s.grid) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) frame() dynamo.Frame {
	return dynamo.Frame{Step: s.step, Time: s.t, Positions: s.grid.Positions(nil)}
}

// Reset returns the cloth to its rest lattice and rewinds time.
func (s *Simulator) Reset() {
	s.grid.Reset()
	s.step = 0
	s.t = 0
	s.skipped = 0
	for _, m := range s.metrics {
		m.Reset()
	}
	if s.sink != nil {
		_ = mesh.Sync(s.grid, s.sink)
	}
}

// Nudge displaces particle i without moving its previous position, which
// gives it velocity (dx, dy) for the next step. Pins win on the next step.
func (s *Simulator) Nudge(i int, dx, dy float64) error {
	if i < 0 || i >= s.grid.Len() {
		return fmt.Errorf("%w: %d (grid has %d particles)", dynamo.ErrParticleOutOfRange, i, s.grid.Len())
	}
	s.grid.Particles[i].Pos.X += dx
	s.grid.Particles[i].Pos.Y += dy
	return nil
}

// Displace moves particle i and its previous position together, so it
// changes shape without adding velocity.
func (s *Simulator) Displace(i int, dx, dy float64) error {
	if i < 0 || i >= s.grid.Len() {
		return fmt.Errorf("%w: %d (grid has %d particles)", dynamo.ErrParticleOutOfRange, i, s.grid.Len())
	}
	d := dynamo.Vec2{X: dx, Y: dy}
	p := &s.grid.Particles[i]
	p.Pos = p.Pos.Add(d)
	p.Old = p.Old.Add(d)
	return nil
}

// Gust nudges every particle of row y sideways.
func (s *Simulator) Gust(y int, dx float64) {
	if y < 0 || y >= s.grid.Height {
		return
	}
	for x := 0; x < s.grid.Width; x++ {
		s.grid.Particles[s.grid.Index(x, y)].Pos.X += dx
	}
}

func (s *Simulator) GetParams() map[string]float64 {
	return map[string]float64{
		"gravity":    s.cfg.Gravity,
		"iterations": float64(s.cfg.Iterations),
		"relaxation": s.cfg.Relaxation,
	}
}

func (s *Simulator) SetParam(name string, value float64) error {
	next := s.cfg
	switch name {
	case "gravity":
		next.Gravity = value
	case "iterations":
		next.Iterations = int(math.Round(value))
	case "relaxation":
		next.Relaxation = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	if err := validateConfig(next); err != nil {
		return err
	}
	s.cfg = next
	return nil
}

func (s *Simulator) Grid() *physics.Grid              { return s.grid }
func (s *Simulator) Constraints() []dynamo.Constraint { return s.constraints }
func (s *Simulator) Pins() []dynamo.Pin               { return s.pins }
func (s *Simulator) Config() dynamo.Config            { return s.cfg }
func (s *Simulator) StepCount() int                   { return s.step }
func (s *Simulator) Time() float64                    { return s.t }
func (s *Simulator) Skipped() int                     { return s.skipped }
