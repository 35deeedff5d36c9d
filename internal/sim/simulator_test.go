package sim

import (
	"errors"
	"testing"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

type countingMetric struct {
	count int
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(ps []dynamo.Particle, cs []dynamo.Constraint, t float64) {
	c.count++
}
func (c *countingMetric) Value() float64 { return float64(c.count) }
func (c *countingMetric) Reset()         { c.count = 0 }

type stepRecorder struct {
	steps []int
}

func (r *stepRecorder) OnStep(step int, t float64, ps []dynamo.Particle) {
	r.steps = append(r.steps, step)
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	s, err := New(dynamo.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	m := &countingMetric{}
	r := &stepRecorder{}
	s.AddMetric(m)
	s.AddObserver(r)

	res, err := s.Run(testContext(t), 10)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if res.Metrics["count"] != 10 {
		t.Errorf("metric saw %v steps, want 10", res.Metrics["count"])
	}
	if len(r.steps) != 10 || r.steps[9] != 10 {
		t.Errorf("observer steps = %v", r.steps)
	}
	if s.Time() != 10 {
		t.Errorf("Time() = %v, want 10", s.Time())
	}
}

func TestSimulatorReset(t *testing.T) {
	s, _ := New(dynamo.DefaultConfig())
	for i := 0; i < 20; i++ {
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	s.Reset()

	if s.StepCount() != 0 || s.Time() != 0 {
		t.Errorf("Reset left step=%d t=%v", s.StepCount(), s.Time())
	}
	g := s.Grid()
	for i, p := range g.Particles {
		x, y := g.Coord(i)
		if p.Pos != g.RestPosition(x, y) || p.Old != p.Pos {
			t.Fatalf("particle %d not at rest after Reset", i)
		}
	}
}

func TestSimulatorNudge(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.Gravity = 0
	s, _ := New(cfg)

	i := s.Grid().Index(10, 9)
	if err := s.Nudge(i, 0.1, 0); err != nil {
		t.Fatal(err)
	}
	if v := s.Grid().Particles[i].Velocity(); v.X != 0.1 {
		t.Errorf("velocity after nudge = %v", v)
	}
	for _, idx := range []int{-1, s.Grid().Len()} {
		err := s.Nudge(idx, 0, 0)
		if !errors.Is(err, dynamo.ErrParticleOutOfRange) || errors.Is(err, dynamo.ErrPinOutOfRange) {
			t.Errorf("Nudge(%d): expected ErrParticleOutOfRange, got %v", idx, err)
		}
	}
}

func TestSimulatorParams(t *testing.T) {
	s, _ := New(dynamo.DefaultConfig())

	params := s.GetParams()
	if params["relaxation"] != 0.51 || params["iterations"] != 2 {
		t.Errorf("unexpected params %v", params)
	}

	if err := s.SetParam("iterations", 6); err != nil {
		t.Fatal(err)
	}
	if s.Config().Iterations != 6 {
		t.Errorf("iterations = %d, want 6", s.Config().Iterations)
	}

	if err := s.SetParam("relaxation", 2); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if s.Config().Relaxation != 0.51 {
		t.Error("rejected parameter was applied")
	}
	if err := s.SetParam("wind", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestRunNegativeSteps(t *testing.T) {
	s, _ := New(dynamo.DefaultConfig())
	if _, err := s.Run(testContext(t), -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	s, _ := New(dynamo.DefaultConfig())
	calls := 0
	err := s.RunWithCallback(testContext(t), 0, func(step int, _ float64, _ *physics.Grid) bool {
		calls++
		return step < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("callback called %d times, want 5", calls)
	}
}
