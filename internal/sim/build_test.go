package sim

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
)

func TestFromConfigAttachesMetrics(t *testing.T) {
	s, set, err := FromConfig(config.DefaultConfig())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	res, err := s.Run(testContext(t), 20)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"strain", "peak_strain", "kinetic_energy", "stability"} {
		if _, ok := res.Metrics[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
	if set.Stability.Value() != 1 {
		t.Errorf("expected a stable run, got %v", set.Stability.Value())
	}
	if len(s.Pins()) != 2 {
		t.Errorf("expected corner pins, got %d", len(s.Pins()))
	}
}

func TestFromConfigDamping(t *testing.T) {
	cfg := config.GetPreset("damped")
	s, _, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	v, ok := s.integrator.(*integrators.Verlet)
	if !ok || v.Damping != cfg.Damping {
		t.Errorf("expected damped verlet, got %#v", s.integrator)
	}
}

func TestFromConfigInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Relaxation = 2
	if _, _, err := FromConfig(cfg); err == nil {
		t.Error("expected error for out-of-range relaxation")
	}
}

func TestJacobiStaysBoundedOverLongRuns(t *testing.T) {
	cases := map[string]*config.Config{"jacobi preset": config.GetPreset("jacobi")}
	for _, it := range []int{1, 2, 4, 8} {
		cfg := config.DefaultConfig()
		cfg.Solver = string(dynamo.SolverJacobi)
		cfg.Iterations = it
		cases[fmt.Sprintf("reference/%d iterations", it)] = cfg
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			s, set, err := FromConfig(cfg)
			if err != nil {
				t.Fatalf("FromConfig: %v", err)
			}
			res, err := s.Run(testContext(t), 3000)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			for _, e := range res.Errors {
				if errors.Is(e, dynamo.ErrInvalidState) {
					t.Fatalf("diverged after %d steps: %v", res.StepsTaken, e)
				}
			}
			if res.StepsTaken != 3000 {
				t.Fatalf("stopped after %d steps", res.StepsTaken)
			}

			sum := set.Summary(s.StepCount(), s.Time())
			if sum.Stability != 1 {
				t.Errorf("stability %v, want 1", sum.Stability)
			}
			if sum.Strain.Mean > 0.5 || math.IsNaN(sum.Strain.Mean) {
				t.Errorf("mean strain %v is unbounded", sum.Strain.Mean)
			}
		})
	}
}
