package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
)

// Scenario is a scripted list of cloth runs.
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Runs        []ScenarioRun `yaml:"runs"`
}

// ScenarioRun starts from a preset and overrides individual values.
type ScenarioRun struct {
	Preset      string             `yaml:"preset"`
	Params      map[string]float64 `yaml:"params"`
	Solver      string             `yaml:"solver"`
	Pins        string             `yaml:"pins"`
	Steps       int                `yaml:"steps"`
	RecordEvery int                `yaml:"record_every"`
	SaveAs      string             `yaml:"save_as"`
}

// Outcome is what one scenario run produced.
type Outcome struct {
	Config  *config.Config
	Result  *dynamo.Result
	Summary metrics.Summary
	RunID   string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}

	return &scenario, nil
}

// Build resolves the run into a complete config.
func (r ScenarioRun) Build() (*config.Config, error) {
	name := r.Preset
	if name == "" {
		name = "reference"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	for k, v := range r.Params {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	if r.Solver != "" {
		cfg.Solver = r.Solver
	}
	if r.Pins != "" {
		cfg.Pins = config.PinsConfig{Mode: r.Pins}
	}
	if r.Steps > 0 {
		cfg.Steps = r.Steps
	}
	if r.RecordEvery > 0 {
		cfg.RecordEvery = r.RecordEvery
	}
	if r.SaveAs != "" {
		cfg.Name = r.SaveAs
	}

	return cfg, cfg.Validate()
}

// Runner executes scenarios and sweeps. Store may be nil, in which case
// nothing is written to disk.
type Runner struct {
	Logger *slog.Logger
	Store  *storage.Store
}

func (rn *Runner) logger() *slog.Logger {
	if rn.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return rn.Logger
}

// runOne builds and runs cfg for its configured number of steps.
func (rn *Runner) runOne(ctx context.Context, cfg *config.Config, prepare func(*sim.Simulator) error) (*Outcome, error) {
	s, set, err := sim.FromConfig(cfg, sim.WithLogger(rn.Logger))
	if err != nil {
		return nil, err
	}
	if prepare != nil {
		if err := prepare(s); err != nil {
			return nil, err
		}
	}

	result, err := s.Run(ctx, cfg.Steps)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Config:  cfg,
		Result:  result,
		Summary: set.Summary(s.StepCount(), s.Time()),
	}, nil
}

// RunScenario executes all runs in order. Runs with save_as are stored
// when the runner has a store.
func (rn *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]Outcome, error) {
	log := rn.logger().With("scenario", scenario.Name)
	outcomes := make([]Outcome, 0, len(scenario.Runs))

	for i, run := range scenario.Runs {
		cfg, err := run.Build()
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		log.Info("running", "run", i+1, "of", len(scenario.Runs), "preset", cfg.Name)
		out, err := rn.runOne(ctx, cfg, nil)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		if run.SaveAs != "" && rn.Store != nil {
			id, err := rn.Store.Save(cfg, out.Result)
			if err != nil {
				return outcomes, fmt.Errorf("run %d save: %w", i+1, err)
			}
			out.RunID = id
		}

		outcomes = append(outcomes, *out)
	}

	return outcomes, nil
}

// ParameterSweep varies one config parameter over evenly spaced values.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Summary    metrics.Summary
	Skipped    int
	Err        error
}

// RunSweep runs base once per value. A run that diverges is reported in
// its result rather than stopping the sweep.
func (rn *Runner) RunSweep(ctx context.Context, base *config.Config, sweep ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one point", dynamo.ErrParameterBounds)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.ParamMin + float64(i)*paramStep

		cfg := base.Clone()
		if err := cfg.Set(sweep.ParamName, val); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, val, err)
		}

		out, err := rn.runOne(ctx, cfg, nil)
		if err != nil {
			return results, err
		}

		res := SweepResult{ParamValue: val, Summary: out.Summary, Skipped: out.Result.Skipped}
		if len(out.Result.Errors) > 0 {
			res.Err = out.Result.Errors[0]
		}
		results = append(results, res)

		rn.logger().Debug("sweep point", "param", sweep.ParamName, "value", val, "summary", out.Summary)
	}

	return results, nil
}

// MonteCarloConfig displaces every unpinned particle of the starting
// lattice by up to Perturbation in each axis. Trials start at rest.
type MonteCarloConfig struct {
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID int
	Summary metrics.Summary
	Stable  bool
}

// RunMonteCarlo executes multiple trials with random perturbations
func (rn *Runner) RunMonteCarlo(ctx context.Context, base *config.Config, mc MonteCarloConfig) ([]MonteCarloResult, error) {
	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, mc.NumTrials)
	for trial := 0; trial < mc.NumTrials; trial++ {
		out, err := rn.runOne(ctx, base, func(s *sim.Simulator) error {
			return perturb(s, rng, mc.Perturbation)
		})
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			TrialID: trial,
			Summary: out.Summary,
			Stable:  len(out.Result.Errors) == 0 && out.Summary.Stability == 1,
		})

		if (trial+1)%10 == 0 {
			rn.logger().Info("monte carlo progress", "done", trial+1, "of", mc.NumTrials)
		}
	}

	return results, nil
}

// perturb displaces the free particles of s uniformly in [-amount, amount].
func perturb(s *sim.Simulator, rng *rand.Rand, amount float64) error {
	pinned := make(map[int]bool, len(s.Pins()))
	for _, p := range s.Pins() {
		pinned[p.Index] = true
	}
	for i := 0; i < s.Grid().Len(); i++ {
		if pinned[i] {
			continue
		}
		dx := (rng.Float64() - 0.5) * 2 * amount
		dy := (rng.Float64() - 0.5) * 2 * amount
		if err := s.Displace(i, dx, dy); err != nil {
			return err
		}
	}
	return nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
