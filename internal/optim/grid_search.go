package optim

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

var ErrNoCandidate = errors.New("no parameter combination produced a stable run")

// Objective scores a finished run; lower is better.
type Objective func(cfg *config.Config, sum metrics.Summary) float64

// Evaluation is one grid point and its score.
type Evaluation struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// StrainObjective scores by mean strain at the end of the run. Unstable
// runs score +Inf.
func StrainObjective(_ *config.Config, sum metrics.Summary) float64 {
	if sum.Stability < 1 {
		return math.Inf(1)
	}
	return sum.Strain.Mean
}

// CostObjective trades strain against solver work: each relaxation pass
// adds weight to the score.
func CostObjective(weight float64) Objective {
	return func(cfg *config.Config, sum metrics.Summary) float64 {
		s := StrainObjective(cfg, sum)
		return s + weight*float64(cfg.Iterations)
	}
}

// Search runs base once for every combination of the grid and returns the
// best parameters, their score and every evaluation in visiting order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (map[string]float64, float64, []Evaluation, error) {
	if objective == nil {
		objective = StrainObjective
	}

	var evals []Evaluation
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &evals); err != nil {
		return nil, 0, evals, err
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	for _, e := range evals {
		if e.Err == nil && e.Score < best {
			best = e.Score
			bestParams = e.Params
		}
	}
	if bestParams == nil {
		return nil, best, evals, ErrNoCandidate
	}

	return bestParams, best, evals, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	objective Objective,
	evals *[]Evaluation,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		*evals = append(*evals, evaluate(ctx, base, current, objective))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, objective, evals); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, base *config.Config, params map[string]float64, objective Objective) Evaluation {
	e := Evaluation{Params: params, Score: math.Inf(1)}

	cfg := base.Clone()
	for k, v := range params {
		if err := cfg.Set(k, v); err != nil {
			e.Err = err
			return e
		}
	}
	if err := cfg.Validate(); err != nil {
		e.Err = err
		return e
	}

	s, set, err := sim.FromConfig(cfg)
	if err != nil {
		e.Err = err
		return e
	}
	result, err := s.Run(ctx, cfg.Steps)
	if err != nil {
		e.Err = err
		return e
	}
	if len(result.Errors) > 0 {
		e.Err = result.Errors[0]
		return e
	}

	e.Score = objective(cfg, set.Summary(s.StepCount(), s.Time()))
	return e
}
