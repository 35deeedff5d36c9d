package metrics

import (
	"log/slog"
	"math"
	"sort"

	"github.com/san-kum/clothsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StrainStats describes relative length error |d - rest| / rest over all
// constraints at one step.
type StrainStats struct {
	Mean float64
	Std  float64
	P90  float64
	Max  float64
}

// LogValue implements slog.LogValuer for structured logging.
func (s StrainStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p90", s.P90),
		slog.Float64("max", s.Max),
	)
}

// ComputeStrain fills scratch with per-constraint strain and summarises it.
func ComputeStrain(ps []dynamo.Particle, cs []dynamo.Constraint, scratch []float64) (StrainStats, []float64) {
	if len(cs) == 0 {
		return StrainStats{}, scratch[:0]
	}
	if cap(scratch) < len(cs) {
		scratch = make([]float64, len(cs))
	}
	scratch = scratch[:len(cs)]

	for i, c := range cs {
		d := ps[c.A].Pos.Dist(ps[c.B].Pos)
		scratch[i] = math.Abs(d-c.Rest) / c.Rest
	}

	mean, std := stat.MeanStdDev(scratch, nil)
	if len(scratch) < 2 {
		std = 0
	}
	sort.Float64s(scratch)
	return StrainStats{
		Mean: mean,
		Std:  std,
		P90:  stat.Quantile(0.9, stat.Empirical, scratch, nil),
		Max:  floats.Max(scratch),
	}, scratch
}

// Strain tracks constraint strain across a run. Value is the mean strain
// averaged over observed steps.
type Strain struct {
	name    string
	scratch []float64
	last    StrainStats
	peak    float64
	sum     float64
	steps   int
	means   window
}

func NewStrain() *Strain {
	return &Strain{name: "strain", means: newWindow(HistoryLimit)}
}

func (s *Strain) Name() string { return s.name }

func (s *Strain) Observe(ps []dynamo.Particle, cs []dynamo.Constraint, t float64) {
	s.last, s.scratch = ComputeStrain(ps, cs, s.scratch)
	s.peak = math.Max(s.peak, s.last.Max)
	s.sum += s.last.Mean
	s.steps++
	s.means.push(s.last.Mean)
}

func (s *Strain) Value() float64 {
	if s.steps == 0 {
		return 0
	}
	return s.sum / float64(s.steps)
}

func (s *Strain) Last() StrainStats { return s.last }
func (s *Strain) Peak() float64     { return s.peak }

// History returns per-step mean strain for the last HistoryLimit steps,
// oldest first.
func (s *Strain) History() []float64 { return s.means.values() }

func (s *Strain) Reset() {
	s.last = StrainStats{}
	s.peak = 0
	s.sum = 0
	s.steps = 0
	s.means.reset()
}

// PeakStrain reports the largest single-constraint strain seen in a run.
type PeakStrain struct {
	*Strain
}

func NewPeakStrain(s *Strain) PeakStrain { return PeakStrain{s} }

func (p PeakStrain) Name() string   { return "peak_strain" }
func (p PeakStrain) Value() float64 { return p.Strain.Peak() }

// Observe is a no-op: the wrapped Strain is observed on its own.
func (p PeakStrain) Observe(ps []dynamo.Particle, cs []dynamo.Constraint, t float64) {}
func (p PeakStrain) Reset()                                                          {}
