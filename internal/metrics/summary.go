package metrics

import (
	"log/slog"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Set is the standard collection attached to a run.
type Set struct {
	Strain    *Strain
	Energy    *Energy
	Stability *Stability
}

func NewSet(stabilityBound float64) *Set {
	return &Set{
		Strain:    NewStrain(),
		Energy:    NewEnergy(),
		Stability: NewStability(stabilityBound),
	}
}

// Metrics lists everything a simulator should observe.
func (s *Set) Metrics() []dynamo.Metric {
	return []dynamo.Metric{s.Strain, NewPeakStrain(s.Strain), s.Energy, s.Stability}
}

// Summary is a point-in-time view of a Set.
type Summary struct {
	Steps     int
	Time      float64
	Strain    StrainStats
	Peak      float64
	Kinetic   float64
	Stability float64
}

func (s *Set) Summary(steps int, t float64) Summary {
	return Summary{
		Steps:     steps,
		Time:      t,
		Strain:    s.Strain.Last(),
		Peak:      s.Strain.Peak(),
		Kinetic:   s.Energy.Last(),
		Stability: s.Stability.Value(),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("steps", s.Steps),
		slog.Float64("time", s.Time),
		slog.Any("strain", s.Strain),
		slog.Float64("peak_strain", s.Peak),
		slog.Float64("kinetic", s.Kinetic),
		slog.Float64("stability", s.Stability),
	)
}
