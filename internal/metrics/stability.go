package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Stability tracks whether the cloth stayed bounded. A step is unstable
// if any particle is non-finite or farther than bound from the origin on
// either axis.
type Stability struct {
	bound float64

	steps     int
	unstable  int
	nonFinite int
	firstBad  float64
	excursion float64
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound, firstBad: -1}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(ps []dynamo.Particle, _ []dynamo.Constraint, t float64) {
	s.steps++

	bad := false
	for _, p := range ps {
		if !p.Pos.IsFinite() {
			s.nonFinite++
			bad = true
			continue
		}
		r := max(math.Abs(p.Pos.X), math.Abs(p.Pos.Y))
		s.excursion = max(s.excursion, r)
		if r > s.bound {
			bad = true
		}
	}

	if bad {
		s.unstable++
		if s.firstBad < 0 {
			s.firstBad = t
		}
	}
}

// Value is the fraction of observed steps that were stable, 1 before
// anything is observed.
func (s *Stability) Value() float64 {
	if s.steps == 0 {
		return 1
	}
	return 1 - float64(s.unstable)/float64(s.steps)
}

// FirstFailure reports the time of the first unstable step.
func (s *Stability) FirstFailure() (float64, bool) {
	return s.firstBad, s.firstBad >= 0
}

// MaxExcursion is the largest finite coordinate magnitude seen.
func (s *Stability) MaxExcursion() float64 { return s.excursion }

// NonFinite counts particle observations with a NaN or Inf coordinate.
func (s *Stability) NonFinite() int { return s.nonFinite }

func (s *Stability) Reset() {
	*s = Stability{bound: s.bound, firstBad: -1}
}
