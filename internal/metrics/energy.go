package metrics

import "github.com/san-kum/clothsim/internal/dynamo"

// KineticEnergy returns sum |pos - old|² / 2 for unit masses, in per-step
// velocity units.
func KineticEnergy(ps []dynamo.Particle) float64 {
	var e float64
	for _, p := range ps {
		v := p.Velocity()
		e += 0.5 * (v.X*v.X + v.Y*v.Y)
	}
	return e
}

type Energy struct {
	name    string
	samples int
	total   float64
	last    float64
	history window
}

func NewEnergy() *Energy {
	return &Energy{name: "kinetic_energy", history: newWindow(HistoryLimit)}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(ps []dynamo.Particle, cs []dynamo.Constraint, t float64) {
	e.last = KineticEnergy(ps)
	e.total += e.last
	e.samples++
	e.history.push(e.last)
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Last() float64      { return e.last }
func (e *Energy) History() []float64 { return e.history.values() }

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
	e.last = 0
	e.history.reset()
}
