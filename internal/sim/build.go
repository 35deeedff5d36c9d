package sim

import (
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/metrics"
)

// FromConfig builds a simulator from a file-level config and attaches the
// standard metric set, which is returned alongside it.
func FromConfig(c *config.Config, opts ...Option) (*Simulator, *metrics.Set, error) {
	sc, err := c.SimConfig()
	if err != nil {
		return nil, nil, err
	}

	if c.Damping > 0 {
		opts = append([]Option{WithIntegrator(integrators.NewDampedVerlet(c.Damping))}, opts...)
	}

	s, err := New(sc, opts...)
	if err != nil {
		return nil, nil, err
	}

	set := metrics.NewSet(c.Bound())
	for _, m := range set.Metrics() {
		s.AddMetric(m)
	}
	return s, set, nil
}
