package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/physics"
	"github.com/san-kum/clothsim/internal/sim"
)

func newSim(mutate func(*dynamo.Config), opts ...sim.Option) *sim.Simulator {
	cfg := dynamo.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := sim.New(cfg, opts...)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func maxStrain(s *sim.Simulator) float64 {
	ps := s.Grid().Particles
	var worst float64
	for _, c := range s.Constraints() {
		e := math.Abs(ps[c.A].Pos.Dist(ps[c.B].Pos) - c.Rest)
		worst = math.Max(worst, e)
	}
	return worst
}

func meanY(s *sim.Simulator) float64 {
	var sum float64
	for _, p := range s.Grid().Particles {
		sum += p.Pos.Y
	}
	return sum / float64(s.Grid().Len())
}

var _ = Describe("Cloth simulation", func() {
	Context("at rest without gravity", func() {
		It("keeps every constraint at its rest length", func() {
			s := newSim(func(c *dynamo.Config) { c.Gravity = 0 })

			for i := 0; i < 10; i++ {
				Expect(s.Step()).To(Succeed())
			}
			Expect(maxStrain(s)).To(BeNumerically("<", 1e-9))
		})
	})

	Context("under gravity with no pins", func() {
		It("lowers every particle each step", func() {
			s := newSim(func(c *dynamo.Config) { c.Pins = []dynamo.Pin{} })
			prev := s.Grid().Positions(nil)

			for step := 0; step < 30; step++ {
				Expect(s.Step()).To(Succeed())
				for i, p := range s.Grid().Particles {
					Expect(p.Pos.Y).To(BeNumerically("<", prev[i].Y), "particle %d step %d", i, step)
				}
				prev = s.Grid().Positions(prev)
			}
		})
	})

	Context("with the reference corner pins", func() {
		It("holds pinned particles exactly at their anchors every step", func() {
			s := newSim(func(c *dynamo.Config) { c.Gravity = 0.01 })
			pins := s.Pins()
			Expect(pins).To(HaveLen(2))

			for step := 0; step < 200; step++ {
				Expect(s.Step()).To(Succeed())
				for _, pin := range pins {
					p := s.Grid().Particles[pin.Index]
					Expect(p.Pos).To(Equal(pin.Pos))
					Expect(p.Old).To(Equal(pin.Pos))
				}
			}
		})

		It("lowers the cloth's centre of mass", func() {
			s := newSim(nil)
			restMean := meanY(s)
			for i := 0; i < 300; i++ {
				Expect(s.Step()).To(Succeed())
			}
			Expect(meanY(s)).To(BeNumerically("<", restMean))
		})
	})

	Context("determinism", func() {
		for _, solver := range []dynamo.SolverKind{dynamo.SolverGaussSeidel, dynamo.SolverJacobi} {
			solver := solver
			It("reproduces identical positions with the "+string(solver)+" solver", func() {
				mutate := func(c *dynamo.Config) {
					c.Width, c.Height = 48, 40
					c.Solver = solver
				}
				a := newSim(mutate)
				b := newSim(mutate)

				for i := 0; i < 120; i++ {
					Expect(a.Step()).To(Succeed())
					Expect(b.Step()).To(Succeed())
				}
				Expect(a.Grid().Particles).To(Equal(b.Grid().Particles))
			})
		}
	})

	Context("with two particles forced together", func() {
		It("skips the degenerate constraint and stays finite", func() {
			s := newSim(func(c *dynamo.Config) {
				c.Gravity = 0
				c.Pins = []dynamo.Pin{}
			})
			g := s.Grid()
			// the first constraint in the list joins (0,0) and (0,1)
			top := g.Particles[g.Index(0, 0)].Pos
			g.Particles[g.Index(0, 1)] = dynamo.Particle{Pos: top, Old: top}

			Expect(s.Step()).To(Succeed())
			Expect(s.Skipped()).To(BeNumerically(">", 0))
			ok, _ := g.IsValid()
			Expect(ok).To(BeTrue())
		})
	})

	Context("exporting to a mesh sink", func() {
		It("mirrors particle positions after every step", func() {
			buf := mesh.NewBuffer(200)
			s := newSim(nil, sim.WithSink(buf))
			Expect(buf.Version()).To(Equal(uint64(1)))

			Expect(s.Step()).To(Succeed())
			vs, changed := buf.Consume(nil)
			Expect(changed).To(BeTrue())
			for i, p := range s.Grid().Particles {
				Expect(float64(vs[i].X)).To(BeNumerically("~", p.Pos.X, 1e-5))
				Expect(float64(vs[i].Y)).To(BeNumerically("~", p.Pos.Y, 1e-5))
			}
		})

		It("rejects a sink smaller than the grid", func() {
			cfg := dynamo.DefaultConfig()
			_, err := sim.New(cfg, sim.WithSink(mesh.NewBuffer(10)))
			Expect(err).To(MatchError(dynamo.ErrSinkTooSmall))
		})
	})

	Context("running", func() {
		It("records frames at the configured interval", func() {
			s := newSim(func(c *dynamo.Config) { c.RecordEvery = 10 })
			res, err := s.Run(context.Background(), 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(50))
			Expect(res.Frames).To(HaveLen(6))
			Expect(res.Frames[5].Step).To(Equal(50))
			Expect(res.Frames[0].Positions).To(HaveLen(200))
		})

		It("stops when the context is cancelled", func() {
			s := newSim(nil)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := s.Run(ctx, 100)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(Equal(0))
		})

		It("ends the run on a diverged state", func() {
			s := newSim(func(c *dynamo.Config) { c.Gravity = math.MaxFloat64 })
			res, err := s.Run(context.Background(), 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Errors).NotTo(BeEmpty())
			Expect(res.Errors[0]).To(MatchError(dynamo.ErrInvalidState))
			var simErr *dynamo.SimulationError
			Expect(res.Errors[0]).To(BeAssignableToTypeOf(simErr))
		})
	})
})

var _ = Describe("Simulator construction", func() {
	DescribeTable("rejects invalid configuration",
		func(mutate func(*dynamo.Config), target error) {
			cfg := dynamo.DefaultConfig()
			mutate(&cfg)
			_, err := sim.New(cfg)
			Expect(err).To(MatchError(target))
		},
		Entry("zero width", func(c *dynamo.Config) { c.Width = 0 }, dynamo.ErrInvalidDimensions),
		Entry("negative height", func(c *dynamo.Config) { c.Height = -3 }, dynamo.ErrInvalidDimensions),
		Entry("zero dt", func(c *dynamo.Config) { c.Dt = 0 }, dynamo.ErrParameterBounds),
		Entry("relaxation above one", func(c *dynamo.Config) { c.Relaxation = 1.5 }, dynamo.ErrParameterBounds),
		Entry("negative iterations", func(c *dynamo.Config) { c.Iterations = -1 }, dynamo.ErrParameterBounds),
		Entry("unknown solver", func(c *dynamo.Config) { c.Solver = "sor" }, dynamo.ErrParameterBounds),
		Entry("pin outside grid", func(c *dynamo.Config) { c.Pins = []dynamo.Pin{{Index: 200}} }, dynamo.ErrPinOutOfRange),
	)

	It("uses the top corners when no pins are given", func() {
		s := newSim(nil)
		g := s.Grid()
		Expect(s.Pins()).To(Equal(physics.CornerPins(g)))
	})

	It("builds the structural topology once", func() {
		s := newSim(nil)
		Expect(s.Constraints()).To(HaveLen(370))
	})
})
