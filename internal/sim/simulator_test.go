package sim

import (
	"bytes"
	"errors"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/physics"
)

type recordingObserver struct {
	frames []int
	resets []dynamo.ResetReason
}

func (r *recordingObserver) OnFrame(frame int, _ float64, _ []dynamo.Body) {
	r.frames = append(r.frames, frame)
}

func (r *recordingObserver) OnReset(reason dynamo.ResetReason) {
	r.resets = append(r.resets, reason)
}

type countingMetric struct {
	n      int
	resets int
}

func (m *countingMetric) Name() string            { return "count" }
func (m *countingMetric) Observe(_ []dynamo.Body) { m.n++ }
func (m *countingMetric) Value() float64          { return float64(m.n) }
func (m *countingMetric) Reset()                  { m.n = 0; m.resets++ }

func newController(params Params, opts ...Option) *Controller {
	c, err := New(params, integrators.NewRK4(physics.NewField()), opts...)
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Controller", func() {
	var c *Controller

	BeforeEach(func() {
		c = newController(DefaultParams(), WithLogger(slog.New(slog.NewTextHandler(GinkgoWriter, nil))))
	})

	Describe("New", func() {
		It("rejects invalid parameters", func() {
			p := DefaultParams()
			p.BaseDt = 0
			_, err := New(p, integrators.NewRK4(physics.NewField()))
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("rejects a nil integrator", func() {
			_, err := New(DefaultParams(), nil)
			Expect(err).To(MatchError(dynamo.ErrInvalidParams))
		})

		It("does nothing on Tick before the first Reset", func() {
			c.Tick()
			Expect(c.Frame()).To(Equal(0))
			Expect(c.Bodies()).To(BeEmpty())
		})

		It("answers position and trail queries before the first Reset", func() {
			Expect(c.Position(0)).To(Equal(dynamo.Vector3{}))
			dst := []dynamo.Vector3{dynamo.Vec(1, 2, 3)}
			Expect(c.Trail(0, dst)).To(Equal(dst))
			Expect(c.Trail(-1, nil)).To(BeEmpty())
		})
	})

	Describe("Reset", func() {
		It("derives the stepping parameters of Moth I", func() {
			Expect(c.Reset(3, -1)).To(Succeed())

			Expect(c.Dt()).To(Equal(0.001))
			Expect(c.StepsPerFrame()).To(Equal(5))
			Expect(c.TrailCapacity()).To(Equal(2979))
			Expect(c.Frame()).To(Equal(0))
			Expect(c.Solution()).To(Equal(3))
			Expect(c.Focus()).To(Equal(-1))

			bodies := c.Bodies()
			Expect(bodies).To(HaveLen(3))
			Expect(bodies[0].Position).To(Equal(dynamo.Vec(-1, 0, 0)))
			Expect(bodies[1].Position).To(Equal(dynamo.Vec(1, 0, 0)))
			Expect(bodies[2].Position).To(Equal(dynamo.Vec(0, 0, 0)))
			Expect(bodies[0].Velocity).To(Equal(dynamo.Vec(0.46444, 0.39606, 0)))
			Expect(bodies[2].Velocity.X).To(BeNumerically("~", -0.92888, 1e-15))
			Expect(bodies[2].Velocity.Y).To(BeNumerically("~", -0.79212, 1e-15))
		})

		It("pre-fills every trail with the initial position", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			for i, b := range c.Bodies() {
				tr := c.Trail(i, nil)
				Expect(tr).To(HaveLen(c.TrailCapacity()))
				for _, p := range tr {
					Expect(p).To(Equal(b.Position))
				}
			}
		})

		DescribeTable("rejects out-of-range input without touching state",
			func(solution, focus int) {
				Expect(c.Reset(3, 0)).To(Succeed())
				c.Tick()
				before := c.Snapshot()

				err := c.Reset(solution, focus)
				Expect(errors.Is(err, dynamo.ErrInvalidArgument)).To(BeTrue())
				var argErr *dynamo.ArgumentError
				Expect(errors.As(err, &argErr)).To(BeTrue())

				Expect(c.Snapshot()).To(Equal(before))
			},
			Entry("solution below range", -1, -1),
			Entry("solution above range", 15, -1),
			Entry("focus below range", 3, -2),
			Entry("focus above range", 3, 3),
		)

		It("is deterministic for every solution and focus", func() {
			other := newController(DefaultParams())
			for s := 0; s < catalog.Len(); s++ {
				for f := -1; f < dynamo.NumBodies; f++ {
					Expect(c.Reset(s, f)).To(Succeed())
					Expect(other.Reset(s, f)).To(Succeed())
					Expect(c.Snapshot()).To(Equal(other.Snapshot()), "solution %d focus %d", s, f)
				}
			}
		})

		It("zeroes the center of mass and total momentum for every solution", func() {
			for s := 0; s < catalog.Len(); s++ {
				Expect(c.Reset(s, -1)).To(Succeed())
				bodies := c.Bodies()
				Expect(physics.CenterOfMass(bodies).Norm()).To(BeNumerically("<", 1e-15))
				Expect(physics.Momentum(bodies).Norm()).To(BeNumerically("<", 1e-15))
			}
		})

		It("leaves no trace of the previous run", func() {
			Expect(c.Reset(3, 1)).To(Succeed())
			fresh := c.Snapshot()

			for i := 0; i < 20; i++ {
				c.Tick()
			}
			Expect(c.Snapshot()).NotTo(Equal(fresh))

			Expect(c.Reset(3, 1)).To(Succeed())
			Expect(c.Snapshot()).To(Equal(fresh))
			Expect(c.Reset(3, 1)).To(Succeed())
			Expect(c.Snapshot()).To(Equal(fresh))
		})
	})

	Describe("Tick", func() {
		It("advances time by dt times the sub-steps", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			c.Tick()
			c.Tick()
			Expect(c.Frame()).To(Equal(2))
			Expect(c.Time()).To(BeNumerically("~", 2*0.005, 1e-12))
		})

		It("keeps every trail at capacity and appends the current position", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			for n := 0; n < 50; n++ {
				c.Tick()
				for i := 0; i < dynamo.NumBodies; i++ {
					tr := c.Trail(i, nil)
					Expect(tr).To(HaveLen(c.TrailCapacity()))
					Expect(tr[len(tr)-1]).To(Equal(c.Position(i)))
				}
			}
		})

		It("does not recenter with center-of-mass focus", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			for n := 0; n < 10; n++ {
				c.Tick()
			}
			Expect(physics.CenterOfMass(c.Bodies()).Norm()).To(BeNumerically("<", 1e-3))
			Expect(c.Position(2).IsZero()).To(BeFalse())
		})

		DescribeTable("pins the focus body at the origin",
			func(solution, focus int) {
				Expect(c.Reset(solution, focus)).To(Succeed())
				for n := 0; n < 5; n++ {
					c.Tick()
					Expect(c.Position(focus)).To(Equal(dynamo.Vector3{}))
				}
				Expect(c.Position((focus + 1) % 3).IsZero()).To(BeFalse())
			},
			Entry("moth I, body 0", 3, 0),
			Entry("moth I, body 1", 3, 1),
			Entry("moth I, body 2", 3, 2),
			Entry("goggles, body 1", 7, 1),
		)

		It("recenters positions but not velocities", func() {
			free := newController(DefaultParams())
			Expect(free.Reset(3, -1)).To(Succeed())
			Expect(c.Reset(3, 0)).To(Succeed())

			c.Tick()
			free.Tick()

			Expect(c.Bodies()[1].Velocity).To(Equal(free.Bodies()[1].Velocity))
			shift := free.Position(0)
			Expect(c.Position(1)).To(Equal(free.Position(1).Sub(shift)))
		})

		It("notifies observers and metrics", func() {
			obs := &recordingObserver{}
			m := &countingMetric{}
			c.AddObserver(obs)
			c.AddMetric(m)

			Expect(c.Reset(3, -1)).To(Succeed())
			c.Tick()
			c.Tick()

			Expect(obs.frames).To(Equal([]int{1, 2}))
			Expect(obs.resets).To(Equal([]dynamo.ResetReason{dynamo.ResetRequested}))
			Expect(m.Value()).To(Equal(2.0))

			Expect(c.Reset(4, -1)).To(Succeed())
			Expect(m.Value()).To(Equal(0.0))
			Expect(m.resets).To(Equal(2))
		})
	})

	Describe("stability check", func() {
		It("passes for a fresh run", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			Expect(c.CheckStability()).To(Succeed())
		})

		It("flags a body that is too fast", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			c.bodies[1].Velocity = dynamo.Vec(0, 10.5, 0)

			err := c.CheckStability()
			Expect(err).To(MatchError(dynamo.ErrNumericalDivergence))
			var div *dynamo.DivergenceError
			Expect(errors.As(err, &div)).To(BeTrue())
			Expect(div.Body).To(Equal(1))
			Expect(div.Speed).To(BeNumerically("~", 10.5, 1e-12))
		})

		It("flags a body that is too far", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			c.bodies[2].Position = dynamo.Vec(0, 0, -11)
			Expect(c.CheckStability()).To(MatchError(dynamo.ErrNumericalDivergence))
		})

		It("flags non-finite state", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			c.bodies[0].Position = dynamo.Vec(math.NaN(), 0, 0)
			Expect(c.CheckStability()).To(MatchError(dynamo.ErrNumericalDivergence))
		})

		It("does not reset by itself", func() {
			Expect(c.Reset(3, -1)).To(Succeed())
			c.bodies[0].Velocity = dynamo.Vec(20, 0, 0)
			Expect(c.CheckStability()).NotTo(Succeed())
			Expect(c.Bodies()[0].Velocity.X).To(Equal(20.0))
		})

		It("restarts a diverged run on the hundredth frame", func() {
			var logs bytes.Buffer
			obs := &recordingObserver{}
			c = newController(DefaultParams(),
				WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
				WithObserver(obs),
			)
			Expect(c.Reset(3, -1)).To(Succeed())
			fresh := c.Snapshot()

			c.bodies[1].Velocity = dynamo.Vec(11, 0, 0)
			for n := 0; n < 99; n++ {
				c.Tick()
			}
			Expect(c.Frame()).To(Equal(99))
			Expect(c.Divergences()).To(Equal(0))

			c.Tick()

			Expect(c.Divergences()).To(Equal(1))
			Expect(obs.resets).To(Equal([]dynamo.ResetReason{dynamo.ResetRequested, dynamo.ResetDiverged}))
			Expect(logs.String()).To(ContainSubstring("simulation diverged"))

			got := c.Snapshot()
			got.Divergences = 0
			Expect(got).To(Equal(fresh))
		})

		It("keeps the current focus when it restarts", func() {
			p := DefaultParams()
			p.CheckInterval = 1
			c = newController(p)
			Expect(c.Reset(5, 2)).To(Succeed())
			fresh := c.Snapshot()

			c.bodies[0].Velocity = dynamo.Vec(0, 0, 50)
			c.Tick()

			Expect(c.Focus()).To(Equal(2))
			Expect(c.Solution()).To(Equal(5))
			Expect(c.Bodies()).To(Equal(bodiesOf(fresh)))
		})

		It("never runs when the interval is zero", func() {
			p := DefaultParams()
			p.CheckInterval = 0
			c = newController(p)
			Expect(c.Reset(3, -1)).To(Succeed())
			c.bodies[1].Velocity = dynamo.Vec(11, 0, 0)
			for n := 0; n < 100; n++ {
				c.Tick()
			}
			Expect(c.Divergences()).To(Equal(0))
			Expect(c.Frame()).To(Equal(100))
		})
	})
})

func bodiesOf(s Snapshot) []dynamo.Body {
	out := make([]dynamo.Body, len(s.Bodies))
	for i, b := range s.Bodies {
		out[i] = dynamo.Body{Position: b.Position, Velocity: b.Velocity}
	}
	return out
}
