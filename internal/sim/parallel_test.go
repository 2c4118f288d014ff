package sim

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/physics"
)

func buildWith(name string, m dynamo.Metric) func() (*Controller, error) {
	return func() (*Controller, error) {
		integ, err := integrators.Get(name, physics.NewField())
		if err != nil {
			return nil, err
		}
		opts := []Option{}
		if m != nil {
			opts = append(opts, WithMetric(m))
		}
		return New(DefaultParams(), integ, opts...)
	}
}

var _ = Describe("Ensemble", func() {
	It("returns outcomes in job order", func() {
		jobs := []Job{
			{Label: "a", Solution: 3, Focus: -1, Frames: 10, Build: buildWith("rk4", &countingMetric{})},
			{Label: "b", Solution: 4, Focus: 0, Frames: 20, Build: buildWith("leapfrog", &countingMetric{})},
			{Label: "c", Solution: 0, Focus: 1, Frames: 5, Build: buildWith("rk4-coupled", nil)},
		}

		out, err := NewEnsemble(2).Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HaveLen(3))

		Expect(out[0].Label).To(Equal("a"))
		Expect(out[0].Integrator).To(Equal("rk4"))
		Expect(out[0].Metrics).To(HaveKeyWithValue("count", 10.0))

		Expect(out[1].Label).To(Equal("b"))
		Expect(out[1].Integrator).To(Equal("leapfrog"))
		Expect(out[1].Metrics).To(HaveKeyWithValue("count", 20.0))

		Expect(out[2].Integrator).To(Equal("rk4-coupled"))
		Expect(out[2].Frames).To(Equal(5))
		Expect(out[2].Metrics).To(BeEmpty())
	})

	It("matches a sequential run", func() {
		jobs := []Job{{Solution: 3, Focus: -1, Frames: 30, Build: buildWith("rk4", nil)}}
		_, err := NewEnsemble(0).Run(context.Background(), jobs)
		Expect(err).NotTo(HaveOccurred())

		a, _ := buildWith("rk4", nil)()
		b, _ := buildWith("rk4", nil)()
		Expect(a.Reset(3, -1)).To(Succeed())
		Expect(b.Reset(3, -1)).To(Succeed())
		for i := 0; i < 30; i++ {
			a.Tick()
			b.Tick()
		}
		Expect(a.Snapshot()).To(Equal(b.Snapshot()))
	})

	It("fails on an invalid job", func() {
		jobs := []Job{
			{Solution: 3, Focus: -1, Frames: 1, Build: buildWith("rk4", nil)},
			{Solution: 99, Focus: -1, Frames: 1, Build: buildWith("rk4", nil)},
		}
		_, err := NewEnsemble(1).Run(context.Background(), jobs)
		Expect(errors.Is(err, dynamo.ErrInvalidArgument)).To(BeTrue())
	})

	It("reports an unknown integrator", func() {
		jobs := []Job{{Solution: 3, Focus: -1, Frames: 1, Build: buildWith("midpoint", nil)}}
		_, err := NewEnsemble(1).Run(context.Background(), jobs)
		Expect(err).To(MatchError(dynamo.ErrUnknownIntegrator))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		jobs := []Job{{Solution: 3, Focus: -1, Frames: 1000, Build: buildWith("rk4", nil)}}
		_, err := NewEnsemble(1).Run(ctx, jobs)
		Expect(err).To(MatchError(context.Canceled))
	})
})
