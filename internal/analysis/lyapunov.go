package analysis

import (
	"math"

	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
)

// LyapunovExponent estimates the largest Lyapunov exponent of bodies under
// integ by following a copy displaced by perturbation along x of body 0.
// The separation is measured over all positions and velocities and rescaled
// back to perturbation every renorm steps. A positive value means nearby
// orbits separate exponentially; it grows with a solution's instability.
func LyapunovExponent(
	integ integrators.Integrator,
	bodies []dynamo.Body,
	h float64,
	steps, renorm int,
	perturbation float64,
) float64 {
	if len(bodies) == 0 || steps <= 0 || perturbation <= 0 {
		return 0
	}
	if renorm < 1 {
		renorm = 1
	}

	x := dynamo.CloneBodies(bodies)
	xp := dynamo.CloneBodies(bodies)
	xp[0].Position.X += perturbation

	sumLog := 0.0
	elapsed := 0.0

	for i := 1; i <= steps; i++ {
		integ.Step(x, h)
		integ.Step(xp, h)
		elapsed += h

		if i%renorm != 0 && i != steps {
			continue
		}

		sep := separation(x, xp)
		if sep == 0 || math.IsNaN(sep) || math.IsInf(sep, 0) {
			break
		}
		sumLog += math.Log(sep / perturbation)

		scale := perturbation / sep
		for j := range xp {
			xp[j].Position = x[j].Position.Add(xp[j].Position.Sub(x[j].Position).Scale(scale))
			xp[j].Velocity = x[j].Velocity.Add(xp[j].Velocity.Sub(x[j].Velocity).Scale(scale))
		}
	}

	if elapsed == 0 {
		return 0
	}
	return sumLog / elapsed
}

func separation(a, b []dynamo.Body) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i].Position.DistanceSquared(b[i].Position)
		sum += a[i].Velocity.DistanceSquared(b[i].Velocity)
	}
	return math.Sqrt(sum)
}
