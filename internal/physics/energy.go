package physics

import (
	"math"

	"github.com/san-kum/choreo/internal/dynamo"
)

// Energy returns kinetic plus pairwise potential energy for unit masses.
func (f *Field) Energy(bodies []dynamo.Body) float64 {
	ke := 0.0
	pe := 0.0
	eps2 := f.Softening * f.Softening

	for i := range bodies {
		ke += 0.5 * bodies[i].Velocity.Norm2()

		for j := i + 1; j < len(bodies); j++ {
			r := math.Sqrt(bodies[i].Position.DistanceSquared(bodies[j].Position) + eps2)
			pe -= 1 / r
		}
	}

	return ke + pe
}

// Momentum is the total linear momentum. It is zero for every catalog orbit.
func Momentum(bodies []dynamo.Body) dynamo.Vector3 {
	var p dynamo.Vector3
	for _, b := range bodies {
		p = p.Add(b.Velocity)
	}
	return p
}

// AngularMomentum is Σ r × v about the origin.
func AngularMomentum(bodies []dynamo.Body) dynamo.Vector3 {
	var l dynamo.Vector3
	for _, b := range bodies {
		l = l.Add(b.Position.Cross(b.Velocity))
	}
	return l
}

// CenterOfMass is the mean position.
func CenterOfMass(bodies []dynamo.Body) dynamo.Vector3 {
	if len(bodies) == 0 {
		return dynamo.Vector3{}
	}
	var c dynamo.Vector3
	for _, b := range bodies {
		c = c.Add(b.Position)
	}
	return c.Scale(1 / float64(len(bodies)))
}
