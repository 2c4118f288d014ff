package integrators

import (
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

// Euler is explicit forward Euler. First order; only for comparisons.
type Euler struct {
	Field *physics.Field
	acc   []dynamo.Vector3
}

func NewEuler(field *physics.Field) *Euler {
	return &Euler{Field: field}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(bodies []dynamo.Body, h float64) {
	e.acc = e.Field.Accelerations(bodies, e.acc)
	for i := range bodies {
		bodies[i].Position = bodies[i].Position.Add(bodies[i].Velocity.Scale(h))
		bodies[i].Velocity = bodies[i].Velocity.Add(e.acc[i].Scale(h))
	}
}
