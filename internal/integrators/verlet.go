package integrators

import (
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

// Leapfrog is the symplectic kick-drift-kick scheme. Energy oscillates
// instead of drifting, which makes it a useful baseline against RK4.
type Leapfrog struct {
	Field *physics.Field
	acc   []dynamo.Vector3
}

func NewLeapfrog(field *physics.Field) *Leapfrog {
	return &Leapfrog{Field: field}
}

func (l *Leapfrog) Name() string { return "leapfrog" }

func (l *Leapfrog) Step(bodies []dynamo.Body, h float64) {
	halfDt := h * 0.5

	l.acc = l.Field.Accelerations(bodies, l.acc)
	for i := range bodies {
		bodies[i].Velocity = bodies[i].Velocity.Add(l.acc[i].Scale(halfDt))
		bodies[i].Position = bodies[i].Position.Add(bodies[i].Velocity.Scale(h))
	}

	l.acc = l.Field.Accelerations(bodies, l.acc)
	for i := range bodies {
		bodies[i].Velocity = bodies[i].Velocity.Add(l.acc[i].Scale(halfDt))
	}
}
