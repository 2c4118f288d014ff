package integrators

import (
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

// RK4 is the classical fourth-order Runge-Kutta scheme applied body by body.
//
// For body i, the four stages offset only body i's own position; every other
// body is read at its stored position and never at its own intermediate
// stages. Bodies are updated in slice order, in place, so a body later in the
// slice sees the already advanced positions of the bodies before it. This is
// less accurate than staging the whole system together (see [CoupledRK4]) but
// it is the scheme the catalog's instability factors were tuned against.
//
// With Snapshot set, every body reads the pre-step positions of the others
// instead.
type RK4 struct {
	Field    *physics.Field
	Snapshot bool
	frozen   []dynamo.Body
}

func NewRK4(field *physics.Field) *RK4 {
	return &RK4{Field: field}
}

// NewJacobiRK4 returns the per-body scheme reading a pre-step snapshot.
func NewJacobiRK4(field *physics.Field) *RK4 {
	return &RK4{Field: field, Snapshot: true}
}

func (r *RK4) Name() string {
	if r.Snapshot {
		return "rk4-jacobi"
	}
	return "rk4"
}

func (r *RK4) Step(bodies []dynamo.Body, h float64) {
	src := bodies
	if r.Snapshot {
		r.frozen = append(r.frozen[:0], bodies...)
		src = r.frozen
	}

	half := h / 2
	h6 := h / 6
	for i := range bodies {
		p, v := bodies[i].Position, bodies[i].Velocity

		k1v := r.Field.Acceleration(i, p, src)
		k1r := v

		k2v := r.Field.Acceleration(i, p.Add(k1r.Scale(half)), src)
		k2r := v.Add(k1v.Scale(half))

		k3v := r.Field.Acceleration(i, p.Add(k2r.Scale(half)), src)
		k3r := v.Add(k2v.Scale(half))

		k4v := r.Field.Acceleration(i, p.Add(k3r.Scale(h)), src)
		k4r := v.Add(k3v.Scale(h))

		dv := k1v.Add(k2v.Scale(2)).Add(k3v.Scale(2)).Add(k4v)
		dr := k1r.Add(k2r.Scale(2)).Add(k3r.Scale(2)).Add(k4r)

		bodies[i].Velocity = v.Add(dv.Scale(h6))
		bodies[i].Position = p.Add(dr.Scale(h6))
	}
}
