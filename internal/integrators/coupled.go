package integrators

import (
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

// CoupledRK4 stages all bodies together: stage k evaluates every body's
// acceleration with every body at its stage-k position.
type CoupledRK4 struct {
	Field *physics.Field

	stage          []dynamo.Body
	k1, k2, k3, k4 []derivative
	acc            []dynamo.Vector3
}

type derivative struct {
	dr, dv dynamo.Vector3
}

func NewCoupledRK4(field *physics.Field) *CoupledRK4 {
	return &CoupledRK4{Field: field}
}

func (c *CoupledRK4) Name() string { return "rk4-coupled" }

func (c *CoupledRK4) ensureScratch(n int) {
	if len(c.k1) != n {
		c.stage = make([]dynamo.Body, n)
		c.k1 = make([]derivative, n)
		c.k2 = make([]derivative, n)
		c.k3 = make([]derivative, n)
		c.k4 = make([]derivative, n)
	}
}

// derive fills k with (velocity, acceleration) of state x.
func (c *CoupledRK4) derive(x []dynamo.Body, k []derivative) {
	c.acc = c.Field.Accelerations(x, c.acc)
	for i := range x {
		k[i] = derivative{dr: x[i].Velocity, dv: c.acc[i]}
	}
}

// offset writes x + s·k into the stage buffer.
func (c *CoupledRK4) offset(x []dynamo.Body, k []derivative, s float64) []dynamo.Body {
	for i := range x {
		c.stage[i] = dynamo.Body{
			Position: x[i].Position.Add(k[i].dr.Scale(s)),
			Velocity: x[i].Velocity.Add(k[i].dv.Scale(s)),
		}
	}
	return c.stage
}

func (c *CoupledRK4) Step(bodies []dynamo.Body, h float64) {
	n := len(bodies)
	c.ensureScratch(n)

	c.derive(bodies, c.k1)
	c.derive(c.offset(bodies, c.k1, h/2), c.k2)
	c.derive(c.offset(bodies, c.k2, h/2), c.k3)
	c.derive(c.offset(bodies, c.k3, h), c.k4)

	h6 := h / 6
	for i := range bodies {
		dr := c.k1[i].dr.Add(c.k2[i].dr.Scale(2)).Add(c.k3[i].dr.Scale(2)).Add(c.k4[i].dr)
		dv := c.k1[i].dv.Add(c.k2[i].dv.Scale(2)).Add(c.k3[i].dv.Scale(2)).Add(c.k4[i].dv)
		bodies[i].Position = bodies[i].Position.Add(dr.Scale(h6))
		bodies[i].Velocity = bodies[i].Velocity.Add(dv.Scale(h6))
	}
}
