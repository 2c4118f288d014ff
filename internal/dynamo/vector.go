package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is a value-typed 3-vector. Arithmetic delegates to gonum's r3.
type Vector3 struct {
	X, Y, Z float64
}

// Vec is shorthand for Vector3{x, y, z}.
func Vec(x, y, z float64) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func (v Vector3) vec() r3.Vec { return r3.Vec(v) }

func (v Vector3) Add(o Vector3) Vector3             { return Vector3(r3.Add(v.vec(), o.vec())) }
func (v Vector3) Sub(o Vector3) Vector3             { return Vector3(r3.Sub(v.vec(), o.vec())) }
func (v Vector3) Scale(f float64) Vector3           { return Vector3(r3.Scale(f, v.vec())) }
func (v Vector3) Dot(o Vector3) float64             { return r3.Dot(v.vec(), o.vec()) }
func (v Vector3) Cross(o Vector3) Vector3           { return Vector3(r3.Cross(v.vec(), o.vec())) }
func (v Vector3) Norm() float64                     { return r3.Norm(v.vec()) }
func (v Vector3) Norm2() float64                    { return r3.Norm2(v.vec()) }
func (v Vector3) IsZero() bool                      { return v.X == 0 && v.Y == 0 && v.Z == 0 }
func (v Vector3) String() string                    { return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z) }
func (v Vector3) DistanceSquared(o Vector3) float64 { return r3.Norm2(r3.Sub(v.vec(), o.vec())) }

// Normalize returns the unit vector along v. The zero vector normalizes to
// itself rather than to NaN.
func (v Vector3) Normalize() Vector3 {
	if v.IsZero() {
		return v
	}
	return Vector3(r3.Unit(v.vec()))
}

// IsFinite reports whether no component is NaN or Inf.
func (v Vector3) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Sum adds all vectors in vs.
func Sum(vs ...Vector3) Vector3 {
	var s Vector3
	for _, v := range vs {
		s = s.Add(v)
	}
	return s
}
