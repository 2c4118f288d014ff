package physics

import "github.com/san-kum/choreo/internal/dynamo"

// Field computes the unit-mass Newtonian acceleration with G = 1.
//
// Softening is zero by default, which is the exact inverse-square law. A
// positive value adds Softening² to every squared distance so that close
// encounters stay bounded. With zero softening a probe that coincides with
// another body yields a non-finite acceleration; callers must not rely on
// that value.
type Field struct {
	Softening float64
}

// NewField returns the exact (unsoftened) field.
func NewField() *Field {
	return &Field{}
}

// Acceleration returns the acceleration a body with index probe would feel at
// position p. The probe's own stored position in bodies is ignored, so p may
// be any intermediate integration stage.
func (f *Field) Acceleration(probe int, p dynamo.Vector3, bodies []dynamo.Body) dynamo.Vector3 {
	eps2 := f.Softening * f.Softening

	var sum dynamo.Vector3
	for j := range bodies {
		if j == probe {
			continue
		}
		d2 := p.DistanceSquared(bodies[j].Position) + eps2
		// unit vector toward the attractor, scaled by 1/r²
		r := bodies[j].Position.Sub(p).Normalize().Scale(1 / d2)
		sum = sum.Add(r)
	}
	return sum
}

// Accelerations evaluates the field for every body at its stored position.
func (f *Field) Accelerations(bodies []dynamo.Body, dst []dynamo.Vector3) []dynamo.Vector3 {
	dst = dst[:0]
	for i := range bodies {
		dst = append(dst, f.Acceleration(i, bodies[i].Position, bodies))
	}
	return dst
}
