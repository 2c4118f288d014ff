package integrators

import (
	"testing"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

func benchStep(b *testing.B, name string) {
	integ, err := Get(name, nil)
	if err != nil {
		b.Fatal(err)
	}
	s, _ := catalog.Get(catalog.Default)
	init := s.InitialBodies()
	bodies := init[:]

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		integ.Step(bodies, 0.001)
	}
}

func BenchmarkRK4(b *testing.B)        { benchStep(b, "rk4") }
func BenchmarkJacobiRK4(b *testing.B)  { benchStep(b, "rk4-jacobi") }
func BenchmarkCoupledRK4(b *testing.B) { benchStep(b, "rk4-coupled") }
func BenchmarkLeapfrog(b *testing.B)   { benchStep(b, "leapfrog") }
func BenchmarkEuler(b *testing.B)      { benchStep(b, "euler") }

// one frame of the stiffest catalog entry: 10000 sub-steps
func BenchmarkRK4_YinYangFrame(b *testing.B) {
	integ := NewRK4(physics.NewField())
	s, _ := catalog.Get(13)
	init := s.InitialBodies()
	bodies := []dynamo.Body(init[:])
	dt := 0.001 / s.InstabilityFactor
	steps := int(5 * s.InstabilityFactor)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for k := 0; k < steps; k++ {
			integ.Step(bodies, dt)
		}
	}
}
