// Package integrators advances the three-body state by one fixed time step.
//
// Every integrator mutates the body slice in place and keeps scratch buffers
// between calls, so a single instance must not be shared between
// controllers.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

type Integrator interface {
	Step(bodies []dynamo.Body, h float64)
	Name() string
}

// Default is the per-body sequential RK4 scheme.
const Default = "rk4"

var registry = map[string]func(*physics.Field) Integrator{
	"rk4":         func(f *physics.Field) Integrator { return NewRK4(f) },
	"rk4-jacobi":  func(f *physics.Field) Integrator { return NewJacobiRK4(f) },
	"rk4-coupled": func(f *physics.Field) Integrator { return NewCoupledRK4(f) },
	"leapfrog":    func(f *physics.Field) Integrator { return NewLeapfrog(f) },
	"euler":       func(f *physics.Field) Integrator { return NewEuler(f) },
}

// Get builds the integrator registered under name. A nil field means the
// exact unsoftened field.
func Get(name string, field *physics.Field) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	if field == nil {
		field = physics.NewField()
	}
	return fn(field), nil
}

// Names lists the registered integrators, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
