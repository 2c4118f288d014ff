package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidArgument indicates a solution or focus index outside its range.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrNumericalDivergence indicates the trajectory left the stable region.
	ErrNumericalDivergence = errors.New("dynamo: numerical divergence")

	// ErrUnknownIntegrator indicates an integrator name with no registration.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrInvalidParams indicates simulation parameters that cannot produce a step.
	ErrInvalidParams = errors.New("dynamo: invalid simulation parameters")
)

// ArgumentError reports an index rejected at an API boundary.
type ArgumentError struct {
	Name     string
	Value    int
	Min, Max int
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("dynamo: %s %d out of range [%d, %d]", e.Name, e.Value, e.Min, e.Max)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// DivergenceError describes the first body found outside the stability limits.
type DivergenceError struct {
	Frame    int
	Body     int
	Speed    float64
	Distance float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("dynamo: body %d diverged at frame %d (|v|=%.3f, |p|=%.3f)",
		e.Body, e.Frame, e.Speed, e.Distance)
}

func (e *DivergenceError) Unwrap() error {
	return ErrNumericalDivergence
}
