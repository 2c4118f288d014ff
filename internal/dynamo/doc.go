// Package dynamo provides the shared primitives of the choreography simulator.
//
// The package defines the value types and interfaces the rest of the core is
// built on:
//
//   - [Vector3]: 3-component vector with the arithmetic the integrators need
//   - [Body]: position and velocity of one of the three unit-mass bodies
//   - [Observer]: per-frame and per-reset notifications from the controller
//   - [Metric]: running diagnostic over the observed body states
//
// # Errors
//
// Failures are reported through sentinel errors so callers can use
// [errors.Is]:
//
//	if err := ctrl.Reset(solution, focus); errors.Is(err, dynamo.ErrInvalidArgument) {
//	    // reject the selection
//	}
//
// # Thread Safety
//
// Nothing in this package is synchronized. Body slices are owned by a single
// controller and must not be mutated while it is ticking.
package dynamo
