// Package physics provides the gravitational model of the simulator.
//
// [Field] evaluates the inverse-square acceleration on a probe point from
// the other bodies, with G = 1 and unit masses:
//
//	a_i = Σ_{j≠i} (r_j − r_i) / |r_j − r_i|³
//
// The package also carries the conserved quantities used to monitor an
// integration run: [Field.Energy], [Momentum] and [AngularMomentum].
//
// # Energy Conservation
//
// Fixed-step integrators drift. Compare energy at two frames to see how far:
//
//	f := physics.NewField()
//	drift := math.Abs(f.Energy(now)-e0) / math.Abs(e0)
package physics
