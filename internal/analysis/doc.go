// Package analysis inspects recorded and simulated choreographies.
//
//   - [PowerSpectrum], [Peaks] and [DominantPeriod]: spectral estimate of the
//     orbital period from a sampled coordinate
//   - [LyapunovExponent]: largest Lyapunov exponent of an initial condition
//     under a given integrator
//   - [NewPhasePortrait] and [NewPoincareSection]: 2D views of recorded frames
//
// # Period Estimation
//
// Each body of a choreography traces the same closed curve, so any of its
// coordinates is periodic with the orbital period T. The strongest peak of
// the spectrum is often a harmonic of 1/T rather than 1/T itself; compare
// against the catalog period with that in mind:
//
//	peaks, err := analysis.Peaks(xs, interval, 3)
package analysis
