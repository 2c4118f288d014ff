// Package catalog holds the table of periodic three-body solutions.
//
// The initial conditions come from Šuvakov and Dmitrašinović, "Three Classes
// of Newtonian Three-Body Planar Periodic Orbits" (arXiv:1303.0181). All
// orbits start from the same collinear configuration and differ only in the
// velocity (x1dot, y1dot) of the outer bodies.
package catalog

import (
	"fmt"
	"strings"

	"github.com/san-kum/choreo/internal/dynamo"
)

// Solution is one row of the catalog. InstabilityFactor is empirical: it
// shrinks the step size and raises the sub-steps per frame for orbits with
// close approaches.
type Solution struct {
	Name              string
	Class             string
	InstabilityFactor float64
	Period            float64
	X1Dot             float64
	Y1Dot             float64
}

var solutions = [...]Solution{
	{Name: "Butterfly I", Class: "I.A.1", InstabilityFactor: 10, Period: 6.2356, X1Dot: 0.30689, Y1Dot: 0.12551},
	{Name: "Butterfly II", Class: "I.A.2", InstabilityFactor: 20, Period: 7.0039, X1Dot: 0.39295, Y1Dot: 0.09758},
	{Name: "Bumblebee", Class: "I.A.3", InstabilityFactor: 10, Period: 63.5345, X1Dot: 0.18428, Y1Dot: 0.58719},
	{Name: "Moth I", Class: "I.B.1", InstabilityFactor: 1, Period: 14.8939, X1Dot: 0.46444, Y1Dot: 0.39606},
	{Name: "Moth II", Class: "I.B.2", InstabilityFactor: 2, Period: 28.6703, X1Dot: 0.43917, Y1Dot: 0.45297},
	{Name: "Butterfly III", Class: "I.B.3", InstabilityFactor: 10, Period: 13.8658, X1Dot: 0.40592, Y1Dot: 0.23016},
	{Name: "Moth III", Class: "I.B.4", InstabilityFactor: 20, Period: 25.8406, X1Dot: 0.38344, Y1Dot: 0.37736},
	{Name: "Goggles", Class: "I.B.5", InstabilityFactor: 20, Period: 10.4668, X1Dot: 0.08330, Y1Dot: 0.12789},
	{Name: "Butterfly IV", Class: "I.B.6", InstabilityFactor: 50, Period: 79.4759, X1Dot: 0.350112, Y1Dot: 0.079340},
	{Name: "Dragonfly", Class: "I.B.7", InstabilityFactor: 20, Period: 21.2710, X1Dot: 0.08058, Y1Dot: 0.58884},
	{Name: "Yarn", Class: "II.B.1", InstabilityFactor: 100, Period: 55.5018, X1Dot: 0.55906, Y1Dot: 0.34919},
	{Name: "Yin-yang Ia", Class: "II.C.2a", InstabilityFactor: 10, Period: 17.3284, X1Dot: 0.51394, Y1Dot: 0.30474},
	{Name: "Yin-yang Ib", Class: "II.C.2b", InstabilityFactor: 10, Period: 10.9626, X1Dot: 0.28270, Y1Dot: 0.32721},
	{Name: "Yin-yang IIa", Class: "II.C.3a", InstabilityFactor: 2000, Period: 55.7898, X1Dot: 0.41682, Y1Dot: 0.33033},
	{Name: "Yin-yang IIb", Class: "II.C.3b", InstabilityFactor: 2000, Period: 54.2076, X1Dot: 0.41734, Y1Dot: 0.31310},
}

// Default is the solution the viewer opens with.
const Default = 3

// Len returns the number of catalog entries.
func Len() int { return len(solutions) }

// Get returns the solution at index i.
func Get(i int) (Solution, error) {
	if i < 0 || i >= len(solutions) {
		return Solution{}, &dynamo.ArgumentError{Name: "solution", Value: i, Min: 0, Max: len(solutions) - 1}
	}
	return solutions[i], nil
}

// All returns a copy of the catalog in index order.
func All() []Solution {
	out := make([]Solution, len(solutions))
	copy(out, solutions[:])
	return out
}

// Lookup finds a solution by slug ("moth-i") or case-insensitive name.
func Lookup(name string) (int, Solution, error) {
	key := Slug(name)
	for i, s := range solutions {
		if Slug(s.Name) == key {
			return i, s, nil
		}
	}
	return -1, Solution{}, fmt.Errorf("%w: unknown solution %q", dynamo.ErrInvalidArgument, name)
}

// Names returns the slugs of all solutions in index order.
func Names() []string {
	names := make([]string, len(solutions))
	for i, s := range solutions {
		names[i] = Slug(s.Name)
	}
	return names
}

// Slug lowercases name and joins its words with dashes.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

func (s Solution) Slug() string { return Slug(s.Name) }

// InitialBodies returns the antisymmetric starting state: the outer bodies at
// x = ∓1 share velocity (x1dot, y1dot) and the middle one carries minus twice
// that, so total momentum and the center of mass are zero.
func (s Solution) InitialBodies() [dynamo.NumBodies]dynamo.Body {
	v := dynamo.Vec(s.X1Dot, s.Y1Dot, 0)
	return [dynamo.NumBodies]dynamo.Body{
		{Position: dynamo.Vec(-1, 0, 0), Velocity: v},
		{Position: dynamo.Vec(1, 0, 0), Velocity: v},
		{Position: dynamo.Vec(0, 0, 0), Velocity: v.Scale(-2)},
	}
}
