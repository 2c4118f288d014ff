package dynamo

// NumBodies is fixed: every choreography in the catalog has three equal masses.
const NumBodies = 3

// Body is the dynamical state of one unit-mass body.
type Body struct {
	Position Vector3
	Velocity Vector3
}

// IsValid reports whether position and velocity are finite.
func (b Body) IsValid() bool {
	return b.Position.IsFinite() && b.Velocity.IsFinite()
}

// CloneBodies returns an independent copy of bodies.
func CloneBodies(bodies []Body) []Body {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return c
}

// ResetReason tells observers why the controller rebuilt its state.
type ResetReason int

const (
	// ResetRequested is an explicit Reset call (solution or focus selection).
	ResetRequested ResetReason = iota
	// ResetDiverged is the automatic restart after a failed stability check.
	ResetDiverged
)

func (r ResetReason) String() string {
	switch r {
	case ResetRequested:
		return "requested"
	case ResetDiverged:
		return "diverged"
	default:
		return "unknown"
	}
}

type Observer interface {
	OnFrame(frame int, t float64, bodies []Body)
	OnReset(reason ResetReason)
}

type Metric interface {
	Name() string
	Observe(bodies []Body)
	Value() float64
	Reset()
}
