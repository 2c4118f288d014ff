package metrics

import (
	"math"

	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/physics"
)

// Energy is the mean total energy over the observed frames.
type Energy struct {
	name        string
	field       *physics.Field
	samples     int
	totalEnergy float64
}

func NewEnergy(field *physics.Field) *Energy {
	if field == nil {
		field = physics.NewField()
	}
	return &Energy{
		name:  "energy",
		field: field,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(bodies []dynamo.Body) {
	e.totalEnergy += e.field.Energy(bodies)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation of the total energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	field         *physics.Field
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(field *physics.Field) *EnergyDrift {
	if field == nil {
		field = physics.NewField()
	}
	return &EnergyDrift{
		name:  "energy_drift",
		field: field,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(bodies []dynamo.Body) {
	energy := e.field.Energy(bodies)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Current returns the most recently observed total energy.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift is the largest magnitude reached by the change in total
// linear momentum since the first observation. Recentering never touches
// velocities, so it measures the integrator alone.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vector3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(bodies []dynamo.Body) {
	p := physics.Momentum(bodies)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vector3{}
	m.maxDrift = 0
	m.samples = 0
}
