package sim

import (
	"fmt"

	"github.com/san-kum/choreo/internal/dynamo"
)

// Params are the solution-independent tuning constants. The per-solution
// step size is BaseDt / InstabilityFactor and the sub-steps per frame are
// BaseSpeed * InstabilityFactor, so simulated time per frame is always
// BaseDt * BaseSpeed.
type Params struct {
	BaseDt        float64
	BaseSpeed     int
	CheckInterval int // frames between stability checks; 0 disables the check
	VelocityLimit float64
	PositionLimit float64
}

func DefaultParams() Params {
	return Params{
		BaseDt:        0.001,
		BaseSpeed:     5,
		CheckInterval: 100,
		VelocityLimit: 10,
		PositionLimit: 10,
	}
}

func (p Params) Validate() error {
	if p.BaseDt <= 0 {
		return fmt.Errorf("%w: base dt must be positive, got %g", dynamo.ErrInvalidParams, p.BaseDt)
	}
	if p.BaseSpeed < 1 {
		return fmt.Errorf("%w: base speed must be at least 1, got %d", dynamo.ErrInvalidParams, p.BaseSpeed)
	}
	if p.CheckInterval < 0 {
		return fmt.Errorf("%w: check interval must not be negative, got %d", dynamo.ErrInvalidParams, p.CheckInterval)
	}
	if p.VelocityLimit <= 0 || p.PositionLimit <= 0 {
		return fmt.Errorf("%w: stability limits must be positive", dynamo.ErrInvalidParams)
	}
	return nil
}

// BodyView is a read-only copy of one body and its trail, oldest point first.
type BodyView struct {
	Position dynamo.Vector3
	Velocity dynamo.Vector3
	Trail    []dynamo.Vector3
}

// Snapshot is a deep copy of the controller state for renderers.
type Snapshot struct {
	Solution      int
	Name          string
	Focus         int
	Integrator    string
	Dt            float64
	StepsPerFrame int
	TrailCapacity int
	Frame         int
	Time          float64
	Divergences   int
	Bodies        []BodyView
}
