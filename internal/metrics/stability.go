package metrics

import (
	"github.com/san-kum/choreo/internal/dynamo"
)

// Stability is the fraction of observed frames in which every body stayed
// within the given speed and distance bounds. Non-finite state counts as a
// violation.
type Stability struct {
	name          string
	velocityLimit float64
	positionLimit float64
	violations    int
	samples       int
}

func NewStability(velocityLimit, positionLimit float64) *Stability {
	return &Stability{
		name:          "stability",
		velocityLimit: velocityLimit,
		positionLimit: positionLimit,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(bodies []dynamo.Body) {
	s.samples++
	for _, b := range bodies {
		if !b.IsValid() || b.Velocity.Norm() > s.velocityLimit || b.Position.Norm() > s.positionLimit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
