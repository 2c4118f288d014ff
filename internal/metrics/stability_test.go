package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/choreo/internal/dynamo"
)

func TestStability(t *testing.T) {
	tests := []struct {
		name   string
		frames [][]dynamo.Body
		want   float64
	}{
		{"no samples", nil, 1},
		{"bounded", [][]dynamo.Body{
			{{Position: dynamo.Vec(1, 0, 0), Velocity: dynamo.Vec(0, 1, 0)}},
			{{Position: dynamo.Vec(2, 0, 0), Velocity: dynamo.Vec(0, 2, 0)}},
		}, 1},
		{"too fast", [][]dynamo.Body{
			{{Velocity: dynamo.Vec(11, 0, 0)}},
			{{Velocity: dynamo.Vec(1, 0, 0)}},
		}, 0.5},
		{"too far and non-finite", [][]dynamo.Body{
			{{Position: dynamo.Vec(0, 12, 0)}},
			{{Position: dynamo.Vec(math.Inf(1), 0, 0)}},
			{{Position: dynamo.Vec(0, 0, 1)}, {Position: dynamo.Vec(0, 0, 1)}},
			{{Position: dynamo.Vec(0, 0, 1)}, {Velocity: dynamo.Vec(math.NaN(), 0, 0)}},
		}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStability(10, 10)
			for _, f := range tt.frames {
				s.Observe(f)
			}
			if math.Abs(s.Value()-tt.want) > 1e-12 {
				t.Errorf("expected %g, got %g", tt.want, s.Value())
			}
			s.Reset()
			if s.Value() != 1 {
				t.Errorf("expected 1 after reset, got %g", s.Value())
			}
		})
	}
}
