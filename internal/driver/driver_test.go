package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type counter struct{ n atomic.Int64 }

func (c *counter) Tick() { c.n.Add(1) }

func TestStep(t *testing.T) {
	c := &counter{}
	d := New(c, 60)

	for i := 1; i <= 3; i++ {
		got, err := d.Step()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != i {
			t.Errorf("step %d returned %d", i, got)
		}
	}
	if c.n.Load() != 3 || d.Frames() != 3 {
		t.Errorf("expected 3 ticks, got %d (frames %d)", c.n.Load(), d.Frames())
	}
	if d.Running() {
		t.Error("Step must not mark the driver running")
	}
}

func TestInterval(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{60, time.Second / 60},
		{1, time.Second},
		{0, 0},
		{-5, 0},
	}
	for _, tt := range tests {
		if got := New(&counter{}, tt.fps).Interval(); got != tt.want {
			t.Errorf("fps %d: expected %v, got %v", tt.fps, tt.want, got)
		}
	}
}

func TestRunMaxFrames(t *testing.T) {
	tests := []struct {
		name string
		fps  int
	}{
		{"unpaced", 0},
		{"paced", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &counter{}
			d := New(c, tt.fps)
			var seen []int

			err := d.Run(context.Background(), 25, func(frame int) { seen = append(seen, frame) })
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.n.Load() != 25 {
				t.Errorf("expected 25 ticks, got %d", c.n.Load())
			}
			if len(seen) != 25 || seen[0] != 1 || seen[24] != 25 {
				t.Errorf("unexpected frame callbacks: %v", seen)
			}
			if d.Running() {
				t.Error("driver still running after Run returned")
			}
		})
	}
}

func TestRunCancel(t *testing.T) {
	d := New(&counter{}, 0)
	ctx, cancel := context.WithCancel(context.Background())

	err := d.Run(ctx, 0, func(frame int) {
		if frame == 10 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if d.Frames() != 10 {
		t.Errorf("expected 10 frames, got %d", d.Frames())
	}
}

func TestRunStop(t *testing.T) {
	d := New(&counter{}, 0)

	err := d.Run(context.Background(), 0, func(frame int) {
		if frame == 7 {
			d.Stop()
		}
	})
	if err != nil {
		t.Fatalf("expected nil after Stop, got %v", err)
	}
	if d.Frames() != 7 {
		t.Errorf("expected 7 frames, got %d", d.Frames())
	}

	d.Stop()
}

func TestRunConcurrentStop(t *testing.T) {
	d := New(&counter{}, 200)
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background(), 0, nil) }()

	deadline := time.After(2 * time.Second)
	for !d.Running() {
		select {
		case <-deadline:
			t.Fatal("driver never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if err := d.Run(context.Background(), 1, nil); !errors.Is(err, ErrRunning) {
		t.Errorf("expected ErrRunning, got %v", err)
	}
	if _, err := d.Step(); !errors.Is(err, ErrRunning) {
		t.Errorf("expected ErrRunning from Step, got %v", err)
	}

	d.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-deadline:
		t.Fatal("driver did not stop")
	}
}

func TestStepInsideRun(t *testing.T) {
	c := &counter{}
	d := New(c, 0)
	var stepErr error

	err := d.Run(context.Background(), 3, func(frame int) {
		if frame == 2 {
			_, stepErr = d.Step()
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !errors.Is(stepErr, ErrRunning) {
		t.Errorf("expected ErrRunning, got %v", stepErr)
	}
	if c.n.Load() != 3 || d.Frames() != 3 {
		t.Errorf("expected 3 ticks, got %d (frames %d)", c.n.Load(), d.Frames())
	}
}
