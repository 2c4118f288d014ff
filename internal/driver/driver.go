// Package driver advances a simulation frame by frame.
//
// A Driver either follows an external clock (Step, called from a TUI tick
// message) or runs its own loop (Run), paced at a fixed frame rate or as
// fast as possible for headless runs.
package driver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var ErrRunning = errors.New("driver: already running")

// Ticker advances the simulation by one display frame.
type Ticker interface {
	Tick()
}

type Driver struct {
	ticker   Ticker
	interval time.Duration

	frames  atomic.Int64
	running atomic.Bool

	mu   sync.Mutex
	stop chan struct{}
}

// New returns a driver for t. fps <= 0 means unpaced.
func New(t Ticker, fps int) *Driver {
	d := &Driver{ticker: t}
	if fps > 0 {
		d.interval = time.Second / time.Duration(fps)
	}
	return d
}

func (d *Driver) Interval() time.Duration { return d.interval }
func (d *Driver) Frames() int             { return int(d.frames.Load()) }
func (d *Driver) Running() bool           { return d.running.Load() }

// Step advances exactly one frame and returns the driver's frame count.
// It fails with ErrRunning, without ticking, while Run or another Step is in
// progress.
func (d *Driver) Step() (int, error) {
	if !d.running.CompareAndSwap(false, true) {
		return d.Frames(), ErrRunning
	}
	defer d.running.Store(false)
	return d.advance(), nil
}

func (d *Driver) advance() int {
	d.ticker.Tick()
	return int(d.frames.Add(1))
}

// Run advances frames until ctx is done, Stop is called, or maxFrames
// frames have run (0 means no limit). onFrame, if not nil, is called after
// every frame with the driver's frame count. Only cancellation of ctx is
// reported as an error.
func (d *Driver) Run(ctx context.Context, maxFrames int, onFrame func(frame int)) error {
	stop := make(chan struct{})
	if !d.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	d.mu.Lock()
	d.stop = stop
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.stop = nil
		d.running.Store(false)
		d.mu.Unlock()
	}()

	var tick <-chan time.Time
	if d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 0; maxFrames <= 0 || n < maxFrames; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-stop:
				return nil
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-stop:
				return nil
			default:
			}
		}

		frame := d.advance()
		if onFrame != nil {
			onFrame(frame)
		}
	}
	return nil
}

// Stop ends a Run in progress. It is a no-op when nothing is running and
// safe to call from any goroutine.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}
