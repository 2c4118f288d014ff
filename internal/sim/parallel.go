package sim

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Job is one headless run: a controller built by Build, reset to
// Solution/Focus and ticked for Frames frames.
type Job struct {
	Label    string
	Solution int
	Focus    int
	Frames   int
	Build    func() (*Controller, error)
}

// Outcome summarizes a finished Job.
type Outcome struct {
	Label       string
	Solution    int
	Integrator  string
	Frames      int
	Divergences int
	Metrics     map[string]float64
	Elapsed     time.Duration
}

// Ensemble runs independent jobs concurrently. Every job owns its
// controller, so the single-writer rule holds per goroutine.
type Ensemble struct {
	workers int
}

func NewEnsemble(workers int) *Ensemble {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Ensemble{workers: workers}
}

// Run executes jobs and returns their outcomes in job order. The first
// error cancels the remaining jobs.
func (e *Ensemble) Run(ctx context.Context, jobs []Job) ([]Outcome, error) {
	outcomes := make([]Outcome, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, job := range jobs {
		g.Go(func() error {
			out, err := runJob(ctx, job)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func runJob(ctx context.Context, job Job) (Outcome, error) {
	c, err := job.Build()
	if err != nil {
		return Outcome{}, err
	}
	if err := c.Reset(job.Solution, job.Focus); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	for i := 0; i < job.Frames; i++ {
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		default:
		}
		c.Tick()
	}

	out := Outcome{
		Label:       job.Label,
		Solution:    job.Solution,
		Integrator:  c.Integrator().Name(),
		Frames:      job.Frames,
		Divergences: c.Divergences(),
		Metrics:     make(map[string]float64, len(c.metrics)),
		Elapsed:     time.Since(start),
	}
	for _, m := range c.metrics {
		out.Metrics[m.Name()] = m.Value()
	}
	return out, nil
}
