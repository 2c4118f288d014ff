package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/config"
	"github.com/san-kum/choreo/internal/driver"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/metrics"
	"github.com/san-kum/choreo/internal/sim"
	"github.com/san-kum/choreo/internal/storage"
)

// Result is one recorded run.
type Result struct {
	Meta     storage.RunMetadata
	Recorded int
	Elapsed  time.Duration
}

// Record runs cfg headless for cfg.Frames frames, paced at fps when
// fps > 0, and saves the recorded frames to st. An interrupted run is
// still saved; the context error is returned alongside its result.
func Record(ctx context.Context, cfg *config.Config, st *storage.Store, fps int, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := st.Init(); err != nil {
		return nil, err
	}

	field := cfg.Field()
	rec := storage.NewRecorder(cfg.RecordEvery)
	runMetrics := []dynamo.Metric{
		metrics.NewEnergy(field),
		metrics.NewEnergyDrift(field),
		metrics.NewMomentumDrift(),
		metrics.NewStability(cfg.VelocityLimit, cfg.PositionLimit),
	}
	opts := []sim.Option{sim.WithLogger(logger), sim.WithObserver(rec)}
	for _, m := range runMetrics {
		opts = append(opts, sim.WithMetric(m))
	}
	ctrl, err := cfg.NewController(opts...)
	if err != nil {
		return nil, err
	}

	s := ctrl.SolutionInfo()
	logger.Info("recording", "solution", s.Name, "integrator", cfg.Integrator, "frames", cfg.Frames)

	start := time.Now()
	drv := driver.New(ctrl, fps)
	runErr := drv.Run(ctx, cfg.Frames, nil)
	if runErr != nil {
		logger.Warn("run interrupted", "frames", drv.Frames(), "err", runErr)
	}
	elapsed := time.Since(start)

	snap := ctrl.Snapshot()
	meta := storage.RunMetadata{
		Solution:      snap.Solution,
		Name:          snap.Name,
		Focus:         snap.Focus,
		Integrator:    snap.Integrator,
		Dt:            snap.Dt,
		StepsPerFrame: snap.StepsPerFrame,
		Period:        s.Period,
		Frames:        drv.Frames(),
		RecordEvery:   rec.Every(),
		Divergences:   snap.Divergences,
		Metrics:       make(map[string]float64, len(runMetrics)),
	}
	for _, m := range runMetrics {
		meta.Metrics[m.Name()] = m.Value()
	}

	id, err := st.Save(meta, rec.Frames())
	if err != nil {
		return nil, err
	}
	meta.ID = id
	logger.Info("saved run", "id", id, "recorded", len(rec.Frames()), "elapsed", elapsed)

	return &Result{Meta: meta, Recorded: len(rec.Frames()), Elapsed: elapsed}, runErr
}

// Scenario defines a scripted sequence of recorded runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base configuration for one run. Omitted
// fields keep the base value.
type ScenarioStep struct {
	Solution      string   `yaml:"solution"`
	Focus         *int     `yaml:"focus"`
	Integrator    string   `yaml:"integrator"`
	Frames        int      `yaml:"frames"`
	RecordEvery   int      `yaml:"record_every"`
	Softening     *float64 `yaml:"softening"`
	CheckInterval *int     `yaml:"check_interval"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no steps", dynamo.ErrInvalidParams, scenario.Name)
	}

	return &scenario, nil
}

// Apply returns a copy of base with the step's overrides.
func (s ScenarioStep) Apply(base *config.Config) (*config.Config, error) {
	cfg := *base
	if s.Solution != "" {
		idx, err := ParseSolution(s.Solution)
		if err != nil {
			return nil, err
		}
		cfg.Solution = idx
	}
	if s.Focus != nil {
		cfg.Focus = *s.Focus
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Frames > 0 {
		cfg.Frames = s.Frames
	}
	if s.RecordEvery > 0 {
		cfg.RecordEvery = s.RecordEvery
	}
	if s.Softening != nil {
		cfg.Softening = *s.Softening
	}
	if s.CheckInterval != nil {
		cfg.CheckInterval = *s.CheckInterval
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseSolution accepts a catalog index or a solution name or slug.
func ParseSolution(s string) (int, error) {
	if idx, err := strconv.Atoi(s); err == nil {
		if _, err := catalog.Get(idx); err != nil {
			return 0, err
		}
		return idx, nil
	}
	idx, _, err := catalog.Lookup(s)
	return idx, err
}

// RunScenario records every step in order. Steps are validated up front so
// a bad step late in the file does not leave a partial set of runs.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, st *storage.Store, logger *slog.Logger) ([]Result, error) {
	cfgs := make([]*config.Config, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Apply(base)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfgs[i] = cfg
	}

	results := make([]Result, 0, len(cfgs))
	for i, cfg := range cfgs {
		res, err := Record(ctx, cfg, st, 0, logger)
		if res != nil {
			results = append(results, *res)
		}
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return results, nil
}

// SweepParam names a configuration value a sweep varies.
type SweepParam string

const (
	SweepBaseDt    SweepParam = "base_dt"
	SweepSoftening SweepParam = "softening"
)

// ParameterSweep runs one solution across a range of parameter values
type ParameterSweep struct {
	Param    SweepParam
	Min      float64
	Max      float64
	NumSteps int
	Frames   int
	Workers  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue    float64
	EnergyDrift   float64
	MomentumDrift float64
	Divergences   int
	Elapsed       time.Duration
}

func (sw *ParameterSweep) values() []float64 {
	if sw.NumSteps < 2 {
		return []float64{sw.Min}
	}
	step := (sw.Max - sw.Min) / float64(sw.NumSteps-1)
	vals := make([]float64, sw.NumSteps)
	for i := range vals {
		vals[i] = sw.Min + float64(i)*step
	}
	return vals
}

func (sw *ParameterSweep) apply(base *config.Config, v float64) (*config.Config, error) {
	cfg := *base
	switch sw.Param {
	case SweepBaseDt:
		cfg.BaseDt = v
	case SweepSoftening:
		cfg.Softening = v
	default:
		return nil, fmt.Errorf("%w: cannot sweep %q", dynamo.ErrInvalidParams, sw.Param)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RunSweep executes a parameter sweep on base's solution, running the
// values concurrently.
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	frames := sweep.Frames
	if frames <= 0 {
		frames = base.Frames
	}

	vals := sweep.values()
	jobs := make([]sim.Job, len(vals))
	for i, v := range vals {
		cfg, err := sweep.apply(base, v)
		if err != nil {
			return nil, err
		}
		field := cfg.Field()
		jobs[i] = sim.Job{
			Label:    strconv.FormatFloat(v, 'g', -1, 64),
			Solution: cfg.Solution,
			Focus:    cfg.Focus,
			Frames:   frames,
			Build: func() (*sim.Controller, error) {
				integ, err := integrators.Get(cfg.Integrator, field)
				if err != nil {
					return nil, err
				}
				return sim.New(cfg.Params(), integ,
					sim.WithLogger(logger.With("param", sweep.Param, "value", v)),
					sim.WithMetric(metrics.NewEnergyDrift(field)),
					sim.WithMetric(metrics.NewMomentumDrift()),
				)
			},
		}
	}

	outcomes, err := sim.NewEnsemble(sweep.Workers).Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = SweepResult{
			ParamValue:    vals[i],
			EnergyDrift:   o.Metrics["energy_drift"],
			MomentumDrift: o.Metrics["momentum_drift"],
			Divergences:   o.Divergences,
			Elapsed:       o.Elapsed,
		}
	}
	return results, nil
}
