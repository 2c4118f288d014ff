package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/choreo/internal/config"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseSolution(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"0", 0, true},
		{"moth-i", 3, true},
		{"Moth I", 3, true},
		{"goggles", 7, true},
		{"15", 0, false},
		{"-1", 0, false},
		{"nope", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSolution(tt.in)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("ParseSolution(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
				}
				return
			}
			if !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("ParseSolution(%q) error = %v, want ErrInvalidArgument", tt.in, err)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	st := storage.New(t.TempDir())
	cfg := config.DefaultConfig()
	cfg.Frames = 40
	cfg.RecordEvery = 4

	res, err := Record(context.Background(), cfg, st, 0, quietLogger())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if res.Meta.Frames != 40 || res.Recorded != 10 {
		t.Errorf("frames %d recorded %d, want 40 and 10", res.Meta.Frames, res.Recorded)
	}
	if res.Meta.Name != "Moth I" || res.Meta.StepsPerFrame != 5 {
		t.Errorf("unexpected metadata %+v", res.Meta)
	}
	for _, name := range []string{"energy", "energy_drift", "momentum_drift", "stability"} {
		if _, ok := res.Meta.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}

	frames, err := st.LoadFrames(res.Meta.ID)
	if err != nil {
		t.Fatalf("LoadFrames: %v", err)
	}
	if len(frames) != 10 || frames[0].Frame != 4 {
		t.Errorf("loaded %d frames starting at %d", len(frames), frames[0].Frame)
	}
}

func TestRecord_Cancelled(t *testing.T) {
	st := storage.New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Record(ctx, config.DefaultConfig(), st, 0, quietLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if res == nil || res.Meta.Frames != 0 {
		t.Fatalf("expected an empty saved run, got %+v", res)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 1 {
		t.Errorf("List = %d runs, %v; want the interrupted run", len(runs), err)
	}
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `name: tour
steps:
  - solution: goggles
    focus: 0
    frames: 10
  - solution: "4"
    integrator: rk4-coupled
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Name != "tour" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[0].Focus == nil || *sc.Steps[0].Focus != 0 {
		t.Error("explicit focus 0 was lost")
	}
	if sc.Steps[1].Focus != nil {
		t.Error("omitted focus should be nil")
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("empty scenario: got %v", err)
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [\n")); err == nil {
		t.Error("expected parse error")
	}
}

func TestScenarioStep_Apply(t *testing.T) {
	base := config.DefaultConfig()
	zero := 0
	soft := 0.01

	cfg, err := ScenarioStep{Solution: "goggles", Focus: &zero, Softening: &soft, Frames: 7}.Apply(base)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Solution != 7 || cfg.Focus != 0 || cfg.Softening != 0.01 || cfg.Frames != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if base.Solution != 3 || base.Focus != -1 {
		t.Error("Apply modified the base config")
	}

	if _, err := (ScenarioStep{Integrator: "midpoint"}).Apply(base); !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("bad integrator: got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	st := storage.New(t.TempDir())
	base := config.DefaultConfig()
	base.Frames = 10

	sc := &Scenario{Name: "pair", Steps: []ScenarioStep{{Solution: "moth-i"}, {Solution: "goggles", Frames: 5}}}
	results, err := RunScenario(context.Background(), sc, base, st, quietLogger())
	if err != nil {
		t.Fatalf("RunScenario: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Meta.Name != "Moth I" || results[1].Meta.Name != "Goggles" || results[1].Meta.Frames != 5 {
		t.Errorf("unexpected results %+v", results)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 2 {
		t.Errorf("List = %d runs, %v; want 2", len(runs), err)
	}
}

func TestRunScenario_ValidatesFirst(t *testing.T) {
	st := storage.New(filepath.Join(t.TempDir(), "runs"))
	sc := &Scenario{Steps: []ScenarioStep{{Solution: "moth-i"}, {Solution: "nope"}}}

	if _, err := RunScenario(context.Background(), sc, config.DefaultConfig(), st, quietLogger()); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List = %d runs, %v; want none", len(runs), err)
	}
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	sweep := &ParameterSweep{Param: SweepSoftening, Min: 0, Max: 0.02, NumSteps: 3, Frames: 10, Workers: 2}

	results, err := RunSweep(context.Background(), sweep, base, quietLogger())
	if err != nil {
		t.Fatalf("RunSweep: %v", err)
	}
	want := []float64{0, 0.01, 0.02}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for i, r := range results {
		if r.ParamValue != want[i] {
			t.Errorf("result %d value %g, want %g", i, r.ParamValue, want[i])
		}
		if r.Divergences != 0 {
			t.Errorf("value %g diverged", r.ParamValue)
		}
	}
}

func TestRunSweep_Errors(t *testing.T) {
	base := config.DefaultConfig()

	bad := &ParameterSweep{Param: "mass", Min: 1, Max: 2, NumSteps: 2}
	if _, err := RunSweep(context.Background(), bad, base, quietLogger()); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("unknown param: got %v", err)
	}

	negative := &ParameterSweep{Param: SweepBaseDt, Min: -1, Max: 1, NumSteps: 2}
	if _, err := RunSweep(context.Background(), negative, base, quietLogger()); !errors.Is(err, dynamo.ErrInvalidParams) {
		t.Errorf("negative dt: got %v", err)
	}
}
