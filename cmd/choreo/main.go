package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/choreo/internal/automation"
	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/config"
	"github.com/san-kum/choreo/internal/driver"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/export"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/metrics"
	"github.com/san-kum/choreo/internal/sim"
	"github.com/san-kum/choreo/internal/storage"
	"github.com/san-kum/choreo/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	theme      string

	solution    string
	focus       int
	integrator  string
	frameRate   int
	frames      int
	recordEvery int
	softening   float64
	checkEvery  int

	workers    int
	outPath    string
	plane      string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

// main registers the commands and runs the interactive menu when no
// subcommand is given. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "choreo",
		Short:        "periodic three-body choreography simulator",
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "start from a solution preset")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file for the terminal views")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeClassic.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	addSimFlags(rootCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a solution in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a solution headless and save the recorded frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	runCmd.Flags().IntVar(&recordEvery, "every", config.DefaultRecordEvery, "record every Nth frame")
	runCmd.Flags().IntVar(&frameRate, "fps", 0, "pace frames in real time (0 runs flat out)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot body coordinates and energy of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate the orbital period and divergence rate of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&analyzeBody, "body", 0, "body index")
	analyzeCmd.Flags().StringVar(&analyzeCoord, "coord", "x", "coordinate (x, y, z, vx, vy, vz)")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait or Poincaré section of one body",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&analyzeBody, "body", 0, "body index")
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "x", "coordinate for the x-axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "vx", "coordinate for the y-axis")
	phaseCmd.Flags().StringVar(&crossAxis, "section", "", "draw a Poincaré section where this coordinate crosses --threshold upward")
	phaseCmd.Flags().Float64Var(&threshold, "threshold", 0, "section threshold")

	svgCmd := &cobra.Command{
		Use:   "svg",
		Short: "simulate one trail length and write the trails as SVG",
		Args:  cobra.NoArgs,
		RunE:  writeSVG,
	}
	addSimFlags(svgCmd)
	svgCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <solution>.svg)")
	svgCmd.Flags().StringVar(&plane, "plane", "xy", "projection plane (xy, xz, yz)")

	solutionsCmd := &cobra.Command{
		Use:   "solutions",
		Short: "list the catalog with derived step sizes",
		Args:  cobra.NoArgs,
		RunE:  listSolutions,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "compare integrators on the same solution",
		RunE:  compareIntegrators,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per integrator")
	compareCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure frames per second for every solution",
		Args:  cobra.NoArgs,
		RunE:  benchSolutions,
	}
	benchCmd.Flags().StringVar(&integrator, "integrator", integrators.Default, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	benchCmd.Flags().IntVar(&frames, "frames", 1000, "frames per solution")
	benchCmd.Flags().IntVar(&workers, "workers", 1, "parallel runs")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "record every step of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [base_dt|softening]",
		Short: "run one solution across a range of parameter values",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.0005, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.004, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of values")
	sweepCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames per value")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-16s %s\n", name, catalog.All()[p.Solution].Name)
			}
		},
	}

	rootCmd.AddCommand(liveCmd, runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, analyzeCmd, phaseCmd, svgCmd, solutionsCmd, compareCmd, benchCmd, scenarioCmd, sweepCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&solution, "solution", "", "solution index or name (see `choreo solutions`)")
	cmd.Flags().IntVar(&focus, "focus", -1, "body to follow (-1 for the center of mass)")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.Default, "integrator ("+strings.Join(integrators.Names(), ", ")+")")
	cmd.Flags().Float64Var(&softening, "softening", 0, "gravitational softening length")
	cmd.Flags().IntVar(&checkEvery, "check-every", 0, "frames between stability checks (0 disables)")
}

// resolveConfig applies preset, then config file, then flags that were set
// on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("solution") {
		idx, err := automation.ParseSolution(solution)
		if err != nil {
			return nil, err
		}
		cfg.Solution = idx
	}
	if flags.Changed("focus") {
		cfg.Focus = focus
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("softening") {
		cfg.Softening = softening
	}
	if flags.Changed("check-every") {
		cfg.CheckInterval = checkEvery
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes text logs to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// viewLogger keeps logs off the alternate screen: they go to --log-file
// when given and are dropped otherwise.
func viewLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if logFile == "" {
		l, err := newLogger(cfg, io.Discard)
		return l, func() {}, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	l, err := newLogger(cfg, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return l, func() { f.Close() }, nil
}

func viewOptions(cmd *cobra.Command) (*config.Config, viz.Options, func(), error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, viz.Options{}, nil, err
	}
	logger, closeLog, err := viewLogger(cfg)
	if err != nil {
		return nil, viz.Options{}, nil, err
	}
	viz.SetTheme(theme)
	opts := viz.Options{
		FPS:     cfg.FPS,
		Field:   cfg.Field(),
		SaveDir: cfg.DataDir,
		Logger:  logger,
	}
	return cfg, opts, closeLog, nil
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, opts, closeLog, err := viewOptions(cmd)
	if err != nil {
		return err
	}
	defer closeLog()
	return viz.RunInteractive(cfg, opts)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, opts, closeLog, err := viewOptions(cmd)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	ctrl, err := cfg.NewController(sim.WithLogger(opts.Logger))
	if err != nil {
		return err
	}
	return viz.RunLive(ctrl, opts)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("running %s for %d frames...\n", catalog.All()[cfg.Solution].Name, cfg.Frames)
	res, err := automation.Record(cmd.Context(), cfg, storage.New(cfg.DataDir), frameRate, logger)
	if res != nil {
		printResult(res)
	}
	return err
}

func printResult(res *automation.Result) {
	meta := res.Meta
	fmt.Printf("completed in %v\n", res.Elapsed)
	fmt.Printf("run id: %s\n", meta.ID)
	fmt.Printf("frames: %d (%d recorded)\n", meta.Frames, res.Recorded)
	fmt.Printf("divergence resets: %d\n", meta.Divergences)
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(meta.Metrics)) {
		fmt.Printf("  %s: %.6g\n", name, meta.Metrics[name])
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))
	results, err := automation.RunScenario(cmd.Context(), scenario, cfg, storage.New(cfg.DataDir), logger)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tID\tSOLUTION\tINTEG\tFRAMES\tRESETS\tENERGY_DRIFT")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%.2e\n",
			i+1, r.Meta.ID, r.Meta.Name, r.Meta.Integrator, r.Meta.Frames, r.Meta.Divergences, r.Meta.Metrics["energy_drift"])
	}
	if flushErr := w.Flush(); err == nil {
		err = flushErr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	sweep := &automation.ParameterSweep{
		Param:    automation.SweepParam(args[0]),
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Frames:   cfg.Frames,
		Workers:  workers,
	}
	fmt.Printf("sweeping %s on %s (%d frames per value)\n\n", sweep.Param, catalog.All()[cfg.Solution].Name, cfg.Frames)
	results, err := automation.RunSweep(cmd.Context(), sweep, cfg, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY_DRIFT\tMOMENTUM_DRIFT\tRESETS\tTIME_MS\n", strings.ToUpper(string(sweep.Param)))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.2e\t%.2e\t%d\t%.2f\n",
			r.ParamValue, r.EnergyDrift, r.MomentumDrift, r.Divergences, float64(r.Elapsed.Microseconds())/1000)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOLUTION\tTIME\tFRAMES\tDT\tINTEG\tRESETS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2e\t%s\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Integrator,
			run.Divergences,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	recorded, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	if outPath != "" {
		return storage.ExportJSON(outPath, meta, recorded)
	}
	return storage.WriteJSON(os.Stdout, meta, recorded)
}

func writeSVG(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	switch plane {
	case "xy":
		opts.Plane = export.PlaneXY
	case "xz":
		opts.Plane = export.PlaneXZ
	case "yz":
		opts.Plane = export.PlaneYZ
	default:
		return fmt.Errorf("unknown plane: %s", plane)
	}

	ctrl, err := cfg.NewController(sim.WithLogger(logger))
	if err != nil {
		return err
	}
	// one full trail of history
	drv := driver.New(ctrl, 0)
	if err := drv.Run(cmd.Context(), ctrl.TrailCapacity(), nil); err != nil {
		return err
	}

	trails := make([][]dynamo.Vector3, dynamo.NumBodies)
	for i := range trails {
		trails[i] = ctrl.Trail(i, nil)
	}

	path := outPath
	if path == "" {
		path = ctrl.SolutionInfo().Slug() + ".svg"
	}
	if err := export.SaveSVG(path, trails, opts); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames, %d divergence resets)\n", path, drv.Frames(), ctrl.Divergences())
	return nil
}

func listSolutions(cmd *cobra.Command, args []string) error {
	integ, err := integrators.Get(integrators.Default, nil)
	if err != nil {
		return err
	}
	ctrl, err := sim.New(sim.DefaultParams(), integ)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tSLUG\tCLASS\tFACTOR\tPERIOD\tDT\tSTEPS\tTRAIL")
	for i, s := range catalog.All() {
		if err := ctrl.Reset(i, -1); err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%g\t%g\t%.2e\t%d\t%d\n",
			i, s.Name, s.Slug(), s.Class, s.InstabilityFactor, s.Period,
			ctrl.Dt(), ctrl.StepsPerFrame(), ctrl.TrailCapacity())
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	field := cfg.Field()
	jobs := make([]sim.Job, len(names))
	for i, name := range names {
		jobs[i] = sim.Job{
			Label:    name,
			Solution: cfg.Solution,
			Focus:    cfg.Focus,
			Frames:   cfg.Frames,
			Build: func() (*sim.Controller, error) {
				integ, err := integrators.Get(name, field)
				if err != nil {
					return nil, err
				}
				return sim.New(cfg.Params(), integ,
					sim.WithLogger(logger),
					sim.WithMetric(metrics.NewEnergyDrift(field)),
					sim.WithMetric(metrics.NewMomentumDrift()),
				)
			},
		}
	}

	s := catalog.All()[cfg.Solution]
	fmt.Printf("comparing integrators on %s (%d frames)\n\n", s.Name, cfg.Frames)

	outcomes, err := sim.NewEnsemble(workers).Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tENERGY_DRIFT\tMOMENTUM_DRIFT\tRESETS\tTIME_MS")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%s\t%.2e\t%.2e\t%d\t%.2f\n",
			o.Integrator,
			o.Metrics["energy_drift"],
			o.Metrics["momentum_drift"],
			o.Divergences,
			float64(o.Elapsed.Microseconds())/1000,
		)
	}
	return w.Flush()
}

func benchSolutions(cmd *cobra.Command, args []string) error {
	if _, err := integrators.Get(integrator, nil); err != nil {
		return err
	}

	params := sim.DefaultParams()
	params.CheckInterval = 0
	jobs := make([]sim.Job, catalog.Len())
	for i, s := range catalog.All() {
		jobs[i] = sim.Job{
			Label:    s.Name,
			Solution: i,
			Focus:    -1,
			Frames:   frames,
			Build: func() (*sim.Controller, error) {
				integ, err := integrators.Get(integrator, nil)
				if err != nil {
					return nil, err
				}
				return sim.New(params, integ)
			},
		}
	}

	fmt.Printf("benchmarking %s, %d frames per solution\n\n", integrator, frames)
	outcomes, err := sim.NewEnsemble(workers).Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLUTION\tSTEPS/FRAME\tTIME\tFRAMES/SEC\tSTEPS/SEC")
	for i, o := range outcomes {
		steps := int(math.Round(float64(params.BaseSpeed) * catalog.All()[i].InstabilityFactor))
		fps := float64(o.Frames) / o.Elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.0f\n", o.Label, steps, o.Elapsed.Round(time.Microsecond), fps, fps*float64(steps))
	}
	return w.Flush()
}
