package main

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/choreo/internal/analysis"
	"github.com/san-kum/choreo/internal/catalog"
	"github.com/san-kum/choreo/internal/dynamo"
	"github.com/san-kum/choreo/internal/integrators"
	"github.com/san-kum/choreo/internal/physics"
	"github.com/san-kum/choreo/internal/storage"
)

var (
	analyzeBody  int
	analyzeCoord string
	xAxis        string
	yAxis        string
	crossAxis    string
	threshold    float64
)

// bodySeriesColors matches the body colours of the renderers.
var bodySeriesColors = asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green, asciigraph.Red)

func loadRun(id string) (*storage.RunMetadata, []storage.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadFrames(id)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded frames", id)
	}
	return meta, frames, nil
}

func checkBody(body int) error {
	if body < 0 || body >= dynamo.NumBodies {
		return &dynamo.ArgumentError{Name: "body", Value: body, Min: 0, Max: dynamo.NumBodies - 1}
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("solution: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(frames))

	for _, c := range []analysis.Coordinate{analysis.CoordX, analysis.CoordY} {
		series := make([][]float64, dynamo.NumBodies)
		for b := range series {
			series[b] = analysis.Series(frames, b, c)
		}
		graph := asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			bodySeriesColors,
			asciigraph.Caption(fmt.Sprintf("%s vs time (body 0 blue, 1 green, 2 red)", c)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	field := physics.NewField()
	energy := storage.Column(frames, func(f storage.Frame) float64 { return field.Energy(f.Bodies[:]) })
	graph := asciigraph.Plot(energy,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("total energy"),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	if err := checkBody(analyzeBody); err != nil {
		return err
	}
	coord, err := analysis.ParseCoordinate(analyzeCoord)
	if err != nil {
		return err
	}
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data := analysis.Series(frames, analyzeBody, coord)
	interval := meta.FrameInterval()

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("solution: %s, body %d, %s\n\n", meta.Name, analyzeBody, coord)

	ps := analysis.PowerSpectrum(data)
	if n := len(ps) / 4; n > 1 {
		graph := asciigraph.Plot(ps[:n],
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("power spectrum (%s%d)", coord, analyzeBody)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	peaks, err := analysis.Peaks(data, interval, 3)
	if err != nil {
		return err
	}
	fmt.Println("strongest peaks:")
	for _, p := range peaks {
		fmt.Printf("  f=%.4f  period=%.4f  power=%.3g\n", p.Frequency, p.Period, p.Power)
	}

	if period, err := analysis.DominantPeriod(data, interval); err == nil {
		fmt.Printf("\ndominant period: %.4f\n", period)
		if meta.Period > 0 {
			fmt.Printf("catalog period:  %.4f (ratio %.3f)\n", meta.Period, meta.Period/period)
		}
	}
	if span := interval * float64(len(data)); span < meta.Period {
		fmt.Printf("note: run covers %.2f time units, less than one period\n", span)
	}

	s, err := catalog.Get(meta.Solution)
	if err != nil {
		return err
	}
	integ, err := integrators.Get(meta.Integrator, nil)
	if err != nil {
		return err
	}
	initial := s.InitialBodies()
	steps := int(math.Round(s.Period / meta.Dt))
	lambda := analysis.LyapunovExponent(integ, initial[:], meta.Dt, steps, 100, 1e-8)
	fmt.Printf("\nlyapunov exponent over one period: %.4f (instability factor %g)\n", lambda, s.InstabilityFactor)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	if err := checkBody(analyzeBody); err != nil {
		return err
	}
	x, err := analysis.ParseCoordinate(xAxis)
	if err != nil {
		return err
	}
	y, err := analysis.ParseCoordinate(yAxis)
	if err != nil {
		return err
	}
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("solution: %s, body %d\n", meta.Name, analyzeBody)

	if crossAxis != "" {
		cross, err := analysis.ParseCoordinate(crossAxis)
		if err != nil {
			return err
		}
		section := analysis.NewPoincareSection(frames, analyzeBody, cross, threshold, x, y)
		fmt.Printf("poincaré section %s = %g (upward), %d crossings, %s vs %s\n\n", cross, threshold, len(section.Points), y, x)
		fmt.Println(section.ToASCII(70, 20))
		return nil
	}

	portrait := analysis.NewPhasePortrait(frames, analyzeBody, x, y)
	fmt.Printf("phase portrait: %s vs %s\n\n", y, x)
	fmt.Println(portrait.ToASCII(70, 20))
	return nil
}
