package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/mpetrov/gravlab/internal/analysis"
	"github.com/mpetrov/gravlab/internal/config"
	"github.com/mpetrov/gravlab/internal/gravity"
	"github.com/mpetrov/gravlab/internal/gui"
	"github.com/mpetrov/gravlab/internal/metrics"
	"github.com/mpetrov/gravlab/internal/sim"
	"github.com/mpetrov/gravlab/internal/storage"
	"github.com/mpetrov/gravlab/internal/viz"
)

var (
	dataDir     string
	dt          float64
	duration    float64
	gConst      float64
	stepperName string
	configFile  string
	preset      string
	withAudio   bool
	bodyIdx     int
	axis        string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gravlab",
		Short: "small-n gravitational simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the windowed simulation when no command given.
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return gui.Run(cfg, withAudio)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravlab", "data directory")
	addScenarioFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store the result",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run the windowed simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return gui.Run(cfg, withAudio)
		},
	}
	addScenarioFlags(guiCmd)

	circleCmd := &cobra.Command{
		Use:   "circle",
		Short: "open the circle-fan demo window",
		Run: func(cmd *cobra.Command, args []string) {
			gui.RunCircle()
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the simulation with a live terminal view",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored coordinate trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&bodyIdx, "body", 0, "body index")
	plotCmd.Flags().StringVar(&axis, "axis", "x", "axis to plot (x, y, z)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored trace",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bodyIdx, "body", 0, "body index")
	analyzeCmd.Flags().StringVar(&axis, "axis", "x", "axis to analyze (x, y, z)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, guiCmd, circleCmd, liveCmd, listCmd, plotCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&gConst, "g", gravity.DefaultG, "gravitational constant")
	cmd.Flags().StringVar(&stepperName, "stepper", "euler", "stepper (euler, leapfrog)")
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset scenario")
	cmd.Flags().BoolVar(&withAudio, "audio", false, "sonify kinetic energy (gui only)")
}

// resolveConfig builds the effective scenario: preset, then config
// file, then defaults, with explicitly set CLI flags taking precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		p, err := config.Preset(preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("g") {
		cfg.G = gConst
	}
	if cmd.Flags().Changed("stepper") {
		cfg.Stepper = stepperName
	}

	return cfg, nil
}

func scenarioName() string {
	if preset != "" {
		return preset
	}
	if configFile != "" {
		return "custom"
	}
	return "reference"
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	bodies, err := cfg.InitialBodies()
	if err != nil {
		return err
	}
	stepper, err := gravity.ByName(cfg.Stepper)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	field := cfg.Field()
	simulator := sim.New(field, stepper)
	simulator.AddMetric(metrics.NewMomentum())
	simulator.AddMetric(metrics.NewEnergyDrift(field))

	fmt.Printf("running %s scenario (%d bodies)...\n", scenarioName(), len(bodies))
	start := time.Now()

	result, err := simulator.Run(context.Background(), bodies, sim.Config{
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		MaxDt:    cfg.MaxDt,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(scenarioName(), field.G, cfg.Dt, cfg.Duration, cfg.Stepper, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)

	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6e\n", name, val)
	}

	for _, stepErr := range result.Errors {
		fmt.Printf("\nrun stopped early: %v\n", stepErr)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	bodies, err := cfg.InitialBodies()
	if err != nil {
		return err
	}
	stepper, err := gravity.ByName(cfg.Stepper)
	if err != nil {
		return err
	}

	m := viz.NewModel(cfg.Field(), stepper, bodies, cfg.Dt, scenarioName())
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tBODIES\tDURATION\tDT\tSTEPPER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2fs\t%.4fs\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.Duration,
			run.Dt,
			run.Stepper,
		)
	}

	return w.Flush()
}

// trace extracts one coordinate of one body from a stored run.
func trace(runID string) ([]float64, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	frames, _, err := st.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	if bodyIdx < 0 || bodyIdx >= len(frames[0]) {
		return nil, nil, fmt.Errorf("body index %d out of range (run has %d bodies)", bodyIdx, len(frames[0]))
	}

	data := make([]float64, len(frames))
	for i, frame := range frames {
		switch axis {
		case "x":
			data[i] = frame[bodyIdx].X
		case "y":
			data[i] = frame[bodyIdx].Y
		case "z":
			data[i] = frame[bodyIdx].Z
		default:
			return nil, nil, fmt.Errorf("unknown axis %q (want x, y or z)", axis)
		}
	}

	return data, meta, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	data, meta, err := trace(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	graph := asciigraph.Plot(data,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("body %d, %s", bodyIdx, axis)),
	)
	fmt.Println(graph)

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	data, meta, err := trace(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n\n", meta.Scenario)

	ps := analysis.PowerSpectrum(data)
	plotData := ps
	if len(ps) > 4 {
		plotData = ps[:len(ps)/4]
	}

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (body %d, %s)", bodyIdx, axis)),
	)
	fmt.Println(graph)
	fmt.Println()

	period := analysis.DominantPeriod(data, meta.Dt)
	if period > 0 {
		fmt.Printf("dominant period: %.3f s\n", period)
		fmt.Printf("dominant frequency: %.3f hz\n", 1.0/period)
	} else {
		fmt.Println("no dominant oscillation found")
	}

	return nil
}
