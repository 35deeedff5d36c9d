package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// Config file
	configFile string
	// Preset name
	preset string

	width       int
	height      int
	gravity     float64
	dt          float64
	iterations  int
	relaxation  float64
	solver      string
	damping     float64
	pinMode     string
	steps       int
	recordEvery int
	frameRate   int
	noSave      bool

	// export-svg
	frameIdx   int
	traceIdx   int
	outFile    string
	svgWidth   int
	svgHeight  int
	particleID int

	// analyze
	settleTol float64

	// sweep / montecarlo / tune
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepPoints  int
	trials       int
	perturbation float64
	seed         int64
	gridSpec     string
	costWeight   float64
)

var logger *slog.Logger

// main registers the clothsim commands and executes the root command,
// exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "clothsim",
		Short: "verlet cloth simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
			slog.SetDefault(logger)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(logger)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a cloth headless and store the recorded frames",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&recordEvery, "record-every", 10, "record a frame every n steps (0 disables)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not write the run to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a cloth with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "steps per second")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run a cloth in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addConfigFlags(guiCmd)
	guiCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "steps per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particleID, "particle", -1, "also plot the height of this particle")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export recorded frames to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	rerunCmd := &cobra.Command{
		Use:   "rerun [run_id]",
		Short: "run a stored run's config again and store the result",
		Args:  cobra.ExactArgs(1),
		RunE:  rerunStored,
	}
	rerunCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps (default: the stored run's)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw a recorded frame or a particle trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "frame to draw (negative counts from the end)")
	exportSVGCmd.Flags().IntVar(&traceIdx, "trace", -1, "draw the path of this particle instead of a frame")
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark step throughput across grid sizes and solvers",
		Args:  cobra.NoArgs,
		RunE:  benchCloth,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 200, "steps per measurement")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sway spectrum, settling time and trajectory of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&particleID, "particle", -1, "particle to analyze (default middle of the bottom row)")
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", 1e-3, "mean height tolerance for settling")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run every entry of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and compare final strain",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per run")
	sweepCmd.Flags().StringVar(&sweepParam, "param", "iterations", fmt.Sprintf("parameter to vary %v", config.SweepParams))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 8, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed cloths and count the stable ones",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per trial")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturbation, "perturb", 0.1, "maximum initial displacement per axis of each unpinned particle (starts at rest)")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one from the clock)")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search solver parameters for the lowest final strain",
		Args:  cobra.NoArgs,
		RunE:  runTune,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "steps per run")
	tuneCmd.Flags().StringVar(&gridSpec, "grid", "iterations=1,2,4,8;relaxation=0.3,0.51,0.8,1", "grid as name=v1,v2;name=v1,v2")
	tuneCmd.Flags().Float64Var(&costWeight, "cost", 0, "score penalty per relaxation pass")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd,
		analyzeCmd, batchCmd, sweepCmd, monteCarloCmd, tuneCmd, rerunCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "particles per row")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "particles per column")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "downward acceleration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&iterations, "iterations", config.DefaultIterations, "relaxation passes per step")
	cmd.Flags().Float64Var(&relaxation, "relaxation", config.DefaultRelaxation, "relaxation factor in (0, 1]")
	cmd.Flags().StringVar(&solver, "solver", "gauss-seidel", "constraint solver (gauss-seidel, jacobi)")
	cmd.Flags().Float64Var(&damping, "damping", 0, "velocity damping in [0, 1)")
	cmd.Flags().StringVar(&pinMode, "pins", config.PinCorners, "pin mode (corners, top_row, none)")
}

// resolveConfig layers the configuration: defaults, then preset, then
// config file, then any flag set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("gravity") {
		cfg.Gravity = gravity
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("iterations") {
		cfg.Iterations = iterations
	}
	if flags.Changed("relaxation") {
		cfg.Relaxation = relaxation
	}
	if flags.Changed("solver") {
		cfg.Solver = solver
	}
	if flags.Changed("damping") {
		cfg.Damping = damping
	}
	if flags.Changed("pins") {
		cfg.Pins = config.PinsConfig{Mode: pinMode}
	}
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Lookup("record-every") != nil && flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Lookup("fps") != nil && flags.Changed("fps") {
		cfg.FPS = frameRate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
