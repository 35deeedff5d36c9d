package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/gui"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, set, err := sim.FromConfig(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("running simulation",
		"preset", cfg.Name,
		"grid", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"solver", cfg.Solver,
		"steps", cfg.Steps,
	)
	start := time.Now()

	result, err := s.Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	for _, e := range result.Errors {
		logger.Warn("run stopped early", "error", e)
	}
	logger.Info("simulation complete", "elapsed", elapsed, "summary", set.Summary(s.StepCount(), s.Time()))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d  frames: %d  skipped pairs: %d\n", result.StepsTaken, len(result.Frames), result.Skipped)
	if at, ok := set.Stability.FirstFailure(); ok {
		fmt.Printf("unstable from t=%.4g (max excursion %.3g, non-finite %d)\n",
			at, set.Stability.MaxExcursion(), set.Stability.NonFinite())
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return viz.Run(cfg, logger)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return gui.Run(cfg, logger)
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tGRID\tSOLVER\tSTEPS\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%d\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Solver,
			run.Steps,
			run.Frames,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("grid: %dx%d\n", meta.Width, meta.Height)
	fmt.Printf("frames: %d\n\n", len(frames))

	meanY := analysis.MeanHeight(frames)
	lowest := make([]float64, len(frames))
	for i, fr := range frames {
		lowest[i] = fr.Positions[0].Y
		for _, p := range fr.Positions {
			lowest[i] = min(lowest[i], p.Y)
		}
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"mean height", meanY},
		{"lowest particle", lowest},
	}

	if particleID >= 0 {
		data := make([]float64, 0, len(frames))
		for _, fr := range frames {
			if particleID < len(fr.Positions) {
				data = append(data, fr.Positions[particleID].Y)
			}
		}
		series = append(series, struct {
			caption string
			data    []float64
		}{fmt.Sprintf("particle %d height", particleID), data})
	}

	for _, s := range series {
		if len(s.data) < 2 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteFrames(os.Stdout, frames)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}
	if err := st.ExportJSONFile(outFile, args[0]); err != nil {
		return err
	}
	logger.Info("wrote json", "path", outFile)
	return nil
}

// rerunStored replays a stored run from its saved config and stores the
// result as a new run.
func rerunStored(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}

	s, set, err := sim.FromConfig(cfg, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := s.Run(ctx, cfg.Steps)
	if err != nil {
		return err
	}
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	logger.Info("rerun complete", "from", args[0], "summary", set.Summary(s.StepCount(), s.Time()))
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return fmt.Errorf("no frames recorded for %s", runID)
	}

	var svg string
	if traceIdx >= 0 {
		svg = export.TrajectoryToSVG(frames, traceIdx, svgWidth, svgHeight, "#00ccff")
	} else {
		idx := frameIdx
		if idx < 0 {
			idx += len(frames)
		}
		if idx < 0 || idx >= len(frames) {
			return fmt.Errorf("frame %d out of range (%d frames)", frameIdx, len(frames))
		}
		svg = export.MeshToSVG(frames[idx].Positions, mesh.Quads(meta.Width, meta.Height), svgWidth, svgHeight, "#f5e6c8")
	}
	if svg == "" {
		return fmt.Errorf("nothing to draw")
	}

	if outFile == "" {
		_, err = fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("wrote svg", "path", outFile)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tGRAVITY\tDT\tITER\tSOLVER\tPINS")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%dx%d\t%g\t%.4g\t%d\t%s\t%s\n",
			name, p.Width, p.Height, p.Gravity, p.Dt, p.Iterations, p.Solver, p.Pins.Mode)
	}
	return w.Flush()
}

func benchCloth(cmd *cobra.Command, args []string) error {
	sizes := [][2]int{{20, 10}, {64, 32}, {128, 64}, {256, 128}}
	solvers := []dynamo.SolverKind{dynamo.SolverGaussSeidel, dynamo.SolverJacobi}

	fmt.Printf("benchmarking %d steps per run\n\n", steps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GRID\tCONSTRAINTS\tSOLVER\tTIME\tSTEPS/SEC")

	for _, size := range sizes {
		for _, kind := range solvers {
			cfg := dynamo.DefaultConfig()
			cfg.Width, cfg.Height = size[0], size[1]
			cfg.Solver = kind
			cfg.ValidateState = false

			s, err := sim.New(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			if _, err := s.Run(cmd.Context(), steps); err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%dx%d\t%d\t%s\t%v\t%.0f\n",
				size[0], size[1], len(s.Constraints()), kind, elapsed, float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
