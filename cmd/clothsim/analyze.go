package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/storage"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	frames, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 4 {
		return fmt.Errorf("run %s has %d frames, need at least 4", meta.ID, len(frames))
	}

	idx, err := pickParticle(particleID, meta.Width, meta.Height, len(frames[0].Positions))
	if err != nil {
		return err
	}

	interval := frames[1].Time - frames[0].Time
	sway := analysis.Series(frames, idx, false)
	freq, power := analysis.DominantFrequency(sway, interval)

	heights := analysis.MeanHeight(frames)
	settled := analysis.SettlingFrame(heights, settleTol)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run:\t%s\n", meta.ID)
	fmt.Fprintf(w, "particle:\t%d\n", idx)
	fmt.Fprintf(w, "frames:\t%d (every %.4g time units)\n", len(frames), interval)
	fmt.Fprintf(w, "dominant sway:\t%.4g cycles/unit (power %.3g)\n", freq, power)
	if settled >= 0 && settled < len(frames)-1 {
		fmt.Fprintf(w, "settled:\tframe %d, t=%.4g\n", settled, frames[settled].Time)
	} else {
		fmt.Fprintf(w, "settled:\tno (tol %g)\n", settleTol)
	}
	w.Flush()

	spectrum := analysis.PowerSpectrum(sway)
	if len(spectrum) > 2 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(spectrum[1:], asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("sway power spectrum")))
	}

	path := make([]dynamo.Vec2, len(frames))
	for i, f := range frames {
		path[i] = f.Positions[idx]
	}
	fmt.Println()
	fmt.Print(analysis.TrajectoryToASCII(path, 60, 20))
	return nil
}

// pickParticle defaults to the middle of the bottom row.
func pickParticle(idx, width, height, n int) (int, error) {
	if idx < 0 {
		idx = (height-1)*width + width/2
	}
	if idx >= n {
		return 0, fmt.Errorf("%w: particle %d (run has %d)", dynamo.ErrParticleOutOfRange, idx, n)
	}
	return idx, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	rn := &automation.Runner{Logger: logger, Store: st}
	outcomes, err := rn.RunScenario(ctx, scenario)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tGRID\tSOLVER\tSTRAIN\tPEAK\tSTABLE\tRUN ID")
	for i, o := range outcomes {
		fmt.Fprintf(w, "%d\t%s\t%dx%d\t%s\t%.4g\t%.4g\t%.2f\t%s\n",
			i+1, o.Config.Name, o.Config.Width, o.Config.Height, o.Config.Solver,
			o.Summary.Strain.Mean, o.Summary.Peak, o.Summary.Stability, o.RunID)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.RecordEvery = 0

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rn := &automation.Runner{Logger: logger}
	results, err := rn.RunSweep(ctx, cfg, automation.ParameterSweep{
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepPoints,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTRAIN\tPEAK\tKINETIC\tSTABLE\tSKIPPED\tERROR\n", strings.ToUpper(sweepParam))
	strain := make([]float64, 0, len(results))
	for _, r := range results {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.3g\t%.2f\t%d\t%s\n",
			r.ParamValue, r.Summary.Strain.Mean, r.Summary.Peak, r.Summary.Kinetic, r.Summary.Stability, r.Skipped, msg)
		strain = append(strain, r.Summary.Strain.Mean)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(strain) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(strain, asciigraph.Height(8), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("final strain vs %s", sweepParam))))
	}
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.RecordEvery = 0

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rn := &automation.Runner{Logger: logger}
	results, err := rn.RunMonteCarlo(ctx, cfg, automation.MonteCarloConfig{
		Perturbation: perturbation,
		NumTrials:    trials,
		Seed:         seed,
	})
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	var peak float64
	for _, r := range results {
		peak = max(peak, r.Summary.Peak)
	}
	fmt.Printf("trials: %d\nstable: %d\nunstable: %d\nworst peak strain: %.4g\n", len(results), stable, unstable, peak)
	return nil
}

// parseGrid reads "name=v1,v2;name=v1,v2".
func parseGrid(grid string) ([]string, [][]float64, error) {
	var names []string
	var ranges [][]float64
	for _, part := range strings.Split(grid, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, list, ok := strings.Cut(part, "=")
		if !ok {
			return nil, nil, fmt.Errorf("grid entry %q: want name=v1,v2", part)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid entry %q: %w", part, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("empty grid")
	}
	return names, ranges, nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg.RecordEvery = 0

	names, ranges, err := parseGrid(gridSpec)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	objective := optim.StrainObjective
	if costWeight > 0 {
		objective = optim.CostObjective(costWeight)
	}

	best, score, evals, err := optim.NewGridSearch(names, ranges).Search(ctx, cfg, objective)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSCORE\n", strings.ToUpper(strings.Join(names, "\t")))
	for _, e := range evals {
		cols := make([]string, len(names))
		for i, n := range names {
			cols[i] = strconv.FormatFloat(e.Params[n], 'g', 4, 64)
		}
		scoreStr := strconv.FormatFloat(e.Score, 'g', 4, 64)
		if e.Err != nil {
			scoreStr = "error: " + e.Err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\n", strings.Join(cols, "\t"), scoreStr)
	}
	w.Flush()

	if err != nil {
		return err
	}
	fmt.Printf("\nbest: %v (score %.4g)\n", best, score)
	return nil
}
