package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"go.uber.org/zap"

	"options-sim-lab/internal/app"
	"options-sim-lab/internal/backtest"
	"options-sim-lab/internal/config"
	"options-sim-lab/internal/decision"
	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/ingestion"
	"options-sim-lab/internal/metrics"
	"options-sim-lab/internal/reporting"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file with a sweep section")
	barsCSV := flag.String("bars", "", "CSV file of bars to load before the sweep")
	outputDir := flag.String("output-dir", "", "Write one report directory per run under this directory")
	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *configPath, overrides.Apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())
	logger := a.Logger.Named("sweep")

	if err := run(ctx, a, logger, *barsCSV, *outputDir); err != nil {
		logger.Error("sweep failed", zap.Error(err))
		a.Close(context.Background())
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, logger *zap.Logger, barsCSV, outputDir string) error {
	profiles := a.Config.Sweep.Profiles
	if len(profiles) == 0 {
		if a.Config.Profile.ProfileID == "" {
			return fmt.Errorf("no profiles to sweep (config sweep.profiles or profile)")
		}
		profiles = append(profiles, a.Config.Profile)
	}

	if barsCSV != "" {
		mgr := ingestion.NewManager(ingestion.ManagerOptions{
			BarSource: ingestion.NewCSVBarSource(barsCSV),
			BarStore:  a.Stores.Bars,
			Logger:    logger,
		})
		symbols := make(map[string]bool)
		for _, p := range profiles {
			if symbols[p.Symbol] {
				continue
			}
			symbols[p.Symbol] = true
			if _, err := mgr.IngestBars(ctx, p.Symbol); err != nil {
				return fmt.Errorf("load bars for %s: %w", p.Symbol, err)
			}
		}
	}

	base, err := a.Job()
	if err != nil {
		return err
	}
	jobs := backtest.Grid(base, profiles, a.Config.SweepScenarios())

	outcomes, err := a.Runner(backtest.Options{}).Sweep(ctx, jobs, a.Config.Sweep.Workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PROFILE\tSCENARIO\tRUN ID\tTRADES\tREJECTED\tFEES\tFINAL EQUITY\tRETURN %\t")
	for _, out := range outcomes {
		r := out.Run
		ret := (r.FinalEquity - r.InitialCapital) / r.InitialCapital * 100
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t\n",
			r.ProfileID, r.ScenarioID, r.RunID, r.TotalTrades, r.RejectedOrders, r.FeesPaid, r.FinalEquity, ret)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if err := printVerdicts(ctx, a, profiles); err != nil {
		return err
	}

	if outputDir == "" {
		return nil
	}
	gen := reporting.NewGenerator(a.Stores.Runs, a.Stores.Trades, a.Stores.Equity)
	for _, out := range outcomes {
		report, err := gen.Generate(ctx, out.Run.RunID)
		if err != nil {
			return err
		}
		if _, err := reporting.WriteFiles(outputDir, report); err != nil {
			return err
		}
	}
	logger.Info("reports written", zap.String("dir", outputDir), zap.Int("runs", len(outcomes)))
	return nil
}

// printVerdicts runs the cost robustness gate over the latest run of each
// swept profile per scenario.
func printVerdicts(ctx context.Context, a *app.App, profiles []domain.ProfileConfig) error {
	agg := metrics.NewAggregator(a.Stores.Runs, a.Stores.Trades, a.Stores.Equity)
	eval := decision.NewEvaluator(decision.DefaultThresholds())

	fmt.Println()
	seen := make(map[string]bool)
	for _, p := range profiles {
		if seen[p.ProfileID] {
			continue
		}
		seen[p.ProfileID] = true

		sums, err := agg.ScenarioSensitivity(ctx, p.ProfileID)
		if err != nil {
			return err
		}
		in, err := decision.BuildInput(sums)
		if err != nil {
			fmt.Printf("%s: no verdict (%v)\n", p.ProfileID, err)
			continue
		}
		result := eval.Evaluate(*in)
		fmt.Printf("%s: %s\n", p.ProfileID, result.Decision)
		for _, c := range append(result.GOCriteria, result.NOGOChecks...) {
			if !c.Pass {
				fmt.Printf("  - %s: %s\n", c.Name, c.Actual)
			}
		}
	}
	return nil
}
