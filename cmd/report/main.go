package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"options-sim-lab/internal/app"
	"options-sim-lab/internal/backtest"
	"options-sim-lab/internal/config"
	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/reporting"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file (database storage)")
	runID := flag.String("run-id", "", "Run to report; empty reports every stored run")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	verify := flag.Bool("verify", false, "Replay each run from its stored config and compare")
	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *configPath, overrides.Apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())
	logger := a.Logger.Named("report")

	if err := run(ctx, a, logger, *runID, *outputDir, *verify); err != nil {
		logger.Error("report failed", zap.Error(err))
		a.Close(context.Background())
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, logger *zap.Logger, runID, outputDir string, verify bool) error {
	var runs []*domain.BacktestRun
	if runID != "" {
		r, err := a.Stores.Runs.GetByID(ctx, runID)
		if err != nil {
			return err
		}
		runs = append(runs, r)
	} else {
		all, err := a.Stores.Runs.GetAll(ctx)
		if err != nil {
			return err
		}
		runs = all
	}
	if len(runs) == 0 {
		logger.Warn("no stored runs")
		return nil
	}

	gen := reporting.NewGenerator(a.Stores.Runs, a.Stores.Trades, a.Stores.Equity)
	var runner *backtest.Runner
	if verify {
		runner = a.Runner(backtest.Options{})
	}

	failed := 0
	for _, r := range runs {
		if runner != nil {
			report, err := runner.VerifyRun(ctx, r.RunID)
			switch {
			case err != nil:
				logger.Error("verification error", zap.String("run_id", r.RunID), zap.Error(err))
				failed++
			case !report.OK():
				logger.Error("verification mismatch", zap.String("run_id", r.RunID), zap.String("detail", report.Summary()))
				failed++
			default:
				logger.Info("run verified", zap.String("run_id", r.RunID), zap.Int("trades", report.MatchedTrades))
			}
		}

		report, err := gen.Generate(ctx, r.RunID)
		if err != nil {
			return err
		}
		paths, err := reporting.WriteFiles(outputDir, report)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s/%s): %s\n", r.RunID, r.ProfileID, r.ScenarioID, paths[0])
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed verification", failed, len(runs))
	}
	return nil
}
