package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"options-sim-lab/internal/app"
	"options-sim-lab/internal/backtest"
	"options-sim-lab/internal/config"
	"options-sim-lab/internal/ingestion"
	"options-sim-lab/internal/reporting"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	barsCSV := flag.String("bars", "", "CSV file of bars to load before running")
	outputDir := flag.String("output-dir", "", "Write REPORT.md, CSVs and JSON under this directory")
	outputJSON := flag.Bool("json", false, "Print the report as JSON instead of Markdown")
	verify := flag.Bool("verify", false, "Run twice and fail if the results differ")
	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *configPath, overrides.Apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backtest: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())
	logger := a.Logger.Named("backtest")

	if err := run(ctx, a, logger, *barsCSV, *outputDir, *outputJSON, *verify); err != nil {
		logger.Error("backtest failed", zap.Error(err))
		a.Close(context.Background())
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, logger *zap.Logger, barsCSV, outputDir string, outputJSON, verify bool) error {
	if a.Config.Profile.ProfileID == "" {
		return errors.New("a profile is required (config profile.id or -profile)")
	}

	if barsCSV != "" {
		mgr := ingestion.NewManager(ingestion.ManagerOptions{
			BarSource: ingestion.NewCSVBarSource(barsCSV),
			BarStore:  a.Stores.Bars,
			Logger:    logger,
		})
		if _, err := mgr.IngestBars(ctx, a.Config.Profile.Symbol); err != nil {
			return fmt.Errorf("load bars: %w", err)
		}
	}

	job, err := a.Job()
	if err != nil {
		return err
	}
	runner := a.Runner(backtest.Options{})

	if verify {
		report, err := runner.VerifyDeterminism(ctx, job)
		if err != nil {
			return err
		}
		logger.Info("determinism verified",
			zap.String("run_id", report.RunID),
			zap.Int("trades", report.TotalTrades),
		)
	}

	out, err := runner.Run(ctx, job)
	if errors.Is(err, backtest.ErrRunExists) {
		logger.Info("run already persisted, reporting stored results", zap.String("run_id", out.Run.RunID))
	} else if err != nil {
		return err
	}

	report, err := reporting.NewGenerator(a.Stores.Runs, a.Stores.Trades, a.Stores.Equity).Generate(ctx, out.Run.RunID)
	if err != nil {
		return err
	}

	if outputDir != "" {
		paths, err := reporting.WriteFiles(outputDir, report)
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info("report written", zap.String("path", p))
		}
	}

	if outputJSON {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	}
	fmt.Print(reporting.RenderMarkdown(report))
	return nil
}
