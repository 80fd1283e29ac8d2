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
	"options-sim-lab/internal/config"
	"options-sim-lab/internal/ingestion"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file")
	csvPath := flag.String("csv", "", "CSV file of bars (required)")
	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "ingest: -csv is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, *configPath, overrides.Apply)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())
	logger := a.Logger.Named("ingest")

	symbol := a.Config.Profile.Symbol
	if symbol == "" {
		logger.Error("a symbol is required (config profile.symbol or -symbol)")
		a.Close(context.Background())
		os.Exit(2)
	}
	if a.Config.Storage.Backend == config.BackendMemory {
		logger.Warn("in-memory storage: ingested bars are discarded on exit")
	}

	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		BarSource: ingestion.NewCSVBarSource(*csvPath),
		BarStore:  a.Stores.Bars,
		Logger:    logger,
	})
	count, err := mgr.IngestBars(ctx, symbol)
	if err != nil {
		logger.Error("ingest failed", zap.Error(err))
		a.Close(context.Background())
		os.Exit(1)
	}

	fmt.Printf("Ingested %d bars for %s\n", count, symbol)
}
