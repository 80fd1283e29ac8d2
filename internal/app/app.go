// Package app wires configuration, logging, tracing, metrics and storage
// for the command line tools.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"options-sim-lab/internal/backtest"
	"options-sim-lab/internal/config"
	"options-sim-lab/internal/observability"
	chstore "options-sim-lab/internal/storage/clickhouse"
	"options-sim-lab/internal/storage/memory"
	"options-sim-lab/internal/storage/migrations"
	pgstore "options-sim-lab/internal/storage/postgres"
)

// App holds the process-wide collaborators of one command.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Tracing  *observability.Tracing
	Registry *prometheus.Registry
	Metrics  *observability.SimMetrics
	Stores   backtest.Stores

	closers []func()
}

// New loads .env and the config file, lets override adjust the result,
// then builds the logger, tracing, metrics and stores.
func New(ctx context.Context, configPath string, override func(*config.Config)) (*App, error) {
	if err := config.LoadEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	a.Tracing, err = observability.NewTracing(cfg.Tracing.Enabled, os.Stderr, cfg.Tracing.ServiceName)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("setup tracing: %w", err)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = observability.NewSimMetrics(observability.DefaultNamespace, a.Registry)

	if err := a.openStores(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}
	return a, nil
}

// openStores connects the configured backend. The database backend keeps
// runs and trades in PostgreSQL and bars and equity curves in ClickHouse,
// applying migrations on connect.
func (a *App) openStores(ctx context.Context) error {
	cfg := a.Config.Storage
	if cfg.Backend == config.BackendMemory {
		a.Stores = backtest.Stores{
			Bars:   memory.NewBarStore(),
			Runs:   memory.NewRunStore(),
			Trades: memory.NewTradeRecordStore(),
			Equity: memory.NewEquityCurveStore(),
		}
		a.Logger.Info("using in-memory storage")
		return nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
	if err != nil {
		return fmt.Errorf("migrate clickhouse: %w", err)
	}
	a.closers = append(a.closers, func() { _ = conn.Close() })

	a.Stores = backtest.Stores{
		Bars:   chstore.NewBarStore(conn),
		Runs:   pgstore.NewRunStore(pool),
		Trades: pgstore.NewTradeRecordStore(pool),
		Equity: chstore.NewEquityCurveStore(conn),
	}
	a.Logger.Info("using database storage")
	return nil
}

// Runner builds a backtest runner over the app's stores.
func (a *App) Runner(opts backtest.Options) *backtest.Runner {
	if opts.Logger == nil {
		opts.Logger = a.Logger
	}
	if opts.Metrics == nil {
		opts.Metrics = a.Metrics
	}
	if opts.Tracer == nil {
		opts.Tracer = a.Tracing.Tracer()
	}
	return backtest.NewRunner(a.Stores, opts)
}

// Job builds the single-run job described by the config.
func (a *App) Job() (backtest.Job, error) {
	scenario, err := a.Config.ScenarioConfig()
	if err != nil {
		return backtest.Job{}, err
	}
	from, to, err := a.Config.Data.Range()
	if err != nil {
		return backtest.Job{}, err
	}
	return backtest.Job{
		Profile:    a.Config.Profile,
		Scenario:   scenario,
		Simulation: a.Config.Simulation,
		Execution:  a.Config.Execution,
		From:       from,
		To:         to,
	}, nil
}

// Close flushes tracing and releases connections in reverse order.
func (a *App) Close(ctx context.Context) {
	if a.Tracing != nil {
		if err := a.Tracing.Shutdown(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("tracing shutdown", zap.Error(err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
