// Package backtest loads bars, runs the simulator over them and persists
// the run, its closed trades and its equity curve.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/execution"
	"options-sim-lab/internal/idhash"
	"options-sim-lab/internal/observability"
	"options-sim-lab/internal/pricing"
	"options-sim-lab/internal/replay"
	"options-sim-lab/internal/simulation"
	"options-sim-lab/internal/storage"
	"options-sim-lab/internal/strategy"
)

// Stores groups the storage a runner reads from and writes to.
type Stores struct {
	Bars   storage.BarStore
	Runs   storage.RunStore
	Trades storage.TradeRecordStore
	Equity storage.EquityCurveStore
}

// Options carries optional runner collaborators. Nil fields get defaults.
type Options struct {
	Logger   *zap.Logger
	Metrics  *observability.SimMetrics
	Tracer   trace.Tracer
	Oracle   pricing.Oracle
	OnEquity func(domain.EquityPoint)
	Clock    func() time.Time
}

// Outcome is one executed run.
type Outcome struct {
	Run    *domain.BacktestRun
	Result *simulation.Result
}

// Runner executes backtest jobs.
type Runner struct {
	stores   Stores
	logger   *zap.Logger
	metrics  *observability.SimMetrics
	tracer   trace.Tracer
	oracle   pricing.Oracle
	onEquity func(domain.EquityPoint)
	now      func() time.Time
}

// NewRunner creates a new backtest runner.
func NewRunner(stores Stores, opts Options) *Runner {
	r := &Runner{
		stores:   stores,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		oracle:   opts.Oracle,
		onEquity: opts.OnEquity,
		now:      opts.Clock,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer(observability.TracerName)
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Run executes job and persists the outcome. A run whose id is already
// stored is not written again; its fresh outcome is returned with ErrRunExists.
// Failed runs are never persisted.
func (r *Runner) Run(ctx context.Context, job Job) (*Outcome, error) {
	out, err := r.Execute(ctx, job)
	if err != nil {
		return out, err
	}

	if _, err := r.stores.Runs.GetByID(ctx, out.Run.RunID); err == nil {
		return out, fmt.Errorf("%w: %s", ErrRunExists, out.Run.RunID)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return out, fmt.Errorf("lookup run: %w", err)
	}

	if err := r.persist(ctx, out); err != nil {
		return out, err
	}

	r.logger.Info("run persisted",
		zap.String("run_id", out.Run.RunID),
		zap.Int("trades", out.Run.TotalTrades),
		zap.Int("equity_points", len(out.Result.EquityCurve)),
	)
	return out, nil
}

// Execute runs job without persisting anything. The returned outcome is
// non-nil whenever the simulator was started, including on failure.
func (r *Runner) Execute(ctx context.Context, job Job) (*Outcome, error) {
	ctx, span := r.tracer.Start(ctx, "backtest.run", trace.WithAttributes(
		attribute.String("profile", job.Profile.ProfileID),
		attribute.String("symbol", job.Profile.Symbol),
		attribute.String("scenario", job.Scenario.ScenarioID),
	))
	defer span.End()

	out, err := r.execute(ctx, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if out != nil {
		span.SetAttributes(
			attribute.String("run_id", out.Run.RunID),
			attribute.Int("bars", out.Run.BarCount),
			attribute.Int("trades", out.Run.TotalTrades),
		)
	}
	return out, err
}

func (r *Runner) execute(ctx context.Context, job Job) (*Outcome, error) {
	if job.Profile.Symbol == "" {
		return nil, fmt.Errorf("%w: profile symbol is required", ErrInvalidJob)
	}

	strat, err := strategy.FromConfig(job.Profile, strategy.Env{
		Multiplier: job.Simulation.ContractMultiplier,
		DefaultVIX: job.Simulation.DefaultVIX,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	model, err := execution.NewModel(job.Execution.WithScenario(job.Scenario))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	configJSON, err := job.ConfigJSON()
	if err != nil {
		return nil, err
	}

	bars, err := r.loadBars(ctx, job)
	if err != nil {
		return nil, err
	}
	runID := idhash.ComputeRunID(
		job.Profile.ProfileID,
		job.Profile.Symbol,
		job.Scenario.ScenarioID,
		bars[0].Date,
		bars[len(bars)-1].Date,
		configJSON,
	)
	logger := r.logger.With(zap.String("run_id", runID))

	var recorder simulation.Recorder
	if r.metrics != nil {
		recorder = r.metrics
	}
	sim, err := simulation.New(job.Simulation, strat, simulation.Options{
		RunID:     runID,
		Oracle:    r.oracle,
		Execution: model,
		Logger:    logger,
		Recorder:  recorder,
		OnEquity:  r.onEquity,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}

	logger.Info("run started",
		zap.String("profile", strat.ID()),
		zap.String("scenario", job.Scenario.ScenarioID),
		zap.Int("bars", len(bars)),
	)

	started := r.now()
	engine := NewEngine(sim)
	runErr := replay.Replay(ctx, bars, engine)
	finished := r.now()

	res := engine.Result()
	run := &domain.BacktestRun{
		RunID:          runID,
		ProfileID:      job.Profile.ProfileID,
		Symbol:         job.Profile.Symbol,
		ScenarioID:     job.Scenario.ScenarioID,
		ConfigJSON:     configJSON,
		StartedAt:      started.UTC(),
		FinishedAt:     finished.UTC(),
		BarCount:       engine.Progress().BarCount,
		InitialCapital: res.InitialCapital,
		FinalEquity:    res.FinalEquity,
		FinalCash:      res.FinalCash,
		TotalTrades:    len(res.ClosedTrades),
		RejectedOrders: len(res.RejectedOrders),
		FeesPaid:       res.TotalFees,
		Status:         domain.RunStatusCompleted,
	}
	if runErr != nil {
		run.Status = domain.RunStatusFailed
		run.Error = runErr.Error()
	}

	if r.metrics != nil {
		r.metrics.RecordRun(run.Status, finished.Sub(started).Seconds())
	}

	if runErr != nil {
		logger.Error("run failed", zap.Error(runErr))
		return &Outcome{Run: run, Result: res}, fmt.Errorf("run %s: %w", runID, runErr)
	}

	logger.Info("run completed",
		zap.Float64("final_equity", run.FinalEquity),
		zap.Int("trades", run.TotalTrades),
		zap.Int("rejected_orders", run.RejectedOrders),
		zap.Int("breaker_trips", res.BreakerTrips),
	)
	return &Outcome{Run: run, Result: res}, nil
}

func (r *Runner) loadBars(ctx context.Context, job Job) ([]*domain.Bar, error) {
	bars, err := replay.NewLoader(r.stores.Bars).Load(ctx, job.Profile.Symbol, job.From, job.To)
	if err != nil {
		return nil, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoBars, job.Profile.Symbol)
	}
	return bars, nil
}

// persist writes trades and the equity curve before the run record, so a
// stored run always has its children.
func (r *Runner) persist(ctx context.Context, out *Outcome) error {
	records := out.Result.Records()
	if len(records) > 0 {
		trades := make([]*domain.TradeRecord, len(records))
		for i := range records {
			trades[i] = &records[i]
		}
		if err := r.stores.Trades.InsertBulk(ctx, trades); err != nil {
			return fmt.Errorf("persist trades: %w", err)
		}
	}

	if len(out.Result.EquityCurve) > 0 {
		points := make([]*domain.EquityPoint, len(out.Result.EquityCurve))
		for i := range out.Result.EquityCurve {
			p := out.Result.EquityCurve[i]
			p.RunID = out.Run.RunID
			points[i] = &p
		}
		if err := r.stores.Equity.InsertBulk(ctx, points); err != nil {
			return fmt.Errorf("persist equity curve: %w", err)
		}
	}

	if err := r.stores.Runs.Insert(ctx, out.Run); err != nil {
		return fmt.Errorf("persist run: %w", err)
	}
	return nil
}
