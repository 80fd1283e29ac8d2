// Package simulation runs strategies bar by bar against a cost-aware
// execution model with capital, margin and daily-loss controls.
package simulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/execution"
	"options-sim-lab/internal/idhash"
	"options-sim-lab/internal/pricing"
	"options-sim-lab/internal/trade"
)

// Options carries the simulator's collaborators. Nil fields get defaults.
type Options struct {
	RunID     string
	Oracle    pricing.Oracle   // default Black-Scholes
	Execution *execution.Model // default calibrated model
	Logger    *zap.Logger      // default no-op
	Recorder  Recorder         // default no-op
	OnEquity  func(domain.EquityPoint)
}

// Simulator owns all run state. One instance per run; not safe for
// concurrent use. Parallel sweeps create one simulator per worker.
type Simulator struct {
	cfg      Config
	strategy Strategy
	runID    string
	oracle   pricing.Oracle
	exec     *execution.Model
	logger   *zap.Logger
	recorder Recorder
	onEquity func(domain.EquityPoint)
	ids      *idhash.TradeIDGenerator

	capital     float64
	active      []*trade.Trade
	closed      []*trade.Trade
	queue       orderQueue
	filled      []*PendingOrder
	rejected    []*PendingOrder
	breaker     *CircuitBreaker
	ledger      *Ledger
	equityCurve []domain.EquityPoint
	lastEquity  float64
	last        *domain.Bar
	failed      error
}

// New validates cfg and builds a simulator for strat.
func New(cfg Config, strat Strategy, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strat == nil {
		return nil, ErrNilStrategy
	}

	s := &Simulator{
		cfg:        cfg,
		strategy:   strat,
		runID:      opts.RunID,
		oracle:     opts.Oracle,
		exec:       opts.Execution,
		logger:     opts.Logger,
		recorder:   opts.Recorder,
		onEquity:   opts.OnEquity,
		ids:        idhash.NewTradeIDGenerator(),
		capital:    cfg.InitialCapital,
		breaker:    NewCircuitBreaker(cfg.DailyLossLimitPct),
		ledger:     NewLedger(cfg.InitialCapital),
		lastEquity: cfg.InitialCapital,
	}
	if s.oracle == nil {
		s.oracle = pricing.NewBlackScholes()
	}
	if s.exec == nil {
		m, err := execution.NewModel(execution.DefaultConfig())
		if err != nil {
			return nil, err
		}
		s.exec = m
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	s.logger = s.logger.With(zap.String("strategy", strat.Name()))

	if !cfg.EnforceExecutionLag {
		s.logger.Warn("execution lag disabled: entries fill on the signal bar, results carry look-ahead bias")
	}
	return s, nil
}

// Run processes bars in order and returns the final result.
// Bars must already be strictly chronological.
func (s *Simulator) Run(ctx context.Context, bars []domain.Bar) (*Result, error) {
	for i := range bars {
		if err := s.Step(ctx, bars[i]); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}

// Step processes one bar. After a fatal error every later call fails.
func (s *Simulator) Step(ctx context.Context, bar domain.Bar) error {
	if s.failed != nil {
		return fmt.Errorf("%w: %v", ErrSimulatorFailed, s.failed)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.step(bar); err != nil {
		s.failed = err
		s.logger.Error("run aborted", zap.Error(err))
		return err
	}
	return nil
}

// step applies the per-bar sequence:
//  1. Mark to market, roll the trading day, check the breaker
//  2. Settle expirations (even when halted)
//  3. Exit logic and risk stops
//  4. Fill orders queued on earlier bars at this bar's prices
//  5. Entry logic
//  6. Reconcile capital and record equity
func (s *Simulator) step(bar domain.Bar) error {
	if err := bar.Validate(); err != nil {
		return s.barErr(bar, "", stepValidate, err)
	}
	if s.last != nil && !bar.Date.After(s.last.Date) {
		return s.barErr(bar, "", stepValidate, fmt.Errorf("%w: %s after %s",
			ErrOutOfOrder, bar.Date.Format("2006-01-02 15:04"), s.last.Date.Format("2006-01-02 15:04")))
	}

	// 1. Mark to market and roll the day
	for _, t := range s.active {
		if err := t.MarkToMarket(s.theoreticalPrices(bar, t)); err != nil {
			return s.barErr(bar, t.ID(), stepMark, err)
		}
	}
	if s.breaker.Roll(bar.Day(), s.lastEquity) {
		s.logger.Debug("trading day start", zap.Time("date", bar.Date), zap.Float64("start_equity", s.lastEquity))
	}
	s.observeBreaker(bar)

	// 2. Expirations
	for _, t := range s.snapshotActive() {
		if t.HasExpiredLeg(bar.Date) {
			if err := s.closeTrade(bar, t, domain.ExitReasonExpiration); err != nil {
				return s.barErr(bar, t.ID(), stepExpiry, err)
			}
		}
	}

	// 3. Exits
	for _, t := range s.snapshotActive() {
		reason, err := s.exitReason(bar, t)
		if err != nil {
			return s.barErr(bar, t.ID(), stepExit, err)
		}
		if reason == "" {
			continue
		}
		if err := s.closeTrade(bar, t, reason); err != nil {
			return s.barErr(bar, t.ID(), stepExit, err)
		}
	}

	// 4. Queued orders
	for _, o := range s.queue.due(bar.Date) {
		if s.breaker.Halted() {
			s.reject(bar, o, RejectTradingHalted)
			continue
		}
		if err := s.fill(bar, o); err != nil {
			return s.barErr(bar, o.Trade.ID(), stepFill, err)
		}
	}

	// 5. Entries
	s.observeBreaker(bar)
	if err := s.evaluateEntry(bar); err != nil {
		return err
	}

	// 6. Audit and snapshot
	s.ledger.Tick()
	if err := s.ledger.Reconcile(s.capital, s.cfg.AuditTolerance); err != nil {
		return s.barErr(bar, "", stepAudit, err)
	}
	point := s.snapshot(bar)
	s.equityCurve = append(s.equityCurve, point)
	s.lastEquity = point.Equity
	b := bar
	s.last = &b

	s.recorder.BarProcessed()
	if s.onEquity != nil {
		s.onEquity(point)
	}
	return nil
}

func (s *Simulator) observeBreaker(bar domain.Bar) {
	equity := s.Equity()
	if s.breaker.Observe(equity) {
		s.recorder.BreakerTripped()
		s.logger.Warn("daily loss limit hit, entries halted",
			zap.Time("date", bar.Date),
			zap.Float64("start_equity", s.breaker.StartEquity()),
			zap.Float64("equity", equity),
			zap.Float64("drawdown", s.breaker.Drawdown(equity)),
		)
	}
}

// exitReason returns the close reason for t at bar, or "" to hold.
// Risk stops take precedence over the strategy's own exit.
func (s *Simulator) exitReason(bar domain.Bar, t *trade.Trade) (string, error) {
	if s.cfg.MaxDaysInTrade > 0 && t.DaysHeld(bar.Date) >= s.cfg.MaxDaysInTrade {
		return domain.ExitReasonTimeStop, nil
	}
	if s.cfg.MaxLossPct > 0 {
		basis := t.EntryCost()
		if basis < 0 {
			basis = -basis
		}
		if basis > 0 && t.UnrealizedPnL() <= -s.cfg.MaxLossPct*basis {
			return domain.ExitReasonStopLoss, nil
		}
	}
	if s.cfg.RollDTEThreshold > 0 && t.HasOptionLeg() {
		dte := calendarDTE(bar, t)
		if dte > 0 && dte <= s.cfg.RollDTEThreshold {
			return domain.ExitReasonRoll, nil
		}
	}

	exit, err := s.strategy.ExitLogic(bar, t)
	if err != nil {
		return "", fmt.Errorf("exit logic: %w", err)
	}
	if exit {
		return domain.ExitReasonStrategy, nil
	}
	return "", nil
}

func calendarDTE(bar domain.Bar, t *trade.Trade) int {
	nearest := -1
	for _, l := range t.Legs() {
		if !l.IsOption() {
			continue
		}
		if d := l.DTE(bar.Date); nearest < 0 || d < nearest {
			nearest = d
		}
	}
	return nearest
}

// closeTrade liquidates t. Expired legs settle at intrinsic value with no
// spread; live legs cross the spread on the closing side. Every leg pays
// commission.
func (s *Simulator) closeTrade(bar domain.Bar, t *trade.Trade, reason string) error {
	legs := t.Legs()
	prices := make([]float64, len(legs))
	commission := 0.0
	vix := bar.VIXOr(s.cfg.DefaultVIX)
	strangle := isStrangle(t)

	for i, l := range legs {
		side := execution.SideSell
		if l.IsShort() {
			side = execution.SideBuy
		}

		var px float64
		if l.ExpiredOn(bar.Date) {
			px = l.Intrinsic(bar.Close)
		} else {
			mid := s.theoretical(bar, l)
			spread, err := s.exec.Spread(mid, l.Moneyness(bar.Close), l.DTE(bar.Date), vix, bar.SessionHour(), strangle)
			if err != nil {
				return err
			}
			px, err = s.exec.ExecutionPrice(mid, side, l.Contracts(), spread)
			if err != nil {
				return err
			}
		}
		prices[i] = px
		// Closing sells never open a short.
		commission += s.exec.Commission(l.Contracts(), px, execution.SaleFor(side, false))
	}

	if err := t.Close(bar.Date, prices, commission, reason); err != nil {
		return err
	}
	s.capital += t.ExitProceeds() - commission
	s.ledger.RecordExit(bar.Date, t.ID(), t.ExitProceeds(), commission, t.RealizedPnL(), reason)
	s.removeActive(t)
	s.closed = append(s.closed, t)

	s.recorder.TradeClosed(reason, t.RealizedPnL())
	s.logger.Info("trade closed",
		zap.String("trade_id", t.ID()),
		zap.String("reason", reason),
		zap.Time("date", bar.Date),
		zap.Float64("realized_pnl", t.RealizedPnL()),
		zap.Float64("capital", s.capital),
	)
	return nil
}

func (s *Simulator) evaluateEntry(bar domain.Bar) error {
	var current *trade.Trade
	if len(s.active) > 0 {
		current = s.active[0]
	}

	enter, err := s.strategy.EntryLogic(bar, current)
	if err != nil {
		tradeID := ""
		if current != nil {
			tradeID = current.ID()
		}
		return s.barErr(bar, tradeID, stepEntry, fmt.Errorf("entry logic: %w", err))
	}
	if !enter {
		return nil
	}
	if s.breaker.Halted() {
		s.logger.Debug("entry signal ignored, trading halted", zap.Time("date", bar.Date))
		return nil
	}
	// One position per profile: ignore signals while holding or waiting on a fill.
	if len(s.active) > 0 || s.queue.len() > 0 {
		return nil
	}

	id := s.ids.Next(s.strategy.Name())
	t, err := s.strategy.TradeConstructor(bar, id)
	if err != nil {
		return s.barErr(bar, id, stepEntry, fmt.Errorf("trade constructor: %w", err))
	}
	if t == nil {
		return s.barErr(bar, id, stepEntry, fmt.Errorf("%w: %w", ErrCallbackContract, ErrTradeNotConstruct))
	}
	if t.ID() != id || t.Status() != trade.StatusPending {
		return s.barErr(bar, id, stepEntry, fmt.Errorf("%w: constructor must return an unfilled trade with id %s, got %s (%s)",
			ErrCallbackContract, id, t.ID(), t.Status()))
	}

	if _, err := s.Submit(bar, t, !s.cfg.EnforceExecutionLag); err != nil {
		return s.barErr(bar, id, stepEntry, err)
	}
	return nil
}

// Submit turns a constructed trade into an entry order signalled at bar.
// With immediate false the order waits for the next bar; immediate fills
// at bar's own prices and exists for tests and debugging.
func (s *Simulator) Submit(bar domain.Bar, t *trade.Trade, immediate bool) (*PendingOrder, error) {
	if t == nil {
		return nil, ErrTradeNotConstruct
	}

	contracts := 0
	for _, l := range t.Legs() {
		contracts += l.Contracts()
	}
	o := &PendingOrder{
		OrderID:      s.queue.nextID(),
		StrategyID:   s.strategy.Name(),
		Symbol:       t.Symbol(),
		SignalDate:   bar.Date,
		SignalPrice:  bar.Close,
		Size:         contracts,
		Direction:    "debit",
		VIX:          bar.VIXOr(s.cfg.DefaultVIX),
		OptionVolume: s.optionVolume(bar),
		OpenInterest: s.openInterest(bar),
		Immediate:    immediate,
		Status:       OrderPending,
		Trade:        t,
	}

	if cost, err := t.CostAt(s.theoreticalPrices(bar, t)); err == nil && cost < 0 {
		o.Direction = "credit"
		if margin := MarginRequirement(t, bar.Close, s.cfg.MarginRate); s.capital < margin {
			s.reject(bar, o, RejectInsufficientMargin)
			return o, nil
		}
	}

	if immediate {
		return o, s.fill(bar, o)
	}

	s.queue.push(o)
	s.recorder.OrderQueued()
	s.logger.Debug("order queued",
		zap.String("order_id", o.OrderID),
		zap.String("trade_id", t.ID()),
		zap.Time("signal_date", bar.Date),
		zap.Float64("signal_price", bar.Close),
	)
	return o, nil
}

// fill executes o at bar's prices or rejects it. Rejections leave capital
// untouched and are never retried.
func (s *Simulator) fill(bar domain.Bar, o *PendingOrder) error {
	t := o.Trade
	// A queued order can reach a leg's expiry across a weekend or holiday gap.
	if t.HasExpiredLeg(bar.Date) {
		s.reject(bar, o, RejectExpired)
		return nil
	}
	legs := t.Legs()
	prices := make([]float64, len(legs))
	commission := 0.0
	vix := bar.VIXOr(s.cfg.DefaultVIX)
	strangle := isStrangle(t)

	for i, l := range legs {
		side := execution.SideBuy
		if l.IsShort() {
			side = execution.SideSell
		}
		res, err := s.exec.ExecuteOrder(execution.Order{
			Side:         side,
			Quantity:     l.Contracts(),
			Mid:          s.theoretical(bar, l),
			Moneyness:    l.Moneyness(bar.Close),
			DTE:          l.DTE(bar.Date),
			VIX:          vix,
			Hour:         bar.SessionHour(),
			Strangle:     strangle,
			OptionVolume: s.optionVolume(bar),
			OpenInterest: s.openInterest(bar),
			Multiplier:   t.Multiplier(),
			OpensShort:   l.IsShort(),
		})
		if err != nil {
			return err
		}
		if !res.FullyFilled() {
			s.reject(bar, o, RejectInsufficientLiquidity)
			return nil
		}
		prices[i] = res.Price
		commission += res.Commission
	}

	cost, err := t.CostAt(prices)
	if err != nil {
		return err
	}
	if reason := s.admit(bar, t, cost, commission); reason != "" {
		s.reject(bar, o, reason)
		return nil
	}
	if err := t.Open(bar.Date, prices, commission); err != nil {
		return err
	}

	s.capital -= cost + commission
	s.ledger.RecordEntry(bar.Date, t.ID(), cost, commission)
	s.active = append(s.active, t)

	o.Status = OrderFilled
	o.FillDate = bar.Date
	o.FillPrice = bar.Close
	o.FillCost = cost
	o.FillCommission = commission
	s.filled = append(s.filled, o)

	s.recorder.OrderFilled()
	s.logger.Info("order filled",
		zap.String("order_id", o.OrderID),
		zap.String("trade_id", t.ID()),
		zap.Time("date", bar.Date),
		zap.Float64("entry_cost", cost),
		zap.Float64("commission", commission),
		zap.Float64("capital", s.capital),
	)
	return nil
}

// admit applies capital and margin checks. Debits need the cash; credits
// need margin on their short legs.
func (s *Simulator) admit(bar domain.Bar, t *trade.Trade, cost, commission float64) string {
	if cost >= 0 {
		if s.capital < cost+commission {
			return RejectInsufficientCapital
		}
		return ""
	}
	if s.capital < MarginRequirement(t, bar.Close, s.cfg.MarginRate) {
		return RejectInsufficientMargin
	}
	return ""
}

func (s *Simulator) reject(bar domain.Bar, o *PendingOrder, reason string) {
	o.Status = OrderRejected
	o.RejectReason = reason
	s.rejected = append(s.rejected, o)

	s.recorder.OrderRejected(reason)
	s.logger.Info("order rejected",
		zap.String("order_id", o.OrderID),
		zap.String("trade_id", o.Trade.ID()),
		zap.String("reason", reason),
		zap.Time("date", bar.Date),
		zap.Float64("capital", s.capital),
	)
}

func (s *Simulator) optionVolume(bar domain.Bar) float64 {
	if bar.OptionVolume != nil {
		return *bar.OptionVolume
	}
	return s.exec.Config().DefaultOptionVolume
}

func (s *Simulator) openInterest(bar domain.Bar) float64 {
	if bar.OpenInterest != nil {
		return *bar.OpenInterest
	}
	return s.exec.Config().DefaultOpenInterest
}

func (s *Simulator) snapshot(bar domain.Bar) domain.EquityPoint {
	p := domain.EquityPoint{
		RunID:            s.runID,
		Date:             bar.Date,
		Equity:           s.Equity(),
		Cash:             s.capital,
		ActiveTradeCount: len(s.active),
		TradingHalted:    s.breaker.Halted(),
	}
	if s.cfg.DeltaHedgeEnabled {
		p.NetDelta = s.portfolioDelta(bar)
		p.HedgeShares = hedgeShares(p.NetDelta)
	}
	return p
}

func (s *Simulator) snapshotActive() []*trade.Trade {
	out := make([]*trade.Trade, len(s.active))
	copy(out, s.active)
	return out
}

func (s *Simulator) removeActive(t *trade.Trade) {
	for i, a := range s.active {
		if a == t {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return
		}
	}
}

func (s *Simulator) barErr(bar domain.Bar, tradeID, step string, err error) error {
	return &BarError{Date: bar.Date, TradeID: tradeID, Step: step, Err: err}
}

// Capital returns current cash.
func (s *Simulator) Capital() float64 { return s.capital }

// Equity returns cash plus the marked value of open trades.
func (s *Simulator) Equity() float64 {
	equity := s.capital
	for _, t := range s.active {
		equity += t.MarketValue()
	}
	return equity
}

// TradingHalted reports whether the daily loss limit has blocked entries.
func (s *Simulator) TradingHalted() bool { return s.breaker.Halted() }

// ActiveTrades returns the open trades.
func (s *Simulator) ActiveTrades() []*trade.Trade { return s.snapshotActive() }
