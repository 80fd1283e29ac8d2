package simulation

import (
	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/trade"
)

// Result is the state of a run after its last processed bar.
type Result struct {
	RunID          string
	InitialCapital float64
	FinalCash      float64
	FinalEquity    float64
	BarCount       int64

	ClosedTrades   []*trade.Trade
	OpenTrades     []*trade.Trade // still open at end of data
	FilledOrders   []*PendingOrder
	RejectedOrders []*PendingOrder
	PendingOrders  []*PendingOrder // signalled on the last bar, never filled

	EquityCurve     []domain.EquityPoint
	RealizedHistory []RealizedEvent
	FeesPaid        []FeeEvent
	TotalFees       float64
	TotalRealized   float64
	BreakerTrips    int
}

// Records returns the persisted form of every closed trade.
func (r *Result) Records() []domain.TradeRecord {
	out := make([]domain.TradeRecord, 0, len(r.ClosedTrades))
	for _, t := range r.ClosedTrades {
		out = append(out, t.Record(r.RunID))
	}
	return out
}

// Result snapshots the run. It may be called at any point.
func (s *Simulator) Result() *Result {
	closed := make([]*trade.Trade, len(s.closed))
	copy(closed, s.closed)
	filled := make([]*PendingOrder, len(s.filled))
	copy(filled, s.filled)
	rejected := make([]*PendingOrder, len(s.rejected))
	copy(rejected, s.rejected)
	curve := make([]domain.EquityPoint, len(s.equityCurve))
	copy(curve, s.equityCurve)

	return &Result{
		RunID:           s.runID,
		InitialCapital:  s.cfg.InitialCapital,
		FinalCash:       s.capital,
		FinalEquity:     s.Equity(),
		BarCount:        s.ledger.Ticks(),
		ClosedTrades:    closed,
		OpenTrades:      s.snapshotActive(),
		FilledOrders:    filled,
		RejectedOrders:  rejected,
		PendingOrders:   s.queue.snapshot(),
		EquityCurve:     curve,
		RealizedHistory: s.ledger.RealizedHistory(),
		FeesPaid:        s.ledger.FeesPaid(),
		TotalFees:       s.ledger.TotalFees().InexactFloat64(),
		TotalRealized:   s.ledger.TotalRealized().InexactFloat64(),
		BreakerTrips:    s.breaker.Trips(),
	}
}
