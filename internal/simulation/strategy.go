package simulation

import (
	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/trade"
)

// Strategy supplies the callbacks that drive a run.
// Callbacks must be deterministic and must not mutate the bar.
type Strategy interface {
	// Name prefixes trade ids.
	Name() string

	// EntryLogic decides whether to open a position. current is the active
	// trade, or nil when flat.
	EntryLogic(bar domain.Bar, current *trade.Trade) (bool, error)

	// TradeConstructor builds an unfilled trade carrying tradeID.
	TradeConstructor(bar domain.Bar, tradeID string) (*trade.Trade, error)

	// ExitLogic decides whether to close an open trade at this bar.
	ExitLogic(bar domain.Bar, t *trade.Trade) (bool, error)
}

// Recorder receives run events, typically for metrics.
type Recorder interface {
	BarProcessed()
	OrderQueued()
	OrderFilled()
	OrderRejected(reason string)
	TradeClosed(reason string, realizedPnL float64)
	BreakerTripped()
}

type nopRecorder struct{}

func (nopRecorder) BarProcessed() {}
func (nopRecorder) OrderQueued() {}
func (nopRecorder) OrderFilled() {}
func (nopRecorder) OrderRejected(string) {}
func (nopRecorder) TradeClosed(string, float64) {}
func (nopRecorder) BreakerTripped() {}
