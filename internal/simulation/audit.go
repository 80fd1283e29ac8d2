package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// RealizedEvent is one append-only realized P&L entry.
type RealizedEvent struct {
	Date    time.Time `json:"date"`
	TradeID string    `json:"trade_id"`
	Amount  float64   `json:"amount"`
	Reason  string    `json:"reason"`
}

// FeeEvent is one append-only commission entry.
type FeeEvent struct {
	Date    time.Time `json:"date"`
	TradeID string    `json:"trade_id"`
	Amount  float64   `json:"amount"`
	Kind    string    `json:"kind"` // "entry" | "exit"
}

// Ledger tracks every cash flow that may touch capital and reconciles
// capital against them. Sums are kept in decimal so float drift in the
// running capital shows up as a mismatch, never hides one.
type Ledger struct {
	initial    decimal.Decimal
	entryFlows decimal.Decimal // sum of signed entry costs
	exitFlows  decimal.Decimal // sum of signed exit proceeds
	fees       decimal.Decimal
	realized   decimal.Decimal

	realizedHistory []RealizedEvent
	feesPaid        []FeeEvent
	ticks           int64
}

// NewLedger creates a ledger for a run starting at initialCapital.
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{initial: decimal.NewFromFloat(initialCapital)}
}

// RecordEntry logs the cash flows of an opened trade.
func (l *Ledger) RecordEntry(date time.Time, tradeID string, cost, commission float64) {
	l.entryFlows = l.entryFlows.Add(decimal.NewFromFloat(cost))
	l.addFee(date, tradeID, commission, "entry")
}

// RecordExit logs the cash flows and realized P&L of a closed trade.
func (l *Ledger) RecordExit(date time.Time, tradeID string, proceeds, commission, realized float64, reason string) {
	l.exitFlows = l.exitFlows.Add(decimal.NewFromFloat(proceeds))
	l.addFee(date, tradeID, commission, "exit")
	l.realized = l.realized.Add(decimal.NewFromFloat(realized))
	l.realizedHistory = append(l.realizedHistory, RealizedEvent{
		Date: date, TradeID: tradeID, Amount: realized, Reason: reason,
	})
}

func (l *Ledger) addFee(date time.Time, tradeID string, amount float64, kind string) {
	l.fees = l.fees.Add(decimal.NewFromFloat(amount))
	l.feesPaid = append(l.feesPaid, FeeEvent{Date: date, TradeID: tradeID, Amount: amount, Kind: kind})
}

// Tick counts one processed bar.
func (l *Ledger) Tick() { l.ticks++ }

// Ticks returns the number of processed bars.
func (l *Ledger) Ticks() int64 { return l.ticks }

// ExpectedCapital is initial - entry costs + exit proceeds - fees.
func (l *Ledger) ExpectedCapital() decimal.Decimal {
	return l.initial.Sub(l.entryFlows).Add(l.exitFlows).Sub(l.fees)
}

// Reconcile fails when capital drifts from the ledger by more than
// tolerance, relative to max(1, |capital|).
func (l *Ledger) Reconcile(capital, tolerance float64) error {
	expected := l.ExpectedCapital().InexactFloat64()
	diff := math.Abs(expected - capital)
	if math.IsNaN(capital) || diff > tolerance*math.Max(1, math.Abs(capital)) {
		return fmt.Errorf("%w: capital %.6f, ledger %.6f, diff %.6g after %d ticks",
			ErrAuditMismatch, capital, expected, diff, l.ticks)
	}
	return nil
}

// TotalFees returns the sum of all commissions.
func (l *Ledger) TotalFees() decimal.Decimal { return l.fees }

// TotalRealized returns the sum of realized P&L.
func (l *Ledger) TotalRealized() decimal.Decimal { return l.realized }

// RealizedHistory returns a copy of the realized P&L events.
func (l *Ledger) RealizedHistory() []RealizedEvent {
	out := make([]RealizedEvent, len(l.realizedHistory))
	copy(out, l.realizedHistory)
	return out
}

// FeesPaid returns a copy of the fee events.
func (l *Ledger) FeesPaid() []FeeEvent {
	out := make([]FeeEvent, len(l.feesPaid))
	copy(out, l.feesPaid)
	return out
}
