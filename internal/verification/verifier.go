// Package verification checks that a run reproduces exactly: the same bars
// and configuration must yield the same closed trades and equity curve.
package verification

import (
	"context"
	"fmt"
	"math"
	"time"

	"options-sim-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string      // field name
	Expected interface{} // stored value
	Actual   interface{} // replayed value
}

// VerificationResult contains the result of verifying a single trade.
type VerificationResult struct {
	TradeID     string            // verified trade ID
	Match       bool              // true if all fields match
	Divergences []FieldDivergence // list of divergent fields
}

// EquityDivergence is the first equity point that differs.
type EquityDivergence struct {
	Index      int
	Date       time.Time
	Divergence FieldDivergence
}

// VerificationReport contains results for a whole run.
type VerificationReport struct {
	RunID           string
	TotalTrades     int                  // stored trades verified
	MatchedTrades   int                  // trades that matched exactly
	DivergentTrades int                  // trades with divergences
	MissingTrades   []string             // stored but not replayed
	ExtraTrades     []string             // replayed but not stored
	Equity          *EquityDivergence    // nil when the curves match
	Results         []VerificationResult // individual results
}

// OK reports whether the replay matched the stored run completely.
func (r *VerificationReport) OK() bool {
	return r.DivergentTrades == 0 && len(r.MissingTrades) == 0 && len(r.ExtraTrades) == 0 && r.Equity == nil
}

// Summary describes the first problem of a failed report.
func (r *VerificationReport) Summary() string {
	switch {
	case r.Equity != nil:
		d := r.Equity.Divergence
		return fmt.Sprintf("run %s: equity point %d (%s) %s: stored %v, replayed %v",
			r.RunID, r.Equity.Index, r.Equity.Date.Format("2006-01-02"), d.Field, d.Expected, d.Actual)
	case len(r.MissingTrades) > 0:
		return fmt.Sprintf("run %s: trade %s not replayed", r.RunID, r.MissingTrades[0])
	case len(r.ExtraTrades) > 0:
		return fmt.Sprintf("run %s: unexpected trade %s", r.RunID, r.ExtraTrades[0])
	}
	for _, res := range r.Results {
		if !res.Match {
			d := res.Divergences[0]
			return fmt.Sprintf("run %s: trade %s %s: stored %v, replayed %v",
				r.RunID, res.TradeID, d.Field, d.Expected, d.Actual)
		}
	}
	return fmt.Sprintf("run %s: verified", r.RunID)
}

// Verifier re-executes persisted runs and compares them with what was stored.
type Verifier interface {
	// VerifyRun replays one stored run.
	VerifyRun(ctx context.Context, runID string) (*VerificationReport, error)
}

// CompareRuns compares stored and replayed trades (matched by trade id)
// and equity curves (matched by position).
func CompareRuns(runID string, stored, replayed []*domain.TradeRecord, storedCurve, replayedCurve []domain.EquityPoint) *VerificationReport {
	report := &VerificationReport{
		RunID:       runID,
		TotalTrades: len(stored),
		Results:     make([]VerificationResult, 0, len(stored)),
	}

	byID := make(map[string]*domain.TradeRecord, len(replayed))
	for _, t := range replayed {
		byID[t.TradeID] = t
	}

	seen := make(map[string]bool, len(stored))
	for _, s := range stored {
		seen[s.TradeID] = true
		r, ok := byID[s.TradeID]
		if !ok {
			report.MissingTrades = append(report.MissingTrades, s.TradeID)
			continue
		}
		divergences := CompareTradeRecords(s, r)
		report.Results = append(report.Results, VerificationResult{
			TradeID:     s.TradeID,
			Match:       len(divergences) == 0,
			Divergences: divergences,
		})
		if len(divergences) == 0 {
			report.MatchedTrades++
		} else {
			report.DivergentTrades++
		}
	}
	for _, r := range replayed {
		if !seen[r.TradeID] {
			report.ExtraTrades = append(report.ExtraTrades, r.TradeID)
		}
	}

	report.Equity = CompareEquityCurves(storedCurve, replayedCurve)
	return report
}

// CompareTradeRecords compares two trade records and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareTradeRecords(stored, replayed *domain.TradeRecord) []FieldDivergence {
	var d diff

	d.str("TradeID", stored.TradeID, replayed.TradeID)
	d.str("ProfileName", stored.ProfileName, replayed.ProfileName)
	d.str("Kind", stored.Kind, replayed.Kind)
	d.str("Symbol", stored.Symbol, replayed.Symbol)
	d.str("Direction", stored.Direction, replayed.Direction)

	// Entry
	d.time("EntryDate", stored.EntryDate, replayed.EntryDate)
	d.float("EntryCost", stored.EntryCost, replayed.EntryCost)
	d.float("EntryCommission", stored.EntryCommission, replayed.EntryCommission)

	// Exit
	d.time("ExitDate", stored.ExitDate, replayed.ExitDate)
	d.float("ExitProceeds", stored.ExitProceeds, replayed.ExitProceeds)
	d.float("ExitCommission", stored.ExitCommission, replayed.ExitCommission)
	d.str("ExitReason", stored.ExitReason, replayed.ExitReason)

	// Outcome
	d.float("RealizedPnL", stored.RealizedPnL, replayed.RealizedPnL)
	if stored.HoldDays != replayed.HoldDays {
		d.add("HoldDays", stored.HoldDays, replayed.HoldDays)
	}

	if len(stored.Legs) != len(replayed.Legs) {
		d.add("Legs", len(stored.Legs), len(replayed.Legs))
		return d.out
	}
	for i := range stored.Legs {
		s, r := stored.Legs[i], replayed.Legs[i]
		prefix := fmt.Sprintf("Legs[%d].", i)
		d.float(prefix+"Strike", s.Strike, r.Strike)
		d.str(prefix+"OptionType", s.OptionType, r.OptionType)
		if s.Quantity != r.Quantity {
			d.add(prefix+"Quantity", s.Quantity, r.Quantity)
		}
		d.time(prefix+"Expiry", s.Expiry, r.Expiry)
		d.float(prefix+"EntryPrice", s.EntryPrice, r.EntryPrice)
		d.float(prefix+"ExitPrice", s.ExitPrice, r.ExitPrice)
		d.str(prefix+"Status", s.Status, r.Status)
	}

	return d.out
}

// CompareEquityCurves returns the first differing point, or nil.
func CompareEquityCurves(stored, replayed []domain.EquityPoint) *EquityDivergence {
	n := len(stored)
	if len(replayed) < n {
		n = len(replayed)
	}
	for i := 0; i < n; i++ {
		s, r := stored[i], replayed[i]
		var d diff
		d.time("Date", s.Date, r.Date)
		d.float("Equity", s.Equity, r.Equity)
		d.float("Cash", s.Cash, r.Cash)
		if s.ActiveTradeCount != r.ActiveTradeCount {
			d.add("ActiveTradeCount", s.ActiveTradeCount, r.ActiveTradeCount)
		}
		if s.TradingHalted != r.TradingHalted {
			d.add("TradingHalted", s.TradingHalted, r.TradingHalted)
		}
		d.float("NetDelta", s.NetDelta, r.NetDelta)
		if len(d.out) > 0 {
			return &EquityDivergence{Index: i, Date: s.Date, Divergence: d.out[0]}
		}
	}
	if len(stored) != len(replayed) {
		idx := n
		var date time.Time
		if idx < len(stored) {
			date = stored[idx].Date
		} else {
			date = replayed[idx].Date
		}
		return &EquityDivergence{
			Index:      idx,
			Date:       date,
			Divergence: FieldDivergence{Field: "Length", Expected: len(stored), Actual: len(replayed)},
		}
	}
	return nil
}

// diff accumulates field divergences.
type diff struct {
	out []FieldDivergence
}

func (d *diff) add(field string, expected, actual interface{}) {
	d.out = append(d.out, FieldDivergence{Field: field, Expected: expected, Actual: actual})
}

func (d *diff) str(field, expected, actual string) {
	if expected != actual {
		d.add(field, expected, actual)
	}
}

func (d *diff) float(field string, expected, actual float64) {
	if !floatEquals(expected, actual) {
		d.add(field, expected, actual)
	}
}

func (d *diff) time(field string, expected, actual time.Time) {
	if !expected.Equal(actual) {
		d.add(field, expected, actual)
	}
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
