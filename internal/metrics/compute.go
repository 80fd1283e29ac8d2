package metrics

import (
	"math"
	"sort"

	"options-sim-lab/internal/domain"
)

// tradingDaysPerYear annualizes per-bar Sharpe ratios for daily bars.
const tradingDaysPerYear = 252

// Compute builds a summary from closed trades and the equity curve.
// Trades are sorted by EntryDate ASC, TradeID ASC before computing
// order-dependent metrics (MaxConsecutiveLosses).
func Compute(trades []*domain.TradeRecord, curve []domain.EquityPoint, initialCapital float64) *domain.PerformanceSummary {
	sum := &domain.PerformanceSummary{
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
	}
	computeFromTrades(sum, trades)
	computeFromCurve(sum, curve)
	return sum
}

func computeFromTrades(sum *domain.PerformanceSummary, trades []*domain.TradeRecord) {
	n := len(trades)
	if n == 0 {
		return
	}

	sorted := make([]*domain.TradeRecord, n)
	copy(sorted, trades)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].EntryDate.Equal(sorted[j].EntryDate) {
			return sorted[i].EntryDate.Before(sorted[j].EntryDate)
		}
		return sorted[i].TradeID < sorted[j].TradeID
	})

	pnl := make([]float64, n)
	holdDays := 0
	for i, t := range sorted {
		pnl[i] = t.RealizedPnL
		sum.PnLTotal += t.RealizedPnL
		if domain.OutcomeClass(t.RealizedPnL) == domain.OutcomeClassWin {
			sum.Wins++
		} else {
			sum.Losses++
		}
		sum.TotalFees += t.EntryCommission + t.ExitCommission
		holdDays += t.HoldDays
	}

	ordered := make([]float64, n)
	copy(ordered, pnl)
	sort.Float64s(ordered)

	mean := computeMean(pnl)
	sum.TotalTrades = n
	sum.WinRate = computeWinRate(sum.Wins, n)
	sum.PnLMean = mean
	sum.PnLMedian = computePercentile(ordered, 0.50)
	sum.PnLP10 = computePercentile(ordered, 0.10)
	sum.PnLP90 = computePercentile(ordered, 0.90)
	sum.PnLMin = ordered[0]
	sum.PnLMax = ordered[n-1]
	sum.PnLStddev = computeStddev(pnl, mean)
	sum.MaxConsecutiveLosses = computeMaxConsecutiveLosses(pnl)
	sum.AvgHoldDays = float64(holdDays) / float64(n)
}

func computeFromCurve(sum *domain.PerformanceSummary, curve []domain.EquityPoint) {
	if len(curve) == 0 {
		return
	}

	equity := make([]float64, len(curve))
	for i, p := range curve {
		equity[i] = p.Equity
		if p.TradingHalted {
			sum.HaltedBars++
		}
	}

	sum.FinalEquity = equity[len(equity)-1]
	if sum.InitialCapital > 0 {
		sum.TotalReturnPct = (sum.FinalEquity - sum.InitialCapital) / sum.InitialCapital
	}
	sum.MaxDrawdown, sum.MaxDrawdownPct = computeMaxDrawdown(sum.InitialCapital, equity)
	sum.Sharpe = computeSharpe(sum.InitialCapital, equity)
}

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation.
// sorted must be pre-sorted ASC.
// p is percentile (0.10 = 10th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// computeMaxDrawdown returns the worst peak-to-trough fall of the equity
// curve, in currency and as a fraction of the peak. Initial capital seeds the
// peak so a loss on the first bar counts.
func computeMaxDrawdown(initial float64, equity []float64) (float64, float64) {
	peak := initial
	maxDD, maxPct := 0.0, 0.0

	for _, e := range equity {
		if e > peak {
			peak = e
		}
		dd := peak - e
		if dd > maxDD {
			maxDD = dd
		}
		if peak > 0 && dd/peak > maxPct {
			maxPct = dd / peak
		}
	}
	return maxDD, maxPct
}

// computeSharpe annualizes the mean per-bar return over its sample stddev.
// Zero when fewer than two returns exist or returns do not vary.
func computeSharpe(initial float64, equity []float64) float64 {
	prev := initial
	returns := make([]float64, 0, len(equity))
	for _, e := range equity {
		if prev > 0 {
			returns = append(returns, e/prev-1)
		}
		prev = e
	}
	if len(returns) < 2 {
		return 0
	}

	mean := computeMean(returns)
	sd := computeStddev(returns, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(tradingDaysPerYear)
}

// computeMaxConsecutiveLosses finds longest streak of realized P&L <= 0.
// Values must be in chronological order.
func computeMaxConsecutiveLosses(pnl []float64) int {
	maxStreak := 0
	currentStreak := 0

	for _, v := range pnl {
		if v <= 0 {
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		} else {
			currentStreak = 0
		}
	}
	return maxStreak
}
