package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"options-sim-lab/internal/decision"
	"options-sim-lab/internal/domain"
)

// printer groups thousands in report numbers.
var printer = message.NewPrinter(language.English)

// money rounds half away from zero to cents and groups thousands.
func money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	s := r.Summary

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.Run != nil {
		sb.WriteString(fmt.Sprintf("Run: `%s` | Profile: %s | Symbol: %s | Scenario: %s | Bars: %d\n\n",
			r.Run.RunID, r.Run.ProfileID, r.Run.Symbol, r.Run.ScenarioID, r.Run.BarCount))
		if r.Run.Status == domain.RunStatusFailed {
			sb.WriteString(fmt.Sprintf("**Run failed:** %s\n\n", r.Run.Error))
		}
	}

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Initial Capital | %s |\n", money(s.InitialCapital)))
	sb.WriteString(fmt.Sprintf("| Final Equity | %s |\n", money(s.FinalEquity)))
	sb.WriteString(fmt.Sprintf("| Total Return | %s |\n", pct(s.TotalReturnPct)))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %s (%s) |\n", money(s.MaxDrawdown), pct(s.MaxDrawdownPct)))
	sb.WriteString(fmt.Sprintf("| Sharpe | %.2f |\n", s.Sharpe))
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %s |\n", pct(s.WinRate)))
	sb.WriteString(fmt.Sprintf("| Realized P&L | %s |\n", money(s.PnLTotal)))
	sb.WriteString(fmt.Sprintf("| Mean / Median P&L | %s / %s |\n", money(s.PnLMean), money(s.PnLMedian)))
	sb.WriteString(fmt.Sprintf("| P10 / P90 P&L | %s / %s |\n", money(s.PnLP10), money(s.PnLP90)))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", s.MaxConsecutiveLosses))
	sb.WriteString(fmt.Sprintf("| Avg Hold (days) | %.1f |\n", s.AvgHoldDays))
	sb.WriteString(fmt.Sprintf("| Fees | %s |\n", money(s.TotalFees)))
	sb.WriteString(fmt.Sprintf("| Halted Bars | %d |\n", s.HaltedBars))
	if r.Run != nil {
		sb.WriteString(fmt.Sprintf("| Rejected Orders | %d |\n", r.Run.RejectedOrders))
	}
	sb.WriteString("\n")

	// Periods
	sb.WriteString("## Monthly Realized P&L\n\n")
	if len(s.Periods) > 0 {
		sb.WriteString("| Month | Trades | Realized |\n")
		sb.WriteString("|-------|--------|----------|\n")
		for _, p := range s.Periods {
			sb.WriteString(fmt.Sprintf("| %s | %d | %s |\n", p.Start.Format("2006-01"), p.Trades, money(p.Realized)))
		}
		if r.WorstPeriod != nil {
			sb.WriteString(fmt.Sprintf("\nWorst month: %s (%s)\n",
				r.WorstPeriod.Start.Format("2006-01"), money(r.WorstPeriod.Realized)))
		}
	} else {
		sb.WriteString("No closed trades.\n")
	}
	sb.WriteString("\n")

	// Scenario Sensitivity
	sb.WriteString("## Scenario Sensitivity\n\n")
	if len(r.ScenarioSensitivity) > 0 {
		sb.WriteString("| Scenario | Run | Trades | Realized | Return | MaxDD | Sharpe | Degradation% |\n")
		sb.WriteString("|----------|-----|--------|----------|--------|-------|--------|--------------|\n")
		for _, row := range r.ScenarioSensitivity {
			sb.WriteString(fmt.Sprintf("| %s | `%s` | %d | %s | %s | %s | %.2f | %.2f |\n",
				row.ScenarioID, row.RunID, row.TotalTrades, money(row.PnLTotal),
				pct(row.TotalReturnPct), pct(row.MaxDrawdownPct), row.Sharpe, row.DegradationPct))
		}
	} else {
		sb.WriteString("No scenario sensitivity data available.\n")
	}
	sb.WriteString("\n")

	if r.Verdict != nil {
		sb.WriteString(decision.RenderMarkdown(r.Verdict))
		sb.WriteString("\n")
	}

	// Trades
	sb.WriteString("## Trades\n\n")
	if len(r.Trades) > 0 {
		sb.WriteString("| Trade | Entry | Exit | Legs | Reason | Days | P&L |\n")
		sb.WriteString("|-------|-------|------|------|--------|------|-----|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %d | %s |\n",
				t.TradeID, t.EntryDate.Format(time.DateOnly), t.ExitDate.Format(time.DateOnly),
				legsLabel(t.Legs), t.ExitReason, t.HoldDays, money(t.RealizedPnL)))
		}
	} else {
		sb.WriteString("No trades.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// legsLabel renders legs compactly, e.g. "-5x105C -5x95P" or "+2xFUT".
func legsLabel(legs []domain.LegRecord) string {
	parts := make([]string, len(legs))
	for i, l := range legs {
		switch domain.OptionType(l.OptionType) {
		case domain.OptionCall:
			parts[i] = fmt.Sprintf("%+dx%gC", l.Quantity, l.Strike)
		case domain.OptionPut:
			parts[i] = fmt.Sprintf("%+dx%gP", l.Quantity, l.Strike)
		default:
			parts[i] = fmt.Sprintf("%+dxFUT", l.Quantity)
		}
	}
	return strings.Join(parts, " ")
}
