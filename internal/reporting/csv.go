package reporting

import (
	"fmt"
	"strings"
	"time"

	"options-sim-lab/internal/domain"
)

// RenderTradesCSV renders closed trades as CSV string.
func RenderTradesCSV(trades []*domain.TradeRecord) string {
	var sb strings.Builder

	// Header
	sb.WriteString("run_id,trade_id,profile,kind,symbol,legs,entry_date,entry_cost,entry_commission,")
	sb.WriteString("exit_date,exit_proceeds,exit_commission,exit_reason,realized_pnl,hold_days\n")

	// Rows
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%.4f,%.4f,%s,%.4f,%.4f,%s,%.4f,%d\n",
			t.RunID,
			t.TradeID,
			t.ProfileName,
			t.Kind,
			t.Symbol,
			legsLabel(t.Legs),
			t.EntryDate.Format(time.DateOnly),
			t.EntryCost,
			t.EntryCommission,
			t.ExitDate.Format(time.DateOnly),
			t.ExitProceeds,
			t.ExitCommission,
			t.ExitReason,
			t.RealizedPnL,
			t.HoldDays,
		))
	}

	return sb.String()
}

// RenderEquityCSV renders the equity curve as CSV string.
func RenderEquityCSV(curve []domain.EquityPoint) string {
	var sb strings.Builder

	sb.WriteString("date,equity,cash,active_trades,trading_halted,net_delta,hedge_shares\n")
	for _, p := range curve {
		sb.WriteString(fmt.Sprintf("%s,%.4f,%.4f,%d,%t,%.4f,%.0f\n",
			p.Date.Format(time.DateOnly),
			p.Equity,
			p.Cash,
			p.ActiveTradeCount,
			p.TradingHalted,
			p.NetDelta,
			p.HedgeShares,
		))
	}

	return sb.String()
}
