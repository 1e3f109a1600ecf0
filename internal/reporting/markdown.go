package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"volume-breakout-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n\n", r.StrategyID))

	// Run accounting
	if r.SignalsProcessed > 0 {
		sb.WriteString("## Run\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Signals | %d |\n", r.SignalsProcessed))
		sb.WriteString(fmt.Sprintf("| Trades | %d |\n", r.Summary.TotalTrades))
		reasons := make([]string, 0, len(r.Dropped))
		for reason := range r.Dropped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			sb.WriteString(fmt.Sprintf("| Dropped (%s) | %d |\n", reason, r.Dropped[reason]))
		}
		sb.WriteString("\n")
	}

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Wins | %d |\n", s.Wins))
	sb.WriteString(fmt.Sprintf("| Losses | %d |\n", s.Losses))
	sb.WriteString(fmt.Sprintf("| Win Ratio (%%) | %.2f |\n", s.WinRatioPct))
	sb.WriteString(fmt.Sprintf("| Avg Profit %% | %s |\n", formatOptional(s.AvgProfitPct)))
	sb.WriteString(fmt.Sprintf("| Avg Loss %% | %s |\n", formatOptional(s.AvgLossPct)))
	sb.WriteString(fmt.Sprintf("| Avg Days Profit | %s |\n", formatOptional(s.AvgDaysProfit)))
	sb.WriteString(fmt.Sprintf("| Avg Days Loss | %s |\n", formatOptional(s.AvgDaysLoss)))
	sb.WriteString(fmt.Sprintf("| Max Drawdown %% | %s |\n", formatOptional(s.MaxDrawdownPct)))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %s |\n", formatOptional(s.ProfitFactor)))
	sb.WriteString(fmt.Sprintf("| Risk-Reward Ratio | %s |\n", formatOptional(s.RiskRewardRatio)))
	sb.WriteString("\n")

	// Exit reasons
	sb.WriteString("## Exit Reasons\n\n")
	if len(r.Exits) > 0 {
		sb.WriteString("| Reason | Trades | Wins |\n")
		sb.WriteString("|--------|--------|------|\n")
		for _, e := range r.Exits {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d |\n", e.Reason, e.Trades, e.Wins))
		}
	} else {
		sb.WriteString("No trades.\n")
	}
	sb.WriteString("\n")

	// Yearly
	sb.WriteString("## Yearly Performance\n\n")
	if len(r.Yearly) > 0 {
		sb.WriteString("| Year | Trades | Win % | Total Profit | Total Loss |\n")
		sb.WriteString("|------|--------|-------|--------------|------------|\n")
		for _, y := range r.Yearly {
			sb.WriteString(fmt.Sprintf("| %d | %d | %.2f | %.2f | %.2f |\n",
				y.Year, y.TotalTrades, y.WinPct, y.TotalProfit, y.TotalLoss))
		}
	} else {
		sb.WriteString("No trades.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// exitReasonRows counts trades per exit reason, sorted by reason.
func exitReasonRows(trades []*domain.Trade) []ExitReasonRow {
	idx := make(map[string]int)
	var rows []ExitReasonRow
	for _, t := range trades {
		i, ok := idx[t.ExitReason]
		if !ok {
			i = len(rows)
			idx[t.ExitReason] = i
			rows = append(rows, ExitReasonRow{Reason: t.ExitReason})
		}
		rows[i].Trades++
		if t.Outcome == domain.OutcomeProfit {
			rows[i].Wins++
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Reason < rows[j].Reason
	})
	return rows
}
