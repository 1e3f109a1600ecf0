package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/metrics"
)

// NotAvailable is printed for undefined statistics.
const NotAvailable = "N/A"

// RenderTradesCSV renders trades in the detailed results layout.
func RenderTradesCSV(trades []*domain.Trade) string {
	var sb strings.Builder

	// Header
	sb.WriteString("Stock Symbol,Entry Date,Entry Price,Exit Date,Exit Price,")
	sb.WriteString("Profit/Loss,Profit/Loss %,Profit or Loss,Days in Trade,")
	sb.WriteString("Volume Multiple,RSI Value,Weekly Volume,")
	sb.WriteString("Exit Reason,Final Stop,Reference Date,Strategy,Trade ID\n")

	// Rows
	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%s,%.4f,%.4f,%.4f,%s,%d,%.4f,%.4f,%.0f,%s,%.4f,%s,%s,%s\n",
			t.InstrumentID,
			t.EntryDate.Format(domain.DateLayout),
			t.EntryPrice,
			t.ExitDate.Format(domain.DateLayout),
			t.ExitPrice,
			t.ProfitLoss,
			t.ProfitLossPct,
			t.Outcome,
			t.DaysHeld,
			t.Metrics.VolumeMultiple,
			t.Metrics.RSI,
			t.Metrics.Volume,
			t.ExitReason,
			t.FinalStop,
			t.ReferenceDate.Format(domain.DateLayout),
			t.StrategyID,
			t.TradeID,
		))
	}

	return sb.String()
}

// RenderSummaryCSV renders a single summary row rounded for presentation.
func RenderSummaryCSV(s domain.Summary) string {
	r := metrics.Rounded(s)

	var sb strings.Builder
	sb.WriteString("Strategy,Total Trades,Wins,Losses,Win Ratio (%),Avg Profit %,Avg Loss %,")
	sb.WriteString("Avg Days Profit,Avg Days Loss,Max Drawdown %,Profit Factor,Risk-Reward Ratio\n")
	sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%.2f,%s,%s,%s,%s,%s,%s,%s\n",
		r.StrategyID,
		r.TotalTrades,
		r.Wins,
		r.Losses,
		r.WinRatioPct,
		formatOptional(r.AvgProfitPct),
		formatOptional(r.AvgLossPct),
		formatOptional(r.AvgDaysProfit),
		formatOptional(r.AvgDaysLoss),
		formatOptional(r.MaxDrawdownPct),
		formatOptional(r.ProfitFactor),
		formatOptional(r.RiskRewardRatio),
	))
	return sb.String()
}

// RenderYearlyCSV renders the per-year breakdown.
func RenderYearlyCSV(years []domain.YearStats) string {
	var sb strings.Builder
	sb.WriteString("Year,Total_Profit,Total_Loss,Win_Percentage,Total_Trades\n")
	for _, y := range years {
		sb.WriteString(fmt.Sprintf("%d,%.2f,%.2f,%.2f,%d\n",
			y.Year,
			metrics.Round(y.TotalProfit),
			metrics.Round(y.TotalLoss),
			metrics.Round(y.WinPct),
			y.TotalTrades,
		))
	}
	return sb.String()
}

// RenderSignalsCSV renders screened weeks in the high_volume_weeks layout.
func RenderSignalsCSV(signals []domain.CandidateSignal) string {
	var sb strings.Builder
	sb.WriteString("stock_symbol,week_start_date,week_end_date,weekly_volume,volume_multiple,rsi_value\n")
	for _, s := range signals {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.0f,%.4f,%.4f\n",
			s.InstrumentID,
			s.WeekStart.Format(domain.DateLayout),
			s.ReferenceDate.Format(domain.DateLayout),
			s.Metrics.Volume,
			s.Metrics.VolumeMultiple,
			s.Metrics.RSI,
		))
	}
	return sb.String()
}

// WriteFile writes content to dir/name, creating dir when needed.
// Returns the path written.
func WriteFile(dir, name, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f", *v)
}
