package reporting

import (
	"time"

	"volume-breakout-lab/internal/domain"
)

// Output file names, matching the research scripts the reports replace.
const (
	TradesFile   = "detailed_backtest_results.csv"
	SummaryFile  = "backtest_summary.csv"
	YearlyFile   = "yearly_performance.csv"
	SignalsFile  = "high_volume_weeks.csv"
	MarkdownFile = "backtest_report.md"
)

// Report represents one backtest run prepared for rendering.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	StrategyID  string

	// Run accounting. Zero when the report is built from stored trades only.
	SignalsProcessed int
	Dropped          map[string]int

	// Results (trades sorted by instrument, entry date)
	Summary domain.Summary // rounded for presentation
	Yearly  []domain.YearStats
	Exits   []ExitReasonRow
	Trades  []*domain.Trade
}

// ExitReasonRow counts trades per exit reason.
type ExitReasonRow struct {
	Reason string
	Trades int
	Wins   int
}
