package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/metrics"
	"volume-breakout-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	tradeStore   storage.TradeStore
	summaryStore storage.SummaryStore // optional
	now          func() time.Time     // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
// summaryStore may be nil, in which case summaries are recomputed from trades.
func NewGenerator(tradeStore storage.TradeStore, summaryStore storage.SummaryStore) *Generator {
	return &Generator{
		tradeStore:   tradeStore,
		summaryStore: summaryStore,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report for a strategy from its stored trades.
// A stored summary is preferred over recomputation when present.
func (g *Generator) Generate(ctx context.Context, strategyID string) (*Report, error) {
	trades, err := g.tradeStore.GetByStrategy(ctx, strategyID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	summary, err := g.loadSummary(ctx, strategyID, trades)
	if err != nil {
		return nil, err
	}

	return g.Build(strategyID, summary, trades), nil
}

// Build assembles a report from in-memory results.
func (g *Generator) Build(strategyID string, summary domain.Summary, trades []*domain.Trade) *Report {
	return &Report{
		GeneratedAt: g.now(),
		StrategyID:  strategyID,
		Summary:     metrics.Rounded(summary),
		Yearly:      metrics.YearlyBreakdown(trades),
		Exits:       exitReasonRows(trades),
		Trades:      trades,
	}
}

func (g *Generator) loadSummary(ctx context.Context, strategyID string, trades []*domain.Trade) (domain.Summary, error) {
	if g.summaryStore != nil {
		s, err := g.summaryStore.GetByStrategy(ctx, strategyID)
		if err == nil {
			return *s, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return domain.Summary{}, fmt.Errorf("load summary: %w", err)
		}
	}
	return metrics.Summarize(strategyID, trades), nil
}

// Files renders every report artifact keyed by file name.
func Files(r *Report) map[string]string {
	return map[string]string{
		TradesFile:   RenderTradesCSV(r.Trades),
		SummaryFile:  RenderSummaryCSV(r.Summary),
		YearlyFile:   RenderYearlyCSV(r.Yearly),
		MarkdownFile: RenderMarkdown(r),
	}
}
