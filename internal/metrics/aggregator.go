package metrics

import (
	"context"
	"errors"
	"fmt"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// Aggregator computes strategy summaries from stored trades.
type Aggregator struct {
	tradeStore   storage.TradeStore
	summaryStore storage.SummaryStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(tradeStore storage.TradeStore, summaryStore storage.SummaryStore) *Aggregator {
	return &Aggregator{
		tradeStore:   tradeStore,
		summaryStore: summaryStore,
	}
}

// ComputeSummary loads the trades of a strategy and summarizes them.
// A strategy without trades yields an empty Summary, not an error.
func (a *Aggregator) ComputeSummary(ctx context.Context, strategyID string) (*domain.Summary, error) {
	trades, err := a.tradeStore.GetByStrategy(ctx, strategyID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	s := Summarize(strategyID, trades)
	return &s, nil
}

// ComputeAndStore computes and persists the summary, replacing any previous
// summary of the same strategy.
func (a *Aggregator) ComputeAndStore(ctx context.Context, strategyID string) (*domain.Summary, error) {
	s, err := a.ComputeSummary(ctx, strategyID)
	if err != nil {
		return nil, err
	}

	if err := a.summaryStore.DeleteByStrategy(ctx, strategyID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("clear summary: %w", err)
	}
	if err := a.summaryStore.Insert(ctx, s); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}
	return s, nil
}
