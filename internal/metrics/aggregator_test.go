package metrics

import (
	"context"
	"testing"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage/memory"
)

func TestAggregator_ComputeAndStore(t *testing.T) {
	ctx := context.Background()
	tradeStore := memory.NewTradeStore()
	summaryStore := memory.NewSummaryStore()

	trades := []*domain.Trade{
		{TradeID: "a", StrategyID: "s1", ProfitLoss: 40, ProfitLossPct: 40, Outcome: domain.OutcomeProfit},
		{TradeID: "b", StrategyID: "s1", ProfitLoss: -31, ProfitLossPct: -31, Outcome: domain.OutcomeLoss},
		{TradeID: "c", StrategyID: "s2", ProfitLoss: 10, ProfitLossPct: 10, Outcome: domain.OutcomeProfit},
	}
	if err := tradeStore.InsertBulk(ctx, trades); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	agg := NewAggregator(tradeStore, summaryStore)
	sum, err := agg.ComputeAndStore(ctx, "s1")
	if err != nil {
		t.Fatalf("ComputeAndStore failed: %v", err)
	}
	if sum.TotalTrades != 2 || sum.Wins != 1 {
		t.Errorf("unexpected summary %+v", sum)
	}

	stored, err := summaryStore.GetByStrategy(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByStrategy failed: %v", err)
	}
	if stored.TotalTrades != 2 || !approx(*stored.ProfitFactor, 40.0/31.0) {
		t.Errorf("unexpected stored summary %+v", stored)
	}

	// Recomputing replaces the stored summary.
	if _, err := agg.ComputeAndStore(ctx, "s1"); err != nil {
		t.Errorf("second ComputeAndStore failed: %v", err)
	}
}

func TestAggregator_NoTrades(t *testing.T) {
	agg := NewAggregator(memory.NewTradeStore(), memory.NewSummaryStore())

	sum, err := agg.ComputeSummary(context.Background(), "none")
	if err != nil {
		t.Fatalf("ComputeSummary failed: %v", err)
	}
	if sum.TotalTrades != 0 || sum.ProfitFactor != nil {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}
