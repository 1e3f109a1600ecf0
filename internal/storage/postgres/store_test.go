package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

func TestDailyBarStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyBarStore(pool)
	ctx := context.Background()

	bars := []*domain.DailyBar{
		{InstrumentID: "MSFT", Date: day(2024, 1, 2), Open: 1, High: 2, Low: 1, Close: 2, Volume: 100},
		{InstrumentID: "AAPL", Date: day(2024, 1, 3), Open: 1, High: 2, Low: 1, Close: 12, Volume: 100},
		{InstrumentID: "AAPL", Date: day(2024, 1, 2), Open: 1, High: 2, Low: 1, Close: 11, Volume: 200},
	}
	require.NoError(t, store.InsertBulk(ctx, bars))

	got, err := store.GetBySymbol(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(day(2024, 1, 2)))
	assert.Equal(t, int64(200), got[0].Volume)
	assert.Equal(t, 12.0, got[1].Close)

	symbols, err := store.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)

	err = store.InsertBulk(ctx, bars[:1])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	require.NoError(t, store.DeleteAll(ctx))
	symbols, err = store.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestSignalStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(pool)
	ctx := context.Background()

	signals := []*domain.CandidateSignal{
		{
			InstrumentID:  "AAPL",
			WeekStart:     day(2024, 1, 8),
			ReferenceDate: day(2024, 1, 14),
			Metrics:       domain.SignalMetrics{VolumeMultiple: 4.5, RSI: 61.2, Volume: 2_500_000},
		},
		{InstrumentID: "AAPL", WeekStart: day(2024, 1, 1), ReferenceDate: day(2024, 1, 7)},
	}
	require.NoError(t, store.InsertBulk(ctx, signals))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].ReferenceDate.Equal(day(2024, 1, 7)))
	assert.Equal(t, 4.5, got[1].Metrics.VolumeMultiple)
	assert.Equal(t, 61.2, got[1].Metrics.RSI)

	// Whole batch rolls back on a duplicate.
	err = store.InsertBulk(ctx, []*domain.CandidateSignal{
		{InstrumentID: "MSFT", WeekStart: day(2024, 1, 1), ReferenceDate: day(2024, 1, 7)},
		signals[0],
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	got, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, store.DeleteAll(ctx))
	got, err = store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTradeStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTradeStore(pool)
	ctx := context.Background()

	trade := &domain.Trade{
		TradeID:       "t1",
		StrategyID:    "s1",
		InstrumentID:  "AAPL",
		ReferenceDate: day(2024, 1, 7),
		EntryDate:     day(2024, 1, 5),
		EntryPrice:    100,
		ExitDate:      day(2024, 1, 10),
		ExitPrice:     140,
		ExitReason:    domain.ExitReasonFinalTarget,
		FinalStop:     125,
		ProfitLoss:    40,
		ProfitLossPct: 40,
		Outcome:       domain.OutcomeProfit,
		DaysHeld:      5,
		Metrics:       domain.SignalMetrics{VolumeMultiple: 4, RSI: 55, Volume: 1_000_000},
	}
	require.NoError(t, store.Insert(ctx, trade))
	assert.ErrorIs(t, store.Insert(ctx, trade), storage.ErrDuplicateKey)

	got, err := store.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, trade, got)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.InsertBulk(ctx, []*domain.Trade{
		{TradeID: "t2", StrategyID: "s1", InstrumentID: "AAPL", EntryDate: day(2024, 1, 1), ExitDate: day(2024, 1, 2), Outcome: domain.OutcomeLoss},
		{TradeID: "t3", StrategyID: "s2", InstrumentID: "AAPL", EntryDate: day(2024, 1, 1), ExitDate: day(2024, 1, 2), Outcome: domain.OutcomeLoss},
	}))

	list, err := store.GetByStrategy(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t2", list[0].TradeID)
	assert.Equal(t, "t1", list[1].TradeID)

	require.NoError(t, store.DeleteByStrategy(ctx, "s1"))
	list, err = store.GetByStrategy(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.GetByID(ctx, "t3")
	assert.NoError(t, err)

	require.NoError(t, store.ReplaceByStrategy(ctx, "s1", []*domain.Trade{
		{TradeID: "t4", StrategyID: "s1", InstrumentID: "MSFT", EntryDate: day(2024, 1, 1), ExitDate: day(2024, 1, 2), Outcome: domain.OutcomeLoss},
	}))
	// t3 belongs to s2, so reusing its id rolls the whole replace back.
	err = store.ReplaceByStrategy(ctx, "s1", []*domain.Trade{
		{TradeID: "t5", StrategyID: "s1", InstrumentID: "MSFT", EntryDate: day(2024, 1, 1), ExitDate: day(2024, 1, 2), Outcome: domain.OutcomeLoss},
		{TradeID: "t3", StrategyID: "s1", InstrumentID: "MSFT", EntryDate: day(2024, 1, 1), ExitDate: day(2024, 1, 2), Outcome: domain.OutcomeLoss},
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	list, err = store.GetByStrategy(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t4", list[0].TradeID)
}

func TestSummaryStore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSummaryStore(pool)
	ctx := context.Background()

	sum := &domain.Summary{
		StrategyID:     "s1",
		TotalTrades:    3,
		Wins:           3,
		WinRatioPct:    100,
		AvgProfitPct:   ptr(20.5),
		AvgDaysProfit:  ptr(4.0),
		MaxDrawdownPct: ptr(10.0),
	}
	require.NoError(t, store.Insert(ctx, sum))
	assert.ErrorIs(t, store.Insert(ctx, sum), storage.ErrDuplicateKey)

	got, err := store.GetByStrategy(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, sum, got)
	assert.Nil(t, got.ProfitFactor)
	assert.Nil(t, got.AvgLossPct)

	require.NoError(t, store.DeleteByStrategy(ctx, "s1"))
	_, err = store.GetByStrategy(ctx, "s1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
