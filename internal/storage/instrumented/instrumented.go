// Package instrumented wraps storage interfaces with query latency and error
// metrics.
package instrumented

import (
	"context"
	"errors"
	"time"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/observability"
	"volume-breakout-lab/internal/storage"
)

// DailyBarStore records metrics around a storage.DailyBarStore.
type DailyBarStore struct {
	inner    storage.DailyBarStore
	database string
	metrics  *observability.Metrics
}

// NewDailyBarStore wraps inner. database labels the metrics (postgres, clickhouse, memory).
func NewDailyBarStore(inner storage.DailyBarStore, database string, m *observability.Metrics) *DailyBarStore {
	return &DailyBarStore{inner: inner, database: database, metrics: m}
}

func (s *DailyBarStore) InsertBulk(ctx context.Context, bars []*domain.DailyBar) error {
	start := time.Now()
	err := s.inner.InsertBulk(ctx, bars)
	s.metrics.RecordDBQuery(s.database, "bars_insert_bulk", time.Since(start), err)
	return err
}

func (s *DailyBarStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error) {
	start := time.Now()
	bars, err := s.inner.GetBySymbol(ctx, symbol)
	s.metrics.RecordDBQuery(s.database, "bars_get_by_symbol", time.Since(start), err)
	return bars, err
}

func (s *DailyBarStore) ListSymbols(ctx context.Context) ([]string, error) {
	start := time.Now()
	symbols, err := s.inner.ListSymbols(ctx)
	s.metrics.RecordDBQuery(s.database, "bars_list_symbols", time.Since(start), err)
	return symbols, err
}

func (s *DailyBarStore) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := s.inner.DeleteAll(ctx)
	s.metrics.RecordDBQuery(s.database, "bars_delete_all", time.Since(start), err)
	return err
}

// SignalStore records metrics around a storage.SignalStore.
type SignalStore struct {
	inner    storage.SignalStore
	database string
	metrics  *observability.Metrics
}

func NewSignalStore(inner storage.SignalStore, database string, m *observability.Metrics) *SignalStore {
	return &SignalStore{inner: inner, database: database, metrics: m}
}

func (s *SignalStore) InsertBulk(ctx context.Context, signals []*domain.CandidateSignal) error {
	start := time.Now()
	err := s.inner.InsertBulk(ctx, signals)
	s.metrics.RecordDBQuery(s.database, "signals_insert_bulk", time.Since(start), err)
	return err
}

func (s *SignalStore) GetAll(ctx context.Context) ([]*domain.CandidateSignal, error) {
	start := time.Now()
	signals, err := s.inner.GetAll(ctx)
	s.metrics.RecordDBQuery(s.database, "signals_get_all", time.Since(start), err)
	return signals, err
}

func (s *SignalStore) DeleteAll(ctx context.Context) error {
	start := time.Now()
	err := s.inner.DeleteAll(ctx)
	s.metrics.RecordDBQuery(s.database, "signals_delete_all", time.Since(start), err)
	return err
}

// TradeStore records metrics around a storage.TradeStore.
type TradeStore struct {
	inner    storage.TradeStore
	database string
	metrics  *observability.Metrics
}

func NewTradeStore(inner storage.TradeStore, database string, m *observability.Metrics) *TradeStore {
	return &TradeStore{inner: inner, database: database, metrics: m}
}

func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	start := time.Now()
	err := s.inner.Insert(ctx, t)
	s.metrics.RecordDBQuery(s.database, "trades_insert", time.Since(start), err)
	return err
}

func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	start := time.Now()
	err := s.inner.InsertBulk(ctx, trades)
	s.metrics.RecordDBQuery(s.database, "trades_insert_bulk", time.Since(start), err)
	return err
}

func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	start := time.Now()
	t, err := s.inner.GetByID(ctx, tradeID)
	s.metrics.RecordDBQuery(s.database, "trades_get_by_id", time.Since(start), notFoundOK(err))
	return t, err
}

func (s *TradeStore) GetByStrategy(ctx context.Context, strategyID string) ([]*domain.Trade, error) {
	start := time.Now()
	trades, err := s.inner.GetByStrategy(ctx, strategyID)
	s.metrics.RecordDBQuery(s.database, "trades_get_by_strategy", time.Since(start), err)
	return trades, err
}

func (s *TradeStore) DeleteByStrategy(ctx context.Context, strategyID string) error {
	start := time.Now()
	err := s.inner.DeleteByStrategy(ctx, strategyID)
	s.metrics.RecordDBQuery(s.database, "trades_delete_by_strategy", time.Since(start), err)
	return err
}

func (s *TradeStore) ReplaceByStrategy(ctx context.Context, strategyID string, trades []*domain.Trade) error {
	start := time.Now()
	err := s.inner.ReplaceByStrategy(ctx, strategyID, trades)
	s.metrics.RecordDBQuery(s.database, "trades_replace_by_strategy", time.Since(start), err)
	return err
}

// SummaryStore records metrics around a storage.SummaryStore.
type SummaryStore struct {
	inner    storage.SummaryStore
	database string
	metrics  *observability.Metrics
}

func NewSummaryStore(inner storage.SummaryStore, database string, m *observability.Metrics) *SummaryStore {
	return &SummaryStore{inner: inner, database: database, metrics: m}
}

func (s *SummaryStore) Insert(ctx context.Context, sum *domain.Summary) error {
	start := time.Now()
	err := s.inner.Insert(ctx, sum)
	s.metrics.RecordDBQuery(s.database, "summaries_insert", time.Since(start), err)
	return err
}

func (s *SummaryStore) GetByStrategy(ctx context.Context, strategyID string) (*domain.Summary, error) {
	start := time.Now()
	sum, err := s.inner.GetByStrategy(ctx, strategyID)
	s.metrics.RecordDBQuery(s.database, "summaries_get_by_strategy", time.Since(start), notFoundOK(err))
	return sum, err
}

func (s *SummaryStore) DeleteByStrategy(ctx context.Context, strategyID string) error {
	start := time.Now()
	err := s.inner.DeleteByStrategy(ctx, strategyID)
	s.metrics.RecordDBQuery(s.database, "summaries_delete_by_strategy", time.Since(start), err)
	return err
}

// notFoundOK keeps lookups of absent keys out of the error counter.
func notFoundOK(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

var (
	_ storage.DailyBarStore = (*DailyBarStore)(nil)
	_ storage.SignalStore   = (*SignalStore)(nil)
	_ storage.TradeStore    = (*TradeStore)(nil)
	_ storage.SummaryStore  = (*SummaryStore)(nil)
)
