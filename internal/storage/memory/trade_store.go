package memory

import (
	"context"
	"sort"
	"sync"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Trade // keyed by trade_id
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[string]*domain.Trade),
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(_ context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[t.TradeID]; exists {
		return storage.ErrDuplicateKey
	}

	c := *t
	s.data[t.TradeID] = &c
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	for _, t := range trades {
		c := *t
		s.data[t.TradeID] = &c
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(_ context.Context, tradeID string) (*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[tradeID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	c := *t
	return &c, nil
}

// GetByStrategy retrieves all trades for a strategy, ordered by symbol ASC, entry_date ASC.
func (s *TradeStore) GetByStrategy(_ context.Context, strategyID string) ([]*domain.Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Trade
	for _, t := range s.data {
		if t.StrategyID == strategyID {
			c := *t
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].InstrumentID != result[j].InstrumentID {
			return result[i].InstrumentID < result[j].InstrumentID
		}
		if !result[i].EntryDate.Equal(result[j].EntryDate) {
			return result[i].EntryDate.Before(result[j].EntryDate)
		}
		return result[i].TradeID < result[j].TradeID
	})
	return result, nil
}

// DeleteByStrategy removes every trade of a strategy.
func (s *TradeStore) DeleteByStrategy(_ context.Context, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.data {
		if t.StrategyID == strategyID {
			delete(s.data, id)
		}
	}
	return nil
}

// ReplaceByStrategy atomically swaps a strategy's trades for trades.
func (s *TradeStore) ReplaceByStrategy(_ context.Context, strategyID string, trades []*domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.StrategyID != strategyID {
			return storage.ErrInvalidInput
		}
		if old, exists := s.data[t.TradeID]; exists && old.StrategyID != strategyID {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[t.TradeID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[t.TradeID] = struct{}{}
	}

	for id, t := range s.data {
		if t.StrategyID == strategyID {
			delete(s.data, id)
		}
	}
	for _, t := range trades {
		c := *t
		s.data[t.TradeID] = &c
	}
	return nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
