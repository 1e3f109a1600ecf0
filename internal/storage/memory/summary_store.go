package memory

import (
	"context"
	"sync"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Summary // keyed by strategy_id
}

// NewSummaryStore creates a new in-memory summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{
		data: make(map[string]*domain.Summary),
	}
}

// Insert adds a new summary. Returns ErrDuplicateKey if strategy_id exists.
func (s *SummaryStore) Insert(_ context.Context, sum *domain.Summary) error {
	if sum == nil || sum.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[sum.StrategyID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[sum.StrategyID] = cloneSummary(sum)
	return nil
}

// GetByStrategy retrieves the summary of a strategy. Returns ErrNotFound if not exists.
func (s *SummaryStore) GetByStrategy(_ context.Context, strategyID string) (*domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, exists := s.data[strategyID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneSummary(sum), nil
}

// DeleteByStrategy removes the summary of a strategy.
func (s *SummaryStore) DeleteByStrategy(_ context.Context, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, strategyID)
	return nil
}

// cloneSummary deep-copies the optional fields so callers cannot mutate stored values.
func cloneSummary(s *domain.Summary) *domain.Summary {
	c := *s
	c.AvgProfitPct = clonePtr(s.AvgProfitPct)
	c.AvgLossPct = clonePtr(s.AvgLossPct)
	c.AvgDaysProfit = clonePtr(s.AvgDaysProfit)
	c.AvgDaysLoss = clonePtr(s.AvgDaysLoss)
	c.MaxDrawdownPct = clonePtr(s.MaxDrawdownPct)
	c.ProfitFactor = clonePtr(s.ProfitFactor)
	c.RiskRewardRatio = clonePtr(s.RiskRewardRatio)
	return &c
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

var _ storage.SummaryStore = (*SummaryStore)(nil)
