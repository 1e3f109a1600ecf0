package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

type barKey struct {
	symbol string
	date   time.Time
}

// DailyBarStore is an in-memory implementation of storage.DailyBarStore.
type DailyBarStore struct {
	mu   sync.RWMutex
	data map[barKey]*domain.DailyBar
}

// NewDailyBarStore creates a new in-memory bar store.
func NewDailyBarStore() *DailyBarStore {
	return &DailyBarStore{
		data: make(map[barKey]*domain.DailyBar),
	}
}

// InsertBulk adds multiple bars atomically. Fails entire batch on duplicate (symbol, date).
func (s *DailyBarStore) InsertBulk(_ context.Context, bars []*domain.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[barKey]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		key := barKey{symbol: b.InstrumentID, date: domain.Day(b.Date)}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, b := range bars {
		c := *b
		c.Date = domain.Day(b.Date)
		s.data[barKey{symbol: c.InstrumentID, date: c.Date}] = &c
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *DailyBarStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.DailyBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyBar
	for key, b := range s.data {
		if key.symbol == symbol {
			c := *b
			result = append(result, &c)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

// ListSymbols returns the distinct symbols present, sorted ASC.
func (s *DailyBarStore) ListSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range s.data {
		seen[key.symbol] = struct{}{}
	}
	result := make([]string, 0, len(seen))
	for symbol := range seen {
		result = append(result, symbol)
	}
	sort.Strings(result)
	return result, nil
}

// DeleteAll removes every bar.
func (s *DailyBarStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[barKey]*domain.DailyBar)
	return nil
}

var _ storage.DailyBarStore = (*DailyBarStore)(nil)
