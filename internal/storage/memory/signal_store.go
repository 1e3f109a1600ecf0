package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

type signalKey struct {
	symbol    string
	weekStart time.Time
}

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[signalKey]*domain.CandidateSignal
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[signalKey]*domain.CandidateSignal),
	}
}

// InsertBulk adds multiple signals atomically. Fails entire batch on duplicate (symbol, week_start).
func (s *SignalStore) InsertBulk(_ context.Context, signals []*domain.CandidateSignal) error {
	if len(signals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[signalKey]struct{}, len(signals))
	for _, sig := range signals {
		if sig == nil || sig.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		key := signalKey{symbol: sig.InstrumentID, weekStart: domain.Day(sig.WeekStart)}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, sig := range signals {
		c := *sig
		c.WeekStart = domain.Day(sig.WeekStart)
		c.ReferenceDate = domain.Day(sig.ReferenceDate)
		s.data[signalKey{symbol: c.InstrumentID, weekStart: c.WeekStart}] = &c
	}
	return nil
}

// GetAll retrieves every signal, ordered by reference_date ASC, symbol ASC.
func (s *SignalStore) GetAll(_ context.Context) ([]*domain.CandidateSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CandidateSignal, 0, len(s.data))
	for _, sig := range s.data {
		c := *sig
		result = append(result, &c)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].ReferenceDate.Equal(result[j].ReferenceDate) {
			return result[i].ReferenceDate.Before(result[j].ReferenceDate)
		}
		return result[i].InstrumentID < result[j].InstrumentID
	})
	return result, nil
}

// DeleteAll removes every signal.
func (s *SignalStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[signalKey]*domain.CandidateSignal)
	return nil
}

var _ storage.SignalStore = (*SignalStore)(nil)
