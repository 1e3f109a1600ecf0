package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/storage"
)

// DefaultBatchSize is the number of bars per InsertBulk call.
const DefaultBatchSize = 5000

// Manager moves bars from a source into storage.
// It enforces deterministic ordering and uses storage layer for duplicate rejection.
type Manager struct {
	source    BarSource
	store     storage.DailyBarStore
	batchSize int
	replace   bool
	logger    *zap.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source    BarSource
	Store     storage.DailyBarStore
	BatchSize int  // <=0 uses DefaultBatchSize
	Replace   bool // delete existing bars before ingesting
	Logger    *zap.Logger
}

// NewManager creates a new ingestion manager.
func NewManager(opts ManagerOptions) *Manager {
	m := &Manager{
		source:    opts.Source,
		store:     opts.Store,
		batchSize: opts.BatchSize,
		replace:   opts.Replace,
		logger:    opts.Logger,
	}
	if m.batchSize <= 0 {
		m.batchSize = DefaultBatchSize
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Ingest fetches bars, orders them by (symbol, date) and stores them in batches.
// Returns the number of bars stored. A duplicate within the fetched set is
// rejected before anything is written.
func (m *Manager) Ingest(ctx context.Context) (int, error) {
	if m.source == nil || m.store == nil {
		return 0, nil
	}

	bars, err := m.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch bars: %w", err)
	}

	SortBars(bars)
	if err := ValidateBarOrdering(bars); err != nil {
		return 0, fmt.Errorf("%w: %w", storage.ErrDuplicateKey, err)
	}

	if m.replace {
		if err := m.store.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("clear bars: %w", err)
		}
	}

	stored := 0
	for start := 0; start < len(bars); start += m.batchSize {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		end := min(start+m.batchSize, len(bars))
		if err := m.store.InsertBulk(ctx, bars[start:end]); err != nil {
			return stored, fmt.Errorf("insert bars %d..%d: %w", start, end, err)
		}
		stored = end
	}

	m.logger.Info("bars ingested", zap.Int("bars", stored))
	return stored, nil
}
