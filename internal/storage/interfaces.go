package storage

import (
	"context"

	"volume-breakout-lab/internal/domain"
)

// DailyBarStore provides access to stock_data storage.
type DailyBarStore interface {
	// InsertBulk adds multiple bars atomically. Fails entire batch on duplicate (symbol, date).
	InsertBulk(ctx context.Context, bars []*domain.DailyBar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error)

	// ListSymbols returns the distinct symbols present, sorted ASC.
	ListSymbols(ctx context.Context) ([]string, error)

	// DeleteAll removes every bar.
	DeleteAll(ctx context.Context) error
}

// SignalStore provides access to high_volume_weeks storage.
type SignalStore interface {
	// InsertBulk adds multiple signals atomically. Fails entire batch on duplicate (symbol, week_start).
	InsertBulk(ctx context.Context, signals []*domain.CandidateSignal) error

	// GetAll retrieves every signal, ordered by reference_date ASC, symbol ASC.
	GetAll(ctx context.Context) ([]*domain.CandidateSignal, error)

	// DeleteAll removes every signal.
	DeleteAll(ctx context.Context) error
}

// TradeStore provides access to trade_records storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetByStrategy retrieves all trades for a strategy, ordered by symbol ASC, entry_date ASC.
	GetByStrategy(ctx context.Context, strategyID string) ([]*domain.Trade, error)

	// DeleteByStrategy removes every trade of a strategy.
	DeleteByStrategy(ctx context.Context, strategyID string) error

	// ReplaceByStrategy atomically swaps a strategy's trades for trades.
	// Every trade must carry strategyID. On error the previous trades remain.
	ReplaceByStrategy(ctx context.Context, strategyID string, trades []*domain.Trade) error
}

// SummaryStore provides access to backtest_summaries storage.
type SummaryStore interface {
	// Insert adds a new summary. Returns ErrDuplicateKey if strategy_id exists.
	Insert(ctx context.Context, s *domain.Summary) error

	// GetByStrategy retrieves the summary of a strategy. Returns ErrNotFound if not exists.
	GetByStrategy(ctx context.Context, strategyID string) (*domain.Summary, error)

	// DeleteByStrategy removes the summary of a strategy.
	DeleteByStrategy(ctx context.Context, strategyID string) error
}
