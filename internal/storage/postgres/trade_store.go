package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeQuery = `
	INSERT INTO trade_records (
		trade_id, strategy_id, symbol, reference_date,
		entry_date, entry_price, exit_date, exit_price, exit_reason, final_stop,
		profit_loss, profit_loss_pct, outcome, days_held,
		volume_multiple, rsi, volume
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14,
		$15, $16, $17
	)
`

const selectTradeColumns = `
	SELECT
		trade_id, strategy_id, symbol, reference_date,
		entry_date, entry_price, exit_date, exit_price, exit_reason, final_stop,
		profit_loss, profit_loss_pct, outcome, days_held,
		volume_multiple, rsi, volume
	FROM trade_records
`

func tradeArgs(t *domain.Trade) []any {
	return []any{
		t.TradeID, t.StrategyID, t.InstrumentID, domain.Day(t.ReferenceDate),
		domain.Day(t.EntryDate), t.EntryPrice, domain.Day(t.ExitDate), t.ExitPrice, t.ExitReason, t.FinalStop,
		t.ProfitLoss, t.ProfitLossPct, string(t.Outcome), t.DaysHeld,
		t.Metrics.VolumeMultiple, t.Metrics.RSI, t.Metrics.Volume,
	}
}

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}
	if _, err := s.pool.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		if _, err := tx.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade record in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	row := s.pool.QueryRow(ctx, selectTradeColumns+` WHERE trade_id = $1`, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade record by id: %w", err)
	}
	return t, nil
}

// GetByStrategy retrieves all trades for a strategy, ordered by symbol ASC, entry_date ASC.
func (s *TradeStore) GetByStrategy(ctx context.Context, strategyID string) ([]*domain.Trade, error) {
	query := selectTradeColumns + `
		WHERE strategy_id = $1
		ORDER BY symbol ASC, entry_date ASC, trade_id ASC
	`

	rows, err := s.pool.Query(ctx, query, strategyID)
	if err != nil {
		return nil, fmt.Errorf("get trade records by strategy: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record row: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade record rows: %w", err)
	}
	return trades, nil
}

// DeleteByStrategy removes every trade of a strategy.
func (s *TradeStore) DeleteByStrategy(ctx context.Context, strategyID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM trade_records WHERE strategy_id = $1`, strategyID); err != nil {
		return fmt.Errorf("delete trade records: %w", err)
	}
	return nil
}

// ReplaceByStrategy deletes and reinserts a strategy's trades in one transaction.
func (s *TradeStore) ReplaceByStrategy(ctx context.Context, strategyID string, trades []*domain.Trade) error {
	for _, t := range trades {
		if t == nil || t.TradeID == "" || t.StrategyID != strategyID {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM trade_records WHERE strategy_id = $1`, strategyID); err != nil {
		return fmt.Errorf("delete trade records: %w", err)
	}
	for _, t := range trades {
		if _, err := tx.Exec(ctx, insertTradeQuery, tradeArgs(t)...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade record in replace: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// scanTrade scans a single row into a Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var (
		t       domain.Trade
		outcome string
	)
	err := row.Scan(
		&t.TradeID, &t.StrategyID, &t.InstrumentID, &t.ReferenceDate,
		&t.EntryDate, &t.EntryPrice, &t.ExitDate, &t.ExitPrice, &t.ExitReason, &t.FinalStop,
		&t.ProfitLoss, &t.ProfitLossPct, &outcome, &t.DaysHeld,
		&t.Metrics.VolumeMultiple, &t.Metrics.RSI, &t.Metrics.Volume,
	)
	if err != nil {
		return nil, err
	}
	t.Outcome = domain.Outcome(outcome)
	t.ReferenceDate = domain.Day(t.ReferenceDate)
	t.EntryDate = domain.Day(t.EntryDate)
	t.ExitDate = domain.Day(t.ExitDate)
	return &t, nil
}
