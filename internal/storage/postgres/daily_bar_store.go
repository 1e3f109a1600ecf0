package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// DailyBarStore implements storage.DailyBarStore using the stock_data table.
type DailyBarStore struct {
	pool *Pool
}

// NewDailyBarStore creates a new DailyBarStore.
func NewDailyBarStore(pool *Pool) *DailyBarStore {
	return &DailyBarStore{pool: pool}
}

var _ storage.DailyBarStore = (*DailyBarStore)(nil)

// InsertBulk copies bars in one COPY statement. Fails entire batch on duplicate (symbol, date).
func (s *DailyBarStore) InsertBulk(ctx context.Context, bars []*domain.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	rows := make([][]any, len(bars))
	for i, b := range bars {
		if b == nil || b.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		rows[i] = []any{b.InstrumentID, domain.Day(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume}
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"stock_data"},
		[]string{"symbol", "date", "open", "high", "low", "close", "volume"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("copy stock data: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *DailyBarStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error) {
	query := `
		SELECT symbol, date, open, high, low, close, volume
		FROM stock_data
		WHERE symbol = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get stock data by symbol: %w", err)
	}
	defer rows.Close()

	var bars []*domain.DailyBar
	for rows.Next() {
		var b domain.DailyBar
		if err := rows.Scan(&b.InstrumentID, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan stock data row: %w", err)
		}
		b.Date = domain.Day(b.Date)
		bars = append(bars, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock data rows: %w", err)
	}
	return bars, nil
}

// ListSymbols returns the distinct symbols present, sorted ASC.
func (s *DailyBarStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT symbol FROM stock_data ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	symbols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect symbols: %w", err)
	}
	return symbols, nil
}

// DeleteAll removes every bar.
func (s *DailyBarStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM stock_data`); err != nil {
		return fmt.Errorf("delete stock data: %w", err)
	}
	return nil
}
