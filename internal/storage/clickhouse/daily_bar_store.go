package clickhouse

import (
	"context"
	"fmt"
	"time"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// DailyBarStore implements storage.DailyBarStore using the daily_bars table.
// MergeTree does not enforce uniqueness, so duplicates are checked before insert.
type DailyBarStore struct {
	conn *Conn
}

// NewDailyBarStore creates a new DailyBarStore.
func NewDailyBarStore(conn *Conn) *DailyBarStore {
	return &DailyBarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailyBarStore = (*DailyBarStore)(nil)

// InsertBulk adds multiple bars. Fails entire batch on duplicate (symbol, date).
func (s *DailyBarStore) InsertBulk(ctx context.Context, bars []*domain.DailyBar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		symbol string
		date   time.Time
	}

	// Check for intra-batch duplicates
	seen := make(map[key]struct{}, len(bars))
	symbols := make(map[string]struct{})
	for _, b := range bars {
		if b == nil || b.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		k := key{b.InstrumentID, domain.Day(b.Date)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		symbols[b.InstrumentID] = struct{}{}
	}

	// Check for duplicates against existing rows
	for symbol := range symbols {
		dates, err := s.dates(ctx, symbol)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, d := range dates {
			if _, exists := seen[key{symbol, d}]; exists {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_bars (symbol, date, open, high, low, close, volume)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(b.InstrumentID, domain.Day(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *DailyBarStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.DailyBar, error) {
	query := `
		SELECT symbol, date, open, high, low, close, volume
		FROM daily_bars
		WHERE symbol = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	var bars []*domain.DailyBar
	for rows.Next() {
		var b domain.DailyBar
		if err := rows.Scan(&b.InstrumentID, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		b.Date = domain.Day(b.Date)
		bars = append(bars, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return bars, nil
}

// ListSymbols returns the distinct symbols present, sorted ASC.
func (s *DailyBarStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT symbol FROM daily_bars ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return symbols, nil
}

// DeleteAll removes every bar.
func (s *DailyBarStore) DeleteAll(ctx context.Context) error {
	if err := s.conn.Exec(ctx, `TRUNCATE TABLE IF EXISTS daily_bars`); err != nil {
		return fmt.Errorf("truncate daily bars: %w", err)
	}
	return nil
}

func (s *DailyBarStore) dates(ctx context.Context, symbol string) ([]time.Time, error) {
	rows, err := s.conn.Query(ctx, `SELECT date FROM daily_bars WHERE symbol = ?`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, domain.Day(d))
	}
	return dates, rows.Err()
}
