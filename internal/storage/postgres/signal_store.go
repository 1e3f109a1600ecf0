package postgres

import (
	"context"
	"fmt"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// SignalStore implements storage.SignalStore using the high_volume_weeks table.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

var _ storage.SignalStore = (*SignalStore)(nil)

// InsertBulk adds multiple signals atomically. Fails entire batch on duplicate (symbol, week_start).
func (s *SignalStore) InsertBulk(ctx context.Context, signals []*domain.CandidateSignal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO high_volume_weeks (
			symbol, week_start, reference_date, volume_multiple, rsi, volume
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, sig := range signals {
		if sig == nil || sig.InstrumentID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			sig.InstrumentID, domain.Day(sig.WeekStart), domain.Day(sig.ReferenceDate),
			sig.Metrics.VolumeMultiple, sig.Metrics.RSI, sig.Metrics.Volume,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert signal in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every signal, ordered by reference_date ASC, symbol ASC.
func (s *SignalStore) GetAll(ctx context.Context) ([]*domain.CandidateSignal, error) {
	query := `
		SELECT symbol, week_start, reference_date, volume_multiple, rsi, volume
		FROM high_volume_weeks
		ORDER BY reference_date ASC, symbol ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all signals: %w", err)
	}
	defer rows.Close()

	var signals []*domain.CandidateSignal
	for rows.Next() {
		var sig domain.CandidateSignal
		err := rows.Scan(
			&sig.InstrumentID, &sig.WeekStart, &sig.ReferenceDate,
			&sig.Metrics.VolumeMultiple, &sig.Metrics.RSI, &sig.Metrics.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}
		sig.WeekStart = domain.Day(sig.WeekStart)
		sig.ReferenceDate = domain.Day(sig.ReferenceDate)
		signals = append(signals, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}
	return signals, nil
}

// DeleteAll removes every signal.
func (s *SignalStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM high_volume_weeks`); err != nil {
		return fmt.Errorf("delete signals: %w", err)
	}
	return nil
}
