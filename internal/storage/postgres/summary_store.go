package postgres

import (
	"context"
	"fmt"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using the backtest_summaries table.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

var _ storage.SummaryStore = (*SummaryStore)(nil)

// Insert adds a new summary. Returns ErrDuplicateKey if strategy_id exists.
// Undefined statistics are stored as NULL.
func (s *SummaryStore) Insert(ctx context.Context, sum *domain.Summary) error {
	if sum == nil || sum.StrategyID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO backtest_summaries (
			strategy_id, total_trades, wins, losses, win_ratio_pct,
			avg_profit_pct, avg_loss_pct, avg_days_profit, avg_days_loss,
			max_drawdown_pct, profit_factor, risk_reward_ratio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		sum.StrategyID, sum.TotalTrades, sum.Wins, sum.Losses, sum.WinRatioPct,
		sum.AvgProfitPct, sum.AvgLossPct, sum.AvgDaysProfit, sum.AvgDaysLoss,
		sum.MaxDrawdownPct, sum.ProfitFactor, sum.RiskRewardRatio,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert backtest summary: %w", err)
	}
	return nil
}

// GetByStrategy retrieves the summary of a strategy. Returns ErrNotFound if not exists.
func (s *SummaryStore) GetByStrategy(ctx context.Context, strategyID string) (*domain.Summary, error) {
	query := `
		SELECT
			strategy_id, total_trades, wins, losses, win_ratio_pct,
			avg_profit_pct, avg_loss_pct, avg_days_profit, avg_days_loss,
			max_drawdown_pct, profit_factor, risk_reward_ratio
		FROM backtest_summaries
		WHERE strategy_id = $1
	`

	var sum domain.Summary
	err := s.pool.QueryRow(ctx, query, strategyID).Scan(
		&sum.StrategyID, &sum.TotalTrades, &sum.Wins, &sum.Losses, &sum.WinRatioPct,
		&sum.AvgProfitPct, &sum.AvgLossPct, &sum.AvgDaysProfit, &sum.AvgDaysLoss,
		&sum.MaxDrawdownPct, &sum.ProfitFactor, &sum.RiskRewardRatio,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get backtest summary: %w", err)
	}
	return &sum, nil
}

// DeleteByStrategy removes the summary of a strategy.
func (s *SummaryStore) DeleteByStrategy(ctx context.Context, strategyID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM backtest_summaries WHERE strategy_id = $1`, strategyID); err != nil {
		return fmt.Errorf("delete backtest summary: %w", err)
	}
	return nil
}
