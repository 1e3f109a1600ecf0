// Package app wires configuration into stores for the command entry points.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/config"
	"volume-breakout-lab/internal/observability"
	"volume-breakout-lab/internal/storage"
	"volume-breakout-lab/internal/storage/clickhouse"
	"volume-breakout-lab/internal/storage/instrumented"
	"volume-breakout-lab/internal/storage/memory"
	"volume-breakout-lab/internal/storage/migrations"
	"volume-breakout-lab/internal/storage/postgres"
)

// Stores groups the storage backends used by a command.
type Stores struct {
	Bars      storage.DailyBarStore
	Signals   storage.SignalStore
	Trades    storage.TradeStore
	Summaries storage.SummaryStore

	closers []func()
}

// Close releases every open connection.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// StoreOptions selects the backends.
type StoreOptions struct {
	UseMemory bool // in-memory stores, no databases
	Migrate   bool // apply embedded migrations before use
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// NewMemoryStores returns empty in-memory stores.
func NewMemoryStores(m *observability.Metrics) *Stores {
	return instrument(&Stores{
		Bars:      memory.NewDailyBarStore(),
		Signals:   memory.NewSignalStore(),
		Trades:    memory.NewTradeStore(),
		Summaries: memory.NewSummaryStore(),
	}, "memory", "memory", m)
}

// OpenStores connects to PostgreSQL and, when cfg.Clickhouse.DSN is set,
// ClickHouse for daily bars.
func OpenStores(ctx context.Context, cfg config.AppConfig, opts StoreOptions) (*Stores, error) {
	if opts.UseMemory {
		return NewMemoryStores(opts.Metrics), nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Stores{}
	pool, err := postgres.NewPool(ctx, cfg.Database.DSN(), postgres.WithMaxConns(cfg.Database.MaxConns))
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, pool.Close)
	logger.Info("connected to postgres", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if opts.Migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	s.Signals = postgres.NewSignalStore(pool)
	s.Trades = postgres.NewTradeStore(pool)
	s.Summaries = postgres.NewSummaryStore(pool)
	barsDB := "postgres"

	if cfg.Clickhouse.DSN != "" {
		var conn *clickhouse.Conn
		if opts.Migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.Clickhouse.DSN)
		} else {
			conn, err = clickhouse.NewConn(ctx, cfg.Clickhouse.DSN)
		}
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.Bars = clickhouse.NewDailyBarStore(conn)
		barsDB = "clickhouse"
		logger.Info("daily bars served from clickhouse")
	} else {
		s.Bars = postgres.NewDailyBarStore(pool)
	}

	return instrument(s, barsDB, "postgres", opts.Metrics), nil
}

func instrument(s *Stores, barsDB, db string, m *observability.Metrics) *Stores {
	if m == nil {
		return s
	}
	s.Bars = instrumented.NewDailyBarStore(s.Bars, barsDB, m)
	s.Signals = instrumented.NewSignalStore(s.Signals, db, m)
	s.Trades = instrumented.NewTradeStore(s.Trades, db, m)
	s.Summaries = instrumented.NewSummaryStore(s.Summaries, db, m)
	return s
}
