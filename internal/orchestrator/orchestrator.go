// Package orchestrator provides E2E pipeline orchestration.
// It coordinates: screening → simulation → metrics → reporting
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/metrics"
	"volume-breakout-lab/internal/observability"
	"volume-breakout-lab/internal/reporting"
	"volume-breakout-lab/internal/screening"
	"volume-breakout-lab/internal/simulation"
	"volume-breakout-lab/internal/storage"
)

// ErrNoBarStore is returned when the orchestrator has no price source.
var ErrNoBarStore = errors.New("orchestrator: bar store is required")

// Phase names used in logs and run metrics.
const (
	PhaseScreen      = "screen"
	PhaseLoadSignals = "load_signals"
	PhaseLoadSeries  = "load_series"
	PhaseSimulate    = "simulate"
	PhaseAggregate   = "aggregate"
	PhasePersist     = "persist"
	PhaseReport      = "report"
	PhaseRun         = "run"
)

// Orchestrator coordinates the E2E pipeline execution.
// Flow: signals (stored or screened) → series → simulation → summary → persistence → reports
type Orchestrator struct {
	// Stores
	barStore     storage.DailyBarStore
	signalStore  storage.SignalStore  // optional; nil screens inline
	tradeStore   storage.TradeStore   // optional; persistence
	summaryStore storage.SummaryStore // optional; persistence

	screener *screening.Screener
	runner   *simulation.Runner

	// Options
	persist   bool
	outputDir string
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required store
	BarStore storage.DailyBarStore

	// Optional stores
	SignalStore  storage.SignalStore
	TradeStore   storage.TradeStore
	SummaryStore storage.SummaryStore

	Screener *screening.Screener // nil uses DefaultCriteria
	Runner   *simulation.Runner  // nil uses the default ladder

	Persist   bool   // write trades and summary to TradeStore/SummaryStore
	OutputDir string // empty skips report files
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Clock     func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		barStore:     opts.BarStore,
		signalStore:  opts.SignalStore,
		tradeStore:   opts.TradeStore,
		summaryStore: opts.SummaryStore,
		screener:     opts.Screener,
		runner:       opts.Runner,
		persist:      opts.Persist,
		outputDir:    opts.OutputDir,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		now:          opts.Clock,
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.screener == nil {
		o.screener = screening.NewScreener(screening.DefaultCriteria(), o.logger, o.metrics)
	}
	if o.runner == nil {
		o.runner = simulation.NewRunner(simulation.RunnerOptions{Logger: o.logger, Metrics: o.metrics})
	}
	if o.now == nil {
		o.now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	StrategyID string
	Signals    int
	Trades     []*domain.Trade // sorted by instrument, entry date
	Dropped    map[simulation.DropReason]int
	Malformed  []string // instruments whose stored bars are not a valid series
	Summary    domain.Summary
	Yearly     []domain.YearStats
	Files      []string // report files written
}

// Run executes the full E2E pipeline.
// Phases:
//  1. Load signals (from SignalStore, or screen the bar store when none is set)
//  2. Load the close series of every signalled instrument
//  3. Simulate every signal
//  4. Summarise
//  5. Persist trades and summary (optional)
//  6. Write reports (optional)
//
// A cancelled ctx stops the pipeline between phases; a simulation batch in
// progress always completes.
func (o *Orchestrator) Run(ctx context.Context) (res *RunResult, err error) {
	if o.barStore == nil {
		return nil, ErrNoBarStore
	}

	runStart := time.Now()
	defer func() {
		o.metrics.RecordRun(PhaseRun, status(err), time.Since(runStart))
	}()

	strategyID := o.runner.StrategyID()
	log := o.logger.With(zap.String("strategy", strategyID))
	result := &RunResult{StrategyID: strategyID}

	// Phase 1: signals
	var signals []domain.CandidateSignal
	if o.signalStore != nil {
		err = o.phase(ctx, PhaseLoadSignals, func() (ferr error) {
			signals, ferr = o.loadSignals(ctx)
			return ferr
		})
	} else {
		err = o.phase(ctx, PhaseScreen, func() (ferr error) {
			signals, ferr = o.Screen(ctx)
			return ferr
		})
	}
	if err != nil {
		return nil, err
	}
	result.Signals = len(signals)
	log.Info("signals loaded", zap.Int("signals", len(signals)))

	// Phase 2: series
	var series map[string]*domain.PriceSeries
	err = o.phase(ctx, PhaseLoadSeries, func() (ferr error) {
		series, result.Malformed, ferr = storage.LoadSeries(ctx, o.barStore, storage.SignalSymbols(signals))
		return ferr
	})
	if err != nil {
		return nil, err
	}
	for _, id := range result.Malformed {
		log.Warn("malformed price series skipped", zap.String("instrument", id))
	}

	// Phase 3: simulation
	var sim *simulation.RunResult
	err = o.phase(ctx, PhaseSimulate, func() error {
		sim = o.runner.Run(signals, series)
		simulation.SortTrades(sim.Trades)
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Trades = sim.Trades
	result.Dropped = sim.Dropped
	o.metrics.SetLastRunTrades(len(sim.Trades))
	log.Info("simulation complete",
		zap.Int("trades", len(sim.Trades)),
		zap.Int("dropped", sim.DroppedTotal()),
	)

	// Phase 4: summary
	err = o.phase(ctx, PhaseAggregate, func() error {
		result.Summary = metrics.Summarize(strategyID, result.Trades)
		result.Yearly = metrics.YearlyBreakdown(result.Trades)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Phase 5: persistence
	if o.persist {
		err = o.phase(ctx, PhasePersist, func() error {
			return o.persistResults(ctx, strategyID, result)
		})
		if err != nil {
			return nil, err
		}
	}

	// Phase 6: reports
	if o.outputDir != "" {
		err = o.phase(ctx, PhaseReport, func() (ferr error) {
			result.Files, ferr = o.writeReports(result, signals)
			return ferr
		})
		if err != nil {
			return nil, err
		}
	}

	log.Info("pipeline completed",
		zap.Int("signals", result.Signals),
		zap.Int("trades", len(result.Trades)),
		zap.Float64("win_ratio_pct", metrics.Round(result.Summary.WinRatioPct)),
		zap.Duration("elapsed", time.Since(runStart)),
	)
	return result, nil
}

// Screen runs the weekly screen over every instrument in the bar store.
func (o *Orchestrator) Screen(ctx context.Context) ([]domain.CandidateSignal, error) {
	if o.barStore == nil {
		return nil, ErrNoBarStore
	}
	symbols, err := o.barStore.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}

	var bars []*domain.DailyBar
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := o.barStore.GetBySymbol(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("load bars for %s: %w", symbol, err)
		}
		bars = append(bars, b...)
	}
	return o.screener.Screen(bars), nil
}

// SaveSignals replaces the stored signals with signals.
func (o *Orchestrator) SaveSignals(ctx context.Context, signals []domain.CandidateSignal) error {
	if o.signalStore == nil {
		return errors.New("orchestrator: signal store is required")
	}
	if err := o.signalStore.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear signals: %w", err)
	}
	ptrs := make([]*domain.CandidateSignal, len(signals))
	for i := range signals {
		ptrs[i] = &signals[i]
	}
	if err := o.signalStore.InsertBulk(ctx, ptrs); err != nil {
		return fmt.Errorf("insert signals: %w", err)
	}
	return nil
}

// loadSignals reads the stored signals.
func (o *Orchestrator) loadSignals(ctx context.Context) ([]domain.CandidateSignal, error) {
	stored, err := o.signalStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}
	out := make([]domain.CandidateSignal, 0, len(stored))
	for _, s := range stored {
		out = append(out, *s)
	}
	return out, nil
}

// persistResults replaces the strategy's trades, then recomputes the stored
// summary from them. The old summary is dropped first so a failed replace
// never leaves a summary describing other trades.
func (o *Orchestrator) persistResults(ctx context.Context, strategyID string, result *RunResult) error {
	if o.tradeStore == nil || o.summaryStore == nil {
		return errors.New("orchestrator: persistence requires trade and summary stores")
	}
	if err := o.summaryStore.DeleteByStrategy(ctx, strategyID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("clear summary: %w", err)
	}
	if err := o.tradeStore.ReplaceByStrategy(ctx, strategyID, result.Trades); err != nil {
		return fmt.Errorf("replace trades: %w", err)
	}

	stored, err := metrics.NewAggregator(o.tradeStore, o.summaryStore).ComputeAndStore(ctx, strategyID)
	if err != nil {
		return fmt.Errorf("store summary: %w", err)
	}
	if stored.TotalTrades != result.Summary.TotalTrades {
		return fmt.Errorf("stored summary has %d trades, run produced %d", stored.TotalTrades, result.Summary.TotalTrades)
	}
	return nil
}

// writeReports renders every report file into the output directory.
func (o *Orchestrator) writeReports(result *RunResult, signals []domain.CandidateSignal) ([]string, error) {
	report := reporting.NewGenerator(o.tradeStore, o.summaryStore).
		WithClock(o.now).
		Build(result.StrategyID, result.Summary, result.Trades)
	report.SignalsProcessed = result.Signals
	report.Dropped = make(map[string]int, len(result.Dropped))
	for reason, n := range result.Dropped {
		report.Dropped[string(reason)] = n
	}

	files := reporting.Files(report)
	files[reporting.SignalsFile] = reporting.RenderSignalsCSV(signals)

	names := []string{
		reporting.SignalsFile,
		reporting.TradesFile,
		reporting.SummaryFile,
		reporting.YearlyFile,
		reporting.MarkdownFile,
	}
	written := make([]string, 0, len(names))
	for _, name := range names {
		path, err := reporting.WriteFile(o.outputDir, name, files[name])
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// phase runs fn unless ctx is done, records its duration and wraps its error.
func (o *Orchestrator) phase(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("phase %s: %w", name, err)
	}
	start := time.Now()
	err := fn()
	o.metrics.RecordRun(name, status(err), time.Since(start))
	if err != nil {
		o.logger.Error("phase failed", zap.String("phase", name), zap.Error(err))
		return fmt.Errorf("phase %s: %w", name, err)
	}
	o.logger.Debug("phase done", zap.String("phase", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
