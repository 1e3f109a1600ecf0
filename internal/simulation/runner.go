package simulation

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/lookup"
	"volume-breakout-lab/internal/observability"
	"volume-breakout-lab/internal/strategy"
)

// DropReason classifies a signal that produced no trade.
type DropReason string

const (
	DropMissingSeries  DropReason = "missing_series"
	DropNoEntry        DropReason = "no_entry"
	DropUnresolvedExit DropReason = "unresolved_exit"
	DropFailed         DropReason = "failed"
)

// RunResult is the outcome of one batch run.
type RunResult struct {
	Signals int                // signals submitted
	Trades  []*domain.Trade    // completion order, see SortTrades
	Dropped map[DropReason]int // signals without a trade, by reason
}

// DroppedTotal returns the number of signals that produced no trade.
func (r *RunResult) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Runner simulates candidate signals concurrently.
type Runner struct {
	strategy     strategy.Strategy
	lookbackDays int
	workers      int
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Strategy     strategy.Strategy
	LookbackDays int // <=0 uses lookup.DefaultLookbackDays
	Workers      int // <=0 uses GOMAXPROCS
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	r := &Runner{
		strategy:     opts.Strategy,
		lookbackDays: opts.LookbackDays,
		workers:      opts.Workers,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
	if r.strategy == nil {
		r.strategy = strategy.NewTargetLadderStrategy(domain.DefaultLadderConfig)
	}
	if r.lookbackDays <= 0 {
		r.lookbackDays = lookup.DefaultLookbackDays
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// StrategyID returns the identifier of the configured strategy.
func (r *Runner) StrategyID() string {
	return r.strategy.ID()
}

type outcome struct {
	trade  *domain.Trade
	reason DropReason
}

// Run simulates every signal against its instrument's series.
// Per-signal failures are counted in RunResult.Dropped and never stop other signals.
func (r *Runner) Run(signals []domain.CandidateSignal, series map[string]*domain.PriceSeries) *RunResult {
	result := &RunResult{
		Signals: len(signals),
		Trades:  make([]*domain.Trade, 0, len(signals)),
		Dropped: make(map[DropReason]int),
	}
	if len(signals) == 0 {
		return result
	}

	results := make(chan outcome, r.workers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for o := range results {
			if o.trade != nil {
				result.Trades = append(result.Trades, o.trade)
				continue
			}
			result.Dropped[o.reason]++
		}
	}()

	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, sig := range signals {
		g.Go(func() error {
			start := time.Now()
			trade, reason := r.simulate(sig, series[sig.InstrumentID])
			r.metrics.RecordSignal(string(reason), time.Since(start))
			results <- outcome{trade: trade, reason: reason}
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-done

	return result
}

// simulate runs one signal. Panics are recovered and reported as DropFailed.
func (r *Runner) simulate(sig domain.CandidateSignal, series *domain.PriceSeries) (trade *domain.Trade, reason DropReason) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("simulation panicked",
				zap.String("instrument", sig.InstrumentID),
				zap.String("reference_date", sig.ReferenceDate.Format(domain.DateLayout)),
				zap.String("panic", fmt.Sprint(rec)),
			)
			trade, reason = nil, DropFailed
		}
	}()

	entry, err := lookup.ResolveEntryWithin(series, sig.ReferenceDate, r.lookbackDays)
	if err != nil {
		return nil, r.classify(sig, err)
	}

	input := &strategy.Input{
		Signal: sig,
		Entry:  entry,
		Future: series.After(entry.Date),
	}
	trade, err = r.strategy.Execute(input)
	if err != nil {
		return nil, r.classify(sig, err)
	}
	return trade, ""
}

func (r *Runner) classify(sig domain.CandidateSignal, err error) DropReason {
	switch {
	case errors.Is(err, lookup.ErrNoPriceData):
		return DropMissingSeries
	case errors.Is(err, lookup.ErrNoEntry):
		return DropNoEntry
	case errors.Is(err, strategy.ErrUnresolvedExit):
		return DropUnresolvedExit
	}
	r.logger.Warn("simulation failed",
		zap.String("instrument", sig.InstrumentID),
		zap.String("reference_date", sig.ReferenceDate.Format(domain.DateLayout)),
		zap.Error(err),
	)
	return DropFailed
}

// SortTrades orders trades by instrument, entry date and trade id.
func SortTrades(trades []*domain.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if a.InstrumentID != b.InstrumentID {
			return a.InstrumentID < b.InstrumentID
		}
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		return a.TradeID < b.TradeID
	})
}
