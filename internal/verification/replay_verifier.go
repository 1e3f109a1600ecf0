package verification

import (
	"context"
	"errors"
	"fmt"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/simulation"
	"volume-breakout-lab/internal/storage"
)

var (
	// ErrTradeNotFound is returned when trade ID doesn't exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrSignalNotFound is returned when no stored signal produced the trade.
	ErrSignalNotFound = errors.New("signal not found")

	// ErrStrategyMismatch is returned when the runner simulates a different strategy.
	ErrStrategyMismatch = errors.New("runner strategy does not match")
)

// ReplayVerifier replays stored signals and compares the result with stored trades.
type ReplayVerifier struct {
	tradeStore  storage.TradeStore
	signalStore storage.SignalStore
	barStore    storage.DailyBarStore
	runner      *simulation.Runner
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	TradeStore  storage.TradeStore
	SignalStore storage.SignalStore
	BarStore    storage.DailyBarStore
	Runner      *simulation.Runner // must simulate the strategy being verified
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		tradeStore:  opts.TradeStore,
		signalStore: opts.SignalStore,
		barStore:    opts.BarStore,
		runner:      opts.Runner,
	}
}

// VerifyTrade verifies a single trade by replaying its signal.
func (v *ReplayVerifier) VerifyTrade(ctx context.Context, tradeID string) (*Result, error) {
	// 1. Load stored trade
	stored, err := v.tradeStore.GetByID(ctx, tradeID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	if stored.StrategyID != v.runner.StrategyID() {
		return nil, fmt.Errorf("%w: stored %s, runner %s", ErrStrategyMismatch, stored.StrategyID, v.runner.StrategyID())
	}

	// 2. Find the signal
	signals, err := v.loadSignals(ctx)
	if err != nil {
		return nil, err
	}
	var sig *domain.CandidateSignal
	for i := range signals {
		s := &signals[i]
		if s.InstrumentID == stored.InstrumentID && s.ReferenceDate.Equal(domain.Day(stored.ReferenceDate)) {
			sig = s
			break
		}
	}
	if sig == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrSignalNotFound, stored.InstrumentID, stored.ReferenceDate.Format(domain.DateLayout))
	}

	// 3. Replay and compare
	replayed, err := v.replay(ctx, []domain.CandidateSignal{*sig})
	if err != nil {
		return nil, err
	}
	r := compare(stored, replayed.byID[stored.TradeID])
	return &r, nil
}

// VerifyAll replays every stored signal and verifies every stored trade of strategyID.
func (v *ReplayVerifier) VerifyAll(ctx context.Context, strategyID string) (*Report, error) {
	if strategyID != v.runner.StrategyID() {
		return nil, fmt.Errorf("%w: verifying %s, runner %s", ErrStrategyMismatch, strategyID, v.runner.StrategyID())
	}

	trades, err := v.tradeStore.GetByStrategy(ctx, strategyID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	signals, err := v.loadSignals(ctx)
	if err != nil {
		return nil, err
	}
	replayed, err := v.replay(ctx, signals)
	if err != nil {
		return nil, err
	}

	report := &Report{
		StrategyID:  strategyID,
		TotalTrades: len(trades),
		Results:     make([]Result, 0, len(trades)),
	}
	storedIDs := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		storedIDs[t.TradeID] = struct{}{}
		r := compare(t, replayed.byID[t.TradeID])
		report.Results = append(report.Results, r)
		if r.Match {
			report.MatchedTrades++
		} else {
			report.DivergentTrades++
		}
	}
	for _, t := range replayed.trades {
		if _, ok := storedIDs[t.TradeID]; !ok {
			report.Unstored = append(report.Unstored, t.TradeID)
		}
	}
	return report, nil
}

type replayResult struct {
	trades []*domain.Trade
	byID   map[string]*domain.Trade
}

// replay simulates signals against the stored bars.
func (v *ReplayVerifier) replay(ctx context.Context, signals []domain.CandidateSignal) (*replayResult, error) {
	series, _, err := storage.LoadSeries(ctx, v.barStore, storage.SignalSymbols(signals))
	if err != nil {
		return nil, err
	}
	run := v.runner.Run(signals, series)
	simulation.SortTrades(run.Trades)

	out := &replayResult{trades: run.Trades, byID: make(map[string]*domain.Trade, len(run.Trades))}
	for _, t := range run.Trades {
		out.byID[t.TradeID] = t
	}
	return out, nil
}

func (v *ReplayVerifier) loadSignals(ctx context.Context) ([]domain.CandidateSignal, error) {
	stored, err := v.signalStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}
	out := make([]domain.CandidateSignal, len(stored))
	for i, s := range stored {
		out[i] = *s
	}
	return out, nil
}

// compare builds the Result for a stored trade; a nil replay means the
// signal no longer produces a trade.
func compare(stored, replayed *domain.Trade) Result {
	r := Result{
		TradeID:          stored.TradeID,
		InstrumentID:     stored.InstrumentID,
		StoredOutcomePct: stored.ProfitLossPct,
	}
	if replayed == nil {
		r.Divergences = []FieldDivergence{{Field: "Trade", Expected: stored.TradeID, Actual: nil}}
		return r
	}
	r.ReplayOutcomePct = replayed.ProfitLossPct
	r.Divergences = CompareTrades(stored, replayed)
	r.Match = len(r.Divergences) == 0
	return r
}
