package strategy

import (
	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/idhash"
)

// buildTrade constructs a complete Trade from entry and exit details.
func buildTrade(
	strategyID string,
	signal domain.CandidateSignal,
	entry, exit domain.PricePoint,
	exitReason string,
	finalStop float64,
) *domain.Trade {
	profitLoss := exit.Close - entry.Close
	profitLossPct := (exit.Close/entry.Close - 1) * 100

	// Classify outcome; break-even counts as a loss
	outcome := domain.OutcomeLoss
	if profitLoss > 0 {
		outcome = domain.OutcomeProfit
	}

	return &domain.Trade{
		TradeID:      idhash.ComputeTradeID(strategyID, signal.InstrumentID, signal.ReferenceDate),
		StrategyID:   strategyID,
		InstrumentID: signal.InstrumentID,

		ReferenceDate: domain.Day(signal.ReferenceDate),
		EntryDate:     entry.Date,
		EntryPrice:    entry.Close,

		ExitDate:   exit.Date,
		ExitPrice:  exit.Close,
		ExitReason: exitReason,
		FinalStop:  finalStop,

		ProfitLoss:    profitLoss,
		ProfitLossPct: profitLossPct,
		Outcome:       outcome,
		DaysHeld:      domain.DaysBetween(entry.Date, exit.Date),

		Metrics: signal.Metrics,
	}
}
