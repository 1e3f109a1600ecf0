package domain

import "time"

// Outcome classifies a closed trade.
type Outcome string

// Outcome constants. A zero profit/loss is a Loss.
const (
	OutcomeProfit Outcome = "Profit"
	OutcomeLoss   Outcome = "Loss"
)

// Exit reason codes
const (
	ExitReasonFinalTarget  = "FINAL_TARGET"
	ExitReasonInitialStop  = "INITIAL_STOP"
	ExitReasonTrailingStop = "TRAILING_STOP"
)

// Trade represents a simulated trade from entry to exit.
// Corresponds to trade_records table in PostgreSQL.
type Trade struct {
	TradeID      string // deterministic hash
	StrategyID   string // strategy identifier
	InstrumentID string // stock symbol

	// Entry
	ReferenceDate time.Time // week-ending date of the signal
	EntryDate     time.Time // resolved trading day
	EntryPrice    float64

	// Exit
	ExitDate   time.Time
	ExitPrice  float64
	ExitReason string  // reason code
	FinalStop  float64 // stop level in force on the exit day

	// Outcome
	ProfitLoss    float64 // exit - entry
	ProfitLossPct float64 // (exit/entry - 1) * 100
	Outcome       Outcome
	DaysHeld      int // calendar days

	Metrics SignalMetrics // carried from the signal
}
