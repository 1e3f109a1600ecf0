// Package verification checks that stored trades match a fresh replay of
// their signals against the stored bars.
package verification

import (
	"math"
	"time"

	"volume-breakout-lab/internal/domain"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string // field name
	Expected any    // stored value
	Actual   any    // replayed value
}

// Result contains the result of verifying a single trade.
type Result struct {
	TradeID          string            // verified trade ID
	InstrumentID     string            // stock symbol
	Match            bool              // true if all fields match
	Divergences      []FieldDivergence // list of divergent fields
	StoredOutcomePct float64           // profit/loss % of the stored trade
	ReplayOutcomePct float64           // profit/loss % of the replay, 0 when none
}

// Report contains results for batch verification.
type Report struct {
	StrategyID      string
	TotalTrades     int      // stored trades verified
	MatchedTrades   int      // trades that matched exactly
	DivergentTrades int      // trades with divergences or no replay
	Unstored        []string // trade IDs the replay produced that are not stored
	Results         []Result // individual results, stored order
}

// OK reports whether every stored trade matched and nothing is missing.
func (r *Report) OK() bool {
	return r.DivergentTrades == 0 && len(r.Unstored) == 0
}

// CompareTrades compares two trades and returns divergences.
// Uses FloatTolerance for float64 comparisons.
func CompareTrades(stored, replayed *domain.Trade) []FieldDivergence {
	var d []FieldDivergence

	d = checkString(d, "TradeID", stored.TradeID, replayed.TradeID)
	d = checkString(d, "StrategyID", stored.StrategyID, replayed.StrategyID)
	d = checkString(d, "InstrumentID", stored.InstrumentID, replayed.InstrumentID)

	// Entry
	d = checkDate(d, "ReferenceDate", stored.ReferenceDate, replayed.ReferenceDate)
	d = checkDate(d, "EntryDate", stored.EntryDate, replayed.EntryDate)
	d = checkFloat(d, "EntryPrice", stored.EntryPrice, replayed.EntryPrice)

	// Exit
	d = checkDate(d, "ExitDate", stored.ExitDate, replayed.ExitDate)
	d = checkFloat(d, "ExitPrice", stored.ExitPrice, replayed.ExitPrice)
	d = checkString(d, "ExitReason", stored.ExitReason, replayed.ExitReason)
	d = checkFloat(d, "FinalStop", stored.FinalStop, replayed.FinalStop)

	// Outcome
	d = checkFloat(d, "ProfitLoss", stored.ProfitLoss, replayed.ProfitLoss)
	d = checkFloat(d, "ProfitLossPct", stored.ProfitLossPct, replayed.ProfitLossPct)
	d = checkString(d, "Outcome", string(stored.Outcome), string(replayed.Outcome))
	if stored.DaysHeld != replayed.DaysHeld {
		d = append(d, FieldDivergence{Field: "DaysHeld", Expected: stored.DaysHeld, Actual: replayed.DaysHeld})
	}

	// Signal metrics are carried, not recomputed
	d = checkFloat(d, "Metrics.VolumeMultiple", stored.Metrics.VolumeMultiple, replayed.Metrics.VolumeMultiple)
	d = checkFloat(d, "Metrics.RSI", stored.Metrics.RSI, replayed.Metrics.RSI)
	d = checkFloat(d, "Metrics.Volume", stored.Metrics.Volume, replayed.Metrics.Volume)

	return d
}

func checkString(d []FieldDivergence, field, stored, replayed string) []FieldDivergence {
	if stored != replayed {
		d = append(d, FieldDivergence{Field: field, Expected: stored, Actual: replayed})
	}
	return d
}

func checkFloat(d []FieldDivergence, field string, stored, replayed float64) []FieldDivergence {
	if !floatEquals(stored, replayed) {
		d = append(d, FieldDivergence{Field: field, Expected: stored, Actual: replayed})
	}
	return d
}

func checkDate(d []FieldDivergence, field string, stored, replayed time.Time) []FieldDivergence {
	if !domain.Day(stored).Equal(domain.Day(replayed)) {
		d = append(d, FieldDivergence{
			Field:    field,
			Expected: stored.Format(domain.DateLayout),
			Actual:   replayed.Format(domain.DateLayout),
		})
	}
	return d
}

// floatEquals compares two floats with tolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
