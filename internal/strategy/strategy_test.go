package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/idhash"
)

var entryDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) // Friday

// Helper to build consecutive weekday closes after entryDate
func makeFuture(prices ...float64) []domain.PricePoint {
	result := make([]domain.PricePoint, 0, len(prices))
	d := entryDate
	for _, p := range prices {
		d = d.AddDate(0, 0, 1)
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
		result = append(result, domain.PricePoint{Date: d, Close: p})
	}
	return result
}

func makeInput(entryPrice float64, future ...float64) *Input {
	return &Input{
		Signal: domain.CandidateSignal{
			InstrumentID:  "TEST",
			ReferenceDate: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
			Metrics:       domain.SignalMetrics{VolumeMultiple: 4.2, RSI: 61.5, Volume: 1250000},
		},
		Entry:  domain.PricePoint{Date: entryDate, Close: entryPrice},
		Future: makeFuture(future...),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTargetLadder_StopAfterTarget1(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	trade, err := s.Execute(makeInput(100, 90, 116, 69))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	future := makeFuture(90, 116, 69)
	if !trade.ExitDate.Equal(future[2].Date) {
		t.Errorf("expected exit on day 3 (%s), got %s", future[2].Date.Format(domain.DateLayout), trade.ExitDate.Format(domain.DateLayout))
	}
	if trade.ExitPrice != 69 {
		t.Errorf("expected exit price 69, got %f", trade.ExitPrice)
	}
	if trade.Outcome != domain.OutcomeLoss {
		t.Errorf("expected Loss, got %s", trade.Outcome)
	}
	if !approx(trade.ProfitLoss, -31) {
		t.Errorf("expected profit_loss -31, got %f", trade.ProfitLoss)
	}
	if !approx(trade.ProfitLossPct, -31) {
		t.Errorf("expected profit_loss_pct -31, got %f", trade.ProfitLossPct)
	}
	if trade.ExitReason != domain.ExitReasonTrailingStop {
		t.Errorf("expected TRAILING_STOP, got %s", trade.ExitReason)
	}
	if !approx(trade.FinalStop, 101) {
		t.Errorf("expected final stop 101, got %f", trade.FinalStop)
	}
}

// Falling back under target2 keeps the stop at target1: the ratchet never
// recomputes a lower level, so the pullback to 110 exits.
func TestTargetLadder_StopNeverLowersOnPullback(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	trade, err := s.Execute(makeInput(100, 130, 120, 110))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	future := makeFuture(130, 120, 110)
	if !trade.ExitDate.Equal(future[2].Date) {
		t.Errorf("expected exit on day 3 (%s), got %s", future[2].Date.Format(domain.DateLayout), trade.ExitDate.Format(domain.DateLayout))
	}
	if trade.ExitPrice != 110 {
		t.Errorf("expected exit price 110, got %f", trade.ExitPrice)
	}
	if trade.ExitReason != domain.ExitReasonTrailingStop {
		t.Errorf("expected TRAILING_STOP, got %s", trade.ExitReason)
	}
	if !approx(trade.FinalStop, 115) {
		t.Errorf("expected final stop 115, got %f", trade.FinalStop)
	}
	if trade.Outcome != domain.OutcomeProfit {
		t.Errorf("expected Profit, got %s", trade.Outcome)
	}
}

func TestTargetLadder_FinalTarget(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	trade, err := s.Execute(makeInput(100, 120, 130, 140))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if trade.ExitPrice != 140 {
		t.Errorf("expected exit price 140, got %f", trade.ExitPrice)
	}
	if trade.Outcome != domain.OutcomeProfit {
		t.Errorf("expected Profit, got %s", trade.Outcome)
	}
	if !approx(trade.ProfitLossPct, 40) {
		t.Errorf("expected profit_loss_pct 40, got %f", trade.ProfitLossPct)
	}
	if trade.ExitReason != domain.ExitReasonFinalTarget {
		t.Errorf("expected FINAL_TARGET, got %s", trade.ExitReason)
	}
	// Entry Friday 01-05, exit Wednesday 01-10
	if trade.DaysHeld != 5 {
		t.Errorf("expected 5 calendar days held, got %d", trade.DaysHeld)
	}
}

func TestTargetLadder_Target3IsUnconditionalExit(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	paths := [][]float64{
		{135},
		{90, 135},
		{120, 135},
		{130, 135},
	}
	for _, path := range paths {
		trade, err := s.Execute(makeInput(100, append(path, 10)...))
		if err != nil {
			t.Fatalf("path %v: Execute failed: %v", path, err)
		}
		if trade.ExitPrice != 135 {
			t.Errorf("path %v: expected exit at 135, got %f", path, trade.ExitPrice)
		}
		if trade.ExitReason != domain.ExitReasonFinalTarget {
			t.Errorf("path %v: expected FINAL_TARGET, got %s", path, trade.ExitReason)
		}
	}
}

func TestTargetLadder_InitialStop(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	trade, err := s.Execute(makeInput(100, 80, 70, 60))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if trade.ExitPrice != 70 {
		t.Errorf("expected exit at 70 (stop is inclusive), got %f", trade.ExitPrice)
	}
	if trade.ExitReason != domain.ExitReasonInitialStop {
		t.Errorf("expected INITIAL_STOP, got %s", trade.ExitReason)
	}
}

func TestTargetLadder_ZeroProfitIsLoss(t *testing.T) {
	s := NewTargetLadderStrategy(domain.LadderConfig{
		Target1:       1.15,
		Target2:       1.25,
		Target3:       1.35,
		InitialStop:   0.70,
		BreakevenStop: 1.00,
	})

	trade, err := s.Execute(makeInput(100, 116, 100))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if trade.ProfitLoss != 0 {
		t.Fatalf("expected zero profit_loss, got %f", trade.ProfitLoss)
	}
	if trade.Outcome != domain.OutcomeLoss {
		t.Errorf("expected zero profit_loss to classify as Loss, got %s", trade.Outcome)
	}
}

func TestTargetLadder_Unresolved(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	_, err := s.Execute(makeInput(100, 95, 100, 110, 120, 130))
	if !errors.Is(err, ErrUnresolvedExit) {
		t.Errorf("expected ErrUnresolvedExit, got %v", err)
	}

	_, err = s.Execute(makeInput(100))
	if !errors.Is(err, ErrUnresolvedExit) {
		t.Errorf("expected ErrUnresolvedExit for empty future, got %v", err)
	}
}

func TestTargetLadder_StopsAtFirstExit(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	trade, err := s.Execute(makeInput(100, 60, 200))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if trade.ExitPrice != 60 {
		t.Errorf("expected first exit at 60, got %f", trade.ExitPrice)
	}
}

func TestTargetLadder_ExitAfterEntry(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	paths := [][]float64{{60}, {140}, {116, 100}, {90, 91, 92, 50}}
	for _, path := range paths {
		trade, err := s.Execute(makeInput(100, path...))
		if err != nil {
			t.Fatalf("path %v: Execute failed: %v", path, err)
		}
		if !trade.ExitDate.After(trade.EntryDate) {
			t.Errorf("path %v: exit %s not after entry %s", path, trade.ExitDate, trade.EntryDate)
		}
		if trade.DaysHeld < 0 {
			t.Errorf("path %v: negative days held %d", path, trade.DaysHeld)
		}
		if (trade.Outcome == domain.OutcomeProfit) != (trade.ProfitLoss > 0) {
			t.Errorf("path %v: outcome %s inconsistent with profit_loss %f", path, trade.Outcome, trade.ProfitLoss)
		}
	}
}

func TestTargetLadder_CarriesSignal(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)
	input := makeInput(100, 140)

	trade, err := s.Execute(input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if trade.Metrics != input.Signal.Metrics {
		t.Errorf("metrics not carried: got %+v", trade.Metrics)
	}
	if trade.InstrumentID != "TEST" || trade.StrategyID != s.ID() {
		t.Errorf("unexpected identity fields: %s %s", trade.InstrumentID, trade.StrategyID)
	}
	want := idhash.ComputeTradeID(s.ID(), "TEST", input.Signal.ReferenceDate)
	if trade.TradeID != want {
		t.Errorf("TradeID mismatch: got %s, want %s", trade.TradeID, want)
	}
}

func TestTargetLadder_Deterministic(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)

	first, err := s.Execute(makeInput(100, 105, 118, 126, 112, 99))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for run := 0; run < 5; run++ {
		got, err := s.Execute(makeInput(100, 105, 118, 126, 112, 99))
		if err != nil {
			t.Fatalf("Run %d: Execute failed: %v", run, err)
		}
		if *got != *first {
			t.Errorf("Run %d: trade differs: %+v vs %+v", run, got, first)
		}
	}
}

func TestTargetLadder_ID(t *testing.T) {
	s := NewTargetLadderStrategy(domain.DefaultLadderConfig)
	if got := s.ID(); got != "TARGET_LADDER_t115_t125_t135_sl70" {
		t.Errorf("unexpected ID %s", got)
	}
}

func TestInput_Validate(t *testing.T) {
	valid := makeInput(100, 101, 102)
	if err := valid.Validate(); err != nil {
		t.Errorf("valid input should pass: %v", err)
	}

	var nilInput *Input
	if err := nilInput.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	input := makeInput(100, 101)
	input.Signal.InstrumentID = ""
	if err := input.Validate(); !errors.Is(err, ErrEmptyInstrumentID) {
		t.Errorf("expected ErrEmptyInstrumentID, got %v", err)
	}

	input = makeInput(0, 101)
	if err := input.Validate(); !errors.Is(err, ErrInvalidEntryPrice) {
		t.Errorf("expected ErrInvalidEntryPrice, got %v", err)
	}

	input = makeInput(100, 101)
	input.Future = append([]domain.PricePoint{{Date: entryDate, Close: 99}}, input.Future...)
	if err := input.Validate(); !errors.Is(err, ErrFutureNotAfter) {
		t.Errorf("expected ErrFutureNotAfter, got %v", err)
	}
}
