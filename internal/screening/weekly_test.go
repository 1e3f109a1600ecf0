package screening

import (
	"math"
	"testing"
	"time"

	"volume-breakout-lab/internal/domain"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestResampleWeekly(t *testing.T) {
	bars := []*domain.DailyBar{
		{InstrumentID: "X", Date: d(2024, 1, 3), Open: 11, High: 15, Low: 10, Close: 14, Volume: 200},
		{InstrumentID: "X", Date: d(2024, 1, 1), Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{InstrumentID: "X", Date: d(2024, 1, 5), Open: 14, High: 14.5, Low: 12, Close: 13, Volume: 300},
		{InstrumentID: "X", Date: d(2024, 1, 7), Open: 13, High: 13, Low: 13, Close: 13, Volume: 1}, // Sunday closes the week
		{InstrumentID: "X", Date: d(2024, 1, 8), Open: 20, High: 21, Low: 19, Close: 20, Volume: 50},
		// week of 2024-01-15 has no bars
		{InstrumentID: "X", Date: d(2024, 1, 23), Open: 30, High: 31, Low: 29, Close: 30, Volume: 70},
	}

	weeks := ResampleWeekly(bars)

	if len(weeks) != 3 {
		t.Fatalf("expected 3 weeks, got %d", len(weeks))
	}
	w := weeks[0]
	if !w.WeekEnd.Equal(d(2024, 1, 7)) || !w.WeekStart.Equal(d(2024, 1, 1)) {
		t.Errorf("week bounds: %v .. %v", w.WeekStart, w.WeekEnd)
	}
	if w.Open != 10 || w.Close != 13 || w.High != 15 || w.Low != 9 || w.Volume != 601 {
		t.Errorf("unexpected aggregate %+v", w)
	}
	if !weeks[1].WeekEnd.Equal(d(2024, 1, 14)) {
		t.Errorf("second week end: %v", weeks[1].WeekEnd)
	}
	if !weeks[2].WeekEnd.Equal(d(2024, 1, 28)) {
		t.Errorf("empty week must be skipped, got %v", weeks[2].WeekEnd)
	}
}

func TestResampleWeekly_Empty(t *testing.T) {
	if got := ResampleWeekly(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestRollingRSI(t *testing.T) {
	closes := []float64{10, 12, 11, 13, 12}

	rsi := RollingRSI(closes, 2)

	for i := 0; i < 2; i++ {
		if !math.IsNaN(rsi[i]) {
			t.Errorf("rsi[%d] should be NaN, got %f", i, rsi[i])
		}
	}
	// changes +2,-1 => gain 1, loss 0.5 => rs 2
	want := 100 - 100/3.0
	if math.Abs(rsi[2]-want) > 1e-9 {
		t.Errorf("rsi[2] = %f, want %f", rsi[2], want)
	}
	// changes -1,+2 => same window
	if math.Abs(rsi[3]-want) > 1e-9 {
		t.Errorf("rsi[3] = %f, want %f", rsi[3], want)
	}
}

func TestRollingRSI_Edges(t *testing.T) {
	up := RollingRSI([]float64{1, 2, 3}, 2)
	if up[2] != 100 {
		t.Errorf("all gains should give 100, got %f", up[2])
	}
	flat := RollingRSI([]float64{5, 5, 5}, 2)
	if !math.IsNaN(flat[2]) {
		t.Errorf("flat window should be NaN, got %f", flat[2])
	}
	short := RollingRSI([]float64{1, 2}, 14)
	if len(short) != 2 || !math.IsNaN(short[1]) {
		t.Errorf("short series should be all NaN, got %v", short)
	}
}
