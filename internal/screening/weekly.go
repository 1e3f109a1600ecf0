package screening

import (
	"sort"
	"time"

	"volume-breakout-lab/internal/domain"
)

// WeeklyBar aggregates the daily bars of one calendar week ending Sunday.
type WeeklyBar struct {
	InstrumentID string
	WeekStart    time.Time // Monday
	WeekEnd      time.Time // Sunday
	Open         float64   // first daily open
	High         float64
	Low          float64
	Close        float64 // last daily close
	Volume       float64
}

// Green reports whether the week closed above its open.
func (w WeeklyBar) Green() bool {
	return w.Close > w.Open
}

// weekEnd returns the Sunday on or after t.
func weekEnd(t time.Time) time.Time {
	d := domain.Day(t)
	return d.AddDate(0, 0, (7-int(d.Weekday()))%7)
}

// ResampleWeekly groups one instrument's daily bars into weeks ending Sunday.
// Bars may be in any order. Weeks without bars are absent.
func ResampleWeekly(bars []*domain.DailyBar) []WeeklyBar {
	if len(bars) == 0 {
		return nil
	}

	sorted := make([]*domain.DailyBar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var weeks []WeeklyBar
	for _, b := range sorted {
		end := weekEnd(b.Date)
		if n := len(weeks); n > 0 && weeks[n-1].WeekEnd.Equal(end) {
			w := &weeks[n-1]
			w.High = max(w.High, b.High)
			w.Low = min(w.Low, b.Low)
			w.Close = b.Close
			w.Volume += float64(b.Volume)
			continue
		}
		weeks = append(weeks, WeeklyBar{
			InstrumentID: b.InstrumentID,
			WeekStart:    end.AddDate(0, 0, -6),
			WeekEnd:      end,
			Open:         b.Open,
			High:         b.High,
			Low:          b.Low,
			Close:        b.Close,
			Volume:       float64(b.Volume),
		})
	}
	return weeks
}
