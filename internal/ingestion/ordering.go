package ingestion

import (
	"errors"
	"sort"

	"volume-breakout-lab/internal/domain"
)

// ErrInvalidOrdering is returned when bars are not properly ordered.
var ErrInvalidOrdering = errors.New("bars are not in deterministic order")

// SortBars orders bars by (symbol ASC, date ASC).
func SortBars(bars []*domain.DailyBar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return compareBars(bars[i], bars[j]) < 0
	})
}

// ValidateBarOrdering checks that bars are strictly ordered.
// Returns ErrInvalidOrdering on the first repeated or out-of-order bar.
func ValidateBarOrdering(bars []*domain.DailyBar) error {
	for i := 1; i < len(bars); i++ {
		if compareBars(bars[i-1], bars[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareBars orders by (symbol ASC, date ASC).
func compareBars(a, b *domain.DailyBar) int {
	if a.InstrumentID != b.InstrumentID {
		if a.InstrumentID < b.InstrumentID {
			return -1
		}
		return 1
	}
	return domain.Day(a.Date).Compare(domain.Day(b.Date))
}
