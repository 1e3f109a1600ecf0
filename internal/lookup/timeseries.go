package lookup

import (
	"errors"
	"time"

	"volume-breakout-lab/internal/domain"
)

// DefaultLookbackDays is the number of calendar days examined when resolving
// an entry: the reference date and the two days before it.
const DefaultLookbackDays = 3

// Errors returned by lookup functions.
var (
	ErrNoPriceData = errors.New("no price data available")
	ErrNoEntry     = errors.New("no trading day within entry lookback")
)

// ResolveEntry finds the entry point for a week-ending reference date.
// Examines referenceDate, referenceDate-1 and referenceDate-2 in that order
// and returns the first date present in the series with its close.
// Returns ErrNoEntry if none of them is a trading day.
func ResolveEntry(series *domain.PriceSeries, referenceDate time.Time) (domain.PricePoint, error) {
	return ResolveEntryWithin(series, referenceDate, DefaultLookbackDays)
}

// ResolveEntryWithin is ResolveEntry with a configurable number of candidate days.
func ResolveEntryWithin(series *domain.PriceSeries, referenceDate time.Time, days int) (domain.PricePoint, error) {
	if series == nil || series.Len() == 0 {
		return domain.PricePoint{}, ErrNoPriceData
	}

	ref := domain.Day(referenceDate)
	for i := 0; i < days; i++ {
		date := ref.AddDate(0, 0, -i)
		if price, ok := series.CloseOn(date); ok {
			return domain.PricePoint{Date: date, Close: price}, nil
		}
	}

	return domain.PricePoint{}, ErrNoEntry
}
