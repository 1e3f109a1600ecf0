package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrMalformedSeries is returned when a price series violates its ordering
// or value constraints.
var ErrMalformedSeries = errors.New("malformed price series")

// DailyBar is one trading day of OHLCV data.
// Corresponds to stock_data table in PostgreSQL.
type DailyBar struct {
	InstrumentID string
	Date         time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       int64
}

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceSeries is a read-only daily close series for one instrument.
// Dates are strictly increasing. Gaps (non-trading days) are expected.
type PriceSeries struct {
	instrumentID string
	points       []PricePoint
	index        map[int64]int
}

// NewPriceSeries builds a series from points already in ascending date order.
// Returns ErrMalformedSeries if dates are not strictly increasing or a close
// is not a positive finite number. The points slice is copied.
func NewPriceSeries(instrumentID string, points []PricePoint) (*PriceSeries, error) {
	s := &PriceSeries{
		instrumentID: instrumentID,
		points:       make([]PricePoint, len(points)),
		index:        make(map[int64]int, len(points)),
	}

	for i, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return nil, fmt.Errorf("%w: %s close %v on %s", ErrMalformedSeries, instrumentID, p.Close, p.Date.Format(DateLayout))
		}
		day := Day(p.Date)
		if i > 0 && !day.After(s.points[i-1].Date) {
			return nil, fmt.Errorf("%w: %s dates not increasing at %s", ErrMalformedSeries, instrumentID, day.Format(DateLayout))
		}
		s.points[i] = PricePoint{Date: day, Close: p.Close}
		s.index[dayKey(day)] = i
	}

	return s, nil
}

// SeriesFromBars builds one series per instrument from daily bars.
// Bars may arrive in any order; they are sorted by date per instrument.
func SeriesFromBars(bars []*DailyBar) (map[string]*PriceSeries, error) {
	grouped := make(map[string][]PricePoint)
	for _, b := range bars {
		grouped[b.InstrumentID] = append(grouped[b.InstrumentID], PricePoint{Date: Day(b.Date), Close: b.Close})
	}

	result := make(map[string]*PriceSeries, len(grouped))
	for id, points := range grouped {
		sort.Slice(points, func(i, j int) bool {
			return points[i].Date.Before(points[j].Date)
		})
		s, err := NewPriceSeries(id, points)
		if err != nil {
			return nil, err
		}
		result[id] = s
	}
	return result, nil
}

// InstrumentID returns the instrument the series belongs to.
func (s *PriceSeries) InstrumentID() string {
	return s.instrumentID
}

// Len returns the number of trading days in the series.
func (s *PriceSeries) Len() int {
	return len(s.points)
}

// Points returns a copy of all points in ascending order.
func (s *PriceSeries) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// CloseOn returns the close on date, or false if date is not a trading day.
func (s *PriceSeries) CloseOn(date time.Time) (float64, bool) {
	i, ok := s.index[dayKey(date)]
	if !ok {
		return 0, false
	}
	return s.points[i].Close, true
}

// After returns the points strictly after date, in ascending order.
// The returned slice must not be modified.
func (s *PriceSeries) After(date time.Time) []PricePoint {
	day := Day(date)
	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].Date.After(day)
	})
	return s.points[i:len(s.points):len(s.points)]
}
