package domain

import "time"

// SignalMetrics holds the screening-stage metrics carried through the
// simulation untouched.
type SignalMetrics struct {
	VolumeMultiple float64 // weekly volume / trailing 6-week average
	RSI            float64 // 14-week RSI of weekly closes
	Volume         float64 // total weekly volume
}

// CandidateSignal is a high-volume week flagged by the screen.
// Corresponds to high_volume_weeks table in PostgreSQL.
type CandidateSignal struct {
	InstrumentID  string    // stock symbol
	WeekStart     time.Time // first calendar day of the week
	ReferenceDate time.Time // week-ending date (Sunday)
	Metrics       SignalMetrics
}
