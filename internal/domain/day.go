package domain

import "time"

// DateLayout is the calendar-date layout used in storage and reports.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
// All dates in the domain are normalised through Day so they can be compared
// and used as lookup keys regardless of the source location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// dayKey identifies a calendar day independent of time zone.
func dayKey(t time.Time) int64 {
	return Day(t).Unix() / 86400
}
