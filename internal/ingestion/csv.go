package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"volume-breakout-lab/internal/domain"
)

// CSV parsing errors.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrMalformedRow  = errors.New("malformed row")
)

// column aliases accepted in the header, lower-cased
var columnAliases = map[string][]string{
	"date":   {"date"},
	"symbol": {"symbol", "ticker", "stock_symbol"},
	"open":   {"open", "open_price"},
	"high":   {"high", "high_price"},
	"low":    {"low", "low_price"},
	"close":  {"close", "close_price"},
	"volume": {"volume"},
}

var requiredColumns = []string{"date", "symbol", "open", "high", "low", "close", "volume"}

// ReadBarsCSV parses a provider export with a header row naming
// Date, Symbol, Open, High, Low, Close and Volume in any order.
// Dates are 2006-01-02 or RFC3339. Rows with an empty close are skipped.
func ReadBarsCSV(r io.Reader) ([]*domain.DailyBar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []*domain.DailyBar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		field := func(name string) string {
			i := idx[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if field("close") == "" {
			continue
		}

		bar, err := parseBar(field)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func indexColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	idx := make(map[string]int, len(requiredColumns))
	for _, col := range requiredColumns {
		found := false
		for _, alias := range columnAliases[col] {
			if i, ok := byName[alias]; ok {
				idx[col] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return idx, nil
}

func parseBar(field func(string) string) (*domain.DailyBar, error) {
	symbol := field("symbol")
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrMalformedRow)
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return nil, fmt.Errorf("%w: date %q", ErrMalformedRow, field("date"))
	}

	prices := make(map[string]float64, 4)
	for _, col := range []string{"open", "high", "low", "close"} {
		v, err := strconv.ParseFloat(field(col), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s %q", ErrMalformedRow, col, field(col))
		}
		prices[col] = v
	}

	volume := int64(0)
	if raw := field("volume"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: volume %q", ErrMalformedRow, raw)
		}
		volume = int64(v)
	}

	return &domain.DailyBar{
		InstrumentID: symbol,
		Date:         date,
		Open:         prices["open"],
		High:         prices["high"],
		Low:          prices["low"],
		Close:        prices["close"],
		Volume:       volume,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if d, err := domain.ParseDay(s); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return domain.Day(t), nil
}
