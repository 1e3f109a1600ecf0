package storage

import (
	"context"
	"errors"
	"fmt"

	"volume-breakout-lab/internal/domain"
)

// LoadSeries builds the close series of each symbol from the bar store.
// Symbols without bars are absent from the result. Symbols whose bars do not
// form a valid series are absent too and returned in malformed, so their
// signals are dropped instead of failing the whole load.
func LoadSeries(ctx context.Context, store DailyBarStore, symbols []string) (series map[string]*domain.PriceSeries, malformed []string, err error) {
	out := make(map[string]*domain.PriceSeries, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		if _, done := seen[symbol]; done {
			continue
		}
		seen[symbol] = struct{}{}
		bars, err := store.GetBySymbol(ctx, symbol)
		if err != nil {
			return nil, nil, fmt.Errorf("load bars for %s: %w", symbol, err)
		}
		if len(bars) == 0 {
			continue
		}

		points := make([]domain.PricePoint, len(bars))
		for i, b := range bars {
			points[i] = domain.PricePoint{Date: b.Date, Close: b.Close}
		}
		ps, err := domain.NewPriceSeries(symbol, points)
		if errors.Is(err, domain.ErrMalformedSeries) {
			malformed = append(malformed, symbol)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("series for %s: %w", symbol, err)
		}
		out[symbol] = ps
	}
	return out, malformed, nil
}

// SignalSymbols returns the distinct instruments referenced by signals.
func SignalSymbols(signals []domain.CandidateSignal) []string {
	seen := make(map[string]struct{}, len(signals))
	var out []string
	for _, s := range signals {
		if _, ok := seen[s.InstrumentID]; ok {
			continue
		}
		seen[s.InstrumentID] = struct{}{}
		out = append(out, s.InstrumentID)
	}
	return out
}
