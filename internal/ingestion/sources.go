package ingestion

import (
	"context"
	"fmt"
	"os"

	"volume-breakout-lab/internal/domain"
)

// BarSource provides daily bars from an external provider.
type BarSource interface {
	// Fetch returns bars in any order; Manager enforces deterministic ordering.
	Fetch(ctx context.Context) ([]*domain.DailyBar, error)
}

// CSVFileSource reads bars from a provider CSV export on disk.
type CSVFileSource struct {
	Path string
}

// Fetch reads and parses the file.
func (s CSVFileSource) Fetch(_ context.Context) ([]*domain.DailyBar, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open bars csv: %w", err)
	}
	defer f.Close()

	return ReadBarsCSV(f)
}

// StaticSource serves a fixed set of bars.
type StaticSource []*domain.DailyBar

// Fetch returns the bars.
func (s StaticSource) Fetch(_ context.Context) ([]*domain.DailyBar, error) {
	return s, nil
}
