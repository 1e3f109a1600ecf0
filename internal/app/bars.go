package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/ingestion"
	"volume-breakout-lab/internal/storage"
)

// IngestCSV loads a provider CSV export into store and returns the bar count.
func IngestCSV(ctx context.Context, store storage.DailyBarStore, path string, replace bool, logger *zap.Logger) (int, error) {
	n, err := ingestion.NewManager(ingestion.ManagerOptions{
		Source:  ingestion.CSVFileSource{Path: path},
		Store:   store,
		Replace: replace,
		Logger:  logger,
	}).Ingest(ctx)
	if err != nil {
		return n, fmt.Errorf("ingest %s: %w", path, err)
	}
	return n, nil
}
