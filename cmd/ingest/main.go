// Command ingest loads a daily bar CSV export into the bar store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/app"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)

	// Parse flags
	configPath := fs.String("config", "", "Path to YAML config (defaults and env overrides apply)")
	csvPath := fs.String("csv", "", "Provider CSV export: Date,Symbol,Open,High,Low,Close,Volume (required)")
	replace := fs.Bool("replace", false, "Delete existing bars before ingesting")
	useMemory := fs.Bool("use-memory", false, "Validate the file against in-memory storage only")
	skipMigrate := fs.Bool("skip-migrations", false, "Do not apply embedded migrations")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *csvPath == "" {
		return errors.New("--csv is required")
	}

	rt, err := app.Start(*configPath, "ingest")
	if err != nil {
		return err
	}
	defer rt.Shutdown()
	logger := rt.Logger

	ctx, cancel := rt.SignalContext()
	defer cancel()

	stores, err := app.OpenStores(ctx, rt.Config, app.StoreOptions{
		UseMemory: *useMemory,
		Migrate:   !*skipMigrate,
		Logger:    logger,
		Metrics:   rt.Metrics,
	})
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer stores.Close()

	n, err := app.IngestCSV(ctx, stores.Bars, *csvPath, *replace, logger)
	if err != nil {
		logger.Error("ingestion failed", zap.Int("stored", n), zap.Error(err))
		return err
	}

	symbols, err := stores.Bars.ListSymbols(ctx)
	if err != nil {
		logger.Warn("list symbols", zap.Error(err))
	}
	logger.Info("ingestion complete", zap.Int("bars", n), zap.Int("symbols", len(symbols)))
	return nil
}
