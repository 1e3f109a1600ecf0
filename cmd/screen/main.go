// Command screen runs the weekly volume breakout screen over the bar store
// and replaces the stored high-volume weeks with the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/app"
	"volume-breakout-lab/internal/orchestrator"
	"volume-breakout-lab/internal/reporting"
	"volume-breakout-lab/internal/screening"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("screen", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config (defaults and env overrides apply)")
	useMemory := fs.Bool("use-memory", false, "Use in-memory storage (requires --bars-csv)")
	barsCSV := fs.String("bars-csv", "", "Load bars from a CSV export before screening")
	outputDir := fs.String("output-dir", "", "Output directory (overrides output.dir)")
	dryRun := fs.Bool("dry-run", false, "Write the CSV only, leave stored signals untouched")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *useMemory && *barsCSV == "" {
		return errors.New("--bars-csv is required with --use-memory")
	}

	rt, err := app.Start(*configPath, "screen")
	if err != nil {
		return err
	}
	defer rt.Shutdown()
	logger := rt.Logger

	dir := rt.Config.Output.Dir
	if *outputDir != "" {
		dir = *outputDir
	}

	ctx, cancel := rt.SignalContext()
	defer cancel()

	stores, err := app.OpenStores(ctx, rt.Config, app.StoreOptions{
		UseMemory: *useMemory,
		Migrate:   true,
		Logger:    logger,
		Metrics:   rt.Metrics,
	})
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer stores.Close()

	if *barsCSV != "" {
		if _, err := app.IngestCSV(ctx, stores.Bars, *barsCSV, false, logger); err != nil {
			return fmt.Errorf("load bars: %w", err)
		}
	}

	orch := orchestrator.New(orchestrator.Options{
		BarStore:    stores.Bars,
		SignalStore: stores.Signals,
		Screener:    screening.NewScreener(rt.Config.Screening, logger, rt.Metrics),
		Logger:      logger,
		Metrics:     rt.Metrics,
	})

	signals, err := orch.Screen(ctx)
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	if !*dryRun {
		if err := orch.SaveSignals(ctx, signals); err != nil {
			return fmt.Errorf("save signals: %w", err)
		}
	}

	path, err := reporting.WriteFile(dir, reporting.SignalsFile, reporting.RenderSignalsCSV(signals))
	if err != nil {
		return fmt.Errorf("write signals: %w", err)
	}
	logger.Info("screen complete",
		zap.Int("signals", len(signals)),
		zap.Bool("stored", !*dryRun),
		zap.String("file", path),
	)
	return nil
}
