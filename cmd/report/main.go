// Command report regenerates the report files from persisted trades.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/app"
	"volume-breakout-lab/internal/reporting"
	"volume-breakout-lab/internal/strategy"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config (defaults and env overrides apply)")
	strategyID := fs.String("strategy", "", "Strategy ID (defaults to the configured ladder)")
	outputDir := fs.String("output-dir", "", "Output directory (overrides output.dir)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	rt, err := app.Start(*configPath, "report")
	if err != nil {
		return err
	}
	defer rt.Shutdown()
	logger := rt.Logger

	id := *strategyID
	if id == "" {
		strat, err := strategy.FromConfig(rt.Config.Backtest.Ladder)
		if err != nil {
			return fmt.Errorf("strategy config: %w", err)
		}
		id = strat.ID()
	}
	dir := rt.Config.Output.Dir
	if *outputDir != "" {
		dir = *outputDir
	}

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, rt.Config, app.StoreOptions{Logger: logger, Metrics: rt.Metrics})
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer stores.Close()

	r, err := reporting.NewGenerator(stores.Trades, stores.Summaries).Generate(ctx, id)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}
	if r.Summary.TotalTrades == 0 {
		logger.Warn("no stored trades for strategy", zap.String("strategy", id))
	}

	files := reporting.Files(r)
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path, err := reporting.WriteFile(dir, name, files[name])
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", zap.String("file", path))
	}
	return nil
}
