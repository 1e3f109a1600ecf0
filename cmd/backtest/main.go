// Command backtest simulates the target ladder over the screened signals and
// writes the trade, summary and yearly reports.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/app"
	"volume-breakout-lab/internal/metrics"
	"volume-breakout-lab/internal/orchestrator"
	"volume-breakout-lab/internal/screening"
	"volume-breakout-lab/internal/simulation"
	"volume-breakout-lab/internal/storage"
	"volume-breakout-lab/internal/strategy"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred store and metrics shutdown run.
func run(args []string) error {
	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)

	// Parse flags
	configPath := fs.String("config", "", "Path to YAML config (defaults and env overrides apply)")

	// Storage
	useMemory := fs.Bool("use-memory", false, "Use in-memory storage (requires --bars-csv)")
	barsCSV := fs.String("bars-csv", "", "Load bars from a CSV export before the run")
	rescreen := fs.Bool("rescreen", false, "Screen bars inline instead of reading stored signals")

	// Run
	workers := fs.Int("workers", 0, "Simulation workers (overrides backtest.workers; 0 keeps config)")
	persist := fs.Bool("persist", false, "Persist trades and summary (overrides backtest.persist)")
	outputDir := fs.String("output-dir", "", "Output directory (overrides output.dir)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if *useMemory && *barsCSV == "" {
		return errors.New("--bars-csv is required with --use-memory")
	}

	rt, err := app.Start(*configPath, "backtest")
	if err != nil {
		return err
	}
	defer rt.Shutdown()
	logger := rt.Logger
	cfg := rt.Config

	if *workers > 0 {
		cfg.Backtest.Workers = *workers
	}
	if *persist {
		cfg.Backtest.Persist = true
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	ctx, cancel := rt.SignalContext()
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, app.StoreOptions{
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

	strat, err := strategy.FromConfig(cfg.Backtest.Ladder)
	if err != nil {
		return fmt.Errorf("strategy config: %w", err)
	}

	// Memory stores start without signals, so they always screen inline.
	var signalStore storage.SignalStore = stores.Signals
	if *rescreen || *useMemory {
		signalStore = nil
	}

	orch := orchestrator.New(orchestrator.Options{
		BarStore:     stores.Bars,
		SignalStore:  signalStore,
		TradeStore:   stores.Trades,
		SummaryStore: stores.Summaries,
		Screener:     screening.NewScreener(cfg.Screening, logger, rt.Metrics),
		Runner: simulation.NewRunner(simulation.RunnerOptions{
			Strategy:     strat,
			LookbackDays: cfg.Backtest.LookbackDays,
			Workers:      cfg.Backtest.Workers,
			Logger:       logger,
			Metrics:      rt.Metrics,
		}),
		Persist:   cfg.Backtest.Persist,
		OutputDir: cfg.Output.Dir,
		Logger:    logger,
		Metrics:   rt.Metrics,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		logger.Error("backtest failed", zap.Error(err))
		return err
	}

	printSummary(result)
	return nil
}

func printSummary(r *orchestrator.RunResult) {
	s := metrics.Rounded(r.Summary)
	fmt.Printf("Strategy:       %s\n", r.StrategyID)
	fmt.Printf("Signals:        %d\n", r.Signals)
	fmt.Printf("Trades:         %d (wins %d, losses %d)\n", s.TotalTrades, s.Wins, s.Losses)
	for _, reason := range []simulation.DropReason{
		simulation.DropMissingSeries,
		simulation.DropNoEntry,
		simulation.DropUnresolvedExit,
		simulation.DropFailed,
	} {
		if n := r.Dropped[reason]; n > 0 {
			fmt.Printf("Dropped:        %d %s\n", n, reason)
		}
	}
	fmt.Printf("Win ratio:      %.2f%%\n", s.WinRatioPct)
	fmt.Printf("Avg profit:     %s\n", pct(s.AvgProfitPct))
	fmt.Printf("Avg loss:       %s\n", pct(s.AvgLossPct))
	fmt.Printf("Max drawdown:   %s\n", pct(s.MaxDrawdownPct))
	fmt.Printf("Profit factor:  %s\n", num(s.ProfitFactor))
	fmt.Printf("Risk/reward:    %s\n", num(s.RiskRewardRatio))
	for _, f := range r.Files {
		fmt.Printf("Wrote %s\n", f)
	}
}

func pct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", *v)
}

func num(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}
