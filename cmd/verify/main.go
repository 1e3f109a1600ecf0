// Command verify replays the stored signals and checks the persisted trades
// of a strategy against the replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/app"
	"volume-breakout-lab/internal/simulation"
	"volume-breakout-lab/internal/strategy"
	"volume-breakout-lab/internal/verification"
)

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup runs before os.Exit.
func run() int {
	configPath := flag.String("config", "", "Path to YAML config (defaults and env overrides apply)")
	tradeID := flag.String("trade-id", "", "Verify a single trade (default: all trades of the configured strategy)")
	flag.Parse()

	rt, err := app.Start(*configPath, "verify")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rt.Shutdown()
	logger := rt.Logger
	cfg := rt.Config

	strat, err := strategy.FromConfig(cfg.Backtest.Ladder)
	if err != nil {
		logger.Error("strategy config", zap.Error(err))
		return 1
	}

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg, app.StoreOptions{Logger: logger, Metrics: rt.Metrics})
	if err != nil {
		logger.Error("open stores", zap.Error(err))
		return 1
	}
	defer stores.Close()

	verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		TradeStore:  stores.Trades,
		SignalStore: stores.Signals,
		BarStore:    stores.Bars,
		Runner: simulation.NewRunner(simulation.RunnerOptions{
			Strategy:     strat,
			LookbackDays: cfg.Backtest.LookbackDays,
			Workers:      cfg.Backtest.Workers,
			Logger:       logger,
		}),
	})

	if *tradeID != "" {
		r, err := verifier.VerifyTrade(ctx, *tradeID)
		if err != nil {
			logger.Error("verify trade", zap.String("trade_id", *tradeID), zap.Error(err))
			return 1
		}
		printResult(*r)
		if !r.Match {
			return 1
		}
		return 0
	}

	report, err := verifier.VerifyAll(ctx, strat.ID())
	if err != nil {
		logger.Error("verify trades", zap.Error(err))
		return 1
	}
	for _, r := range report.Results {
		if !r.Match {
			printResult(r)
		}
	}
	for _, id := range report.Unstored {
		fmt.Printf("UNSTORED %s\n", id)
	}
	fmt.Printf("Verified %d trades: %d matched, %d divergent, %d unstored\n",
		report.TotalTrades, report.MatchedTrades, report.DivergentTrades, len(report.Unstored))
	if !report.OK() {
		return 1
	}
	return 0
}

func printResult(r verification.Result) {
	status := "MATCH"
	if !r.Match {
		status = "DIVERGENT"
	}
	fmt.Printf("%s %s %s\n", status, r.TradeID, r.InstrumentID)
	for _, d := range r.Divergences {
		fmt.Printf("  %s: stored=%v replayed=%v\n", d.Field, d.Expected, d.Actual)
	}
}
