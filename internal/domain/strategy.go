package domain

// Summary holds aggregate performance statistics for one strategy run.
// Corresponds to backtest_summaries table in PostgreSQL.
// Nil pointers mark statistics that are undefined for the trade set.
type Summary struct {
	StrategyID string

	// Counts
	TotalTrades int
	Wins        int
	Losses      int
	WinRatioPct float64 // 0 when there are no trades

	// Averages per outcome subset
	AvgProfitPct  *float64
	AvgLossPct    *float64
	AvgDaysProfit *float64
	AvgDaysLoss   *float64

	// Risk
	MaxDrawdownPct  *float64 // most negative profit_loss_pct
	ProfitFactor    *float64 // gross profit / |gross loss|
	RiskRewardRatio *float64 // |avg profit pct / avg loss pct|
}

// YearStats aggregates trades by entry year.
type YearStats struct {
	Year        int
	TotalProfit float64 // sum of positive profit_loss
	TotalLoss   float64 // sum of negative profit_loss
	WinPct      float64 // share of trades with profit_loss > 0, in percent
	TotalTrades int
}

// LadderConfig represents target-ladder strategy parameters.
// All values are multiples of the entry price.
type LadderConfig struct {
	Target1       float64 `yaml:"target1"`        // first tier; reaching it moves the stop to Breakeven
	Target2       float64 `yaml:"target2"`        // second tier; reaching it moves the stop to Target1
	Target3       float64 `yaml:"target3"`        // final tier; reaching it moves the stop to Target2 and exits
	InitialStop   float64 `yaml:"initial_stop"`   // stop in force until Target1 is reached
	BreakevenStop float64 `yaml:"breakeven_stop"` // locked-in stop after Target1
}

// DefaultLadderConfig is the 15/25/35% ladder with a 30% initial stop.
var DefaultLadderConfig = LadderConfig{
	Target1:       1.15,
	Target2:       1.25,
	Target3:       1.35,
	InitialStop:   0.70,
	BreakevenStop: 1.01,
}
