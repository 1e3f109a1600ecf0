package metrics

import (
	"math"
	"sort"

	"volume-breakout-lab/internal/domain"
)

// Summarize reduces a trade set to summary statistics.
// Statistics whose denominator is empty stay nil. An empty trade set
// yields a zero Summary with every optional field nil.
func Summarize(strategyID string, trades []*domain.Trade) domain.Summary {
	s := domain.Summary{StrategyID: strategyID, TotalTrades: len(trades)}
	if len(trades) == 0 {
		return s
	}

	var (
		profitPct, lossPct   []float64
		profitDays, lossDays []float64
		grossProfit          float64
		grossLoss            float64
	)
	minPct := math.Inf(1)

	for _, t := range trades {
		if t.ProfitLossPct < minPct {
			minPct = t.ProfitLossPct
		}
		if t.Outcome == domain.OutcomeProfit {
			profitPct = append(profitPct, t.ProfitLossPct)
			profitDays = append(profitDays, float64(t.DaysHeld))
			grossProfit += t.ProfitLoss
			continue
		}
		lossPct = append(lossPct, t.ProfitLossPct)
		lossDays = append(lossDays, float64(t.DaysHeld))
		grossLoss += t.ProfitLoss
	}

	s.Wins = len(profitPct)
	s.Losses = len(lossPct)
	s.WinRatioPct = computeWinRate(s.Wins, s.TotalTrades) * 100

	s.AvgProfitPct = meanOrNil(profitPct)
	s.AvgLossPct = meanOrNil(lossPct)
	s.AvgDaysProfit = meanOrNil(profitDays)
	s.AvgDaysLoss = meanOrNil(lossDays)
	s.MaxDrawdownPct = ptr(minPct)

	if s.Losses > 0 && grossLoss != 0 {
		s.ProfitFactor = ptr(grossProfit / math.Abs(grossLoss))
	}
	if s.AvgProfitPct != nil && s.AvgLossPct != nil && *s.AvgLossPct != 0 {
		s.RiskRewardRatio = ptr(math.Abs(*s.AvgProfitPct / *s.AvgLossPct))
	}

	return s
}

// YearlyBreakdown groups trades by entry year, ascending.
func YearlyBreakdown(trades []*domain.Trade) []domain.YearStats {
	byYear := make(map[int]*domain.YearStats)
	wins := make(map[int]int)

	for _, t := range trades {
		y := t.EntryDate.Year()
		ys, ok := byYear[y]
		if !ok {
			ys = &domain.YearStats{Year: y}
			byYear[y] = ys
		}
		ys.TotalTrades++
		switch {
		case t.ProfitLoss > 0:
			ys.TotalProfit += t.ProfitLoss
			wins[y]++
		case t.ProfitLoss < 0:
			ys.TotalLoss += t.ProfitLoss
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]domain.YearStats, 0, len(years))
	for _, y := range years {
		ys := byYear[y]
		ys.WinPct = computeWinRate(wins[y], ys.TotalTrades) * 100
		out = append(out, *ys)
	}
	return out
}

// computeWinRate calculates win rate as wins / total.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// meanOrNil returns the arithmetic mean, or nil for an empty slice.
func meanOrNil(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return ptr(sum / float64(len(values)))
}

func ptr(v float64) *float64 { return &v }
