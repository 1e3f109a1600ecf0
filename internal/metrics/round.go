package metrics

import (
	"github.com/shopspring/decimal"

	"volume-breakout-lab/internal/domain"
)

// Places is the number of decimal places used for presentation.
const Places = 2

// Round rounds v half away from zero to Places decimals.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(Places).InexactFloat64()
}

// Rounded returns a copy of s with every ratio and percentage rounded for
// presentation. Counts and nil fields are unchanged.
func Rounded(s domain.Summary) domain.Summary {
	s.WinRatioPct = Round(s.WinRatioPct)
	s.AvgProfitPct = roundPtr(s.AvgProfitPct)
	s.AvgLossPct = roundPtr(s.AvgLossPct)
	s.AvgDaysProfit = roundPtr(s.AvgDaysProfit)
	s.AvgDaysLoss = roundPtr(s.AvgDaysLoss)
	s.MaxDrawdownPct = roundPtr(s.MaxDrawdownPct)
	s.ProfitFactor = roundPtr(s.ProfitFactor)
	s.RiskRewardRatio = roundPtr(s.RiskRewardRatio)
	return s
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v)
	return &r
}
