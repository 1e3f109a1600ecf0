package screening

import "math"

// RollingRSI computes RSI with simple moving averages of gains and losses
// over the last period changes. Values before index period are NaN.
// A window with gains and no losses is 100; a flat window is NaN.
func RollingRSI(closes []float64, period int) []float64 {
	rsi := make([]float64, len(closes))
	for i := range rsi {
		rsi[i] = math.NaN()
	}
	if period <= 0 || len(closes) <= period {
		return rsi
	}

	for i := period; i < len(closes); i++ {
		gain, loss := 0.0, 0.0
		for j := i - period + 1; j <= i; j++ {
			change := closes[j] - closes[j-1]
			if change > 0 {
				gain += change
			} else {
				loss -= change
			}
		}
		gain /= float64(period)
		loss /= float64(period)

		rs := gain / loss
		rsi[i] = 100 - (100 / (1 + rs))
	}
	return rsi
}
