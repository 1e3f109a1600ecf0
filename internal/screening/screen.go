// Package screening finds weekly volume breakouts in daily bars.
package screening

import (
	"errors"
	"math"
	"sort"

	"go.uber.org/zap"

	"volume-breakout-lab/internal/domain"
	"volume-breakout-lab/internal/observability"
)

// ErrInvalidCriteria is returned by Criteria.Validate.
var ErrInvalidCriteria = errors.New("invalid screening criteria")

// Criteria holds the weekly screen thresholds.
type Criteria struct {
	MinVolumeMultiple float64 `yaml:"min_volume_multiple"`
	MaxVolumeMultiple float64 `yaml:"max_volume_multiple"`
	MinVolume         float64 `yaml:"min_volume"` // exclusive
	MinRSI            float64 `yaml:"min_rsi"`
	MaxRSI            float64 `yaml:"max_rsi"`
	RSIPeriod         int     `yaml:"rsi_period"`      // weeks
	VolumeLookback    int     `yaml:"volume_lookback"` // prior weeks in the volume average
	OpenNearLow       float64 `yaml:"open_near_low"`   // open <= low * OpenNearLow
	CloseNearHigh     float64 `yaml:"close_near_high"` // close >= high * CloseNearHigh
	PrevVolumeRatio   float64 `yaml:"prev_volume_ratio"`
}

// DefaultCriteria returns the standard breakout screen.
func DefaultCriteria() Criteria {
	return Criteria{
		MinVolumeMultiple: 3,
		MaxVolumeMultiple: 15,
		MinVolume:         500_000,
		MinRSI:            40,
		MaxRSI:            95,
		RSIPeriod:         14,
		VolumeLookback:    6,
		OpenNearLow:       1.03,
		CloseNearHigh:     0.97,
		PrevVolumeRatio:   0.5,
	}
}

// Validate checks that the thresholds describe a usable screen.
func (c Criteria) Validate() error {
	switch {
	case c.RSIPeriod <= 0, c.VolumeLookback <= 0:
		return errors.Join(ErrInvalidCriteria, errors.New("periods must be positive"))
	case c.MinVolumeMultiple > c.MaxVolumeMultiple:
		return errors.Join(ErrInvalidCriteria, errors.New("volume multiple range is empty"))
	case c.MinRSI > c.MaxRSI:
		return errors.Join(ErrInvalidCriteria, errors.New("rsi range is empty"))
	case c.PrevVolumeRatio <= 0:
		return errors.Join(ErrInvalidCriteria, errors.New("prev volume ratio must be positive"))
	}
	return nil
}

// Screener applies Criteria to daily bars.
type Screener struct {
	criteria Criteria
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewScreener creates a screener. A nil logger disables logging.
func NewScreener(criteria Criteria, logger *zap.Logger, metrics *observability.Metrics) *Screener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Screener{criteria: criteria, logger: logger, metrics: metrics}
}

// Screen resamples bars per instrument and returns the weeks that pass the
// screen, ordered by reference date then instrument.
func (s *Screener) Screen(bars []*domain.DailyBar) []domain.CandidateSignal {
	byInstrument := make(map[string][]*domain.DailyBar)
	for _, b := range bars {
		byInstrument[b.InstrumentID] = append(byInstrument[b.InstrumentID], b)
	}

	var (
		signals []domain.CandidateSignal
		weeks   int
	)
	for id, list := range byInstrument {
		w := ResampleWeekly(list)
		weeks += len(w)
		found := s.ScreenWeeks(w)
		if len(found) > 0 {
			s.logger.Debug("breakout weeks found", zap.String("instrument", id), zap.Int("count", len(found)))
		}
		signals = append(signals, found...)
	}

	sort.Slice(signals, func(i, j int) bool {
		if !signals[i].ReferenceDate.Equal(signals[j].ReferenceDate) {
			return signals[i].ReferenceDate.Before(signals[j].ReferenceDate)
		}
		return signals[i].InstrumentID < signals[j].InstrumentID
	})

	s.metrics.RecordScreen(weeks, len(signals))
	s.logger.Info("screening complete",
		zap.Int("instruments", len(byInstrument)),
		zap.Int("weeks", weeks),
		zap.Int("signals", len(signals)),
	)
	return signals
}

// ScreenWeeks evaluates one instrument's consecutive weekly bars.
func (s *Screener) ScreenWeeks(weeks []WeeklyBar) []domain.CandidateSignal {
	c := s.criteria
	closes := make([]float64, len(weeks))
	for i, w := range weeks {
		closes[i] = w.Close
	}
	rsi := RollingRSI(closes, c.RSIPeriod)

	var out []domain.CandidateSignal
	for i := c.VolumeLookback; i < len(weeks); i++ {
		cur, prev := weeks[i], weeks[i-1]

		avg := 0.0
		for _, w := range weeks[i-c.VolumeLookback : i] {
			avg += w.Volume
		}
		avg /= float64(c.VolumeLookback)
		multiple := cur.Volume / avg

		switch {
		case math.IsNaN(multiple), multiple < c.MinVolumeMultiple, multiple > c.MaxVolumeMultiple:
			continue
		case !(cur.Volume > c.MinVolume):
			continue
		case cur.Open > cur.Low*c.OpenNearLow, cur.Close < cur.High*c.CloseNearHigh:
			continue
		case math.IsNaN(rsi[i]), rsi[i] < c.MinRSI, rsi[i] > c.MaxRSI:
			continue
		case !prev.Green(), !(prev.Volume < cur.Volume*c.PrevVolumeRatio):
			continue
		}

		out = append(out, domain.CandidateSignal{
			InstrumentID:  cur.InstrumentID,
			WeekStart:     cur.WeekStart,
			ReferenceDate: cur.WeekEnd,
			Metrics: domain.SignalMetrics{
				VolumeMultiple: multiple,
				RSI:            rsi[i],
				Volume:         cur.Volume,
			},
		})
	}
	return out
}
