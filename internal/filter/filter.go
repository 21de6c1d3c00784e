// Package filter implements the per-symbol volatility/volume filters of
// spec.md §2 component 3 and §3 "FilterState": a minute EMA of quote
// volume and of ln(high/low) for the forager ranking, and a separate
// hourly EMA of ln(high/low) (its own span, in hours) for grid-spacing
// modulation. Built on internal/ema.Series, the teacher's single-EMA idiom
// reused three times with different spans and update cadences.
package filter

import (
	"math"

	"github.com/quantgrid/gridtrail-engine/internal/ema"
)

// State is one symbol's filter bookkeeping.
type State struct {
	volumeEMA     *ema.Series // minute EMA of quote volume, for the volume-drop cut
	logRangeEMA   *ema.Series // minute EMA of ln(high/low), for ranking survivors
	hourlyLogRangeEMA *ema.Series // hourly EMA of ln(high/low), for grid-spacing weight

	hourAccumHigh float64
	hourAccumLow  float64
	hourMinutes   int
}

// NewState creates filter state for one symbol.
func NewState(volumeSpanMin, logRangeSpanMin, hourlySpanHours float64) *State {
	return &State{
		volumeEMA:         ema.NewSeries(volumeSpanMin),
		logRangeEMA:       ema.NewSeries(logRangeSpanMin),
		hourlyLogRangeEMA: ema.NewSeries(hourlySpanHours),
	}
}

// UpdateMinute folds in one minute candle's quote volume and log-range.
// The hourly log-range EMA accumulates the minute's high/low into a
// running hour bucket and only updates once 60 minutes have elapsed,
// matching the "separate hourly EMA of ln(high/low) with its own span (in
// hours)" wording of spec.md §3.
func (s *State) UpdateMinute(quoteVolume, high, low, logRange float64) {
	s.volumeEMA.Update(quoteVolume)
	s.logRangeEMA.Update(logRange)

	if s.hourMinutes == 0 || high > s.hourAccumHigh {
		s.hourAccumHigh = high
	}
	if s.hourMinutes == 0 || low < s.hourAccumLow {
		s.hourAccumLow = low
	}
	s.hourMinutes++
	if s.hourMinutes >= 60 {
		hourLogRange := 0.0
		if s.hourAccumLow > 0 && s.hourAccumHigh > 0 {
			hourLogRange = math.Log(s.hourAccumHigh / s.hourAccumLow)
		}
		s.hourlyLogRangeEMA.Update(hourLogRange)
		s.hourMinutes = 0
		s.hourAccumHigh = 0
		s.hourAccumLow = 0
	}
}

func (s *State) VolumeEMA() float64     { return s.volumeEMA.Value() }
func (s *State) LogRangeEMA() float64   { return s.logRangeEMA.Value() }
func (s *State) HourlyLogRange() float64 { return s.hourlyLogRangeEMA.Value() }
