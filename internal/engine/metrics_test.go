package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/internal/fill"
)

func TestCompute_EmptyObservationsReturnsZeroMetrics(t *testing.T) {
	m := Compute(nil, nil)
	assert.Equal(t, Metrics{}, m)
}

func TestCompute_GainReflectsEquityChange(t *testing.T) {
	obs := []Observation{
		{TsMinute: 1, Equity: 1000},
		{TsMinute: 2, Equity: 1100},
	}
	m := Compute(obs, nil)
	assert.InDelta(t, 0.1, m.Gain, 1e-9)
}

func TestCompute_DrawdownWorstMatchesPeakToTrough(t *testing.T) {
	obs := []Observation{
		{TsMinute: 1, Equity: 1000},
		{TsMinute: 2, Equity: 1200},
		{TsMinute: 3, Equity: 900},
		{TsMinute: 4, Equity: 1000},
	}
	m := Compute(obs, nil)
	assert.InDelta(t, 0.25, m.DrawdownWorst, 1e-9) // (1200-900)/1200
}

func TestCompute_LossProfitRatioFromFills(t *testing.T) {
	events := []fill.Event{
		{RealizedPnL: 10},
		{RealizedPnL: -5},
	}
	m := Compute([]Observation{{Equity: 1000}, {Equity: 1005}}, events)
	assert.InDelta(t, 0.5, m.LossProfitRatio, 1e-9)
}
