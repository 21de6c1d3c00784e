package ema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeries_BiasCorrectionConvergesToConstant(t *testing.T) {
	s := NewSeries(10)
	for i := 0; i < 200; i++ {
		s.Update(100)
	}
	assert.InDelta(t, 100, s.Value(), 1e-6)
}

func TestSeries_FirstUpdateEqualsInput(t *testing.T) {
	// With bias correction, a single update reproduces the input exactly:
	// value/weight = (close*alpha)/alpha = close.
	s := NewSeries(10)
	s.Update(50)
	assert.InDelta(t, 50, s.Value(), 1e-9)
}

func TestTracker_BandsAreMinMaxOfThreeEMAs(t *testing.T) {
	tr := NewTracker(5, 20, 0.5)
	for i := 0; i < 30; i++ {
		tr.Update(100 + float64(i))
	}
	upper, lower := tr.Bands()
	assert.GreaterOrEqual(t, upper, lower)
}

func TestTracker_WarmedUp(t *testing.T) {
	tr := NewTracker(10, 20, 2.0) // warmupRatio*maxSpan = 40, so absolute (t>=20) gates first
	assert.False(t, tr.WarmedUp(5))
	assert.True(t, tr.WarmedUp(20))
}
