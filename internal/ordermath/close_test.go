package ordermath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// S3: Close grid single order.
func TestGridCloseLevels_SingleOrder_S3(t *testing.T) {
	levels := GridCloseLevels(100, 0.01, 0.02, 1, 0.01, true)
	assert.Len(t, levels, 1)
	assert.InDelta(t, RoundUp(101, 0.01), levels[0], 1e-9)
}

func TestGridCloseLevels_ReverseWhenStartAboveEnd(t *testing.T) {
	levels := GridCloseLevels(100, 0.05, 0.01, 3, 0.01, true)
	assert.True(t, levels[0] > levels[len(levels)-1])
}

func TestAutoReduceQty_TriggersAboveOnePercentOver(t *testing.T) {
	qty := AutoReduceQty(10, 1.02, 1.0, true)
	assert.Greater(t, qty, 0.0)
}

func TestAutoReduceQty_NoTriggerWithinBand(t *testing.T) {
	qty := AutoReduceQty(10, 1.005, 1.0, true)
	assert.Equal(t, 0.0, qty)
}

func TestAutoReduceQty_DisabledWhenNotEnforced(t *testing.T) {
	qty := AutoReduceQty(10, 2.0, 1.0, false)
	assert.Equal(t, 0.0, qty)
}
