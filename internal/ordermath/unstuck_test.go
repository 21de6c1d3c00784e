package ordermath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// S5: Unstuck allowance.
func TestUnstuckAllowance_S5(t *testing.T) {
	allowance := UnstuckAllowance(1000, 1200, 0.01, 2.0)
	assert.Equal(t, 0.0, allowance)
}

func TestUnstuckAllowance_PositiveWhenNearPeak(t *testing.T) {
	allowance := UnstuckAllowance(1190, 1200, 0.01, 2.0)
	assert.Greater(t, allowance, 0.0)
}

func TestIsStuck(t *testing.T) {
	assert.True(t, IsStuck(2.0, 1.0, 1.5, 110, 105, true))  // WE/WEL=2>1.5, mark below level
	assert.False(t, IsStuck(2.0, 1.0, 1.5, 100, 105, true)) // mark has reached TP level
	assert.False(t, IsStuck(1.0, 1.0, 1.5, 110, 105, true)) // WE/WEL not above threshold
}

func TestUnstuckGap(t *testing.T) {
	assert.InDelta(t, 0.05, UnstuckGap(105, 100), 1e-9)
}
