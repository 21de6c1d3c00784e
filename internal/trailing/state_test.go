package trailing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func TestUpdate_SeedsFromOpenOnFirstCandle(t *testing.T) {
	var ts types.TrailingState
	Update(&ts, 100, 105, 98, 102)
	assert.Equal(t, 105.0, ts.MaxSinceOpen)
	assert.Equal(t, 98.0, ts.MinSinceOpen)
}

func TestUpdate_S4Scenario(t *testing.T) {
	var ts types.TrailingState
	ts.Seed(100)
	Update(&ts, 100, 100, 97, 97) // price drops to 97
	assert.Equal(t, 97.0, ts.MinSinceOpen)
	Update(&ts, 97, 98.5, 97, 98.5) // climbs to 98.5
	assert.Equal(t, 98.5, ts.MaxSinceMin)
	assert.Greater(t, ts.MaxSinceMin, ts.MinSinceOpen*1.01)
}

func TestUpdate_ResetOnPositionChange(t *testing.T) {
	var ts types.TrailingState
	Update(&ts, 100, 110, 90, 105)
	ts.Reset()
	assert.Equal(t, types.TrailingState{}, ts)
}
