package unstuck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func TestSelect_PicksSmallestGapAmongStuck(t *testing.T) {
	candidates := []Candidate{
		{Symbol: "AAA", Side: types.Long, WE: 2.0, WEL: 1.0, UnstuckThreshold: 1.5, ActiveLevelPrice: 110, Mark: 100, PPrice: 90, Long: true},
		{Symbol: "BBB", Side: types.Long, WE: 2.0, WEL: 1.0, UnstuckThreshold: 1.5, ActiveLevelPrice: 110, Mark: 100, PPrice: 98, Long: true},
		{Symbol: "CCC", Side: types.Long, WE: 1.0, WEL: 1.0, UnstuckThreshold: 1.5, ActiveLevelPrice: 110, Mark: 100, PPrice: 50, Long: true}, // not stuck
	}

	sel := Select(candidates)

	assert.True(t, sel.Found)
	assert.Equal(t, "BBB", sel.Candidate.Symbol)
}

func TestSelect_NoneStuckReturnsNotFound(t *testing.T) {
	candidates := []Candidate{
		{Symbol: "AAA", WE: 1.0, WEL: 1.0, UnstuckThreshold: 1.5, ActiveLevelPrice: 110, Mark: 100, PPrice: 90, Long: true},
	}
	sel := Select(candidates)
	assert.False(t, sel.Found)
}

func TestSelect_EmptyCandidates(t *testing.T) {
	sel := Select(nil)
	assert.False(t, sel.Found)
}
