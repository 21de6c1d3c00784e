package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCollector_TwoInstancesDoNotCollide(t *testing.T) {
	c1 := NewCollector("run-a")
	c2 := NewCollector("run-b")

	c1.RecordFill("AAAUSDT", "long", "entry_initial_normal_long", 100)
	c2.RecordFill("BBBUSDT", "short", "close_grid_normal_short", 200)

	mf1, err := c1.Registry.Gather()
	assert.NoError(t, err)
	mf2, err := c2.Registry.Gather()
	assert.NoError(t, err)

	assert.NotEmpty(t, mf1)
	assert.NotEmpty(t, mf2)
}

func TestCollector_SetBalancesAndBankruptcy(t *testing.T) {
	c := NewCollector("run-c")
	c.SetBalances(950.0, 900.0)
	c.RecordBankruptcy()
	c.RecordUnstuckFire("AAAUSDT", "long")
	c.RecordMinCostSkip("AAAUSDT", "long")

	mf, err := c.Registry.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, mf)
}
