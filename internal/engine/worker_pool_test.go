package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantgrid/gridtrail-engine/pkg/types"
)

func buildMinutes(n int) []map[string]types.Candle {
	minutes := make([]map[string]types.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price += 0.1
		minutes[i] = map[string]types.Candle{
			"AAAUSDT": {Symbol: "AAAUSDT", TsMinute: int64(i + 1), Open: price - 0.1, High: price + 0.2, Low: price - 0.2, Close: price},
		}
	}
	return minutes
}

func TestWorkerPool_RunsIndependentJobsConcurrently(t *testing.T) {
	wp := NewWorkerPool(2, 4)
	wp.Start()

	for i := 0; i < 3; i++ {
		wp.Submit(Job{Label: "job", Cfg: testConfig(), Markets: testMarkets(), Minutes: buildMinutes(15)})
	}
	wp.Stop()

	seen := map[string]bool{}
	count := 0
	for res := range wp.Results() {
		count++
		assert.NotEmpty(t, res.RunID)
		assert.False(t, seen[res.RunID]) // distinct run IDs across jobs
		seen[res.RunID] = true
		assert.NotNil(t, res.Driver)
	}
	assert.Equal(t, 3, count)
}
