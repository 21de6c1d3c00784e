// Package monitoring instruments one engine run with Prometheus metrics.
// Grounded on the teacher's monitoring package (promauto counter/histogram/
// gauge vectors), adapted from package-level globals to an instance-scoped
// prometheus.Registry: a backtest run constructs its own Collector so that
// running many runs in one process (the worker pool) never hits
// promauto's duplicate-registration panic on the default registry. There
// is no HTTP listener here, unlike the teacher's live-trading exporter —
// nothing in a backtest run is scraped; a caller that wants scraping can
// pull prometheus.Registry.Gather() and bridge it to whatever collector it
// likes.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds one run's metric vectors against a private registry.
type Collector struct {
	Registry *prometheus.Registry

	FillsTotal      *prometheus.CounterVec
	FillNotional    *prometheus.HistogramVec
	BankruptcyTotal prometheus.Counter
	MinCostSkipped  *prometheus.CounterVec
	UnstuckFired    *prometheus.CounterVec
	Equity          prometheus.Gauge
	Balance         prometheus.Gauge
}

// NewCollector builds a Collector with its own registry, labeled with runID
// so metrics from concurrent runs in the same process never collide.
func NewCollector(runID string) *Collector {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"run_id": runID}

	c := &Collector{
		Registry: reg,
		FillsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gridtrail_fills_total",
			Help:        "Total number of filled orders by symbol, side, and kind",
			ConstLabels: constLabels,
		}, []string{"symbol", "side", "kind"}),
		FillNotional: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "gridtrail_fill_notional_usd",
			Help:        "Notional size of filled orders",
			Buckets:     prometheus.ExponentialBuckets(10, 2, 14),
			ConstLabels: constLabels,
		}, []string{"symbol", "side"}),
		BankruptcyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "gridtrail_bankruptcy_total",
			Help:        "Number of minutes the run's equity crossed the bankruptcy floor",
			ConstLabels: constLabels,
		}),
		MinCostSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gridtrail_min_cost_skipped_total",
			Help:        "Orders suppressed for falling below the market's minimum notional",
			ConstLabels: constLabels,
		}, []string{"symbol", "side"}),
		UnstuckFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "gridtrail_unstuck_fired_total",
			Help:        "Unstuck closes selected by the scheduler",
			ConstLabels: constLabels,
		}, []string{"symbol", "side"}),
		Equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridtrail_equity_usd",
			Help:        "Current run equity in USD",
			ConstLabels: constLabels,
		}),
		Balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "gridtrail_balance_usd",
			Help:        "Current run wallet balance in USD",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(c.FillsTotal, c.FillNotional, c.BankruptcyTotal, c.MinCostSkipped, c.UnstuckFired, c.Equity, c.Balance)
	return c
}

// RecordFill records one fill.Event's effect on the fill-count and
// notional-size metrics.
func (c *Collector) RecordFill(symbol, side, kind string, notional float64) {
	c.FillsTotal.WithLabelValues(symbol, side, kind).Inc()
	c.FillNotional.WithLabelValues(symbol, side).Observe(notional)
}

// RecordMinCostSkip records one order the builder suppressed for falling
// below Market.MinCost.
func (c *Collector) RecordMinCostSkip(symbol, side string) {
	c.MinCostSkipped.WithLabelValues(symbol, side).Inc()
}

// RecordUnstuckFire records one minute's unstuck scheduler selection.
func (c *Collector) RecordUnstuckFire(symbol, side string) {
	c.UnstuckFired.WithLabelValues(symbol, side).Inc()
}

// RecordBankruptcy increments the bankruptcy counter for the minute the
// driver observed equity crossing the floor.
func (c *Collector) RecordBankruptcy() {
	c.BankruptcyTotal.Inc()
}

// SetBalances updates the equity/balance gauges to the current minute's
// values.
func (c *Collector) SetBalances(equity, balance float64) {
	c.Equity.Set(equity)
	c.Balance.Set(balance)
}
