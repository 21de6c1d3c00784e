package reporting

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quantgrid/gridtrail-engine/internal/engine"
)

// DefaultConsoleReporter prints a run's metrics to stdout as a table.
type DefaultConsoleReporter struct{}

func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// PrintMetrics renders the full reported-metrics set, value next to its
// tail-weighted (_w) counterpart.
func (r *DefaultConsoleReporter) PrintMetrics(runLabel string, m engine.Metrics) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("RUN METRICS: %s", runLabel))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Metric", "Value", "Tail-weighted"})
	t.AppendRows([]table.Row{
		{"adg", m.ADG, m.ADGW},
		{"mdg", m.MDG, m.MDGW},
		{"gain", m.Gain, "-"},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"drawdown_worst", m.DrawdownWorst, m.DrawdownWorstW},
		{"drawdown_worst_mean_1pct", m.DrawdownWorstMean1Pct, m.DrawdownWorstMean1PctW},
		{"expected_shortfall_1pct", m.ExpectedShortfall1Pct, m.ExpectedShortfall1PctW},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"sharpe_ratio", m.SharpeRatio, m.SharpeRatioW},
		{"sortino_ratio", m.SortinoRatio, m.SortinoRatioW},
		{"calmar_ratio", m.CalmarRatio, m.CalmarRatioW},
		{"sterling_ratio", m.SterlingRatio, m.SterlingRatioW},
		{"omega_ratio", m.OmegaRatio, m.OmegaRatioW},
		{"loss_profit_ratio", m.LossProfitRatio, m.LossProfitRatioW},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"positions_held_per_day", m.PositionsHeldPerDay, "-"},
		{"position_held_hours_mean", m.PositionHeldHoursMean, "-"},
		{"position_held_hours_median", m.PositionHeldHoursMedian, "-"},
		{"position_held_hours_max", m.PositionHeldHoursMax, "-"},
		{"volume_pct_per_day_avg", m.VolumePctPerDayAvg, "-"},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"equity_choppiness", m.EquityChoppiness, m.EquityChoppinessW},
		{"equity_jerkiness", m.EquityJerkiness, m.EquityJerknessW},
		{"exponential_fit_error", m.ExponentialFitError, m.ExponentialFitErrorW},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 26, Align: text.AlignLeft},
		{Number: 2, WidthMin: 12, Align: text.AlignRight},
		{Number: 3, WidthMin: 12, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

// PrintMetrics is the package-level convenience wrapper.
func PrintMetrics(runLabel string, m engine.Metrics) {
	NewDefaultConsoleReporter().PrintMetrics(runLabel, m)
}
