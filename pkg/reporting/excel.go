package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/quantgrid/gridtrail-engine/internal/engine"
	"github.com/quantgrid/gridtrail-engine/internal/fill"
)

// DefaultExcelReporter writes one run's fills, equity curve, and metrics
// to a single workbook.
type DefaultExcelReporter struct{}

func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteReportXLSX writes fills, observations, and metrics as three sheets
// of one workbook.
func (r *DefaultExcelReporter) WriteReportXLSX(fills []fill.Event, observations []engine.Observation, metrics engine.Metrics, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const fillsSheet = "Fills"
	const equitySheet = "Equity"
	const metricsSheet = "Metrics"

	fx.SetSheetName(fx.GetSheetName(0), fillsSheet)
	fx.NewSheet(equitySheet)
	fx.NewSheet(metricsSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeFillsSheet(fx, fillsSheet, fills, styles); err != nil {
		return err
	}
	if err := r.writeEquitySheet(fx, equitySheet, observations, styles); err != nil {
		return err
	}
	if err := r.writeMetricsSheet(fx, metricsSheet, metrics, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles builds the named styles shared across sheets.
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    9,
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F0F0F0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeFillsSheet(fx *excelize.File, sheet string, fills []fill.Event, styles ExcelStyles) error {
	headers := []string{"TsMinute", "Symbol", "Side", "Kind", "Price", "Qty", "Notional", "Fee", "RealizedPnL"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	row := 2
	var totalPnL, totalFees float64
	for _, ev := range fills {
		values := []interface{}{ev.TsMinute, ev.Symbol, string(ev.Side), ev.Kind.String(), ev.Price, ev.Qty, ev.Notional, ev.Fee, ev.RealizedPnL}
		r.writeRow(fx, sheet, row, values, pnlStyle(ev.RealizedPnL, styles))
		totalPnL += ev.RealizedPnL
		totalFees += ev.Fee
		row++
	}

	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row+1), fmt.Sprintf("Fills: %d   Realized PnL: %.2f   Fees: %.2f", len(fills), totalPnL, totalFees))
	fx.SetCellStyle(sheet, fmt.Sprintf("A%d", row+1), fmt.Sprintf("A%d", row+1), styles.SummaryStyle)
	return nil
}

func (r *DefaultExcelReporter) writeEquitySheet(fx *excelize.File, sheet string, observations []engine.Observation, styles ExcelStyles) error {
	headers := []string{"TsMinute", "Balance", "Equity", "OpenPositions"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for i, o := range observations {
		row := i + 2
		r.writeRow(fx, sheet, row, []interface{}{o.TsMinute, o.Balance, o.Equity, len(o.Positions)}, styles.BaseStyle)
	}
	return nil
}

func (r *DefaultExcelReporter) writeMetricsSheet(fx *excelize.File, sheet string, m engine.Metrics, styles ExcelStyles) error {
	fx.SetCellValue(sheet, "A1", "Metric")
	fx.SetCellValue(sheet, "B1", "Value")
	fx.SetCellValue(sheet, "C1", "Tail-weighted (_w)")
	for _, cell := range []string{"A1", "B1", "C1"} {
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	rows := [][3]interface{}{
		{"adg", m.ADG, m.ADGW},
		{"mdg", m.MDG, m.MDGW},
		{"gain", m.Gain, nil},
		{"drawdown_worst", m.DrawdownWorst, m.DrawdownWorstW},
		{"drawdown_worst_mean_1pct", m.DrawdownWorstMean1Pct, m.DrawdownWorstMean1PctW},
		{"expected_shortfall_1pct", m.ExpectedShortfall1Pct, m.ExpectedShortfall1PctW},
		{"sharpe_ratio", m.SharpeRatio, m.SharpeRatioW},
		{"sortino_ratio", m.SortinoRatio, m.SortinoRatioW},
		{"calmar_ratio", m.CalmarRatio, m.CalmarRatioW},
		{"sterling_ratio", m.SterlingRatio, m.SterlingRatioW},
		{"omega_ratio", m.OmegaRatio, m.OmegaRatioW},
		{"loss_profit_ratio", m.LossProfitRatio, m.LossProfitRatioW},
		{"positions_held_per_day", m.PositionsHeldPerDay, nil},
		{"position_held_hours_mean", m.PositionHeldHoursMean, nil},
		{"position_held_hours_median", m.PositionHeldHoursMedian, nil},
		{"position_held_hours_max", m.PositionHeldHoursMax, nil},
		{"volume_pct_per_day_avg", m.VolumePctPerDayAvg, nil},
		{"equity_choppiness", m.EquityChoppiness, m.EquityChoppinessW},
		{"equity_jerkiness", m.EquityJerkiness, m.EquityJerknessW},
		{"exponential_fit_error", m.ExponentialFitError, m.ExponentialFitErrorW},
	}
	for i, r3 := range rows {
		row := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), r3[0])
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), r3[1])
		if r3[2] != nil {
			fx.SetCellValue(sheet, fmt.Sprintf("C%d", row), r3[2])
		}
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.CurrencyStyle)
	}
	return nil
}

// writeRow writes one data row with the given non-header style, grounded
// on the teacher's trade-row writer.
func (r *DefaultExcelReporter) writeRow(fx *excelize.File, sheet string, row int, values []interface{}, cellStyle int) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		fx.SetCellValue(sheet, cell, v)
		fx.SetCellStyle(sheet, cell, cell, cellStyle)
	}
}

// pnlStyle colors a fill row green/red by realized PnL sign, falling back
// to the base style for PnL-neutral rows (entries).
func pnlStyle(pnl float64, styles ExcelStyles) int {
	switch {
	case pnl > 0:
		return styles.GreenPercentStyle
	case pnl < 0:
		return styles.RedPercentStyle
	default:
		return styles.BaseStyle
	}
}

// WriteReportXLSX is the package-level convenience wrapper.
func WriteReportXLSX(fills []fill.Event, observations []engine.Observation, metrics engine.Metrics, path string) error {
	return NewDefaultExcelReporter().WriteReportXLSX(fills, observations, metrics, path)
}
