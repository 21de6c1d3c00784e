package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantgrid/gridtrail-engine/internal/fill"
)

// DefaultCSVReporter writes a run's fill events as CSV.
type DefaultCSVReporter struct{}

func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteFillsCSV writes one row per fill event plus a trailing summary row.
func (r *DefaultCSVReporter) WriteFillsCSV(fills []fill.Event, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"TsMinute", "Symbol", "Side", "Kind", "Price", "Qty", "Notional", "Fee", "RealizedPnL",
	}); err != nil {
		return err
	}

	var totalPnL, totalFees float64
	for _, ev := range fills {
		totalPnL += ev.RealizedPnL
		totalFees += ev.Fee
		row := []string{
			fmt.Sprintf("%d", ev.TsMinute),
			ev.Symbol,
			string(ev.Side),
			ev.Kind.String(),
			fmt.Sprintf("%.8f", ev.Price),
			fmt.Sprintf("%.8f", ev.Qty),
			fmt.Sprintf("%.2f", ev.Notional),
			fmt.Sprintf("%.4f", ev.Fee),
			fmt.Sprintf("%.4f", ev.RealizedPnL),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summaryRow := make([]string, 9)
	summaryRow[8] = fmt.Sprintf("SUMMARY: fills=%d realized_pnl=%.2f fees=%.2f", len(fills), totalPnL, totalFees)
	return w.Write(summaryRow)
}

// WriteFillsCSV is the package-level convenience wrapper.
func WriteFillsCSV(fills []fill.Event, path string) error {
	return NewDefaultCSVReporter().WriteFillsCSV(fills, path)
}
