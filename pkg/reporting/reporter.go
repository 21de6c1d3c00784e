package reporting

import (
	"github.com/quantgrid/gridtrail-engine/internal/engine"
	"github.com/quantgrid/gridtrail-engine/internal/fill"
)

// ReportingConfig toggles which sinks a run's report is written to.
type ReportingConfig struct {
	EnableConsole bool
	EnableFiles   bool
	CSVEnabled    bool
	ExcelEnabled  bool
	JSONEnabled   bool
}

// DefaultReporter composes the console, CSV, Excel, and path sinks behind
// one entry point. JSON output is written by the package-level
// WriteReportJSON, not through DefaultReporter.
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	paths   *DefaultPathManager
}

func NewDefaultReporter() *DefaultReporter {
	return &DefaultReporter{
		console: NewDefaultConsoleReporter(),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		paths:   NewDefaultPathManager(),
	}
}

func (r *DefaultReporter) PrintMetrics(runLabel string, m engine.Metrics) {
	r.console.PrintMetrics(runLabel, m)
}

func (r *DefaultReporter) WriteFillsCSV(fills []fill.Event, path string) error {
	return r.csv.WriteFillsCSV(fills, path)
}

func (r *DefaultReporter) WriteReportXLSX(fills []fill.Event, observations []engine.Observation, m engine.Metrics, path string) error {
	return r.excel.WriteReportXLSX(fills, observations, m, path)
}

func (r *DefaultReporter) GetDefaultOutputDir(runLabel, interval string) string {
	return r.paths.GetDefaultOutputDir(runLabel, interval)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ReportingManager drives one run's complete report according to a
// ReportingConfig, deciding output paths itself.
type ReportingManager struct {
	reporter *DefaultReporter
	config   ReportingConfig
}

func NewReportingManager(config ReportingConfig) *ReportingManager {
	return &ReportingManager{reporter: NewDefaultReporter(), config: config}
}

// ReportRun writes every enabled sink for one completed run.
func (m *ReportingManager) ReportRun(runLabel, interval string, fills []fill.Event, observations []engine.Observation, metrics engine.Metrics) error {
	if m.config.EnableConsole {
		m.reporter.PrintMetrics(runLabel, metrics)
	}

	if !m.config.EnableFiles {
		return nil
	}

	outputDir := m.reporter.GetDefaultOutputDir(runLabel, interval)

	if m.config.CSVEnabled {
		if err := m.reporter.WriteFillsCSV(fills, outputDir+"/fills.csv"); err != nil {
			return err
		}
	}

	if m.config.ExcelEnabled {
		if err := m.reporter.WriteReportXLSX(fills, observations, metrics, outputDir+"/report.xlsx"); err != nil {
			return err
		}
	}

	if m.config.JSONEnabled {
		report := Report{RunLabel: runLabel, Metrics: metrics, Fills: fills, Observations: observations}
		if err := WriteReportJSON(report, outputDir+"/report.json"); err != nil {
			return err
		}
	}

	return nil
}
