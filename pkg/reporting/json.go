package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/quantgrid/gridtrail-engine/internal/engine"
	"github.com/quantgrid/gridtrail-engine/internal/fill"
)

// Report is the full JSON-serializable output of one run: the config-free
// result set a caller can diff across runs or feed into another tool.
type Report struct {
	RunLabel     string            `json:"run_label"`
	Metrics      engine.Metrics    `json:"metrics"`
	Fills        []fill.Event      `json:"fills"`
	Observations []engine.Observation `json:"observations"`
}

// WriteReportJSON writes a Report to path, creating parent directories as
// needed.
func WriteReportJSON(report Report, path string) error {
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

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
