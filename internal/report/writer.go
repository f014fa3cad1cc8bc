// Package report renders an analysis run into artifacts: machine-readable
// JSON, a human-readable markdown report, and a CSV of classified
// signals. It consumes plain result data and performs all of the I/O the
// analysis core deliberately avoids.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/quantaudit/sigscope/internal/analysis"
)

// Writer emits run artifacts into a timestamped directory.
type Writer struct {
	outputDir string
}

// NewWriter creates a writer rooted at outputDir/<timestamp>.
func NewWriter(outputDir string) *Writer {
	return &Writer{
		outputDir: filepath.Join(outputDir, time.Now().Format("2006-01-02_15-04-05")),
	}
}

// OutputDir returns the full artifact directory path.
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// WriteAll writes every artifact for the run.
func (w *Writer) WriteAll(report *analysis.Report) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := w.writeJSON(report); err != nil {
		return err
	}
	if err := w.writeMarkdown(report); err != nil {
		return err
	}
	return w.writeCSV(report)
}

func (w *Writer) writeJSON(report *analysis.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(w.outputDir, "report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeMarkdown(report *analysis.Report) error {
	path := filepath.Join(w.outputDir, "report.md")
	if err := os.WriteFile(path, []byte(Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// writeCSV dumps the classified collection, one row per signal. Metrics
// that could not be computed stay empty rather than becoming zeros.
func (w *Writer) writeCSV(report *analysis.Report) error {
	path := filepath.Join(w.outputDir, "signals.csv")
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	header := []string{"signal_id", "symbol", "direction", "confidence", "outcome", "r_multiple", "hold_time_hours", "mfe_percent", "mae_percent", "created_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range report.Classified {
		s := &report.Classified[i]
		row := []string{
			s.SignalID,
			s.Symbol,
			s.Direction,
			strconv.FormatFloat(s.Confidence, 'f', -1, 64),
			string(s.Outcome),
			optionalField(s.RMultiple),
			optionalField(s.HoldTimeHours),
			optionalField(s.MFEPercent),
			optionalField(s.MAEPercent),
			strconv.FormatInt(s.CreatedAt, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func optionalField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
