// Package report persists inventory scan results as CSV, plain text and
// optionally a SQLite snapshot.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"influxinv/internal/inventory"
)

const (
	DefaultDir     = "output"
	SummaryCSVName = "all-result.csv"
	SummaryTXTName = "all-result.txt"
)

var (
	measurementHeader = []string{"Host", "LastTime_UTC", "LastTime_Local"}
	summaryHeader     = []string{"Host", "OldTime_UTC", "OldTime_Local", "NewTime_UTC", "NewTime_Local"}
)

// Writer writes report files into Dir, creating it on first use.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = DefaultDir
	}
	return &Writer{Dir: dir}
}

// MeasurementPath is the per-measurement CSV path for container and measurement.
func (w *Writer) MeasurementPath(container, measurement string) string {
	return filepath.Join(w.Dir, fileSafe(container)+"_"+fileSafe(measurement)+".csv")
}

func (w *Writer) WriteMeasurement(container, measurement string, rows []inventory.HostRow) []inventory.Output {
	path := w.MeasurementPath(container, measurement)
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Host, r.UTC, r.Local})
	}
	return []inventory.Output{{Path: path, Err: w.writeCSV(path, measurementHeader, records)}}
}

func (w *Writer) WriteSummary(rows []inventory.SummaryRow) []inventory.Output {
	csvPath := filepath.Join(w.Dir, SummaryCSVName)
	txtPath := filepath.Join(w.Dir, SummaryTXTName)

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Host, r.OldUTC, r.OldLocal, r.NewUTC, r.NewLocal})
	}
	return []inventory.Output{
		{Path: csvPath, Err: w.writeCSV(csvPath, summaryHeader, records)},
		{Path: txtPath, Err: w.writeText(txtPath, summaryHeader, records)},
	}
}

func (w *Writer) ensureDir() error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func (w *Writer) writeCSV(path string, header []string, records [][]string) error {
	if err := w.ensureDir(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (w *Writer) writeText(path string, header []string, records [][]string) error {
	if err := w.ensureDir(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(textLine(header))
	b.WriteString(strings.Repeat("-", 150))
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(textLine(r))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func textLine(cols []string) string {
	padded := make([]string, len(cols))
	for i, c := range cols {
		padded[i] = fmt.Sprintf("%-30s", c)
	}
	return strings.Join(padded, " ") + "\n"
}

// fileSafe keeps names usable as a single path element.
func fileSafe(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
