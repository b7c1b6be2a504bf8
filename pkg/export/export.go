package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/enginelog/pkg/chart"
	"github.com/tosih/enginelog/pkg/models"
)

// ExportPlot writes a plot to path; the extension selects HTML, CSV or a
// static figure format
func ExportPlot(spec *models.PlotSpec, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Writing %s...", filepath.Base(path)))

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".html", ".htm":
		err = writeFile(path, func(w io.Writer) error {
			return chart.WriteHTML(w, spec, chart.DefaultOptions)
		})
	case ".csv":
		err = writeFile(path, func(w io.Writer) error {
			return WriteCSV(w, spec)
		})
	default:
		if !isFigureFormat(strings.TrimPrefix(ext, ".")) {
			err = fmt.Errorf("unsupported output format %q", ext)
			break
		}
		err = SaveFigure(path, spec)
	}

	if err != nil {
		spinner.Fail(fmt.Sprintf("Failed to write %s", path))
		return err
	}
	spinner.Success(fmt.Sprintf("Plot written to %s", path))
	return nil
}

// WriteCSV writes the x column followed by one column per trace
func WriteCSV(w io.Writer, spec *models.PlotSpec) error {
	writer := csv.NewWriter(w)

	header := []string{spec.X.Name}
	var traces []models.Trace
	for _, g := range spec.Groups {
		for _, tr := range g.Traces {
			header = append(header, tr.Name)
			traces = append(traces, tr)
		}
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	useLabels := spec.X.IsTime && len(spec.X.Labels) == len(spec.X.Values)
	for i, x := range spec.X.Values {
		row := make([]string, 0, len(header))
		if useLabels {
			row = append(row, spec.X.Labels[i])
		} else {
			row = append(row, formatValue(x))
		}
		for _, tr := range traces {
			if i < len(tr.Values) {
				row = append(row, formatValue(tr.Values[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := write(file); err != nil {
		return err
	}
	return file.Close()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isFigureFormat(format string) bool {
	for _, f := range FigureFormats {
		if f == format {
			return true
		}
	}
	return false
}
