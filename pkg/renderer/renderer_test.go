package renderer

import (
	"math"
	"strings"
	"testing"

	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/plotspec"
	"github.com/tosih/enginelog/pkg/reader"
)

const testLog = "meta\nLcl Time,Oil Temp (deg F),Engine RPM\nLcl Time,E1 OilT,E1 RPM\n" +
	"10:00:00,180,2000\n10:00:01,,2400\n"

func TestParameterRows(t *testing.T) {
	ds, err := reader.ParseReader(strings.NewReader(testLog), "mem")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	rows := ParameterRows(ds, ds.Columns())
	if len(rows) != 4 {
		t.Fatalf("Expected header plus 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Key" {
		t.Errorf("Expected header row first, got %v", rows[0])
	}
	if rows[2][0] != "E1 OilT" || rows[2][1] != "Oil Temp (deg F)" || rows[2][2] != "deg F" {
		t.Errorf("Unexpected oil row %v", rows[2])
	}
}

func TestSummaryTree(t *testing.T) {
	ds, err := reader.ParseReader(strings.NewReader(testLog), "mem")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	spec, err := plotspec.BuildPlotSpec(ds, []string{"E1 OilT", "E1 RPM"}, "Lcl Time", models.Fahrenheit)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}

	root := SummaryTree(spec)
	if len(root.Children) != 2 {
		t.Fatalf("Expected 2 subplot nodes, got %d", len(root.Children))
	}
	if !strings.Contains(root.Children[0].Text, "Range: 180.00-180.00") {
		t.Errorf("Expected gap-free range in '%s'", root.Children[0].Text)
	}
	if !strings.Contains(root.Children[1].Children[0].Text, "[E1 RPM]") {
		t.Errorf("Expected trace key in '%s'", root.Children[1].Children[0].Text)
	}
}

func TestFindMinMaxEmpty(t *testing.T) {
	lo, hi := findMinMax(models.UnitGroup{Traces: []models.Trace{{Values: []float64{math.NaN()}}}})
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Errorf("Expected NaN range, got %v-%v", lo, hi)
	}
}
