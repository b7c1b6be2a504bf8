package chart

import (
	"math"
	"strings"
	"testing"

	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/plotspec"
	"github.com/tosih/enginelog/pkg/reader"
)

const testLog = "meta\n" +
	"Lcl Time,Oil Temp (deg F),Engine RPM,Bus Volts (V)\n" +
	"Lcl Time,E1 OilT,E1 RPM,Volts1\n" +
	"10:00:00,180,2000,28.0\n10:00:01,,2400,28.1\n10:00:02,185,2450,27.9\n"

func loadSpec(t *testing.T) *models.PlotSpec {
	t.Helper()

	ds, err := reader.ParseReader(strings.NewReader(testLog), "flight.csv")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	spec, err := plotspec.BuildPlotSpec(ds, []string{"E1 OilT", "E1 RPM", "Volts1"}, "Lcl Time", models.Fahrenheit)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}
	return spec
}

func TestWriteHTMLOneChartPerGroup(t *testing.T) {
	spec := loadSpec(t)

	var sb strings.Builder
	if err := WriteHTML(&sb, spec, DefaultOptions); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	html := sb.String()

	for i := 0; i < len(spec.Groups); i++ {
		id := "subplot" + string(rune('0'+i))
		if !strings.Contains(html, id) {
			t.Errorf("Expected chart %s in output", id)
		}
	}
	if strings.Contains(html, "subplot3") {
		t.Error("Expected exactly three subplots")
	}
	if !strings.Contains(html, "echarts.connect") {
		t.Error("Expected subplots to be connected")
	}
	if !strings.Contains(html, "Oil Temp (deg F)") {
		t.Error("Expected trace names in output")
	}
}

func TestWriteHTMLXY(t *testing.T) {
	ds, err := reader.ParseReader(strings.NewReader(testLog), "flight.csv")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	spec, err := plotspec.BuildXYSpec(ds, "E1 RPM", "E1 OilT")
	if err != nil {
		t.Fatalf("BuildXYSpec failed: %v", err)
	}

	var sb strings.Builder
	if err := WriteHTML(&sb, spec, DefaultOptions); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}
	if strings.Contains(sb.String(), "echarts.connect") {
		t.Error("XY plots have nothing to connect")
	}
	if !strings.Contains(sb.String(), "scatter") {
		t.Error("Expected a scatter series")
	}
}

func TestWriteHTMLEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteHTML(&sb, &models.PlotSpec{}, DefaultOptions); err == nil {
		t.Error("Expected an error for a plot without subplots")
	}
}

func TestScatterPointsSkipsGaps(t *testing.T) {
	points := ScatterPoints([]float64{1, 2, math.NaN(), 4}, []float64{10, math.NaN(), 30, 40})
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if v := points[1].Value.([]float64); v[0] != 4 || v[1] != 40 {
		t.Errorf("Unexpected point %v", v)
	}
}

func TestXLabels(t *testing.T) {
	timeAxis := models.Axis{IsTime: true, Values: []float64{0, 1}, Labels: []string{"10:00:00", "10:00:01"}}
	if got := XLabels(timeAxis); got[1] != "10:00:01" {
		t.Errorf("Expected raw time label, got %v", got)
	}

	numAxis := models.Axis{Values: []float64{2000, math.NaN(), 2450.5}}
	got := XLabels(numAxis)
	if got[0] != "2000" || got[1] != "" || got[2] != "2450.5" {
		t.Errorf("Unexpected numeric labels %v", got)
	}
}
