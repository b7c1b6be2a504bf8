package plotspec

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/reader"
)

const engineLog = "airframe_info\n" +
	"Lcl Time,Oil Temp (deg F),Engine RPM,CHT 1 (deg F),Bus Volts (V),OAT (deg C),Status\n" +
	"Lcl Time,E1 OilT,E1 RPM,E1 CHT1,Volts1,OAT,Status\n" +
	"10:00:00,32,2000,212,28.0,10,OK\n" +
	"10:00:01,50,2100,302,28.1,11,OK\n" +
	"10:00:02,,2200,392,28.2,12,WARN\n"

func loadDataset(t *testing.T, content string) *models.LogDataset {
	t.Helper()

	ds, err := reader.ParseReader(strings.NewReader(content), "flight.csv")
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}
	return ds
}

func groupUnits(spec *models.PlotSpec) []string {
	out := make([]string, len(spec.Groups))
	for i, g := range spec.Groups {
		out[i] = g.Unit
	}
	return out
}

func TestSpecScenario(t *testing.T) {
	ds := loadDataset(t, "meta\nOil Temp (°F),RPM,\nOilT,RPM,\n100,2000\n105,2100\n")

	spec, err := BuildPlotSpec(ds, []string{"OilT", "RPM"}, "RPM", models.Fahrenheit)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}

	if len(spec.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(spec.Groups))
	}
	if spec.Groups[0].Unit != "°F" || strings.Join(spec.Groups[0].Columns(), ",") != "OilT" {
		t.Errorf("Unexpected first group %+v", spec.Groups[0])
	}
	if spec.Groups[1].Unit != "" || strings.Join(spec.Groups[1].Columns(), ",") != "RPM" {
		t.Errorf("Unexpected second group %+v", spec.Groups[1])
	}
	if !spec.LinkedX {
		t.Error("Time series subplots must share the x axis")
	}
}

func TestGroupingPreservesOrder(t *testing.T) {
	ds := loadDataset(t, engineLog)

	spec, err := BuildPlotSpec(ds, []string{"E1 OilT", "Volts1", "E1 CHT1", "E1 RPM"}, "Lcl Time", models.Fahrenheit)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}

	if got := strings.Join(groupUnits(spec), "|"); got != "deg F|V|" {
		t.Errorf("Expected units 'deg F|V|', got '%s'", got)
	}
	if got := strings.Join(spec.Groups[0].Columns(), ","); got != "E1 OilT,E1 CHT1" {
		t.Errorf("Expected deg F group [E1 OilT E1 CHT1], got %s", got)
	}
	if spec.Groups[2].Title != "Unit: (none)" {
		t.Errorf("Unexpected unitless title '%s'", spec.Groups[2].Title)
	}
}

func TestCelsiusConversion(t *testing.T) {
	ds := loadDataset(t, engineLog)
	before := ds.Floats("E1 OilT")

	spec, err := BuildPlotSpec(ds, []string{"E1 OilT", "OAT", "E1 CHT1"}, "Lcl Time", models.Celsius)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}

	// converted Fahrenheit columns merge into the already-Celsius group
	if len(spec.Groups) != 1 || spec.Groups[0].Unit != "deg C" {
		t.Fatalf("Expected one 'deg C' group, got %v", groupUnits(spec))
	}
	if got := strings.Join(spec.Groups[0].Columns(), ","); got != "E1 OilT,OAT,E1 CHT1" {
		t.Errorf("Unexpected member order %s", got)
	}

	oil := spec.Groups[0].Traces[0]
	if oil.Values[0] != 0 || oil.Values[1] != 10 || !math.IsNaN(oil.Values[2]) {
		t.Errorf("Unexpected converted oil temps %v", oil.Values)
	}
	if oil.Name != "Oil Temp (deg C)" {
		t.Errorf("Expected relabelled name, got '%s'", oil.Name)
	}
	cht := spec.Groups[0].Traces[2]
	if cht.Values[0] != 100 {
		t.Errorf("212°F should be 100°C, got %v", cht.Values[0])
	}
	oat := spec.Groups[0].Traces[1]
	if oat.Values[0] != 10 {
		t.Errorf("Celsius column must not be converted, got %v", oat.Values[0])
	}

	after := ds.Floats("E1 OilT")
	if after[0] != before[0] || after[1] != before[1] {
		t.Error("Conversion mutated the dataset")
	}

	// building again gives the same result, no compounding
	again, err := BuildPlotSpec(ds, []string{"E1 OilT"}, "Lcl Time", models.Celsius)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}
	if again.Groups[0].Traces[0].Values[1] != 10 {
		t.Errorf("Repeated conversion compounded: %v", again.Groups[0].Traces[0].Values)
	}
}

func TestBuildPlotSpecErrors(t *testing.T) {
	ds := loadDataset(t, engineLog)

	tests := []struct {
		name     string
		selected []string
		x        string
	}{
		{"empty selection", nil, "Lcl Time"},
		{"unknown x", []string{"E1 RPM"}, "Nope"},
		{"text x", []string{"E1 RPM"}, "Status"},
		{"unknown parameter", []string{"Nope"}, "Lcl Time"},
		{"text parameter", []string{"Status"}, "Lcl Time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildPlotSpec(ds, tt.selected, tt.x, models.Fahrenheit)
			var se *models.SelectionError
			if !errors.As(err, &se) {
				t.Errorf("Expected SelectionError, got %v", err)
			}
		})
	}
}

func TestDuplicateSelection(t *testing.T) {
	ds := loadDataset(t, engineLog)

	spec, err := BuildPlotSpec(ds, []string{"E1 RPM", "E1 RPM"}, "Lcl Time", models.Fahrenheit)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}
	if spec.TraceCount() != 1 {
		t.Errorf("Expected 1 trace, got %d", spec.TraceCount())
	}
}

func TestTimeAxis(t *testing.T) {
	ds := loadDataset(t, engineLog)

	spec, err := BuildPlotSpec(ds, []string{"E1 RPM"}, "Lcl Time", models.Fahrenheit)
	if err != nil {
		t.Fatalf("BuildPlotSpec failed: %v", err)
	}

	if !spec.X.IsTime {
		t.Error("Expected a time axis")
	}
	want := []float64{0, 1, 2}
	for i, v := range want {
		if spec.X.Values[i] != v {
			t.Errorf("X[%d] = %v, expected %v", i, spec.X.Values[i], v)
		}
	}
	if spec.X.Labels[2] != "10:00:02" {
		t.Errorf("Expected raw label '10:00:02', got '%s'", spec.X.Labels[2])
	}
}

func TestElapsedSecondsMidnight(t *testing.T) {
	got := ElapsedSeconds([]string{"23:59:58", "23:59:59", "bad", "00:00:01"})

	if got[0] != 0 || got[1] != 1 || !math.IsNaN(got[2]) || got[3] != 3 {
		t.Errorf("Unexpected elapsed seconds %v", got)
	}
}

func TestElapsedSecondsDates(t *testing.T) {
	got := ElapsedSeconds([]string{"2024-05-01 10:00:00", "2024-05-01 10:01:00"})
	if got[1] != 60 {
		t.Errorf("Expected 60s, got %v", got[1])
	}
}

func TestBuildXYSpec(t *testing.T) {
	ds := loadDataset(t, engineLog)

	spec, err := BuildXYSpec(ds, "E1 RPM", "E1 CHT1")
	if err != nil {
		t.Fatalf("BuildXYSpec failed: %v", err)
	}

	if spec.Kind != models.XY {
		t.Errorf("Expected XY kind, got %s", spec.Kind)
	}
	if len(spec.Groups) != 1 || len(spec.Groups[0].Traces) != 1 {
		t.Fatalf("Expected one group with one trace, got %+v", spec.Groups)
	}
	tr := spec.Groups[0].Traces[0]
	if len(tr.Values) != len(spec.X.Values) {
		t.Errorf("Trace and x lengths differ: %d vs %d", len(tr.Values), len(spec.X.Values))
	}
	if spec.X.Values[1] != 2100 || tr.Values[1] != 302 {
		t.Errorf("Rows not aligned: x=%v y=%v", spec.X.Values[1], tr.Values[1])
	}
	if spec.Title != "CHT 1 (deg F) vs Engine RPM" {
		t.Errorf("Unexpected title '%s'", spec.Title)
	}
}

func TestBuildXYSpecErrors(t *testing.T) {
	ds := loadDataset(t, engineLog)

	for _, pair := range [][2]string{
		{"E1 RPM", "E1 RPM"},
		{"Nope", "E1 RPM"},
		{"E1 RPM", "Nope"},
		{"E1 RPM", "Status"},
		{"Status", "E1 RPM"},
	} {
		_, err := BuildXYSpec(ds, pair[0], pair[1])
		var se *models.SelectionError
		if !errors.As(err, &se) {
			t.Errorf("BuildXYSpec(%s, %s): expected SelectionError, got %v", pair[0], pair[1], err)
		}
	}
}

func TestXCandidatesAndResolve(t *testing.T) {
	ds := loadDataset(t, engineLog)

	got := strings.Join(XCandidates(ds), ",")
	if got != "Lcl Time,E1 OilT,E1 RPM,E1 CHT1,Volts1,OAT" {
		t.Errorf("Unexpected x candidates %s", got)
	}
	if ResolveColumn(ds, "Engine RPM") != "E1 RPM" {
		t.Errorf("Expected full name to resolve to 'E1 RPM'")
	}
	if ResolveColumn(ds, "E1 RPM") != "E1 RPM" {
		t.Errorf("Expected key to resolve to itself")
	}
}
