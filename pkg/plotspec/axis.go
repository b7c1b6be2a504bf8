package plotspec

import (
	"math"
	"strconv"
	"time"

	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/units"
)

// timeLayouts are tried in order; the first is a bare time of day
var timeLayouts = []string{
	"15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02",
}

// XCandidates returns the columns that can serve as an x axis, in file order
func XCandidates(ds *models.LogDataset) []string {
	var out []string
	for _, c := range ds.Columns() {
		if IsXCandidate(ds, c) {
			out = append(out, c)
		}
	}
	return out
}

// IsXCandidate reports whether col is a time or numeric column of ds
func IsXCandidate(ds *models.LogDataset, col string) bool {
	return ds.IsTime(col) || ds.IsNumeric(col)
}

// ResolveColumn accepts a column key or a full display name
func ResolveColumn(ds *models.LogDataset, name string) string {
	if col, ok := ds.ColumnForName(name); ok {
		return col
	}
	return name
}

func buildAxis(ds *models.LogDataset, col string, temp models.TemperatureUnit) models.Axis {
	axis := models.Axis{
		Column: col,
		Name:   ds.DisplayName(col),
		Labels: ds.Strings(col),
		IsTime: ds.IsTime(col),
	}

	if !ds.IsNumeric(col) {
		axis.Values = ElapsedSeconds(axis.Labels)
		return axis
	}

	axis.Values = ds.Floats(col)
	if temp == models.Celsius && units.IsFahrenheit(units.ExtractUnit(axis.Name)) {
		axis.Values = units.ConvertFahrenheit(axis.Values)
		axis.Name = units.CelsiusName(axis.Name)
		for i, v := range axis.Values {
			if math.IsNaN(v) {
				axis.Labels[i] = ""
				continue
			}
			axis.Labels[i] = strconv.FormatFloat(v, 'f', 1, 64)
		}
	}
	return axis
}

// ElapsedSeconds converts timestamps to seconds since the first parseable one.
// Bare times of day that go backwards are taken to have crossed midnight.
// Unparseable entries become NaN.
func ElapsedSeconds(labels []string) []float64 {
	out := make([]float64, len(labels))
	var start, prev time.Time
	var dayOffset time.Duration
	started := false

	for i, s := range labels {
		t, layout, ok := parseTime(s)
		if !ok {
			out[i] = math.NaN()
			continue
		}
		if layout == 0 {
			t = t.Add(dayOffset)
			if started && t.Before(prev) {
				dayOffset += 24 * time.Hour
				t = t.Add(24 * time.Hour)
			}
		}
		if !started {
			start = t
			started = true
		}
		prev = t
		out[i] = t.Sub(start).Seconds()
	}
	return out
}

func parseTime(s string) (time.Time, int, bool) {
	if s == "" {
		return time.Time{}, 0, false
	}
	for i, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, i, true
		}
	}
	return time.Time{}, 0, false
}
