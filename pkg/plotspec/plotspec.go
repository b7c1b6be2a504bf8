package plotspec

import (
	"fmt"
	"path/filepath"

	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/units"
)

// BuildPlotSpec groups the selected parameters by unit, one subplot per unit,
// all sharing the x axis. Units keep the order in which they are first seen
// in selected. Fahrenheit columns are converted on a copy when temp is Celsius.
func BuildPlotSpec(ds *models.LogDataset, selected []string, xColumn string, temp models.TemperatureUnit) (*models.PlotSpec, error) {
	if len(selected) == 0 {
		return nil, &models.SelectionError{Msg: "no parameters selected"}
	}
	if !IsXCandidate(ds, xColumn) {
		return nil, &models.SelectionError{
			Msg: fmt.Sprintf("x-axis column %q is not a time or numeric column", xColumn),
		}
	}

	var groups []models.UnitGroup
	groupIndex := make(map[string]int)
	seen := make(map[string]bool)

	for _, col := range selected {
		if seen[col] {
			continue
		}
		seen[col] = true

		if !ds.HasColumn(col) {
			return nil, &models.SelectionError{Msg: fmt.Sprintf("unknown parameter %q", col)}
		}
		if !ds.IsNumeric(col) {
			return nil, &models.SelectionError{Msg: fmt.Sprintf("parameter %q is not numeric", col)}
		}

		name := ds.DisplayName(col)
		unit := units.ExtractUnit(name)
		values := ds.Floats(col)
		converted := temp == models.Celsius && units.IsFahrenheit(unit)
		if converted {
			values = units.ConvertFahrenheit(values)
			unit = units.CelsiusUnit(unit)
			name = units.CelsiusName(name)
		}

		idx, ok := groupIndex[unit]
		if !ok {
			idx = len(groups)
			groupIndex[unit] = idx
			groups = append(groups, models.UnitGroup{
				Unit:  unit,
				Title: models.GroupTitle(unit),
			})
		}
		groups[idx].Traces = append(groups[idx].Traces, models.Trace{
			Column:    col,
			Name:      name,
			Unit:      unit,
			Converted: converted,
			Values:    values,
		})
	}

	return &models.PlotSpec{
		Kind:        models.TimeSeries,
		Title:       fmt.Sprintf("Engine Data Log: %s", filepath.Base(ds.Source())),
		Source:      ds.Source(),
		X:           buildAxis(ds, xColumn, temp),
		Groups:      groups,
		Temperature: temp,
		LinkedX:     true,
	}, nil
}

// BuildXYSpec plots yColumn against xColumn as a single scatter trace,
// row-aligned by index
func BuildXYSpec(ds *models.LogDataset, xColumn, yColumn string) (*models.PlotSpec, error) {
	for _, col := range []string{xColumn, yColumn} {
		if !ds.HasColumn(col) {
			return nil, &models.SelectionError{Msg: fmt.Sprintf("unknown parameter %q", col)}
		}
		if !IsXCandidate(ds, col) {
			return nil, &models.SelectionError{Msg: fmt.Sprintf("parameter %q is not numeric", col)}
		}
	}
	if xColumn == yColumn {
		return nil, &models.SelectionError{Msg: fmt.Sprintf("x and y are both %q", xColumn)}
	}

	x := buildAxis(ds, xColumn, models.Fahrenheit)
	y := buildAxis(ds, yColumn, models.Fahrenheit)
	unit := units.ExtractUnit(y.Name)

	return &models.PlotSpec{
		Kind:   models.XY,
		Title:  fmt.Sprintf("%s vs %s", y.Name, x.Name),
		Source: ds.Source(),
		X:      x,
		Groups: []models.UnitGroup{{
			Unit:  unit,
			Title: y.Name,
			Traces: []models.Trace{{
				Column: yColumn,
				Name:   y.Name,
				Unit:   unit,
				Values: y.Values,
			}},
		}},
		Temperature: models.Fahrenheit,
	}, nil
}
