package models

import "strings"

// ParameterCategory groups abbreviated parameter keys under a display heading
type ParameterCategory struct {
	Name    string
	Columns []string
}

// Categories used to filter the parameter list. Keys follow the Garmin
// G1000 abbreviated header row.
var Categories = []ParameterCategory{
	{
		Name:    "GPS",
		Columns: []string{"Latitude", "Longitude", "AltGPS", "GndSpd", "TRK"},
	},
	{
		Name:    "Altitude",
		Columns: []string{"AltP", "AltInd", "VSpd", "AGL"},
	},
	{
		Name:    "Attitude",
		Columns: []string{"Pitch", "Roll", "HDG"},
	},
	{
		Name:    "Engine",
		Columns: []string{"E1 RPM", "E1 MAP", "E1 %Pwr", "E1 FFlow", "E1 OilT", "E1 OilP"},
	},
	{
		Name: "Temperature",
		Columns: []string{
			"E1 CHT1", "E1 CHT2", "E1 CHT3", "E1 CHT4", "E1 CHT5", "E1 CHT6",
			"E1 EGT1", "E1 EGT2", "E1 EGT3", "E1 EGT4", "E1 EGT5", "E1 EGT6",
		},
	},
	{
		Name:    "Electrical",
		Columns: []string{"Volts1", "Volts2", "Amps1"},
	},
}

// FindCategory looks a category up by name, ignoring case
func FindCategory(name string) (ParameterCategory, bool) {
	for _, c := range Categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ParameterCategory{}, false
}

// FilterByCategory returns the category's columns present in the dataset, in
// category order
func FilterByCategory(ds *LogDataset, name string) ([]string, error) {
	cat, ok := FindCategory(name)
	if !ok {
		return nil, &SelectionError{Msg: "unknown category " + name}
	}
	var out []string
	for _, c := range cat.Columns {
		if ds.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// FilterBySearch returns the columns whose key or display name contains term
func FilterBySearch(ds *LogDataset, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []string
	for _, c := range ds.Columns() {
		if term == "" ||
			strings.Contains(strings.ToLower(c), term) ||
			strings.Contains(strings.ToLower(ds.DisplayName(c)), term) {
			out = append(out, c)
		}
	}
	return out
}
