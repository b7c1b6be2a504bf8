package units

import (
	"strings"
)

// ExtractUnit returns the unit suffix of a display name, e.g.
// "Oil Temperature (°F)" -> "°F" or "Bus Volts [V]" -> "V".
// Names without a bracketed suffix are unitless and return "".
func ExtractUnit(displayName string) string {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return ""
	}

	var open byte
	switch name[len(name)-1] {
	case ')':
		open = '('
	case ']':
		open = '['
	default:
		return ""
	}

	start := strings.LastIndexByte(name, open)
	if start < 0 {
		return ""
	}
	return strings.TrimSpace(name[start+1 : len(name)-1])
}

// Label strips the unit suffix from a display name
func Label(displayName string) string {
	name := strings.TrimSpace(displayName)
	unit := ExtractUnit(name)
	if unit == "" && !strings.HasSuffix(name, "()") && !strings.HasSuffix(name, "[]") {
		return name
	}
	start := strings.LastIndexAny(name, "([")
	return strings.TrimSpace(name[:start])
}

// IsFahrenheit reports whether a unit string names degrees Fahrenheit
func IsFahrenheit(unit string) bool {
	u := strings.ToLower(strings.Join(strings.Fields(unit), ""))
	switch u {
	case "degf", "°f", "ºf", "f", "fahrenheit", "degfahrenheit":
		return true
	}
	return false
}

// FahrenheitToCelsius converts a temperature value
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// ConvertFahrenheit returns a converted copy of values; NaN stays NaN
func ConvertFahrenheit(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = FahrenheitToCelsius(v)
	}
	return out
}

// CelsiusUnit rewrites a Fahrenheit unit in the same notation
func CelsiusUnit(unit string) string {
	switch {
	case strings.Contains(unit, "deg F"):
		return strings.Replace(unit, "deg F", "deg C", 1)
	case strings.Contains(unit, "°F"):
		return strings.Replace(unit, "°F", "°C", 1)
	case strings.Contains(unit, "degF"):
		return strings.Replace(unit, "degF", "degC", 1)
	}
	return "°C"
}

// CelsiusName rewrites the unit suffix of a Fahrenheit display name
func CelsiusName(displayName string) string {
	unit := ExtractUnit(displayName)
	if !IsFahrenheit(unit) {
		return displayName
	}
	name := strings.TrimSpace(displayName)
	closing := name[len(name)-1:]
	opening := "("
	if closing == "]" {
		opening = "["
	}
	return Label(name) + " " + opening + CelsiusUnit(unit) + closing
}
