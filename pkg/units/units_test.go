package units

import (
	"math"
	"testing"
)

func TestExtractUnit(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Oil Temperature (°F)", "°F"},
		{"Engine RPM", ""},
		{"Oil Temp (deg F)", "deg F"},
		{"Bus Volts [V]", "V"},
		{"Fuel Flow ( gph )", "gph"},
		{"E1 CHT1 (deg F) ", "deg F"},
		{"Alt (ft) MSL", ""},
		{"Manifold (in) Pressure (inHg)", "inHg"},
		{"", ""},
		{"Empty ()", ""},
	}

	for _, tt := range tests {
		if got := ExtractUnit(tt.name); got != tt.want {
			t.Errorf("ExtractUnit(%q) = %q, expected %q", tt.name, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("Oil Temp (deg F)"); got != "Oil Temp" {
		t.Errorf("Expected 'Oil Temp', got '%s'", got)
	}
	if got := Label("Engine RPM"); got != "Engine RPM" {
		t.Errorf("Expected 'Engine RPM', got '%s'", got)
	}
}

func TestIsFahrenheit(t *testing.T) {
	for _, u := range []string{"deg F", "°F", "degF", "F", "Fahrenheit", "DEG F"} {
		if !IsFahrenheit(u) {
			t.Errorf("Expected %q to be Fahrenheit", u)
		}
	}
	for _, u := range []string{"deg C", "°C", "", "RPM", "ft"} {
		if IsFahrenheit(u) {
			t.Errorf("Expected %q not to be Fahrenheit", u)
		}
	}
}

func TestFahrenheitToCelsius(t *testing.T) {
	if got := FahrenheitToCelsius(32); got != 0 {
		t.Errorf("32°F should be 0°C, got %v", got)
	}
	if got := FahrenheitToCelsius(212); got != 100 {
		t.Errorf("212°F should be 100°C, got %v", got)
	}
}

func TestConvertFahrenheitCopies(t *testing.T) {
	in := []float64{32, math.NaN(), 212}
	out := ConvertFahrenheit(in)

	if in[0] != 32 || in[2] != 212 {
		t.Errorf("Input was modified: %v", in)
	}
	if out[0] != 0 || !math.IsNaN(out[1]) || out[2] != 100 {
		t.Errorf("Unexpected conversion %v", out)
	}
}

func TestCelsiusUnitAndName(t *testing.T) {
	units := map[string]string{
		"deg F": "deg C",
		"°F":    "°C",
		"degF":  "degC",
		"F":     "°C",
	}
	for in, want := range units {
		if got := CelsiusUnit(in); got != want {
			t.Errorf("CelsiusUnit(%q) = %q, expected %q", in, got, want)
		}
	}

	if got := CelsiusName("Oil Temp (deg F)"); got != "Oil Temp (deg C)" {
		t.Errorf("Expected 'Oil Temp (deg C)', got '%s'", got)
	}
	if got := CelsiusName("CHT [°F]"); got != "CHT [°C]" {
		t.Errorf("Expected 'CHT [°C]', got '%s'", got)
	}
	if got := CelsiusName("Oil Temp (deg C)"); got != "Oil Temp (deg C)" {
		t.Errorf("Celsius names must be left alone, got '%s'", got)
	}
}
