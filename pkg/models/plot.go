package models

import (
	"fmt"
	"strings"
)

// TemperatureUnit selects how Fahrenheit columns are presented
type TemperatureUnit int

const (
	Fahrenheit TemperatureUnit = iota
	Celsius
)

func (t TemperatureUnit) String() string {
	if t == Celsius {
		return "celsius"
	}
	return "fahrenheit"
}

// ParseTemperatureUnit accepts "F", "fahrenheit", "C" or "celsius"; empty means Fahrenheit
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "f", "fahrenheit":
		return Fahrenheit, nil
	case "c", "celsius":
		return Celsius, nil
	}
	return Fahrenheit, fmt.Errorf("unknown temperature unit %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (t TemperatureUnit) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TemperatureUnit) UnmarshalText(b []byte) error {
	v, err := ParseTemperatureUnit(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PlotKind distinguishes unit-grouped time series from XY scatter plots
type PlotKind string

const (
	TimeSeries PlotKind = "timeseries"
	XY         PlotKind = "xy"
)

// Axis holds the x values shared by every trace of a plot
type Axis struct {
	Column string    `json:"column"`
	Name   string    `json:"name"`
	Values []float64 `json:"-"`
	Labels []string  `json:"-"`
	IsTime bool      `json:"isTime"`
}

// Trace is one plotted parameter
type Trace struct {
	Column    string    `json:"column"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	Converted bool      `json:"converted,omitempty"` // Fahrenheit shown in Celsius
	Values    []float64 `json:"-"`
}

// UnitGroup is one subplot: every selected parameter sharing a unit
type UnitGroup struct {
	Unit   string  `json:"unit"`
	Title  string  `json:"title"`
	Traces []Trace `json:"traces"`
}

// Columns returns the column keys of the group's traces, in order
func (g UnitGroup) Columns() []string {
	out := make([]string, len(g.Traces))
	for i, t := range g.Traces {
		out[i] = t.Column
	}
	return out
}

// PlotSpec is a complete visualization request handed to a renderer
type PlotSpec struct {
	Kind        PlotKind        `json:"kind"`
	Title       string          `json:"title"`
	Source      string          `json:"source"`
	X           Axis            `json:"x"`
	Groups      []UnitGroup     `json:"groups"`
	Temperature TemperatureUnit `json:"temperature"`
	LinkedX     bool            `json:"linkedX"`
}

// TraceCount returns the number of traces across all groups
func (s *PlotSpec) TraceCount() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Traces)
	}
	return n
}

// GroupTitle formats the subplot heading for a unit
func GroupTitle(unit string) string {
	if unit == "" {
		return "Unit: (none)"
	}
	return "Unit: " + unit
}
