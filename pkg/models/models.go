package models

import (
	"math"
	"strings"
)

// ValueKind tells how a cell in the log was read
type ValueKind int

const (
	Missing ValueKind = iota
	Number
	Text
)

// Value is a single cell of a data row
type Value struct {
	Kind ValueKind
	Num  float64
	Raw  string
}

// Float returns the numeric value, or NaN when the cell is not a number
func (v Value) Float() float64 {
	if v.Kind != Number {
		return math.NaN()
	}
	return v.Num
}

// Row maps a column key to its value
type Row map[string]Value

// LogDataset is the parsed, read-only content of one engine log file
type LogDataset struct {
	source     string
	metadata   string
	columns    []string
	rows       []Row
	abbrToFull map[string]string
	fullToAbbr map[string]string
	numeric    map[string]bool
	timeCols   map[string]bool
}

// NewLogDataset assembles a dataset. The reader is the only intended caller;
// the slices and maps are owned by the dataset afterwards.
func NewLogDataset(source, metadata string, columns []string, rows []Row,
	abbrToFull map[string]string, numeric, timeCols []string) *LogDataset {
	ds := &LogDataset{
		source:     source,
		metadata:   metadata,
		columns:    columns,
		rows:       rows,
		abbrToFull: abbrToFull,
		fullToAbbr: make(map[string]string, len(abbrToFull)),
		numeric:    make(map[string]bool, len(numeric)),
		timeCols:   make(map[string]bool, len(timeCols)),
	}
	for abbr, full := range abbrToFull {
		ds.fullToAbbr[full] = abbr
	}
	for _, c := range numeric {
		ds.numeric[c] = true
	}
	for _, c := range timeCols {
		ds.timeCols[c] = true
	}
	return ds
}

// Source returns the path or name the dataset was read from
func (ds *LogDataset) Source() string { return ds.source }

// Metadata returns the raw airframe line at the top of the file
func (ds *LogDataset) Metadata() string { return ds.metadata }

// Len returns the number of data rows
func (ds *LogDataset) Len() int { return len(ds.rows) }

// Columns returns the usable column keys in file order
func (ds *LogDataset) Columns() []string {
	return append([]string(nil), ds.columns...)
}

// HasColumn reports whether key is a usable column
func (ds *LogDataset) HasColumn(key string) bool {
	_, ok := ds.abbrToFull[key]
	return ok
}

// Row returns a copy of row i
func (ds *LogDataset) Row(i int) Row {
	out := make(Row, len(ds.rows[i]))
	for k, v := range ds.rows[i] {
		out[k] = v
	}
	return out
}

// Rows returns copies of all rows
func (ds *LogDataset) Rows() []Row {
	out := make([]Row, len(ds.rows))
	for i := range ds.rows {
		out[i] = ds.Row(i)
	}
	return out
}

// AbbrToFull returns a copy of the abbreviated -> full name mapping
func (ds *LogDataset) AbbrToFull() map[string]string {
	return copyMap(ds.abbrToFull)
}

// FullToAbbr returns a copy of the full -> abbreviated name mapping
func (ds *LogDataset) FullToAbbr() map[string]string {
	return copyMap(ds.fullToAbbr)
}

// DisplayName returns the full name of a column, or the key itself when unmapped
func (ds *LogDataset) DisplayName(key string) string {
	if full, ok := ds.abbrToFull[key]; ok {
		return full
	}
	return key
}

// ColumnForName resolves either a column key or a full name to a column key
func (ds *LogDataset) ColumnForName(name string) (string, bool) {
	if _, ok := ds.abbrToFull[name]; ok {
		return name, true
	}
	abbr, ok := ds.fullToAbbr[name]
	return abbr, ok
}

// IsNumeric reports whether every present value of the column is a number
func (ds *LogDataset) IsNumeric(key string) bool { return ds.numeric[key] }

// IsTime reports whether the column is offered as a time axis
func (ds *LogDataset) IsTime(key string) bool { return ds.timeCols[key] }

// NumericColumns returns the numeric columns in file order
func (ds *LogDataset) NumericColumns() []string {
	return ds.filter(ds.numeric)
}

// TimeColumns returns the time-like columns in file order
func (ds *LogDataset) TimeColumns() []string {
	return ds.filter(ds.timeCols)
}

// DefaultXColumn picks "Lcl Time" when present, then the first time column,
// then the first numeric column
func (ds *LogDataset) DefaultXColumn() string {
	for _, c := range ds.columns {
		if strings.EqualFold(c, "Lcl Time") {
			return c
		}
	}
	if tc := ds.TimeColumns(); len(tc) > 0 {
		return tc[0]
	}
	if nc := ds.NumericColumns(); len(nc) > 0 {
		return nc[0]
	}
	return ""
}

// Floats returns a fresh copy of a column as floats, NaN where no number is present
func (ds *LogDataset) Floats(key string) []float64 {
	out := make([]float64, len(ds.rows))
	for i, row := range ds.rows {
		out[i] = row[key].Float()
	}
	return out
}

// Strings returns a fresh copy of a column's raw text
func (ds *LogDataset) Strings(key string) []string {
	out := make([]string, len(ds.rows))
	for i, row := range ds.rows {
		out[i] = row[key].Raw
	}
	return out
}

func (ds *LogDataset) filter(set map[string]bool) []string {
	var out []string
	for _, c := range ds.columns {
		if set[c] {
			out = append(out, c)
		}
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
