package reader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tosih/enginelog/pkg/models"
)

// dataOffset is the number of lines before the first data row
const dataOffset = 3

// timeHints mark a column name as an x-axis time candidate
var timeHints = []string{"time", "date", "elapsed"}

type column struct {
	key string
	pos int
}

// Parse reads an engine log file: one metadata line, one full-name header,
// one abbreviated-name header, then data rows
func Parse(filename string) (*models.LogDataset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &models.IOError{Path: filename, Err: err}
	}
	defer f.Close()

	return ParseReader(f, filename)
}

// ParseReader parses log content from r; source names it in errors
func ParseReader(r io.Reader, source string) (*models.LogDataset, error) {
	br := bufio.NewReader(r)

	metadata, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, &models.IOError{Path: source, Err: err}
	}
	if metadata == "" {
		return nil, &models.FormatError{Path: source, Line: 1, Msg: "file is empty"}
	}
	metadata = strings.TrimPrefix(strings.TrimRight(metadata, "\r\n"), "\ufeff")

	fullNames, err := readHeader(br, source, 2, "full-name")
	if err != nil {
		return nil, err
	}
	abbrNames, err := readHeader(br, source, 3, "abbreviated-name")
	if err != nil {
		return nil, err
	}
	// a blank full-name line leaves every column on its abbreviation
	if abbrNames == nil {
		abbrNames = []string{""}
	}
	if fullNames == nil {
		fullNames = make([]string, len(abbrNames))
	}
	if len(fullNames) != len(abbrNames) {
		return nil, &models.FormatError{
			Path: source,
			Line: 3,
			Msg: fmt.Sprintf("header has %d full names but %d abbreviated names",
				len(fullNames), len(abbrNames)),
		}
	}

	columns, abbrToFull := mapColumns(fullNames, abbrNames)

	cr := newCSVReader(br)

	var rows []models.Row
	present := make(map[string]bool)
	nonNumeric := make(map[string]bool)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapReadError(err, source, dataOffset)
		}

		row := make(models.Row, len(columns))
		for _, c := range columns {
			var raw string
			if c.pos < len(record) {
				raw = strings.TrimSpace(record[c.pos])
			}
			v := classify(raw)
			switch v.Kind {
			case models.Number:
				present[c.key] = true
			case models.Text:
				present[c.key] = true
				nonNumeric[c.key] = true
			}
			row[c.key] = v
		}
		rows = append(rows, row)
	}

	keys := make([]string, len(columns))
	var numeric, timeCols []string
	for i, c := range columns {
		keys[i] = c.key
		if present[c.key] && !nonNumeric[c.key] {
			numeric = append(numeric, c.key)
		}
		if looksLikeTime(c.key) || looksLikeTime(abbrToFull[c.key]) {
			timeCols = append(timeCols, c.key)
		}
	}

	return models.NewLogDataset(source, metadata, keys, rows, abbrToFull, numeric, timeCols), nil
}

// readHeader returns nil for a blank line. Headers are read line by line
// since csv.Reader skips blank lines, which would shift the rows.
func readHeader(br *bufio.Reader, source string, line int, what string) ([]string, error) {
	text, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, &models.IOError{Path: source, Err: err}
	}
	if text == "" {
		return nil, &models.FormatError{
			Path: source,
			Line: line,
			Msg:  fmt.Sprintf("missing %s header line (need at least 3 lines)", what),
		}
	}

	record, err := newCSVReader(strings.NewReader(text)).Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, wrapReadError(err, source, line-1)
	}
	return record, nil
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	return cr
}

// mapColumns keeps positions with a non-empty abbreviation. An empty full name
// falls back to the abbreviation; a full name already in use is prefixed with
// the abbreviation so the two mappings stay inverse.
func mapColumns(fullNames, abbrNames []string) ([]column, map[string]string) {
	abbrToFull := make(map[string]string)
	taken := make(map[string]bool)
	var columns []column

	for i, raw := range abbrNames {
		abbr := strings.TrimSpace(raw)
		if abbr == "" {
			continue
		}
		if _, dup := abbrToFull[abbr]; dup {
			continue
		}
		full := strings.TrimSpace(fullNames[i])
		if full == "" {
			full = abbr
		}
		if taken[full] {
			full = abbr + ": " + full
		}
		abbrToFull[abbr] = full
		taken[full] = true
		columns = append(columns, column{key: abbr, pos: i})
	}

	return columns, abbrToFull
}

func classify(raw string) models.Value {
	if raw == "" {
		return models.Value{Kind: models.Missing}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return models.Value{Kind: models.Number, Num: f, Raw: raw}
	}
	return models.Value{Kind: models.Text, Raw: raw}
}

func looksLikeTime(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range timeHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// offset is the number of file lines before the reader's first line
func wrapReadError(err error, source string, offset int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &models.FormatError{Path: source, Line: pe.Line + offset, Msg: pe.Err.Error()}
	}
	return &models.IOError{Path: source, Err: err}
}
