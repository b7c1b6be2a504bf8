package models

import "fmt"

// IOError is returned when a log file cannot be opened or read
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports a log file that does not follow the three-line header layout.
// Line is 1-based; zero when the problem is not tied to a line.
type FormatError struct {
	Path string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// SelectionError reports an unusable parameter or axis selection
type SelectionError struct {
	Msg string
}

func (e *SelectionError) Error() string {
	return "invalid selection: " + e.Msg
}
