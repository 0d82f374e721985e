package config

import (
	"fmt"
	"strings"
)

// CellError is one validation error, tied to the cell and field it occurred
// in. CellStartLine is the 0-based marker line; rendering shows it 1-based.
type CellError struct {
	CellName      string
	CellStartLine int
	FieldPath     string
	Message       string
	InvalidValue  any
}

// Report aggregates validation errors across an entire document.
//
// A validation pass collects errors from every cell before the Report is
// raised, so one bad cell never hides problems in its siblings. Report
// implements error; the rendered form groups errors by cell, each cell
// headed by its 1-based source line.
type Report struct {
	FilePath string
	Errors   []CellError
}

// NewReport returns an empty report for the given file.
func NewReport(filePath string) *Report {
	return &Report{FilePath: filePath}
}

// Add appends an error to the report.
func (r *Report) Add(err CellError) {
	r.Errors = append(r.Errors, err)
}

// HasErrors reports whether any errors were collected.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error implements the error interface.
func (r *Report) Error() string {
	if len(r.Errors) == 0 {
		return fmt.Sprintf("configuration error in %s", r.FilePath)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "configuration errors in %s:\n\n", r.FilePath)

	// Group by cell, preserving first-seen order.
	var order []string
	byCell := make(map[string][]CellError)
	for _, e := range r.Errors {
		if _, seen := byCell[e.CellName]; !seen {
			order = append(order, e.CellName)
		}
		byCell[e.CellName] = append(byCell[e.CellName], e)
	}

	for _, name := range order {
		cellErrs := byCell[name]
		fmt.Fprintf(&b, "  cell %q (line %d):\n", name, cellErrs[0].CellStartLine+1)
		for _, e := range cellErrs {
			if e.InvalidValue != nil {
				fmt.Fprintf(&b, "    - %s: %s [%v]\n", e.FieldPath, e.Message, e.InvalidValue)
			} else {
				fmt.Fprintf(&b, "    - %s: %s\n", e.FieldPath, e.Message)
			}
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
