package executor

import (
	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
)

// ValidatedCell pairs a cell block with its validated configuration.
// Config is nil when validation failed and the caller asked for permissive
// handling.
type ValidatedCell struct {
	document.Cell
	Config *config.CellConfig
}

// validateCells validates every cell in the document, collecting all errors
// before deciding the outcome.
//
// In strict mode any collected error fails the whole pass with the full
// aggregated Report. In permissive mode the pass succeeds and cells that
// failed validation carry a nil Config.
func validateCells(
	doc *document.Document,
	parsers []annot.Parser,
	resolver *config.Resolver,
	strict bool,
) ([]ValidatedCell, error) {
	report := config.NewReport(doc.Path())
	var validated []ValidatedCell

	for _, cell := range doc.Cells() {
		merged := doc.MergedConfig(cell, parsers)
		cfg, fieldErrs := config.ValidateCell(merged, resolver)

		for _, fe := range fieldErrs {
			report.Add(config.CellError{
				CellName:      cell.Name,
				CellStartLine: cell.StartLine,
				FieldPath:     fe.FieldPath,
				Message:       fe.Message,
				InvalidValue:  fe.InvalidValue,
			})
		}

		validated = append(validated, ValidatedCell{Cell: cell, Config: cfg})
	}

	if strict && report.HasErrors() {
		return nil, report
	}

	return validated, nil
}

// ValidateDocument runs a full validation pass and returns the aggregated
// report, empty when the document is clean. Used by callers that want the
// diagnostics without building a pipeline.
func ValidateDocument(
	doc *document.Document,
	parsers []annot.Parser,
	resolver *config.Resolver,
) *config.Report {
	report := config.NewReport(doc.Path())

	for _, cell := range doc.Cells() {
		merged := doc.MergedConfig(cell, parsers)
		_, fieldErrs := config.ValidateCell(merged, resolver)
		for _, fe := range fieldErrs {
			report.Add(config.CellError{
				CellName:      cell.Name,
				CellStartLine: cell.StartLine,
				FieldPath:     fe.FieldPath,
				Message:       fe.Message,
				InvalidValue:  fe.InvalidValue,
			})
		}
	}

	return report
}
