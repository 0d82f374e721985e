package document

import "github.com/roach88/qsql/internal/annot"

// MergedConfig builds the effective configuration for one cell.
//
// For each parser, in order: parse the header, then parse the cell text,
// each updating the same running map. Cell values are applied after header
// values, so cell-local annotations override document defaults. Later
// parsers likewise override earlier parsers on key collision, which makes
// parser order caller-significant; the built-in order is documented on
// annot.Builtin.
//
// The returned map is fresh per call and never shared between cells.
func (d *Document) MergedConfig(cell Cell, parsers []annot.Parser) map[string]any {
	header := d.Header()

	merged := make(map[string]any)
	for _, p := range parsers {
		for k, v := range p.Parse(header) {
			merged[k] = v
		}
		for k, v := range p.Parse(cell.Text) {
			merged[k] = v
		}
	}
	return merged
}
