package document

import (
	"regexp"
	"strings"
)

// markerPattern recognizes the cell marker line: -- name: <cell_name>
var markerPattern = regexp.MustCompile(`--\s*name:\s*(\S+)`)

// Cell is a named query block inside a Document.
//
// StartLine is the 0-based line of the marker comment. EndLine is exclusive:
// the block spans [StartLine, EndLine), ending where the next marker begins
// or at the end of the document. Text includes the marker line itself, so
// annotation parsers see the cell's own comments.
type Cell struct {
	Name      string
	StartLine int
	EndLine   int
	Text      string
}

// Cells extracts all cell blocks, ordered by start line.
//
// The scan runs in reverse: each marker closes the block opened by the
// previously seen (later) marker, so every block ends exactly where the next
// one begins. Blocks are contiguous and together with the header cover the
// whole document. A document with no markers has no cells.
func (d *Document) Cells() []Cell {
	end := len(d.lines)

	var cells []Cell
	for i := len(d.lines) - 1; i >= 0; i-- {
		m := markerPattern.FindStringSubmatch(d.lines[i])
		if m == nil {
			continue
		}
		cells = append(cells, Cell{
			Name:      m[1],
			StartLine: i,
			EndLine:   end,
			Text:      strings.Join(d.lines[i:end], "\n"),
		})
		end = i
	}

	// Reverse into start-line order.
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	return cells
}

// Header returns all text preceding the first cell marker.
// With no cells, the header is the entire document.
func (d *Document) Header() string {
	cells := d.Cells()
	if len(cells) == 0 {
		return d.content
	}
	return strings.Join(d.lines[:cells[0].StartLine], "\n")
}
