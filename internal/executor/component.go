package executor

import (
	"context"
	"errors"

	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/result"
)

// ErrCellNotFound is returned when a named cell does not exist in the
// current document snapshot.
var ErrCellNotFound = errors.New("cell not found")

// ErrNoInput is returned when a cell has no usable input configuration:
// the input field is absent, or the cell failed validation in permissive
// mode.
var ErrNoInput = errors.New("cell has no input configuration")

// Component is the uniform contract implemented by every link in the
// execution chain, base and decorators alike.
type Component interface {
	// ExecuteCell runs one cell by name.
	ExecuteCell(ctx context.Context, name string) (result.Result, error)

	// ExecuteMany runs several cells, returning results by name. Each link
	// implements it via its own ExecuteCell so decorator behavior applies
	// uniformly. The first failure aborts the batch.
	ExecuteMany(ctx context.Context, names []string) (map[string]result.Result, error)

	// ConfigFields returns the config field names this link (and the links
	// it wraps) needs.
	ConfigFields() []string

	// CellConfig returns a cell's validated configuration, or nil when the
	// cell is unknown or failed validation.
	CellConfig(name string) *config.CellConfig

	// Refresh re-parses and re-validates from a new document snapshot,
	// replacing the cell index. Open backend connections are preserved.
	Refresh(doc *document.Document) error

	// Close closes every cached backend connection. Idempotent.
	Close() error
}
