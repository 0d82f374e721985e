package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/result"
)

// Logging is a decorator that records execution timing.
//
// It logs the start of each cell, the elapsed duration on success, and the
// elapsed duration plus error on failure. Errors are always re-raised,
// never swallowed.
type Logging struct {
	wrapped Component
	log     *slog.Logger
}

// NewLogging wraps a component with timing logs. A nil logger uses
// slog.Default.
func NewLogging(wrapped Component, log *slog.Logger) *Logging {
	if log == nil {
		log = slog.Default()
	}
	return &Logging{wrapped: wrapped, log: log}
}

// ExecuteCell implements Component.
func (l *Logging) ExecuteCell(ctx context.Context, name string) (result.Result, error) {
	l.log.Info("executing cell", "cell", name)
	start := time.Now()

	res, err := l.wrapped.ExecuteCell(ctx, name)
	elapsed := time.Since(start)
	if err != nil {
		l.log.Error("cell failed", "cell", name, "elapsed", elapsed, "error", err)
		return nil, err
	}

	l.log.Info("cell completed", "cell", name, "elapsed", elapsed, "rows", res.RowCount())
	return res, nil
}

// ExecuteMany implements Component via this decorator's own ExecuteCell.
func (l *Logging) ExecuteMany(ctx context.Context, names []string) (map[string]result.Result, error) {
	results := make(map[string]result.Result, len(names))
	for _, name := range names {
		res, err := l.ExecuteCell(ctx, name)
		if err != nil {
			return nil, err
		}
		results[name] = res
	}
	return results, nil
}

// ConfigFields implements Component. Logging needs no config fields.
func (l *Logging) ConfigFields() []string {
	return l.wrapped.ConfigFields()
}

// CellConfig implements Component.
func (l *Logging) CellConfig(name string) *config.CellConfig {
	return l.wrapped.CellConfig(name)
}

// Refresh implements Component.
func (l *Logging) Refresh(doc *document.Document) error {
	return l.wrapped.Refresh(doc)
}

// Close implements Component.
func (l *Logging) Close() error {
	return l.wrapped.Close()
}
