package executor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/result"
)

// Output is a decorator that persists successful results to parquet files.
//
// A cell whose config declares an output directory gets its result written
// to {output}/{cellName}.parquet, creating intermediate directories as
// needed. A result that cannot be serialized logs a warning and the cell
// still counts as successful; any other write failure propagates.
type Output struct {
	wrapped Component
	log     *slog.Logger
}

// NewOutput wraps a component with result persistence. A nil logger uses
// slog.Default.
func NewOutput(wrapped Component, log *slog.Logger) *Output {
	if log == nil {
		log = slog.Default()
	}
	return &Output{wrapped: wrapped, log: log}
}

// ExecuteCell implements Component.
func (o *Output) ExecuteCell(ctx context.Context, name string) (result.Result, error) {
	res, err := o.wrapped.ExecuteCell(ctx, name)
	if err != nil {
		return nil, err
	}

	cfg := o.CellConfig(name)
	if cfg == nil || cfg.Output == "" {
		return res, nil
	}

	serializable, ok := res.(result.Serializable)
	if !ok {
		o.log.Warn("cannot write output: result is not serializable",
			"cell", name, "type", fmt.Sprintf("%T", res))
		return res, nil
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", cfg.Output, err)
	}

	path := filepath.Join(cfg.Output, name+".parquet")
	if err := serializable.WriteParquet(path); err != nil {
		return nil, fmt.Errorf("write output for cell %q: %w", name, err)
	}

	o.log.Info("wrote output", "cell", name, "path", path)
	return res, nil
}

// ExecuteMany implements Component via this decorator's own ExecuteCell.
func (o *Output) ExecuteMany(ctx context.Context, names []string) (map[string]result.Result, error) {
	results := make(map[string]result.Result, len(names))
	for _, name := range names {
		res, err := o.ExecuteCell(ctx, name)
		if err != nil {
			return nil, err
		}
		results[name] = res
	}
	return results, nil
}

// ConfigFields implements Component, declaring the output field.
func (o *Output) ConfigFields() []string {
	return append(o.wrapped.ConfigFields(), "output")
}

// CellConfig implements Component.
func (o *Output) CellConfig(name string) *config.CellConfig {
	return o.wrapped.CellConfig(name)
}

// Refresh implements Component.
func (o *Output) Refresh(doc *document.Document) error {
	return o.wrapped.Refresh(doc)
}

// Close implements Component.
func (o *Output) Close() error {
	return o.wrapped.Close()
}
