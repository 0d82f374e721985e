package executor

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/result"
)

// tracingDecorator records the order decorators observe ExecuteCell.
type tracingDecorator struct {
	wrapped Component
	label   string
	trace   *[]string
}

func (d *tracingDecorator) ExecuteCell(ctx context.Context, name string) (result.Result, error) {
	*d.trace = append(*d.trace, d.label)
	return d.wrapped.ExecuteCell(ctx, name)
}

func (d *tracingDecorator) ExecuteMany(ctx context.Context, names []string) (map[string]result.Result, error) {
	results := make(map[string]result.Result, len(names))
	for _, name := range names {
		res, err := d.ExecuteCell(ctx, name)
		if err != nil {
			return nil, err
		}
		results[name] = res
	}
	return results, nil
}

func (d *tracingDecorator) ConfigFields() []string { return d.wrapped.ConfigFields() }

func (d *tracingDecorator) CellConfig(name string) *config.CellConfig {
	return d.wrapped.CellConfig(name)
}

func (d *tracingDecorator) Refresh(doc *document.Document) error { return d.wrapped.Refresh(doc) }

func (d *tracingDecorator) Close() error { return d.wrapped.Close() }

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestBuilder_LastRegisteredDecoratorIsOutermost(t *testing.T) {
	tc := newTestContext()
	var trace []string

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithDecorator(func(c Component) Component {
			return &tracingDecorator{wrapped: c, label: "inner", trace: &trace}
		}).
		WithDecorator(func(c Component) Component {
			return &tracingDecorator{wrapped: c, label: "outer", trace: &trace}
		}).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	require.NoError(t, err)

	assert.Equal(t, []string{"outer", "inner"}, trace)
}

func TestExecuteMany_RoutesThroughDecorators(t *testing.T) {
	tc := newTestContext()
	var trace []string

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithDecorator(func(c Component) Component {
			return &tracingDecorator{wrapped: c, label: "dec", trace: &trace}
		}).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteMany(context.Background(), []string{"q1", "q2"})
	require.NoError(t, err)

	// The decorator observed both cells, exactly as with one-at-a-time calls.
	assert.Equal(t, []string{"dec", "dec"}, trace)
}

func TestLogging_LogsTimingOnSuccess(t *testing.T) {
	tc := newTestContext()
	var buf bytes.Buffer

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithLogging(testLogger(&buf)).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	res, err := pipeline.ExecuteCell(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowCount())

	logged := buf.String()
	assert.Contains(t, logged, "executing cell")
	assert.Contains(t, logged, "cell completed")
	assert.Contains(t, logged, "elapsed")
}

func TestLogging_ReRaisesFailures(t *testing.T) {
	tc := newTestContext(func(f *fakeBackend) { f.failQuery = true })
	var buf bytes.Buffer

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithLogging(testLogger(&buf)).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query rejected")
	assert.Contains(t, buf.String(), "cell failed")
}

func TestOutput_WritesParquetWhenConfigured(t *testing.T) {
	tc := newTestContext()
	outDir := filepath.Join(t.TempDir(), "nested", "out")
	doc := document.New("queries.sql", `-- input: shared.fake
-- output: `+outDir+`

-- name: q1
SELECT 1;
`)

	pipeline, err := tc.builder(doc).WithOutput(testLogger(&bytes.Buffer{})).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	require.NoError(t, err)

	// Intermediate directories are created as needed.
	_, statErr := os.Stat(filepath.Join(outDir, "q1.parquet"))
	assert.NoError(t, statErr)
}

func TestOutput_NoOutputConfigured(t *testing.T) {
	tc := newTestContext()

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithOutput(testLogger(&bytes.Buffer{})).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	assert.NoError(t, err)
}

func TestOutput_AbsorbsNonSerializableResult(t *testing.T) {
	tc := newTestContext(func(f *fakeBackend) { f.opaque = true })
	var buf bytes.Buffer
	outDir := t.TempDir()
	doc := document.New("queries.sql", `-- input: shared.fake
-- output: `+outDir+`

-- name: q1
SELECT 1;
`)

	pipeline, err := tc.builder(doc).WithOutput(testLogger(&buf)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	// The cell still succeeds; the missing capability is only warned about.
	res, err := pipeline.ExecuteCell(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowCount())
	assert.Contains(t, buf.String(), "not serializable")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOutput_WriteFailurePropagates(t *testing.T) {
	tc := newTestContext()

	// The output path collides with an existing file, so MkdirAll fails.
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	doc := document.New("queries.sql", `-- input: shared.fake
-- output: `+blocked+`

-- name: q1
SELECT 1;
`)

	pipeline, err := tc.builder(doc).WithOutput(testLogger(&bytes.Buffer{})).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	assert.Error(t, err)
}

func TestOutput_DeclaresConfigField(t *testing.T) {
	tc := newTestContext()

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithLogging(testLogger(&bytes.Buffer{})).
		WithOutput(testLogger(&bytes.Buffer{})).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	assert.Equal(t, []string{"output"}, pipeline.ConfigFields())
}

func TestDecorators_DelegateCellConfigAndRefresh(t *testing.T) {
	tc := newTestContext()

	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).
		WithLogging(testLogger(&bytes.Buffer{})).
		WithOutput(testLogger(&bytes.Buffer{})).
		Build()
	require.NoError(t, err)
	defer pipeline.Close()

	require.NotNil(t, pipeline.CellConfig("q1"))

	refreshed := document.New("queries.sql", `-- input: shared.fake

-- name: q9
SELECT 9;
`)
	require.NoError(t, pipeline.Refresh(refreshed))
	assert.Nil(t, pipeline.CellConfig("q1"))
	assert.NotNil(t, pipeline.CellConfig("q9"))
}
