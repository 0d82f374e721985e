package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/backend"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/result"
)

// fakeRecorder observes backend lifecycle across factory instances.
type fakeRecorder struct {
	mu       sync.Mutex
	connects []string
	queries  []string
	closes   int
}

func (r *fakeRecorder) connectCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.connects)
}

// fakeBackend is an in-memory backend returning canned single-row tables.
type fakeBackend struct {
	rec       *fakeRecorder
	connected bool
	failQuery bool
	opaque    bool
}

// opaqueResult implements result.Result but not result.Serializable.
type opaqueResult struct{ rows int }

func (o opaqueResult) RowCount() int { return o.rows }

func (o opaqueResult) ColumnNames() []string { return []string{"v"} }

func (f *fakeBackend) Connect(_ context.Context, connString string) error {
	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	f.rec.connects = append(f.rec.connects, connString)
	f.connected = true
	return nil
}

func (f *fakeBackend) Execute(_ context.Context, query string) (result.Result, error) {
	if !f.connected {
		return nil, backend.ErrNotConnected
	}
	f.rec.mu.Lock()
	f.rec.queries = append(f.rec.queries, query)
	f.rec.mu.Unlock()

	if f.failQuery {
		return nil, errors.New("query rejected")
	}
	if f.opaque {
		return opaqueResult{rows: 1}, nil
	}
	return &result.Table{Columns: []string{"v"}, Rows: [][]any{{int64(1)}}}, nil
}

func (f *fakeBackend) Close() error {
	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	f.rec.closes++
	f.connected = false
	return nil
}

// testContext bundles the composition pieces the tests share.
type testContext struct {
	rec      *fakeRecorder
	parsers  []annot.Parser
	resolver *config.Resolver
	backends *backend.Registry
}

func newTestContext(opts ...func(*fakeBackend)) *testContext {
	rec := &fakeRecorder{}

	backends := backend.NewRegistry()
	backends.Register("fake", func() backend.Backend {
		f := &fakeBackend{rec: rec}
		for _, opt := range opts {
			opt(f)
		}
		return f
	})

	resolver := config.NewResolver()
	resolver.Register("fake", func(s string) bool {
		return strings.HasSuffix(s, ".fake")
	}, ".fake")

	return &testContext{
		rec:      rec,
		parsers:  annot.Builtin().Parsers(),
		resolver: resolver,
		backends: backends,
	}
}

func (tc *testContext) builder(doc *document.Document) *Builder {
	return NewBuilder(doc, tc.parsers, tc.resolver, tc.backends)
}

const twoCellDoc = `-- input: shared.fake

-- name: q1
SELECT 1;

-- name: q2
SELECT 2;
`

func TestBuild_AggregatesAllValidationErrors(t *testing.T) {
	tc := newTestContext()
	doc := document.New("queries.sql", `-- name: q1
-- input: bad.csv
SELECT 1;

-- name: q2
-- input: also.csv
SELECT 2;
`)

	_, err := tc.builder(doc).Build()
	require.Error(t, err)

	var report *config.Report
	require.ErrorAs(t, err, &report)
	require.Len(t, report.Errors, 2)

	assert.Equal(t, "q1", report.Errors[0].CellName)
	assert.Equal(t, 0, report.Errors[0].CellStartLine)
	assert.Equal(t, "q2", report.Errors[1].CellName)
	assert.Equal(t, 4, report.Errors[1].CellStartLine)

	rendered := report.Error()
	assert.Contains(t, rendered, "(line 1)")
	assert.Contains(t, rendered, "(line 5)")
}

func TestBuild_PermissiveKeepsInvalidCellsWithNilConfig(t *testing.T) {
	tc := newTestContext()
	doc := document.New("queries.sql", `-- name: good
-- input: ok.fake
SELECT 1;

-- name: bad
-- input: nope.csv
SELECT 2;
`)

	pipeline, err := tc.builder(doc).Permissive().Build()
	require.NoError(t, err)
	defer pipeline.Close()

	require.NotNil(t, pipeline.CellConfig("good"))
	assert.Nil(t, pipeline.CellConfig("bad"))

	_, err = pipeline.ExecuteCell(context.Background(), "good")
	require.NoError(t, err)

	_, err = pipeline.ExecuteCell(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestExecuteCell_NotFound(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrCellNotFound)
}

func TestExecuteCell_MissingInput(t *testing.T) {
	tc := newTestContext()
	doc := document.New("queries.sql", "-- name: noinput\nSELECT 1;\n")

	pipeline, err := tc.builder(doc).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteCell(context.Background(), "noinput")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestExecuteCell_RunsCellText(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	res, err := pipeline.ExecuteCell(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.RowCount())

	require.Len(t, tc.rec.queries, 1)
	assert.Contains(t, tc.rec.queries[0], "SELECT 1;")
}

func TestConnectionReuse_SameKeyConnectsOnce(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	ctx := context.Background()
	_, err = pipeline.ExecuteCell(ctx, "q1")
	require.NoError(t, err)
	_, err = pipeline.ExecuteCell(ctx, "q2")
	require.NoError(t, err)

	assert.Equal(t, 1, tc.rec.connectCount())
}

func TestConnectionReuse_DistinctKeysConnectSeparately(t *testing.T) {
	tc := newTestContext()
	doc := document.New("queries.sql", `-- name: a
-- input: one.fake
SELECT 1;

-- name: b
-- input: two.fake
SELECT 2;
`)

	pipeline, err := tc.builder(doc).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	ctx := context.Background()
	_, err = pipeline.ExecuteCell(ctx, "a")
	require.NoError(t, err)
	_, err = pipeline.ExecuteCell(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, 2, tc.rec.connectCount())
}

func TestRefresh_PreservesConnections(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	ctx := context.Background()
	_, err = pipeline.ExecuteCell(ctx, "q1")
	require.NoError(t, err)
	require.Equal(t, 1, tc.rec.connectCount())

	// Same inputs, changed query text.
	refreshed := document.New("queries.sql", strings.Replace(twoCellDoc, "SELECT 1;", "SELECT 100;", 1))
	require.NoError(t, pipeline.Refresh(refreshed))

	_, err = pipeline.ExecuteCell(ctx, "q1")
	require.NoError(t, err)
	_, err = pipeline.ExecuteCell(ctx, "q2")
	require.NoError(t, err)

	assert.Equal(t, 1, tc.rec.connectCount(), "refresh must not reopen connections")
	assert.Contains(t, tc.rec.queries[1], "SELECT 100;")
}

func TestRefresh_ReplacesCellIndex(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	refreshed := document.New("queries.sql", `-- input: shared.fake

-- name: q3
SELECT 3;
`)
	require.NoError(t, pipeline.Refresh(refreshed))

	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	assert.ErrorIs(t, err, ErrCellNotFound)

	_, err = pipeline.ExecuteCell(context.Background(), "q3")
	assert.NoError(t, err)
}

func TestRefresh_StrictValidationFailureKeepsOldIndex(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	bad := document.New("queries.sql", "-- name: q1\n-- input: nope.csv\nSELECT 1;\n")
	err = pipeline.Refresh(bad)
	require.Error(t, err)

	var report *config.Report
	assert.ErrorAs(t, err, &report)

	// The previous snapshot still executes.
	_, err = pipeline.ExecuteCell(context.Background(), "q1")
	assert.NoError(t, err)
}

func TestClose_ClosesAndClearsCache(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)

	ctx := context.Background()
	_, err = pipeline.ExecuteCell(ctx, "q1")
	require.NoError(t, err)

	require.NoError(t, pipeline.Close())
	assert.Equal(t, 1, tc.rec.closes)

	// Idempotent with an empty cache.
	require.NoError(t, pipeline.Close())
	assert.Equal(t, 1, tc.rec.closes)

	// Executing again after close opens a fresh connection.
	_, err = pipeline.ExecuteCell(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, tc.rec.connectCount())
}

func TestExecuteMany_ResultsByName(t *testing.T) {
	tc := newTestContext()
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	results, err := pipeline.ExecuteMany(context.Background(), []string{"q1", "q2"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results["q1"].RowCount())
	assert.Equal(t, 1, results["q2"].RowCount())
}

func TestExecuteMany_PropagatesFailure(t *testing.T) {
	tc := newTestContext(func(f *fakeBackend) { f.failQuery = true })
	pipeline, err := tc.builder(document.New("queries.sql", twoCellDoc)).Build()
	require.NoError(t, err)
	defer pipeline.Close()

	_, err = pipeline.ExecuteMany(context.Background(), []string{"q1", "q2"})
	assert.Error(t, err)
}
