package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/result"
)

// DuckDB is the embedded analytical backend for .ddb/.duckdb files and
// in-memory databases.
type DuckDB struct {
	db *sql.DB
}

// NewDuckDB returns a not-yet-connected DuckDB backend.
func NewDuckDB() *DuckDB {
	return &DuckDB{}
}

// Connect opens the database file, creating it if it doesn't exist.
// The :memory: marker opens an in-memory database.
func (b *DuckDB) Connect(ctx context.Context, connString string) error {
	dsn := strings.TrimSpace(connString)
	if strings.EqualFold(dsn, config.MemoryMarker) {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return fmt.Errorf("open duckdb database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect to duckdb database: %w", err)
	}

	b.db = db
	return nil
}

// Execute runs a query and returns its rows as a Table.
func (b *DuckDB) Execute(ctx context.Context, query string) (result.Result, error) {
	if b.db == nil {
		return nil, ErrNotConnected
	}

	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	return result.FromRows(rows)
}

// Close closes the database. A no-op when never connected.
func (b *DuckDB) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
