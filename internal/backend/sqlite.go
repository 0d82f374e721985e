package backend

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/qsql/internal/result"
)

// SQLite is the embedded backend for local .db/.sqlite files.
type SQLite struct {
	db *sql.DB
}

// NewSQLite returns a not-yet-connected SQLite backend.
func NewSQLite() *SQLite {
	return &SQLite{}
}

// Connect opens the database file, creating it if it doesn't exist.
//
// The connection is configured with WAL mode and a busy timeout, and capped
// to a single open connection since SQLite allows one writer at a time.
func (b *SQLite) Connect(ctx context.Context, connString string) error {
	db, err := sql.Open("sqlite3", connString)
	if err != nil {
		return fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect to sqlite database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	b.db = db
	return nil
}

// Execute runs a query and returns its rows as a Table.
func (b *SQLite) Execute(ctx context.Context, query string) (result.Result, error) {
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
func (b *SQLite) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
