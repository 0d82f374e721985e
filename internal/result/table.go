package result

import (
	"database/sql"
	"fmt"
)

// Result is the minimal contract for a tabular query result.
type Result interface {
	RowCount() int
	ColumnNames() []string
}

// Serializable is the capability to persist a result to a columnar file.
// The persistence decorator probes for it with a type assertion.
type Serializable interface {
	WriteParquet(path string) error
}

// Table is an in-memory tabular result: ordered columns and row-major
// values. Values are whatever database/sql produced, with []byte normalized
// to string.
type Table struct {
	Columns []string
	Rows    [][]any
}

// RowCount implements Result.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnNames implements Result.
func (t *Table) ColumnNames() []string {
	return t.Columns
}

// FromRows drains a *sql.Rows into a Table. The rows are closed by the
// caller; FromRows only iterates.
func FromRows(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	t := &Table{Columns: cols}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return t, nil
}
