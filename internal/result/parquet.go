package result

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
)

// WriteParquet implements Serializable.
//
// The schema is derived per column from the first non-nil value; columns
// with no values default to strings. Every column is optional, so nil cells
// become nulls. The file is written to a temp path first and renamed into
// place, so readers never observe a half-written file.
func (t *Table) WriteParquet(path string) error {
	schema := t.parquetSchema()

	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[map[string]any](f, schema)

	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i >= len(row) || row[i] == nil {
				continue
			}
			record[col] = normalizeValue(row[i])
		}
		records = append(records, record)
	}

	if _, err := w.Write(records); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close parquet file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename parquet file: %w", err)
	}
	return nil
}

// parquetSchema builds a schema with one optional field per column.
func (t *Table) parquetSchema() *parquet.Schema {
	group := parquet.Group{}
	for i, col := range t.Columns {
		group[col] = parquet.Optional(nodeForColumn(t.Rows, i))
	}
	return parquet.NewSchema("result", group)
}

// nodeForColumn picks a parquet node from the first non-nil value in the
// column. Unknown Go types are stored as their string form.
func nodeForColumn(rows [][]any, col int) parquet.Node {
	for _, row := range rows {
		if col >= len(row) || row[col] == nil {
			continue
		}
		switch row[col].(type) {
		case bool:
			return parquet.Leaf(parquet.BooleanType)
		case int, int32, int64:
			return parquet.Int(64)
		case float32, float64:
			return parquet.Leaf(parquet.DoubleType)
		default:
			return parquet.String()
		}
	}
	return parquet.String()
}

// normalizeValue coerces a scanned value into the type its column node
// declares.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case bool, int64, float64, string:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", x)
	}
}
