package backend

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/roach88/qsql/internal/result"
)

// BigQuery is the cloud warehouse backend.
//
// Connection string formats:
//
//	bigquery://project_id
//	bigquery://project_id/location
//	project_id
//	project_id/location
//
// Authentication uses Application Default Credentials.
type BigQuery struct {
	client   *bigquery.Client
	project  string
	location string
}

// NewBigQuery returns a not-yet-connected BigQuery backend.
func NewBigQuery() *BigQuery {
	return &BigQuery{}
}

// Connect creates a BigQuery client for the project (and optional location)
// named by the connection string.
func (b *BigQuery) Connect(ctx context.Context, connString string) error {
	conn := strings.TrimSpace(connString)
	if strings.HasPrefix(strings.ToLower(conn), "bigquery://") {
		conn = conn[len("bigquery://"):]
	}

	parts := strings.SplitN(conn, "/", 2)
	b.project = parts[0]
	if len(parts) > 1 {
		b.location = parts[1]
	}
	if b.project == "" {
		return fmt.Errorf("bigquery connection string %q has no project", connString)
	}

	client, err := bigquery.NewClient(ctx, b.project)
	if err != nil {
		return fmt.Errorf("create bigquery client for project %q: %w", b.project, err)
	}
	if b.location != "" {
		client.Location = b.location
	}

	b.client = client
	return nil
}

// Execute runs a query and materializes its rows as a Table.
func (b *BigQuery) Execute(ctx context.Context, query string) (result.Result, error) {
	if b.client == nil {
		return nil, ErrNotConnected
	}

	it, err := b.client.Query(query).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	t := &result.Table{}
	for _, field := range it.Schema {
		t.Columns = append(t.Columns, field.Name)
	}

	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate results: %w", err)
		}

		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		t.Rows = append(t.Rows, values)

		// Schema is only populated after the first page on some paths.
		if len(t.Columns) == 0 {
			for _, field := range it.Schema {
				t.Columns = append(t.Columns, field.Name)
			}
		}
	}

	return t, nil
}

// Close releases the client. A no-op when never connected.
func (b *BigQuery) Close() error {
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	b.project = ""
	b.location = ""
	return err
}
