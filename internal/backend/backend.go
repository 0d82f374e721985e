package backend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/result"
)

// ErrNotConnected is returned by Execute when Connect has not been called,
// or the backend has been closed.
var ErrNotConnected = errors.New("backend not connected: call Connect first")

// Backend is a pluggable query-execution engine.
type Backend interface {
	// Connect opens the backend using its connection string.
	Connect(ctx context.Context, connString string) error

	// Execute runs a query and returns its tabular result.
	// Calling Execute before Connect returns ErrNotConnected.
	Execute(ctx context.Context, query string) (result.Result, error)

	// Close releases the connection. Safe to call when never connected.
	Close() error
}

// Factory constructs a fresh, not-yet-connected backend instance.
type Factory func() Backend

// Registry maps backend names to factories.
//
// An explicit value, composed per deployment or per test; lookups of
// unregistered names fail with an explicit error, never a silent nil.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Builtin returns a registry populated with the built-in backends:
// duckdb, bigquery, and sqlite.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(config.BackendDuckDB, func() Backend { return NewDuckDB() })
	r.Register(config.BackendBigQuery, func() Backend { return NewBigQuery() })
	r.Register(config.BackendSQLite, func() Backend { return NewSQLite() })
	return r
}

// Register adds or replaces a backend factory.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("backend %q is not registered", name)
	}
	return f, nil
}

// Names returns all registered backend names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clear removes all registered backends.
func (r *Registry) Clear() {
	r.factories = make(map[string]Factory)
}
