package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/backend"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/result"
)

// connEntry pairs a live backend with the mutex serializing access to it.
// A single connection must never run two executions concurrently.
type connEntry struct {
	mu      sync.Mutex
	backend backend.Backend
}

// Base is the innermost link of the execution chain.
//
// It owns the validated-cell index and the connection cache. The cache is
// keyed by backend name + connection string, so every cell sharing an input
// shares one open connection, and Refresh never disturbs it.
type Base struct {
	doc      *document.Document
	parsers  []annot.Parser
	resolver *config.Resolver
	backends *backend.Registry
	strict   bool

	mu    sync.Mutex
	cells map[string]ValidatedCell
	conns map[string]*connEntry
}

func newBase(
	doc *document.Document,
	cells []ValidatedCell,
	parsers []annot.Parser,
	resolver *config.Resolver,
	backends *backend.Registry,
	strict bool,
) *Base {
	b := &Base{
		doc:      doc,
		parsers:  parsers,
		resolver: resolver,
		backends: backends,
		strict:   strict,
		cells:    make(map[string]ValidatedCell, len(cells)),
		conns:    make(map[string]*connEntry),
	}
	for _, c := range cells {
		b.cells[c.Name] = c
	}
	return b
}

// ExecuteCell implements Component.
func (b *Base) ExecuteCell(ctx context.Context, name string) (result.Result, error) {
	b.mu.Lock()
	cell, ok := b.cells[name]
	b.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("cell %q: %w", name, ErrCellNotFound)
	}
	if cell.Config == nil || cell.Config.Input == nil {
		return nil, fmt.Errorf("cell %q: %w", name, ErrNoInput)
	}

	entry, err := b.getOrConnect(ctx, *cell.Config.Input)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.backend.Execute(ctx, cell.Text)
}

// ExecuteMany implements Component via repeated ExecuteCell calls.
func (b *Base) ExecuteMany(ctx context.Context, names []string) (map[string]result.Result, error) {
	results := make(map[string]result.Result, len(names))
	for _, name := range names {
		res, err := b.ExecuteCell(ctx, name)
		if err != nil {
			return nil, err
		}
		results[name] = res
	}
	return results, nil
}

// ConfigFields implements Component. The base needs no decorator fields.
func (b *Base) ConfigFields() []string {
	return nil
}

// CellConfig implements Component.
func (b *Base) CellConfig(name string) *config.CellConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	cell, ok := b.cells[name]
	if !ok {
		return nil
	}
	return cell.Config
}

// Refresh implements Component. The connection cache is untouched: cells
// whose inputs did not change keep reusing their open connections.
func (b *Base) Refresh(doc *document.Document) error {
	cells, err := validateCells(doc, b.parsers, b.resolver, b.strict)
	if err != nil {
		return err
	}

	index := make(map[string]ValidatedCell, len(cells))
	for _, c := range cells {
		index[c.Name] = c
	}

	b.mu.Lock()
	b.doc = doc
	b.cells = index
	b.mu.Unlock()
	return nil
}

// Close implements Component. Closes every cached connection and clears the
// cache; safe to call with zero connections, and safe to call twice.
func (b *Base) Close() error {
	b.mu.Lock()
	conns := b.conns
	b.conns = make(map[string]*connEntry)
	b.mu.Unlock()

	var errs []error
	for key, entry := range conns {
		entry.mu.Lock()
		if err := entry.backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", key, err))
		}
		entry.mu.Unlock()
	}
	return errors.Join(errs...)
}

// getOrConnect returns the cached connection for an input, opening one on
// first use. Only the base owns connections; no other component creates or
// closes them.
func (b *Base) getOrConnect(ctx context.Context, input config.InputConfig) (*connEntry, error) {
	key := input.CacheKey()

	b.mu.Lock()
	defer b.mu.Unlock()

	if entry, ok := b.conns[key]; ok {
		return entry, nil
	}

	factory, err := b.backends.Get(input.BackendName)
	if err != nil {
		return nil, err
	}

	bk := factory()
	if err := bk.Connect(ctx, input.ConnectionString); err != nil {
		return nil, fmt.Errorf("connect %s: %w", key, err)
	}

	entry := &connEntry{backend: bk}
	b.conns[key] = entry
	return entry, nil
}
