package executor

import (
	"log/slog"

	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/backend"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
)

// DecoratorFactory wraps a component with one decorator.
type DecoratorFactory func(Component) Component

// Builder assembles an execution chain from a document.
//
// Build validates every cell eagerly, collecting all errors and failing
// with the aggregated report unless Permissive was requested. Decorator
// factories apply in registration order, innermost first: the last
// registered decorator is outermost and observes every inner decorator's
// side effects.
type Builder struct {
	doc        *document.Document
	parsers    []annot.Parser
	resolver   *config.Resolver
	backends   *backend.Registry
	factories  []DecoratorFactory
	permissive bool
}

// NewBuilder returns a builder over the given document and composition
// context. Parsers passed here take priority over any registry discovery
// the caller might otherwise use.
func NewBuilder(
	doc *document.Document,
	parsers []annot.Parser,
	resolver *config.Resolver,
	backends *backend.Registry,
) *Builder {
	return &Builder{
		doc:      doc,
		parsers:  parsers,
		resolver: resolver,
		backends: backends,
	}
}

// WithLogging registers the timing-log decorator.
func (b *Builder) WithLogging(log *slog.Logger) *Builder {
	return b.WithDecorator(func(c Component) Component {
		return NewLogging(c, log)
	})
}

// WithOutput registers the parquet persistence decorator.
func (b *Builder) WithOutput(log *slog.Logger) *Builder {
	return b.WithDecorator(func(c Component) Component {
		return NewOutput(c, log)
	})
}

// WithDecorator registers a custom decorator factory.
func (b *Builder) WithDecorator(factory DecoratorFactory) *Builder {
	b.factories = append(b.factories, factory)
	return b
}

// Permissive disables strict validation: cells that fail validation carry a
// nil config instead of failing Build.
func (b *Builder) Permissive() *Builder {
	b.permissive = true
	return b
}

// Build validates the document and assembles the chain.
func (b *Builder) Build() (Component, error) {
	cells, err := validateCells(b.doc, b.parsers, b.resolver, !b.permissive)
	if err != nil {
		return nil, err
	}

	var chain Component = newBase(b.doc, cells, b.parsers, b.resolver, b.backends, !b.permissive)
	for _, factory := range b.factories {
		chain = factory(chain)
	}
	return chain, nil
}
