package annot

import "fmt"

// Registry holds an ordered set of annotation parsers.
//
// Registration order is significant: callers that run every registered
// parser give later parsers' output precedence on key collision. The
// registry is an explicit value, not package state; each test or deployment
// composes its own.
type Registry struct {
	order  []Parser
	byName map[string]Parser
}

// NewRegistry returns an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Parser)}
}

// Builtin returns a registry populated with the built-in parsers, in the
// canonical order: key_value first, dict_like second. Block-comment values
// therefore win over line-comment values for the same key.
func Builtin() *Registry {
	r := NewRegistry()
	r.Register(NewKeyValueParser())
	r.Register(NewDictLikeParser())
	return r
}

// Register appends a parser. Registering a duplicate name replaces the
// earlier entry's lookup but keeps the original position in the order.
func (r *Registry) Register(p Parser) {
	if _, exists := r.byName[p.Name()]; !exists {
		r.order = append(r.order, p)
	}
	r.byName[p.Name()] = p
}

// Parsers returns all registered parsers in registration order.
func (r *Registry) Parsers() []Parser {
	out := make([]Parser, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the parser registered under name.
func (r *Registry) Get(name string) (Parser, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("annotation parser %q is not registered", name)
	}
	return p, nil
}

// Clear removes all registered parsers.
func (r *Registry) Clear() {
	r.order = nil
	r.byName = make(map[string]Parser)
}
