package config

import (
	"fmt"
	"strings"
)

// Built-in backend names. The backend package registers implementations
// under the same names.
const (
	BackendDuckDB   = "duckdb"
	BackendBigQuery = "bigquery"
	BackendSQLite   = "sqlite"
)

// MemoryMarker is the in-memory database connection string.
const MemoryMarker = ":memory:"

// MatcherFunc reports whether a connection string belongs to a backend.
type MatcherFunc func(connString string) bool

type resolverRule struct {
	matcher MatcherFunc
	backend string
	format  string
}

// Resolver infers a backend name from the shape of a bare connection string.
//
// Rules are tried in registration order; the first match wins. Resolver is
// an explicit value composed by the caller, never process-wide state.
type Resolver struct {
	rules []resolverRule
}

// NewResolver returns an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// BuiltinResolver returns a resolver populated with the built-in rules,
// in the canonical order: duckdb, bigquery, sqlite.
func BuiltinResolver() *Resolver {
	r := NewResolver()
	r.Register(BackendDuckDB, isDuckDB,
		".ddb, .duckdb, or "+MemoryMarker)
	r.Register(BackendBigQuery, isBigQuery,
		"bigquery://project_id or bigquery://project_id/location")
	r.Register(BackendSQLite, isSQLite,
		".db, .sqlite, or .sqlite3")
	return r
}

// Register appends a matcher rule for a backend. format is the
// human-readable connection-string shape shown in resolution errors.
func (r *Resolver) Register(backendName string, matcher MatcherFunc, format string) {
	r.rules = append(r.rules, resolverRule{matcher: matcher, backend: backendName, format: format})
}

// Resolve returns the backend name for a connection string, or an error
// naming the input and listing every supported format.
func (r *Resolver) Resolve(connString string) (string, error) {
	for _, rule := range r.rules {
		if rule.matcher(connString) {
			return rule.backend, nil
		}
	}

	var formats []string
	for _, rule := range r.rules {
		formats = append(formats, fmt.Sprintf("  - %s: %s", rule.backend, rule.format))
	}
	return "", fmt.Errorf(
		"cannot infer backend from connection string %q\nsupported formats:\n%s",
		connString, strings.Join(formats, "\n"))
}

// Clear removes all registered rules.
func (r *Resolver) Clear() {
	r.rules = nil
}

func isDuckDB(conn string) bool {
	c := strings.ToLower(strings.TrimSpace(conn))
	return strings.HasSuffix(c, ".ddb") || strings.HasSuffix(c, ".duckdb") || c == MemoryMarker
}

func isBigQuery(conn string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(conn)), "bigquery://")
}

func isSQLite(conn string) bool {
	c := strings.ToLower(strings.TrimSpace(conn))
	return strings.HasSuffix(c, ".db") || strings.HasSuffix(c, ".sqlite") || strings.HasSuffix(c, ".sqlite3")
}
