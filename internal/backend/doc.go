// Package backend defines the pluggable query-engine contract and its
// built-in implementations.
//
// A Backend has an explicit lifecycle: not-connected → connected → closed.
// Execute before Connect is a programmer error and fails loudly with
// ErrNotConnected rather than returning empty results. Connection strings
// are backend-specific: a local file path or :memory: for the embedded
// engines, a project[/location] identifier (optionally bigquery://-prefixed)
// for the warehouse.
//
// Backends register on an explicit Registry composed by the caller; default
// population happens at composition time via Builtin, never as an import
// side effect.
package backend
