// Package config resolves and validates per-cell configuration.
//
// A cell's merged annotation map is validated into a typed CellConfig. The
// `input` field resolves to a (backend name, connection string) pair, either
// explicitly or by inferring the backend from the shape of a bare connection
// string via a Resolver.
//
// Validation never stops at the first problem: every cell is validated, every
// offending field produces its own CellError, and the whole pass is reported
// at once as a Report grouped by cell. This mirrors how a compiler reports
// diagnostics rather than bailing on the first bad token.
package config
