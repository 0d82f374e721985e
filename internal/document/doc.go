// Package document models an annotated SQL source file.
//
// A document is a plain-text SQL file carrying multiple named query blocks
// ("cells"). A cell starts at a marker comment of the form:
//
//	-- name: daily_revenue
//
// and extends to the line before the next marker, or to the end of the file.
// Everything before the first marker is the header; header annotations supply
// defaults inherited by every cell, with cell-local annotations overriding
// them key by key.
//
// Documents are immutable snapshots. Reloading the backing file produces a
// new Document, never a mutation of an existing one, so callers holding an
// old snapshot (the watcher, the executor) can diff safely.
package document
