// Package watcher re-executes document cells when the backing file changes.
//
// One watcher serves one file. Filesystem notifications are debounced, the
// document is re-read as a fresh snapshot, the pipeline is refreshed
// (keeping its open connections), and only cells whose raw text actually
// changed, plus newly added cells, are re-executed. Removed cells are
// reported but never executed.
//
// The debounce window is a cooperative fast-path filter, not a lock: the
// handler is safe against redundant triggers because refresh, diff, and
// execution are all idempotent over an unchanged file.
package watcher
